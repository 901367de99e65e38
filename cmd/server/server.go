package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/chat"
	"codeberg.org/parley/server/internal/config"
	"codeberg.org/parley/server/internal/logger"
	ws "codeberg.org/parley/server/internal/websocket"
	"codeberg.org/parley/server/license"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	licenseManager := license.NewManager()

	registry := chat.NewRegistry(chat.Config{
		Entitlements: licenseManager,
		Settings:     chat.NewSettings(),
	})

	hub := ws.NewHub()

	// register websocket message handlers
	hub.RegisterHandler(ws.TypeChatMessage, ws.ChatMessageHandler(registry))
	hub.RegisterHandler(ws.TypeTyping, ws.TypingHandler)
	hub.RegisterHandler(ws.TypeRead, ws.ReadHandler(registry))
	hub.RegisterHandler(ws.TypePing, ws.PingHandler)

	// visitor connections drive presence on the chat engine
	hub.OnClientRegistered(func(client *ws.Client) {
		if client.Role == chat.RoleVisitor {
			registry.SetPresence(client.SenderID, true)
		}
	})

	hub.OnClientDisconnect(func(client *ws.Client) {
		if client.Role != chat.RoleVisitor {
			return
		}

		// another tab may still be connected for the same visitor
		if hub.HasRole(client.ChatID, chat.RoleVisitor) {
			return
		}

		registry.SetPresence(client.SenderID, false)
	})

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// evicts closed chats past the retention window
	sweeper := chat.NewSweeper(registry, cfg.SweepInterval, cfg.Retention)

	server := &Server{
		config:   cfg,
		registry: registry,
		licenses: licenseManager,
		hub:      hub,
		sweeper:  sweeper,
		router:   router,
	}

	RegisterRoutes(router, server)

	return server, nil
}

// builds the CORS middleware from the configured origins
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		// development only; config loading rejects this in production
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false

		logger.Warn("CORS allowing all origins, set ALLOWED_ORIGINS for production")
	}

	return cors.New(corsConfig)
}
