package main

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/api/rest/chats"
	"codeberg.org/parley/server/api/rest/health"
	"codeberg.org/parley/server/api/rest/licenses"
	"codeberg.org/parley/server/api/rest/settings"
	"codeberg.org/parley/server/api/rest/visitors"
	"codeberg.org/parley/server/api/websocket"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(CORSMiddleware(server.config))
	router.GET("/health", health.Handler)

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		chats.RegisterRoutes(v1, server.registry, server.hub)
		visitors.RegisterRoutes(v1, server.registry, server.hub)
		settings.RegisterRoutes(v1, server.registry)
		licenses.RegisterRoutes(v1, server.licenses)
		websocket.RegisterRoutes(v1, server.hub, server.registry)
	}
}
