package main

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/chat"
	"codeberg.org/parley/server/internal/config"
	ws "codeberg.org/parley/server/internal/websocket"
	"codeberg.org/parley/server/license"
)

// holds all dependencies and state for the API server
type Server struct {
	config   *config.Config
	registry *chat.Registry
	licenses *license.Manager
	hub      *ws.Hub
	sweeper  *chat.Sweeper
	router   *gin.Engine
}
