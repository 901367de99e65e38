package websocket

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/chat"
	ws "codeberg.org/parley/server/internal/websocket"
)

func RegisterRoutes(router *gin.RouterGroup, hub *ws.Hub, registry *chat.Registry) {
	router.GET("/ws", WebSocketHandler(hub, registry))
}
