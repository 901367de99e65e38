package visitors

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/chat"
	ws "codeberg.org/parley/server/internal/websocket"
)

func RegisterRoutes(router *gin.RouterGroup, registry *chat.Registry, hub *ws.Hub) {
	router.POST("/visitors/:id/block", BlockVisitorHandler(registry, hub))
	router.DELETE("/visitors/:id/block", UnblockVisitorHandler(registry))
	router.GET("/visitors/:id/block", GetBlockStatusHandler(registry))
	router.PUT("/visitors/:id/presence", SetPresenceHandler(registry))
}
