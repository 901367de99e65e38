package settings

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/chat"
)

func RegisterRoutes(router *gin.RouterGroup, registry *chat.Registry) {
	router.GET("/settings", GetSettingsHandler(registry))
	router.PUT("/settings", UpdateSettingsHandler(registry))
	router.POST("/settings/quick-replies", AddQuickReplyHandler(registry))
	router.DELETE("/settings/quick-replies/:id", RemoveQuickReplyHandler(registry))
}
