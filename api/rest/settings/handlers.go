package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/chat"
	"codeberg.org/parley/server/internal/errors"
)

// creates a handler that returns the current agent settings
func GetSettingsHandler(registry *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, SettingsResponse{
			Settings: registry.Settings().Snapshot(),
		})
	}
}

// creates a handler that updates the agent profile and welcome message
func UpdateSettingsHandler(registry *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		settings := registry.Settings()
		settings.UpdateProfile(req.AgentName, req.Avatar)
		settings.UpdateWelcomeMessage(req.WelcomeMessage)

		c.JSON(http.StatusOK, SettingsResponse{
			Settings: settings.Snapshot(),
		})
	}
}

// creates a handler that adds a quick reply
func AddQuickReplyHandler(registry *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddQuickReplyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		reply := registry.Settings().AddQuickReply(req.Title, req.Content)

		c.JSON(http.StatusCreated, QuickReplyResponse{QuickReply: reply})
	}
}

// creates a handler that removes a quick reply by id
func RemoveQuickReplyHandler(registry *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !registry.Settings().RemoveQuickReply(c.Param("id")) {
			errors.NotFound(c, "quick reply")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "quick reply removed"})
	}
}
