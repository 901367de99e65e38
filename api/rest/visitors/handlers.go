package visitors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/chat"
	"codeberg.org/parley/server/internal/errors"
	ws "codeberg.org/parley/server/internal/websocket"
)

// creates a handler that blocks a visitor and closes all their open chats
func BlockVisitorHandler(registry *chat.Registry, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID := c.Param("id")
		if visitorID == "" {
			errors.BadRequest(c, "visitor id is required", nil)
			return
		}

		// collect the visitor's open chats before the cascade closes them,
		// so connected clients can be told afterwards
		var affected []string

		for _, session := range registry.ListAll() {
			if session.VisitorID() == visitorID && session.Status() != chat.StatusClosed {
				affected = append(affected, session.ID())
			}
		}

		closed := registry.BlockVisitor(visitorID)

		for _, chatID := range affected {
			hub.EndChat(chatID, "you have been blocked")
		}

		c.JSON(http.StatusOK, BlockResponse{
			VisitorID:     visitorID,
			Blocked:       true,
			ChatsAffected: closed,
		})
	}
}

// creates a handler that removes a visitor from the block list
func UnblockVisitorHandler(registry *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID := c.Param("id")
		if visitorID == "" {
			errors.BadRequest(c, "visitor id is required", nil)
			return
		}

		registry.UnblockVisitor(visitorID)

		c.JSON(http.StatusOK, BlockResponse{
			VisitorID: visitorID,
			Blocked:   false,
		})
	}
}

// creates a handler that reports whether a visitor is blocked
func GetBlockStatusHandler(registry *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID := c.Param("id")

		c.JSON(http.StatusOK, BlockResponse{
			VisitorID: visitorID,
			Blocked:   registry.IsBlocked(visitorID),
		})
	}
}

// creates a handler that updates a visitor's presence on all their chats
func SetPresenceHandler(registry *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID := c.Param("id")

		var req PresenceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		registry.SetPresence(visitorID, req.Online)

		c.JSON(http.StatusOK, gin.H{
			"visitor_id": visitorID,
			"online":     req.Online,
		})
	}
}
