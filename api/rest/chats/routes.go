package chats

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/chat"
	"codeberg.org/parley/server/internal/ratelimit"
	ws "codeberg.org/parley/server/internal/websocket"
)

func RegisterRoutes(router *gin.RouterGroup, registry *chat.Registry, hub *ws.Hub) {
	// creation and joins are the abuse surface; everything else is
	// reachable only with a chat id or from the agent dashboard
	createLimit := ratelimit.Middleware("10-M")

	router.POST("/chats", createLimit, CreateChatHandler(registry))
	router.POST("/chats/join", createLimit, JoinChatHandler(registry))
	router.GET("/chats", ListChatsHandler(registry))
	router.GET("/chats/:id", GetChatHandler(registry))
	router.POST("/chats/:id/messages", SendMessageHandler(registry, hub))
	router.POST("/chats/:id/agent-messages", SendAgentMessageHandler(registry, hub))
	router.POST("/chats/:id/accept", AcceptChatHandler(registry, hub))
	router.POST("/chats/:id/close", CloseChatHandler(registry, hub))

	router.GET("/focus", GetFocusHandler(registry))
	router.PUT("/focus", SetFocusHandler(registry))
}
