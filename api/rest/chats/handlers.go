package chats

import (
	stderrors "errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/chat"
	"codeberg.org/parley/server/internal/errors"
	"codeberg.org/parley/server/internal/visitorinfo"
	ws "codeberg.org/parley/server/internal/websocket"
)

// creates a handler that starts a new chat for a visitor
func CreateChatHandler(registry *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		info, err := visitorinfo.Resolve(c.Request.UserAgent(), c.ClientIP())
		if err != nil {
			errors.InternalError(c, "failed to resolve visitor identity", err)
			return
		}

		session, err := registry.CreateSession(req.VisitorName, req.AgentID, info)
		if err != nil {
			mapChatError(c, err)
			return
		}

		c.JSON(http.StatusCreated, ChatResponse{Chat: session.Snapshot()})
	}
}

// creates a handler that lets a visitor rejoin a chat by access code
func JoinChatHandler(registry *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req JoinChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		session, err := registry.JoinByAccessCode(strings.TrimSpace(req.AccessCode), req.VisitorName)
		if err != nil {
			mapChatError(c, err)
			return
		}

		c.JSON(http.StatusOK, ChatResponse{Chat: session.Snapshot()})
	}
}

// creates a handler that returns one chat by id
func GetChatHandler(registry *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := registry.GetByID(c.Param("id"))
		if err != nil {
			mapChatError(c, err)
			return
		}

		c.JSON(http.StatusOK, ChatResponse{Chat: session.Snapshot()})
	}
}

// creates a handler that lists chats, optionally filtered by status
func ListChatsHandler(registry *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sessions []*chat.Session

		switch status := c.Query("status"); status {
		case "":
			sessions = registry.ListAll()
		case string(chat.StatusWaiting), string(chat.StatusActive), string(chat.StatusClosed):
			sessions = registry.ListByStatus(chat.Status(status))
		default:
			errors.BadRequest(c, "unknown status filter", nil)
			return
		}

		views := make([]chat.SessionView, 0, len(sessions))
		for _, session := range sessions {
			views = append(views, session.Snapshot())
		}

		// newest first, stable order for the agent dashboard
		sort.Slice(views, func(i, j int) bool {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		})

		c.JSON(http.StatusOK, ChatListResponse{
			Chats: views,
			Count: len(views),
		})
	}
}

// creates a handler that appends a visitor message via REST and fans it
// out to connected websocket clients
func SendMessageHandler(registry *chat.Registry, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		req.Content = strings.TrimSpace(req.Content)

		if req.Content == "" && len(req.Attachments) == 0 {
			errors.BadRequest(c, "message content cannot be empty", nil)
			return
		}

		chatID := c.Param("id")

		message, err := registry.AppendVisitorMessage(chatID, req.Content, req.Attachments)
		if err != nil {
			mapChatError(c, err)
			return
		}

		broadcastMessage(hub, registry, chatID, chat.RoleVisitor, message)

		c.JSON(http.StatusCreated, MessageResponse{Message: message})
	}
}

// creates a handler that appends an agent message via REST
func SendAgentMessageHandler(registry *chat.Registry, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AgentMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		req.Content = strings.TrimSpace(req.Content)

		if req.Content == "" && len(req.Attachments) == 0 {
			errors.BadRequest(c, "message content cannot be empty", nil)
			return
		}

		chatID := c.Param("id")

		message, err := registry.AppendAgentMessage(chatID, req.AgentID, req.Content, req.Attachments)
		if err != nil {
			mapChatError(c, err)
			return
		}

		broadcastMessage(hub, registry, chatID, chat.RoleAgent, message)

		c.JSON(http.StatusCreated, MessageResponse{Message: message})
	}
}

// creates a handler that assigns an agent to a waiting chat
func AcceptChatHandler(registry *chat.Registry, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AcceptChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		chatID := c.Param("id")

		if err := registry.AcceptSession(chatID, req.AgentID); err != nil {
			mapChatError(c, err)
			return
		}

		session, err := registry.GetByID(chatID)
		if err != nil {
			mapChatError(c, err)
			return
		}

		snapshot := session.Snapshot()

		// push the refreshed state so the visitor sees the agent join and
		// the welcome message without polling
		if stateMsg, msgErr := ws.NewMessage(ws.TypeChatState, chatID, "", ws.ChatStatePayload{
			Chat:     snapshot,
			YourRole: chat.RoleVisitor,
		}); msgErr == nil {
			hub.BroadcastToChat(chatID, stateMsg, "")
		}

		c.JSON(http.StatusOK, ChatResponse{Chat: snapshot})
	}
}

// creates a handler that closes a chat from the agent side
func CloseChatHandler(registry *chat.Registry, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID := c.Param("id")

		if err := registry.CloseSession(chatID); err != nil {
			mapChatError(c, err)
			return
		}

		hub.EndChat(chatID, "closed by agent")

		c.JSON(http.StatusOK, gin.H{"message": "chat closed"})
	}
}

// creates a handler that sets or clears the agent's focused chat
func SetFocusHandler(registry *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FocusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if req.ChatID != "" {
			if _, err := registry.GetByID(req.ChatID); err != nil {
				mapChatError(c, err)
				return
			}
		}

		registry.SetActiveSession(req.ChatID)

		c.JSON(http.StatusOK, FocusResponse{ChatID: registry.ActiveSession()})
	}
}

// creates a handler that returns the agent's focused chat id
func GetFocusHandler(registry *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, FocusResponse{ChatID: registry.ActiveSession()})
	}
}

// fans a REST-appended message out to the chat's websocket clients and
// marks it delivered when the other side is connected
func broadcastMessage(hub *ws.Hub, registry *chat.Registry, chatID, senderRole string, message chat.Message) {
	otherRole := chat.RoleVisitor
	if senderRole == chat.RoleVisitor {
		otherRole = chat.RoleAgent
	}

	if hub.HasRole(chatID, otherRole) {
		if err := registry.MarkDelivered(chatID, message.ID); err == nil {
			message.DeliveryStatus = chat.DeliveryDelivered
		}
	}

	broadcast, err := ws.NewMessage(ws.TypeChatMessage, chatID, message.SenderID, ws.ChatMessagePayload{
		Message: message,
	})
	if err != nil {
		return
	}

	hub.BroadcastToChat(chatID, broadcast, "")
}

// translates chat engine sentinel errors to HTTP responses
func mapChatError(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, chat.ErrNotFound):
		errors.ChatNotFound(c)
	case stderrors.Is(err, chat.ErrChatClosed):
		errors.ChatClosed(c)
	case stderrors.Is(err, chat.ErrAlreadyAccepted):
		errors.AlreadyAccepted(c)
	case stderrors.Is(err, chat.ErrVisitorBlocked):
		errors.VisitorBlocked(c)
	case stderrors.Is(err, chat.ErrNotEntitled):
		errors.NotEntitled(c)
	default:
		errors.InternalError(c, "chat operation failed", err)
	}
}
