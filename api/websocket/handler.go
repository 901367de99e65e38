package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/parley/server/chat"
	"codeberg.org/parley/server/internal/errors"
	"codeberg.org/parley/server/internal/logger"
	ws "codeberg.org/parley/server/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     ws.CheckOrigin,
}

// handles WebSocket connections for live chat delivery.
// visitors and agents both attach here; the role query parameter decides
// which side of the chat the connection speaks for.
func WebSocketHandler(hub *ws.Hub, registry *chat.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params ConnectParams
		if err := c.ShouldBindQuery(&params); err != nil {
			errors.BadRequest(c, "invalid parameters", err)
			return
		}

		session, err := registry.GetByID(params.ChatID)
		if err != nil {
			errors.ChatNotFound(c)
			return
		}

		snapshot := session.Snapshot()

		if snapshot.Status == chat.StatusClosed {
			errors.ChatClosed(c)
			return
		}

		var senderID string
		var displayName string

		switch params.Role {
		case chat.RoleAgent:
			if params.AgentID == "" {
				errors.BadRequest(c, "agent_id is required for agent connections", nil)
				return
			}

			senderID = params.AgentID
			displayName = params.DisplayName

			if displayName == "" {
				displayName = registry.Settings().Snapshot().AgentName
			}

			if displayName == "" {
				displayName = "Agent"
			}

		default:
			if registry.IsBlocked(snapshot.VisitorID) {
				errors.VisitorBlocked(c)
				return
			}

			senderID = snapshot.VisitorID
			displayName = params.DisplayName

			if displayName == "" {
				displayName = snapshot.VisitorName
			}
		}

		// check connection limits before accepting new connection
		ipAddress := c.ClientIP()
		canAccept, reason := hub.CanAcceptConnection(ipAddress)

		if !canAccept {
			errors.TooManyRequests(c, reason)
			return
		}

		clientID, err := ws.GenerateClientID()
		if err != nil {
			errors.InternalError(c, "failed to generate client ID", err)
			return
		}

		// upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorErr(err, "failed to upgrade connection",
				"chat_id", params.ChatID,
				"ip", ipAddress,
			)

			return
		}

		// track IP connection only after successful upgrade
		hub.TrackIPConnection(ipAddress)

		client := ws.NewClient(clientID, params.ChatID, senderID, displayName, params.Role, ipAddress, conn, hub)
		client.InitialChat = snapshot

		hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
