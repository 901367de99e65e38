package websocket

import (
	"errors"
	"strings"

	"codeberg.org/parley/server/chat"
	"codeberg.org/parley/server/internal/logger"
)

// returns a handler that appends inbound chat messages to the session
// timeline and fans them out to the chat
func ChatMessageHandler(registry *chat.Registry) MessageHandler {
	return func(hub *Hub, client *Client, msg *Message) error {
		if !client.AllowChatMessage() {
			client.SendError("rate_limited", "you are sending messages too quickly", "")
			return ErrRateLimitExceeded
		}

		var payload SendMessagePayload
		if err := msg.UnmarshalPayload(&payload); err != nil {
			client.SendError("bad_request", "invalid message payload", "")
			return ErrInvalidMessage
		}

		payload.Content = strings.TrimSpace(payload.Content)

		if payload.Content == "" && len(payload.Attachments) == 0 {
			client.SendError("bad_request", "message content cannot be empty", "")
			return ErrInvalidMessage
		}

		if len(payload.Content) > maxChatMessageSize {
			client.SendError("bad_request", "message content too long", "")
			return ErrMessageTooLarge
		}

		var (
			appended chat.Message
			err      error
		)

		switch client.Role {
		case chat.RoleAgent:
			appended, err = registry.AppendAgentMessage(client.ChatID, client.SenderID, payload.Content, payload.Attachments)
		default:
			appended, err = registry.AppendVisitorMessage(client.ChatID, payload.Content, payload.Attachments)
		}

		if err != nil {
			switch {
			case errors.Is(err, chat.ErrChatClosed):
				client.SendError("chat_closed", "chat is closed", "")
			case errors.Is(err, chat.ErrNotFound):
				client.SendError("chat_not_found", "chat not found", "")
			default:
				logger.ErrorErr(err, "failed to append chat message",
					"chat_id", client.ChatID,
					"client_id", client.ID,
				)
				client.SendError("server_error", "failed to send message", "")
			}
			return err
		}

		// other side connected means the message was delivered
		otherRole := chat.RoleVisitor
		if client.Role == chat.RoleVisitor {
			otherRole = chat.RoleAgent
		}

		if hub.HasRole(client.ChatID, otherRole) {
			if err := registry.MarkDelivered(client.ChatID, appended.ID); err == nil {
				appended.DeliveryStatus = chat.DeliveryDelivered
			}
		}

		broadcast, err := NewMessage(TypeChatMessage, client.ChatID, client.SenderID, ChatMessagePayload{
			Message: appended,
		})
		if err != nil {
			return err
		}

		hub.BroadcastToChat(client.ChatID, broadcast, "")
		return nil
	}
}

// relays composing indicators to the other participant
func TypingHandler(hub *Hub, client *Client, msg *Message) error {
	typingMsg, err := NewMessage(TypeTyping, client.ChatID, client.SenderID, TypingPayload{
		Role:        client.Role,
		DisplayName: client.DisplayName,
	})
	if err != nil {
		return err
	}

	hub.BroadcastToChat(client.ChatID, typingMsg, client.ID)
	return nil
}

// returns a handler that marks timeline messages read and notifies the
// other participant
func ReadHandler(registry *chat.Registry) MessageHandler {
	return func(hub *Hub, client *Client, msg *Message) error {
		var payload ReadPayload
		if err := msg.UnmarshalPayload(&payload); err != nil {
			client.SendError("bad_request", "invalid read payload", "")
			return ErrInvalidMessage
		}

		if len(payload.MessageIDs) == 0 {
			return nil
		}

		marked := make([]string, 0, len(payload.MessageIDs))

		for _, id := range payload.MessageIDs {
			if err := registry.MarkRead(client.ChatID, id); err != nil {
				if errors.Is(err, chat.ErrNotFound) {
					client.SendError("chat_not_found", "chat not found", "")
					return err
				}
				// unknown message id, skip it
				continue
			}

			marked = append(marked, id)
		}

		if len(marked) == 0 {
			return nil
		}

		readMsg, err := NewMessage(TypeRead, client.ChatID, client.SenderID, ReadPayload{
			MessageIDs: marked,
		})
		if err != nil {
			return err
		}

		hub.BroadcastToChat(client.ChatID, readMsg, client.ID)
		return nil
	}
}

// responds to application-level pings
func PingHandler(hub *Hub, client *Client, msg *Message) error {
	pong, err := NewMessage(TypePong, client.ChatID, "", nil)
	if err != nil {
		return err
	}

	return client.Send(pong)
}
