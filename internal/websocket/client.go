package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"codeberg.org/parley/server/internal/logger"
)

// creates a new client for the given connection
func NewClient(id, chatID, senderID, displayName, role, ipAddress string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:          id,
		ChatID:      chatID,
		SenderID:    senderID,
		DisplayName: displayName,
		Role:        role,
		IPAddress:   ipAddress,
		conn:        conn,
		hub:         hub,
		send:        make(chan []byte, 256),
		closed:      false,
		msgLimiter:  rate.NewLimiter(chatMessageRate, chatMessageBurst),
	}
}

// reports whether the client may send another chat message now
func (c *Client) AllowChatMessage() bool {
	return c.msgLimiter.Allow()
}

// queues a frame for delivery to the client
func (c *Client) Send(msg *Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrConnectionClosed
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	default:
		// send buffer full, client is too slow
		logger.Warn("client send buffer full, dropping frame",
			"client_id", c.ID,
			"chat_id", c.ChatID,
			"message_type", msg.Type,
		)
		return ErrConnectionClosed
	}
}

// sends an error frame to the client
func (c *Client) SendError(code, message, details string) {
	payload := map[string]string{
		"code":    code,
		"message": message,
	}

	if details != "" {
		payload["details"] = details
	}

	errMsg, err := NewMessage(TypeError, c.ChatID, "", payload)
	if err != nil {
		logger.ErrorErr(err, "failed to create error frame", "client_id", c.ID)
		return
	}

	if err := c.Send(errMsg); err != nil {
		logger.Debug("failed to deliver error frame",
			"client_id", c.ID,
			"code", code,
		)
	}
}

// marks the client closed and releases its send channel
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.send)
}

// reports whether the client has been closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// pumps frames from the websocket connection to the hub.
// runs in a per-connection goroutine; the application ensures at most
// one reader per connection by running all reads here.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.ErrorErr(err, "websocket read error",
					"client_id", c.ID,
					"chat_id", c.ChatID,
				)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("invalid frame received",
				"client_id", c.ID,
				"chat_id", c.ChatID,
			)
			c.SendError("bad_request", "invalid message format", "")
			continue
		}

		// stamp trusted fields; clients cannot speak for other chats
		msg.ChatID = c.ChatID
		msg.ClientID = c.ID
		msg.SenderID = c.SenderID
		msg.Timestamp = time.Now()

		c.hub.Broadcast <- &msg
	}
}

// pumps frames from the send channel to the websocket connection.
// a goroutine running WritePump is started for each connection; all
// writes happen here so there is at most one writer per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Debug("websocket write error",
					"client_id", c.ID,
					"chat_id", c.ChatID,
				)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
