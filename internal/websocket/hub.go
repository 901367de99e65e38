package websocket

import (
	"time"

	"codeberg.org/parley/server/internal/logger"
)

func NewHub() *Hub {
	return &Hub{
		chats:         make(map[string]map[string]*Client),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		Broadcast:     make(chan *Message, 256),
		handlers:      make(map[string]MessageHandler),
		running:       false,
		shutdown:      make(chan struct{}),
		ipConnections: make(map[string]int),
		chatSequences: make(map[string]uint64),
	}
}

// registers a handler for a specific frame type
func (h *Hub) RegisterHandler(messageType string, handler MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[messageType] = handler
}

// sets callback to be called after a client is registered and chat_state is sent
func (h *Hub) OnClientRegistered(callback func(client *Client)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onClientRegistered = callback
}

// sets callback to be called when a client disconnects
func (h *Hub) OnClientDisconnect(callback func(client *Client)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onClientDisconnect = callback
}

// starts the hub's main loop
func (h *Hub) Run() {
	h.running = true
	defer func() {
		h.running = false
	}()

	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.Broadcast:
			h.handleMessage(message)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

// adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()

	if h.chats[client.ChatID] == nil {
		h.chats[client.ChatID] = make(map[string]*Client)
	}

	h.chats[client.ChatID][client.ID] = client
	callback := h.onClientRegistered

	logger.Info("client registered",
		"client_id", client.ID,
		"chat_id", client.ChatID,
		"role", client.Role,
		"display_name", client.DisplayName,
	)

	// send chat_state to the connecting client
	stateMsg, err := NewMessage(TypeChatState, client.ChatID, "", ChatStatePayload{
		Chat:     client.InitialChat,
		YourRole: client.Role,
	})
	if err == nil {
		if sendErr := client.Send(stateMsg); sendErr != nil {
			logger.ErrorErr(sendErr, "failed to send chat state",
				"client_id", client.ID,
				"chat_id", client.ChatID,
			)
		}
	}

	// announce the participant to the other side of the chat
	joinedMsg, err := NewMessage(TypeParticipantJoined, client.ChatID, client.SenderID, ParticipantJoinedPayload{
		Role:        client.Role,
		DisplayName: client.DisplayName,
	})
	if err == nil {
		h.broadcastToChat(client.ChatID, joinedMsg, client.ID)
	}

	h.mu.Unlock()

	// call registered callback outside the lock (touches the registry)
	if callback != nil {
		callback(client)
	}
}

// removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	// capture callback reference under lock
	callback := h.onClientDisconnect

	chatClients, exists := h.chats[client.ChatID]
	if !exists {
		h.mu.Unlock()
		return
	}

	if _, exists := chatClients[client.ID]; !exists {
		h.mu.Unlock()
		return
	}

	delete(chatClients, client.ID)
	client.Close()

	if client.IPAddress != "" {
		h.ipConnections[client.IPAddress]--

		if h.ipConnections[client.IPAddress] <= 0 {
			delete(h.ipConnections, client.IPAddress)
		}
	}

	logger.Info("client unregistered",
		"client_id", client.ID,
		"chat_id", client.ChatID,
	)

	if len(chatClients) == 0 {
		delete(h.chats, client.ChatID)
		delete(h.chatSequences, client.ChatID)
	} else {
		leftMsg, err := NewMessage(TypeParticipantLeft, client.ChatID, client.SenderID, ParticipantLeftPayload{
			Role:        client.Role,
			DisplayName: client.DisplayName,
		})
		if err == nil {
			h.broadcastToChat(client.ChatID, leftMsg, "")
		}
	}

	h.mu.Unlock()

	// call disconnect callback outside lock (touches the registry)
	if callback != nil {
		callback(client)
	}
}

// processes an incoming frame
func (h *Hub) handleMessage(msg *Message) {
	h.mu.RLock()

	chatClients, exists := h.chats[msg.ChatID]
	if !exists {
		h.mu.RUnlock()
		logger.Warn("chat not found for frame",
			"chat_id", msg.ChatID,
			"message_type", msg.Type,
		)
		return
	}

	sender, exists := chatClients[msg.ClientID]
	h.mu.RUnlock()

	if !exists {
		logger.Warn("sender client not found for frame",
			"client_id", msg.ClientID,
			"chat_id", msg.ChatID,
			"message_type", msg.Type,
		)
		return
	}

	h.mu.RLock()
	handler, exists := h.handlers[msg.Type]
	h.mu.RUnlock()

	if exists {
		// run handler asynchronously to avoid blocking the hub
		go func() {
			if err := handler(h, sender, msg); err != nil {
				logger.ErrorErr(err, "handler error",
					"message_type", msg.Type,
					"client_id", sender.ID,
					"chat_id", msg.ChatID,
				)
			}
		}()
	} else {
		logger.Warn("unhandled frame type received",
			"message_type", msg.Type,
			"client_id", sender.ID,
			"chat_id", msg.ChatID,
		)

		sender.SendError("bad_request", "unsupported message type", "message type not recognized")
	}
}

// sends a frame to all clients attached to a chat
func (h *Hub) BroadcastToChat(chatID string, msg *Message, excludeClientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastToChat(chatID, msg, excludeClientID)
}

// the internal broadcast function (must be called with lock held)
func (h *Hub) broadcastToChat(chatID string, msg *Message, excludeClientID string) {
	chatClients, exists := h.chats[chatID]
	if !exists {
		return
	}

	// assign sequence number to frame
	h.chatSequences[chatID]++
	msg.Sequence = h.chatSequences[chatID]

	for clientID, client := range chatClients {
		if clientID == excludeClientID {
			continue
		}

		if err := client.Send(msg); err != nil {
			logger.ErrorErr(err, "failed to send frame to client",
				"client_id", clientID,
				"chat_id", chatID,
			)
		}
	}
}

// returns the number of clients attached to a chat
func (h *Hub) ChatClientCount(chatID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	chatClients, exists := h.chats[chatID]
	if !exists {
		return 0
	}

	return len(chatClients)
}

// reports whether any client with the given role is attached to the chat
func (h *Hub) HasRole(chatID, role string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.chats[chatID] {
		if client.Role == role {
			return true
		}
	}

	return false
}

// returns the number of chats with at least one connection
func (h *Hub) ChatCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.chats)
}

// checks if a new connection should be allowed based on limits
func (h *Hub) CanAcceptConnection(ipAddress string) (bool, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.ipConnections[ipAddress] >= maxConnectionsPerIP {
		return false, "maximum connections per IP address exceeded"
	}

	return true, ""
}

// increments the connection count for an IP address
func (h *Hub) TrackIPConnection(ipAddress string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ipConnections[ipAddress]++
}

// decrements the connection count for an IP address
func (h *Hub) UntrackIPConnection(ipAddress string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ipConnections[ipAddress]--

	if h.ipConnections[ipAddress] <= 0 {
		delete(h.ipConnections, ipAddress)
	}
}

// broadcasts chat_closed to all clients on the chat and closes their
// connections; used by the close, block, and eviction paths
func (h *Hub) EndChat(chatID string, reason string) {
	h.mu.Lock()

	chatClients, exists := h.chats[chatID]
	if !exists {
		h.mu.Unlock()
		return
	}

	logger.Info("ending chat, notifying clients",
		"chat_id", chatID,
		"client_count", len(chatClients),
	)

	closedMsg, err := NewMessage(TypeChatClosed, chatID, "", ChatClosedPayload{
		Reason: reason,
	})
	if err != nil {
		logger.ErrorErr(err, "failed to create chat_closed frame", "chat_id", chatID)
		h.mu.Unlock()
		return
	}

	h.broadcastToChat(chatID, closedMsg, "")
	h.mu.Unlock()

	// give clients time to receive the frame
	time.Sleep(100 * time.Millisecond)

	h.mu.Lock()
	defer h.mu.Unlock()

	chatClients, exists = h.chats[chatID]
	if !exists {
		return
	}

	for clientID, client := range chatClients {
		if client.IPAddress != "" {
			h.ipConnections[client.IPAddress]--
			if h.ipConnections[client.IPAddress] <= 0 {
				delete(h.ipConnections, client.IPAddress)
			}
		}

		client.Close()
		logger.Debug("closed client due to chat end",
			"client_id", clientID,
			"chat_id", chatID,
		)
	}

	delete(h.chats, chatID)
	delete(h.chatSequences, chatID)
}

func (h *Hub) Shutdown() {
	if h.running {
		close(h.shutdown)
	}
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()

	logger.Info("notifying clients of server shutdown")

	for chatID, chatClients := range h.chats {
		shutdownMsg, err := NewMessage(TypeServerShutdown, chatID, "", ServerShutdownPayload{
			Reason: "server is shutting down for maintenance",
		})
		if err != nil {
			logger.ErrorErr(err, "failed to create shutdown frame")
			continue
		}

		for _, client := range chatClients {
			if err := client.Send(shutdownMsg); err != nil {
				logger.ErrorErr(err, "failed to send shutdown notification",
					"client_id", client.ID,
					"chat_id", chatID,
				)
			}
		}
	}

	h.mu.Unlock()

	// give clients time to receive the shutdown frame
	time.Sleep(500 * time.Millisecond)

	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("closing all websocket connections")

	for _, chatClients := range h.chats {
		for _, client := range chatClients {
			client.Close()
		}
	}

	h.chats = make(map[string]map[string]*Client)
	h.ipConnections = make(map[string]int)
	h.chatSequences = make(map[string]uint64)
}
