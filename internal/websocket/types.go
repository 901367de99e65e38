package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"codeberg.org/parley/server/chat"
)

// message type constants for websocket communication
const (
	// is sent to the connecting client with the full chat snapshot
	TypeChatState = "chat_state"

	// carries one timeline message in either direction
	TypeChatMessage = "chat_message"

	// is sent while a participant is composing
	TypeTyping = "typing"

	// is sent by clients to acknowledge messages as read
	TypeRead = "read"

	// is sent when a participant connects to the chat
	TypeParticipantJoined = "participant_joined"

	// is sent when a participant disconnects
	TypeParticipantLeft = "participant_left"

	// is sent when the chat transitions to closed
	TypeChatClosed = "chat_closed"

	// is sent when an error occurs
	TypeError = "error"

	// is sent by clients to keep the connection alive
	TypePing = "ping"

	// is sent by server in response to ping
	TypePong = "pong"

	// is sent by server before shutdown
	TypeServerShutdown = "server_shutdown"
)

// client connection constants
const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maximum message size allowed from peer
	maxMessageSize = 64 * 1024 // 64 KB

	// maximum chat message length in characters
	maxChatMessageSize = 5000

	// chat message rate limit: sustained one per 3s, bursts of 5.
	// Human typing speed; anything faster is a runaway client.
	chatMessageRate  = rate.Limit(1.0 / 3.0)
	chatMessageBurst = 5
)

// hub connection limit constants
const maxConnectionsPerIP = 10

// errors
var (
	ErrChatNotFound      = errors.New("chat not found")
	ErrInvalidMessage    = errors.New("invalid message format")
	ErrConnectionClosed  = errors.New("connection closed")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrMessageTooLarge   = errors.New("message too large")
)

// represents a websocket frame with typed payload
type Message struct {
	Type      string          `json:"type"`
	ChatID    string          `json:"chat_id"`
	ClientID  string          `json:"-"` // internal only, not sent to clients
	SenderID  string          `json:"sender_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Sequence  uint64          `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// builds a frame with a marshaled payload
func NewMessage(messageType, chatID, senderID string, payload any) (*Message, error) {
	var raw json.RawMessage

	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}

		raw = encoded
	}

	return &Message{
		Type:      messageType,
		ChatID:    chatID,
		SenderID:  senderID,
		Timestamp: time.Now(),
		Payload:   raw,
	}, nil
}

// decodes the frame payload into dst
func (m *Message) UnmarshalPayload(dst any) error {
	if len(m.Payload) == 0 {
		return ErrInvalidMessage
	}

	return json.Unmarshal(m.Payload, dst)
}

// chat snapshot sent to a connecting client
type ChatStatePayload struct {
	Chat     chat.SessionView `json:"chat"`
	YourRole string           `json:"your_role"`
}

// inbound chat message from a client
type SendMessagePayload struct {
	Content     string            `json:"content"`
	Attachments []chat.Attachment `json:"attachments,omitempty"`
}

// outbound timeline message broadcast to the chat
type ChatMessagePayload struct {
	Message chat.Message `json:"message"`
}

// composing indicator
type TypingPayload struct {
	Role        string `json:"role"`
	DisplayName string `json:"display_name,omitempty"`
}

// read acknowledgment for one or more timeline messages
type ReadPayload struct {
	MessageIDs []string `json:"message_ids"`
}

// contains information about a participant who connected
type ParticipantJoinedPayload struct {
	Role        string `json:"role"`
	DisplayName string `json:"display_name,omitempty"`
}

// contains information about a participant who disconnected
type ParticipantLeftPayload struct {
	Role        string `json:"role"`
	DisplayName string `json:"display_name,omitempty"`
}

// contains the chat termination reason
type ChatClosedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// contains information about server shutdown
type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

// represents a websocket client connection bound to one chat
type Client struct {
	// unique identifier for this connection
	ID string

	// chat this client is attached to
	ChatID string

	// visitor id or agent id, depending on role
	SenderID string

	// display name shown to the other participant
	DisplayName string

	// "visitor" or "agent"
	Role string

	// IP address of the client (for connection tracking)
	IPAddress string

	// chat snapshot to send on connect
	InitialChat chat.SessionView

	// websocket connection
	conn *websocket.Conn

	// hub reference for message routing
	hub *Hub

	// buffered channel of outbound frames
	send chan []byte

	// mutex for thread-safe operations
	mu sync.RWMutex

	// flag indicating if client is closed
	closed bool

	// chat message rate limiter (token bucket)
	msgLimiter *rate.Limiter
}

// maintains the set of connected clients grouped by chat
type Hub struct {
	// registered clients by chat ID and client ID
	chats map[string]map[string]*Client

	// register requests from clients
	Register chan *Client

	// unregister requests from clients
	Unregister chan *Client

	// inbound frames routed to handlers
	Broadcast chan *Message

	// mutex for thread-safe access to chats
	mu sync.RWMutex

	// message handlers for different frame types
	handlers map[string]MessageHandler

	// flag indicating if hub is running
	running bool

	// channel to signal shutdown
	shutdown chan struct{}

	// connection tracking: IP address -> count of connections
	ipConnections map[string]int

	// sequence numbers per chat for frame ordering
	chatSequences map[string]uint64

	// callback for client registration (e.g., mark visitor online)
	onClientRegistered func(client *Client)

	// callback for client disconnect (e.g., mark visitor offline)
	onClientDisconnect func(client *Client)
}

// processes a specific frame type
type MessageHandler func(hub *Hub, client *Client, msg *Message) error
