package chat

import (
	"sync"
	"time"
)

// lifecycle status of a chat session
type Status string

const (
	// visitor connected, no agent assigned yet
	StatusWaiting Status = "waiting"

	// an agent has accepted the chat
	StatusActive Status = "active"

	// terminal - no further visitor or agent messages accepted
	StatusClosed Status = "closed"
)

// sender roles for messages
const (
	RoleVisitor = "visitor"
	RoleAgent   = "agent"
	RoleSystem  = "system"
)

// advisory delivery states; the transport collaborator updates them,
// the engine never enforces them
const (
	DeliverySent      = "sent"
	DeliveryDelivered = "delivered"
	DeliveryRead      = "read"
)

// sender id used for synthetic system messages
const systemSenderID = "system"

// an opaque reference to a blob owned by the attachment subsystem;
// the engine stores and forwards it, never inspects the payload
type Attachment struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
}

// one entry in a session's timeline; immutable after append except
// DeliveryStatus
type Message struct {
	ID             string       `json:"id"`
	SenderID       string       `json:"sender_id"`
	Role           string       `json:"role"`
	Content        string       `json:"content"`
	Timestamp      time.Time    `json:"timestamp"`
	DeliveryStatus string       `json:"delivery_status"`
	Attachments    []Attachment `json:"attachments,omitempty"`
}

// visitor identity produced by the info resolver at session creation
type VisitorInfo struct {
	VisitorID string
	Device    string
	Origin    string
}

// visitor presence on a session. LastSeen is non-nil only while Online
// is false.
type Presence struct {
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
	Device   string     `json:"device,omitempty"`
	Origin   string     `json:"origin,omitempty"`
}

// one visitor-to-agent conversation with its own status and timeline
type Session struct {
	// immutable after creation
	id         string
	visitorID  string
	accessCode string
	createdAt  time.Time

	// routing preference recorded at creation; the session has no
	// assigned agent until accept sets agentID
	preferredAgentID string

	// mu serializes every transition and append on this session
	mu           sync.Mutex
	visitorName  string
	agentID      string
	status       Status
	lastActivity time.Time
	presence     Presence
	messages     []Message
}

// read-only copy of a session handed to callers; safe to marshal
type SessionView struct {
	ID               string    `json:"id"`
	VisitorID        string    `json:"visitor_id"`
	VisitorName      string    `json:"visitor_name"`
	AgentID          string    `json:"agent_id,omitempty"`
	PreferredAgentID string    `json:"preferred_agent_id,omitempty"`
	AccessCode       string    `json:"access_code"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	LastActivity     time.Time `json:"last_activity"`
	Presence         Presence  `json:"presence"`
	Messages         []Message `json:"messages"`
}

// external boolean permission gating an agent's ability to accept chats
type Entitlements interface {
	Entitled(agentID string) bool
}
