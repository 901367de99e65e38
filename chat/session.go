package chat

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// system message texts appended on lifecycle transitions
const (
	msgConnecting    = "Connecting you to an agent..."
	msgAgentJoined   = "An agent has joined the chat."
	msgChatClosed    = "This chat has been closed."
	msgClosedByAgent = "This chat has been closed by the agent."
)

// builds a new waiting session with its initial system message.
// agentID may be empty; it only records a routing preference until accept.
func newSession(visitorName, agentID string, info VisitorInfo) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	code, err := generateAccessCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()

	s := &Session{
		id:               id,
		visitorID:        info.VisitorID,
		visitorName:      visitorName,
		accessCode:       code,
		preferredAgentID: agentID,
		status:           StatusWaiting,
		createdAt:        now,
		lastActivity:     now,
		presence: Presence{
			Online: true,
			Device: info.Device,
			Origin: info.Origin,
		},
	}

	s.appendLocked(Message{
		SenderID:       systemSenderID,
		Role:           RoleSystem,
		Content:        msgConnecting,
		DeliveryStatus: DeliveryDelivered,
	}, now)

	return s, nil
}

func (s *Session) ID() string           { return s.id }
func (s *Session) VisitorID() string    { return s.visitorID }
func (s *Session) AccessCode() string   { return s.accessCode }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// returns the visitor display name
func (s *Session) VisitorName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visitorName
}

// returns the session status
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// returns the assigned agent id, empty while waiting
func (s *Session) AgentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agentID
}

// returns the last-activity timestamp
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// returns the number of messages on the timeline
func (s *Session) TimelineLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// returns an ordered copy of the full timeline
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)

	return out
}

// returns a read-only copy of the session
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]Message, len(s.messages))
	copy(messages, s.messages)

	return SessionView{
		ID:               s.id,
		VisitorID:        s.visitorID,
		VisitorName:      s.visitorName,
		AgentID:          s.agentID,
		PreferredAgentID: s.preferredAgentID,
		AccessCode:       s.accessCode,
		Status:           s.status,
		CreatedAt:        s.createdAt,
		LastActivity:     s.lastActivity,
		Presence:         s.presence,
		Messages:         messages,
	}
}

// appends a visitor-authored message; refused while closed
func (s *Session) appendVisitorMessage(content string, attachments []Attachment) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusClosed {
		return Message{}, ErrChatClosed
	}

	return s.appendLocked(Message{
		SenderID:       s.visitorID,
		Role:           RoleVisitor,
		Content:        content,
		DeliveryStatus: DeliverySent,
		Attachments:    attachments,
	}, time.Now()), nil
}

// appends an agent-authored message; refused while closed
func (s *Session) appendAgentMessage(agentID, content string, attachments []Attachment) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusClosed {
		return Message{}, ErrChatClosed
	}

	return s.appendLocked(Message{
		SenderID:       agentID,
		Role:           RoleAgent,
		Content:        content,
		DeliveryStatus: DeliverySent,
		Attachments:    attachments,
	}, time.Now()), nil
}

// transitions waiting -> active: assigns the agent, appends the
// "agent joined" system message, then the agent welcome message
// timestamped strictly after it
func (s *Session) accept(agentID, welcome string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusClosed:
		return ErrChatClosed
	case StatusActive:
		return ErrAlreadyAccepted
	}

	s.agentID = agentID

	joined := s.appendLocked(Message{
		SenderID:       systemSenderID,
		Role:           RoleSystem,
		Content:        msgAgentJoined,
		DeliveryStatus: DeliveryDelivered,
	}, time.Now())

	s.appendLocked(Message{
		SenderID:       agentID,
		Role:           RoleAgent,
		Content:        welcome,
		DeliveryStatus: DeliverySent,
	}, joined.Timestamp.Add(time.Millisecond))

	s.status = StatusActive

	return nil
}

// transitions to closed, recording the reason as a system message.
// Closing an already-closed session is a no-op.
func (s *Session) close(byBlock bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusClosed {
		return
	}

	content := msgChatClosed
	if byBlock {
		content = msgClosedByAgent
	}

	s.appendLocked(Message{
		SenderID:       systemSenderID,
		Role:           RoleSystem,
		Content:        content,
		DeliveryStatus: DeliveryDelivered,
	}, time.Now())

	s.status = StatusClosed
}

// reopens a closed session to waiting when the visitor returns via
// access code; on a live session it only refreshes presence
func (s *Session) rejoin(visitorName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if visitorName != "" {
		s.visitorName = visitorName
	}

	s.presence.Online = true
	s.presence.LastSeen = nil

	if s.status != StatusClosed {
		s.lastActivity = time.Now()
		return
	}

	s.status = StatusWaiting
	s.appendLocked(Message{
		SenderID:       systemSenderID,
		Role:           RoleSystem,
		Content:        fmt.Sprintf("%s has rejoined the chat.", s.visitorName),
		DeliveryStatus: DeliveryDelivered,
	}, time.Now())
}

// updates the visitor's presence. Going offline records last-seen;
// going online clears it.
func (s *Session) setPresence(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.presence.Online = online

	if online {
		s.presence.LastSeen = nil
	} else {
		now := time.Now()
		s.presence.LastSeen = &now
	}
}

// updates the advisory delivery status of one message. The message body,
// sender, and timestamp stay immutable.
func (s *Session) setDeliveryStatus(messageID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == messageID {
			s.messages[i].DeliveryStatus = status
			return nil
		}
	}

	return ErrMessageNotFound
}

// appends a fully-formed message at the end of the timeline, clamping its
// timestamp so the sequence never decreases, and bumps last-activity.
// Caller must hold s.mu.
func (s *Session) appendLocked(msg Message, at time.Time) Message {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	msg.Timestamp = at

	if n := len(s.messages); n > 0 {
		if last := s.messages[n-1].Timestamp; msg.Timestamp.Before(last) {
			msg.Timestamp = last
		}
	}

	s.messages = append(s.messages, msg)
	s.lastActivity = msg.Timestamp

	return msg
}

// generates a cryptographically secure random session ID
func generateSessionID() (string, error) {
	bytes := make([]byte, 16)

	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}

// generates the visitor-shareable access code, distinct from the session id
func generateAccessCode() (string, error) {
	bytes := make([]byte, 4)

	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate access code: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}
