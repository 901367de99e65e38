package chat

import (
	"sync"
	"time"

	"codeberg.org/parley/server/internal/logger"
)

// configures a registry. Zero values fall back to defaults: every agent
// entitled, fresh settings.
type Config struct {
	Entitlements Entitlements
	Settings     *Settings
}

// permits every agent; used when no license manager is wired in
type allowAll struct{}

func (allowAll) Entitled(string) bool { return true }

// Registry is the authoritative collection of all chat sessions. It owns
// the sessions, the access-code index, the block list, and the agent's
// focused-chat pointer. Lock order is registry before session, never the
// reverse.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	byCode    map[string]*Session
	blocked   map[string]struct{}
	focusedID string

	entitlements Entitlements
	settings     *Settings
}

// creates a new empty registry
func NewRegistry(cfg Config) *Registry {
	if cfg.Entitlements == nil {
		cfg.Entitlements = allowAll{}
	}

	if cfg.Settings == nil {
		cfg.Settings = NewSettings()
	}

	return &Registry{
		sessions:     make(map[string]*Session),
		byCode:       make(map[string]*Session),
		blocked:      make(map[string]struct{}),
		entitlements: cfg.Entitlements,
		settings:     cfg.Settings,
	}
}

// returns the agent settings shared by this registry
func (r *Registry) Settings() *Settings {
	return r.settings
}

// creates a new waiting session for a visitor and indexes it.
// Refused when the visitor is on the block list.
func (r *Registry) CreateSession(visitorName, agentID string, info VisitorInfo) (*Session, error) {
	session, err := newSession(visitorName, agentID, info)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()

	if _, blocked := r.blocked[info.VisitorID]; blocked {
		r.mu.Unlock()
		return nil, ErrVisitorBlocked
	}

	r.sessions[session.ID()] = session
	r.byCode[session.AccessCode()] = session
	r.mu.Unlock()

	logger.Info("chat session created",
		"session_id", session.ID(),
		"visitor_id", session.VisitorID(),
		"visitor_name", visitorName,
	)

	return session, nil
}

// resolves a session by id
func (r *Registry) GetByID(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[id]
	if !exists {
		return nil, ErrNotFound
	}

	return session, nil
}

// resolves a session by its visitor-shareable access code
func (r *Registry) GetByAccessCode(code string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.byCode[code]
	if !exists {
		return nil, ErrNotFound
	}

	return session, nil
}

// resolves a session by access code and brings the visitor back into it.
// A closed session reopens to waiting; a live one only refreshes presence.
// "not found" and "found but blocked" are distinct outcomes.
func (r *Registry) JoinByAccessCode(code, visitorName string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.byCode[code]
	if !exists {
		return nil, ErrNotFound
	}

	if _, blocked := r.blocked[session.VisitorID()]; blocked {
		return nil, ErrVisitorBlocked
	}

	session.rejoin(visitorName)

	return session, nil
}

// appends a visitor message to a session's timeline
func (r *Registry) AppendVisitorMessage(sessionID, content string, attachments []Attachment) (Message, error) {
	session, err := r.GetByID(sessionID)
	if err != nil {
		return Message{}, err
	}

	return session.appendVisitorMessage(content, attachments)
}

// appends an agent message to a session's timeline
func (r *Registry) AppendAgentMessage(sessionID, agentID, content string, attachments []Attachment) (Message, error) {
	session, err := r.GetByID(sessionID)
	if err != nil {
		return Message{}, err
	}

	return session.appendAgentMessage(agentID, content, attachments)
}

// assigns an agent to a waiting session. Refused when the agent is not
// entitled or the visitor is blocked at the moment the transition is
// applied: holding the registry read lock across the transition makes the
// blocklist check atomic with respect to a concurrent blocking cascade,
// which takes the write lock.
func (r *Registry) AcceptSession(sessionID, agentID string) error {
	if !r.entitlements.Entitled(agentID) {
		return ErrNotEntitled
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[sessionID]
	if !exists {
		return ErrNotFound
	}

	if _, blocked := r.blocked[session.VisitorID()]; blocked {
		return ErrVisitorBlocked
	}

	if err := session.accept(agentID, r.settings.WelcomeMessage()); err != nil {
		return err
	}

	logger.Info("chat session accepted",
		"session_id", sessionID,
		"agent_id", agentID,
	)

	return nil
}

// closes a session and clears the agent focus if it pointed here.
// Closing an already-closed session is a no-op success.
func (r *Registry) CloseSession(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[sessionID]
	if !exists {
		return ErrNotFound
	}

	session.close(false)

	if r.focusedID == sessionID {
		r.focusedID = ""
	}

	logger.Info("chat session closed", "session_id", sessionID)

	return nil
}

// adds a visitor to the block list and, atomically with the addition,
// closes every non-closed session owned by that visitor. Returns how many
// sessions the cascade closed.
func (r *Registry) BlockVisitor(visitorID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.blocked[visitorID] = struct{}{}

	closed := 0

	for _, session := range r.sessions {
		if session.VisitorID() != visitorID {
			continue
		}

		if session.Status() == StatusClosed {
			continue
		}

		session.close(true)
		closed++

		if r.focusedID == session.ID() {
			r.focusedID = ""
		}
	}

	logger.Info("visitor blocked",
		"visitor_id", visitorID,
		"sessions_closed", closed,
	)

	return closed
}

// removes a visitor from the block list. Sessions closed by the cascade
// stay closed; a new session must be created to resume contact.
func (r *Registry) UnblockVisitor(visitorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.blocked, visitorID)

	logger.Info("visitor unblocked", "visitor_id", visitorID)
}

// reports whether a visitor is on the block list
func (r *Registry) IsBlocked(visitorID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, blocked := r.blocked[visitorID]

	return blocked
}

// updates presence on every session owned by the visitor
func (r *Registry) SetPresence(visitorID string, online bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, session := range r.sessions {
		if session.VisitorID() == visitorID {
			session.setPresence(online)
		}
	}
}

// marks a message delivered; driven by the transport collaborator
func (r *Registry) MarkDelivered(sessionID, messageID string) error {
	return r.setDeliveryStatus(sessionID, messageID, DeliveryDelivered)
}

// marks a message read; driven by the transport collaborator
func (r *Registry) MarkRead(sessionID, messageID string) error {
	return r.setDeliveryStatus(sessionID, messageID, DeliveryRead)
}

func (r *Registry) setDeliveryStatus(sessionID, messageID, status string) error {
	session, err := r.GetByID(sessionID)
	if err != nil {
		return err
	}

	return session.setDeliveryStatus(messageID, status)
}

// sets the agent's focused chat; empty clears it
func (r *Registry) SetActiveSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.focusedID = sessionID
}

// returns the agent's focused chat id, empty when none
func (r *Registry) ActiveSession() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.focusedID
}

// returns every session in the registry
func (r *Registry) ListAll() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))

	for _, session := range r.sessions {
		out = append(out, session)
	}

	return out
}

// returns all sessions in the given status
func (r *Registry) ListByStatus(status Status) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Session

	for _, session := range r.sessions {
		if session.Status() == status {
			out = append(out, session)
		}
	}

	return out
}

// removes every closed session whose last activity is older than the
// retention window. The only operation that deletes sessions outright.
// Returns how many sessions were evicted.
func (r *Registry) EvictStale(retention time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-retention)
	evicted := 0

	for id, session := range r.sessions {
		if session.Status() != StatusClosed {
			continue
		}

		if session.LastActivity().After(cutoff) {
			continue
		}

		delete(r.sessions, id)
		delete(r.byCode, session.AccessCode())
		evicted++
	}

	return evicted
}

// returns the number of sessions currently held
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
