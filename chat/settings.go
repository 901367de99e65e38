package chat

import (
	"sync"

	"github.com/google/uuid"
)

const defaultWelcomeMessage = "Welcome! How can I help you today?"

// a canned response the agent can insert with one click
type QuickReply struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Settings holds the agent-facing configuration consulted by the engine:
// the welcome text sent on accept, plus profile and quick replies.
type Settings struct {
	mu             sync.RWMutex
	agentName      string
	avatar         string
	welcomeMessage string
	quickReplies   []QuickReply
}

// read-only copy of the settings
type SettingsView struct {
	AgentName      string       `json:"agent_name"`
	Avatar         string       `json:"avatar,omitempty"`
	WelcomeMessage string       `json:"welcome_message"`
	QuickReplies   []QuickReply `json:"quick_replies"`
}

// creates settings with the default welcome message
func NewSettings() *Settings {
	return &Settings{
		welcomeMessage: defaultWelcomeMessage,
	}
}

// returns the welcome text appended as the agent's first message on accept
func (s *Settings) WelcomeMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.welcomeMessage
}

// replaces the welcome text; empty restores the default
func (s *Settings) UpdateWelcomeMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message == "" {
		message = defaultWelcomeMessage
	}

	s.welcomeMessage = message
}

// updates the agent display profile
func (s *Settings) UpdateProfile(name, avatar string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.agentName = name

	if avatar != "" {
		s.avatar = avatar
	}
}

// adds a quick reply and returns it with its assigned id
func (s *Settings) AddQuickReply(title, content string) QuickReply {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply := QuickReply{
		ID:      uuid.NewString(),
		Title:   title,
		Content: content,
	}

	s.quickReplies = append(s.quickReplies, reply)

	return reply
}

// removes a quick reply by id; reports whether it existed
func (s *Settings) RemoveQuickReply(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, reply := range s.quickReplies {
		if reply.ID == id {
			s.quickReplies = append(s.quickReplies[:i], s.quickReplies[i+1:]...)
			return true
		}
	}

	return false
}

// returns a read-only copy of the settings
func (s *Settings) Snapshot() SettingsView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	replies := make([]QuickReply, len(s.quickReplies))
	copy(replies, s.quickReplies)

	return SettingsView{
		AgentName:      s.agentName,
		Avatar:         s.avatar,
		WelcomeMessage: s.welcomeMessage,
		QuickReplies:   replies,
	}
}
