package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsDefaultWelcomeMessage(t *testing.T) {
	s := NewSettings()
	assert.Equal(t, defaultWelcomeMessage, s.WelcomeMessage())
}

func TestSettingsUpdateWelcomeMessage(t *testing.T) {
	s := NewSettings()

	s.UpdateWelcomeMessage("Hi, you've reached support")
	assert.Equal(t, "Hi, you've reached support", s.WelcomeMessage())

	// empty restores the default
	s.UpdateWelcomeMessage("")
	assert.Equal(t, defaultWelcomeMessage, s.WelcomeMessage())
}

func TestSettingsUpdateProfile(t *testing.T) {
	s := NewSettings()

	s.UpdateProfile("Sam", "https://example.com/avatar.png")

	view := s.Snapshot()
	assert.Equal(t, "Sam", view.AgentName)
	assert.Equal(t, "https://example.com/avatar.png", view.Avatar)

	// empty avatar keeps the previous one
	s.UpdateProfile("Sam R.", "")
	view = s.Snapshot()
	assert.Equal(t, "Sam R.", view.AgentName)
	assert.Equal(t, "https://example.com/avatar.png", view.Avatar)
}

func TestSettingsQuickReplies(t *testing.T) {
	s := NewSettings()

	greeting := s.AddQuickReply("Greeting", "Hello, how can I help?")
	hours := s.AddQuickReply("Hours", "We are open 9-5 weekdays.")

	require.NotEmpty(t, greeting.ID)
	require.NotEmpty(t, hours.ID)
	assert.NotEqual(t, greeting.ID, hours.ID)

	view := s.Snapshot()
	require.Len(t, view.QuickReplies, 2)

	assert.True(t, s.RemoveQuickReply(greeting.ID))
	assert.False(t, s.RemoveQuickReply(greeting.ID))

	view = s.Snapshot()
	require.Len(t, view.QuickReplies, 1)
	assert.Equal(t, "Hours", view.QuickReplies[0].Title)
}

func TestSettingsSnapshotIsACopy(t *testing.T) {
	s := NewSettings()
	s.AddQuickReply("Greeting", "Hello")

	view := s.Snapshot()
	view.QuickReplies[0].Title = "mutated"

	assert.Equal(t, "Greeting", s.Snapshot().QuickReplies[0].Title)
}
