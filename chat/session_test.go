package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInfo(visitorID string) VisitorInfo {
	return VisitorInfo{
		VisitorID: visitorID,
		Device:    "Chrome on Linux",
		Origin:    "203.0.113.7",
	}
}

func TestNewSessionInitialState(t *testing.T) {
	s, err := newSession("Ada", "", testInfo("visitor-1"))
	require.NoError(t, err)

	assert.Equal(t, StatusWaiting, s.Status())
	assert.Equal(t, "visitor-1", s.VisitorID())
	assert.Equal(t, "Ada", s.VisitorName())
	assert.Empty(t, s.AgentID())
	assert.NotEmpty(t, s.ID())
	assert.NotEmpty(t, s.AccessCode())
	assert.NotEqual(t, s.ID(), s.AccessCode())

	// timeline starts with the connecting system message
	messages := s.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Equal(t, msgConnecting, messages[0].Content)
	assert.Equal(t, DeliveryDelivered, messages[0].DeliveryStatus)

	// visitor starts online with no last-seen
	view := s.Snapshot()
	assert.True(t, view.Presence.Online)
	assert.Nil(t, view.Presence.LastSeen)
	assert.Equal(t, "Chrome on Linux", view.Presence.Device)
}

func TestSessionIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)

	for range 50 {
		s, err := newSession("", "", testInfo("v"))
		require.NoError(t, err)
		assert.False(t, seen[s.ID()])
		seen[s.ID()] = true
	}
}

func TestAppendMessages(t *testing.T) {
	s, err := newSession("Ada", "", testInfo("visitor-1"))
	require.NoError(t, err)

	visitorMsg, err := s.appendVisitorMessage("hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "visitor-1", visitorMsg.SenderID)
	assert.Equal(t, RoleVisitor, visitorMsg.Role)
	assert.Equal(t, DeliverySent, visitorMsg.DeliveryStatus)
	assert.NotEmpty(t, visitorMsg.ID)

	agentMsg, err := s.appendAgentMessage("agent-1", "hi there", nil)
	require.NoError(t, err)
	assert.Equal(t, "agent-1", agentMsg.SenderID)
	assert.Equal(t, RoleAgent, agentMsg.Role)

	assert.Equal(t, 3, s.TimelineLen())
}

func TestAppendRefusedWhenClosed(t *testing.T) {
	s, err := newSession("Ada", "", testInfo("visitor-1"))
	require.NoError(t, err)

	s.close(false)

	_, err = s.appendVisitorMessage("hello?", nil)
	assert.ErrorIs(t, err, ErrChatClosed)

	_, err = s.appendAgentMessage("agent-1", "hello?", nil)
	assert.ErrorIs(t, err, ErrChatClosed)

	// timeline keeps only the connecting and closed system messages
	assert.Equal(t, 2, s.TimelineLen())
}

func TestAcceptAppendsJoinedAndWelcome(t *testing.T) {
	s, err := newSession("Ada", "", testInfo("visitor-1"))
	require.NoError(t, err)

	require.NoError(t, s.accept("agent-1", "Welcome!"))

	assert.Equal(t, StatusActive, s.Status())
	assert.Equal(t, "agent-1", s.AgentID())

	messages := s.Messages()
	require.Len(t, messages, 3)

	joined := messages[1]
	welcome := messages[2]

	assert.Equal(t, RoleSystem, joined.Role)
	assert.Equal(t, msgAgentJoined, joined.Content)

	assert.Equal(t, RoleAgent, welcome.Role)
	assert.Equal(t, "agent-1", welcome.SenderID)
	assert.Equal(t, "Welcome!", welcome.Content)

	// the welcome message lands strictly after the joined message
	assert.True(t, welcome.Timestamp.After(joined.Timestamp))
}

func TestAcceptRefusals(t *testing.T) {
	s, err := newSession("Ada", "", testInfo("visitor-1"))
	require.NoError(t, err)

	require.NoError(t, s.accept("agent-1", "hi"))
	assert.ErrorIs(t, s.accept("agent-2", "hi"), ErrAlreadyAccepted)

	s.close(false)
	assert.ErrorIs(t, s.accept("agent-2", "hi"), ErrChatClosed)

	// the failed accepts changed nothing
	assert.Equal(t, "agent-1", s.AgentID())
}

func TestCloseIsIdempotent(t *testing.T) {
	s, err := newSession("Ada", "", testInfo("visitor-1"))
	require.NoError(t, err)

	s.close(false)
	lenAfterFirst := s.TimelineLen()

	s.close(false)
	s.close(true)

	assert.Equal(t, StatusClosed, s.Status())
	assert.Equal(t, lenAfterFirst, s.TimelineLen())
}

func TestCloseSystemMessages(t *testing.T) {
	agentClose, err := newSession("Ada", "", testInfo("visitor-1"))
	require.NoError(t, err)
	agentClose.close(false)

	messages := agentClose.Messages()
	assert.Equal(t, msgChatClosed, messages[len(messages)-1].Content)

	blockClose, err := newSession("Ada", "", testInfo("visitor-1"))
	require.NoError(t, err)
	blockClose.close(true)

	messages = blockClose.Messages()
	assert.Equal(t, msgClosedByAgent, messages[len(messages)-1].Content)
}

func TestRejoinReopensClosedSession(t *testing.T) {
	s, err := newSession("Ada", "", testInfo("visitor-1"))
	require.NoError(t, err)

	s.close(false)
	require.Equal(t, StatusClosed, s.Status())

	s.rejoin("Ada Lovelace")

	assert.Equal(t, StatusWaiting, s.Status())
	assert.Equal(t, "Ada Lovelace", s.VisitorName())

	messages := s.Messages()
	assert.Equal(t, "Ada Lovelace has rejoined the chat.", messages[len(messages)-1].Content)
}

func TestRejoinLiveSessionOnlyRefreshes(t *testing.T) {
	s, err := newSession("Ada", "", testInfo("visitor-1"))
	require.NoError(t, err)

	s.setPresence(false)
	before := s.TimelineLen()

	s.rejoin("")

	assert.Equal(t, StatusWaiting, s.Status())
	assert.Equal(t, before, s.TimelineLen())
	assert.True(t, s.Snapshot().Presence.Online)
}

func TestPresenceLastSeen(t *testing.T) {
	s, err := newSession("Ada", "", testInfo("visitor-1"))
	require.NoError(t, err)

	s.setPresence(false)
	view := s.Snapshot()
	assert.False(t, view.Presence.Online)
	require.NotNil(t, view.Presence.LastSeen)
	assert.WithinDuration(t, time.Now(), *view.Presence.LastSeen, time.Second)

	s.setPresence(true)
	view = s.Snapshot()
	assert.True(t, view.Presence.Online)
	assert.Nil(t, view.Presence.LastSeen)
}

func TestSetDeliveryStatus(t *testing.T) {
	s, err := newSession("Ada", "", testInfo("visitor-1"))
	require.NoError(t, err)

	msg, err := s.appendVisitorMessage("hello", nil)
	require.NoError(t, err)

	require.NoError(t, s.setDeliveryStatus(msg.ID, DeliveryDelivered))
	require.NoError(t, s.setDeliveryStatus(msg.ID, DeliveryRead))

	messages := s.Messages()
	assert.Equal(t, DeliveryRead, messages[len(messages)-1].DeliveryStatus)

	// body and timestamp stay untouched
	assert.Equal(t, msg.Content, messages[len(messages)-1].Content)
	assert.Equal(t, msg.Timestamp, messages[len(messages)-1].Timestamp)

	assert.ErrorIs(t, s.setDeliveryStatus("no-such-id", DeliveryRead), ErrMessageNotFound)
}

func TestTimelineTimestampsNeverDecrease(t *testing.T) {
	s, err := newSession("Ada", "", testInfo("visitor-1"))
	require.NoError(t, err)

	s.mu.Lock()
	// simulate a clock that jumped backwards between appends
	s.appendLocked(Message{
		SenderID: "visitor-1",
		Role:     RoleVisitor,
		Content:  "past",
	}, time.Now().Add(-time.Hour))
	s.mu.Unlock()

	messages := s.Messages()
	require.Len(t, messages, 2)
	assert.False(t, messages[1].Timestamp.Before(messages[0].Timestamp))
}

func TestLastActivityTracksAppends(t *testing.T) {
	s, err := newSession("Ada", "", testInfo("visitor-1"))
	require.NoError(t, err)

	before := s.LastActivity()
	time.Sleep(5 * time.Millisecond)

	_, err = s.appendVisitorMessage("ping", nil)
	require.NoError(t, err)

	assert.True(t, s.LastActivity().After(before))
}
