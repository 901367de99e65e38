package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id, chatID, senderID, role string, hub *Hub) *Client {
	return NewClient(id, chatID, senderID, "Test "+role, role, "", nil, hub)
}

// drains one frame from the client's send channel
func receiveFrame(t *testing.T, client *Client) Message {
	t.Helper()

	select {
	case data := <-client.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return Message{}
	}
}

func TestHubCreation(t *testing.T) {
	hub := NewHub()
	require.NotNil(t, hub)
	assert.NotNil(t, hub.Register)
	assert.NotNil(t, hub.Unregister)
	assert.NotNil(t, hub.Broadcast)
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	client := newTestClient("client-1", "chat-1", "visitor-1", "visitor", hub)

	hub.Register <- client

	// the connecting client receives the chat snapshot first
	state := receiveFrame(t, client)
	assert.Equal(t, TypeChatState, state.Type)
	assert.Equal(t, "chat-1", state.ChatID)

	var payload ChatStatePayload
	require.NoError(t, state.UnmarshalPayload(&payload))
	assert.Equal(t, "visitor", payload.YourRole)

	assert.Equal(t, 1, hub.ChatClientCount("chat-1"))
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	client := newTestClient("client-1", "chat-1", "visitor-1", "visitor", hub)

	hub.Register <- client
	receiveFrame(t, client)

	hub.Unregister <- client
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 0, hub.ChatClientCount("chat-1"))
	assert.Equal(t, 0, hub.ChatCount())
	assert.True(t, client.IsClosed())
}

func TestHubAnnouncesParticipantJoined(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	visitor := newTestClient("client-1", "chat-1", "visitor-1", "visitor", hub)
	agent := newTestClient("client-2", "chat-1", "agent-1", "agent", hub)

	hub.Register <- visitor
	receiveFrame(t, visitor) // chat_state

	hub.Register <- agent
	receiveFrame(t, agent) // chat_state

	// the visitor is told the agent connected
	joined := receiveFrame(t, visitor)
	assert.Equal(t, TypeParticipantJoined, joined.Type)

	var payload ParticipantJoinedPayload
	require.NoError(t, joined.UnmarshalPayload(&payload))
	assert.Equal(t, "agent", payload.Role)
}

func TestHubBroadcastAssignsSequences(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	client := newTestClient("client-1", "chat-1", "visitor-1", "visitor", hub)

	hub.Register <- client
	receiveFrame(t, client)

	for range 3 {
		msg, err := NewMessage(TypeTyping, "chat-1", "agent-1", TypingPayload{Role: "agent"})
		require.NoError(t, err)
		hub.BroadcastToChat("chat-1", msg, "")
	}

	var sequences []uint64
	for range 3 {
		frame := receiveFrame(t, client)
		sequences = append(sequences, frame.Sequence)
	}

	// sequences are strictly increasing per chat
	for i := 1; i < len(sequences); i++ {
		assert.Greater(t, sequences[i], sequences[i-1])
	}
}

func TestHubBroadcastExcludesSender(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	visitor := newTestClient("client-1", "chat-1", "visitor-1", "visitor", hub)
	agent := newTestClient("client-2", "chat-1", "agent-1", "agent", hub)

	hub.Register <- visitor
	receiveFrame(t, visitor)
	hub.Register <- agent
	receiveFrame(t, agent)
	receiveFrame(t, visitor) // participant_joined for the agent

	msg, err := NewMessage(TypeTyping, "chat-1", "visitor-1", TypingPayload{Role: "visitor"})
	require.NoError(t, err)
	hub.BroadcastToChat("chat-1", msg, "client-1")

	frame := receiveFrame(t, agent)
	assert.Equal(t, TypeTyping, frame.Type)

	select {
	case data := <-visitor.send:
		t.Fatalf("sender should not receive its own frame: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubHasRole(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	visitor := newTestClient("client-1", "chat-1", "visitor-1", "visitor", hub)

	hub.Register <- visitor
	receiveFrame(t, visitor)

	assert.True(t, hub.HasRole("chat-1", "visitor"))
	assert.False(t, hub.HasRole("chat-1", "agent"))
	assert.False(t, hub.HasRole("chat-2", "visitor"))
}

func TestHubEndChat(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	visitor := newTestClient("client-1", "chat-1", "visitor-1", "visitor", hub)
	agent := newTestClient("client-2", "chat-1", "agent-1", "agent", hub)

	hub.Register <- visitor
	receiveFrame(t, visitor)
	hub.Register <- agent
	receiveFrame(t, agent)
	receiveFrame(t, visitor)

	hub.EndChat("chat-1", "closed by agent")

	closed := receiveFrame(t, agent)
	assert.Equal(t, TypeChatClosed, closed.Type)

	var payload ChatClosedPayload
	require.NoError(t, closed.UnmarshalPayload(&payload))
	assert.Equal(t, "closed by agent", payload.Reason)

	assert.Equal(t, 0, hub.ChatClientCount("chat-1"))
	assert.True(t, visitor.IsClosed())
	assert.True(t, agent.IsClosed())
}

func TestHubConnectionLimitPerIP(t *testing.T) {
	hub := NewHub()

	for range maxConnectionsPerIP {
		ok, _ := hub.CanAcceptConnection("198.51.100.1")
		require.True(t, ok)
		hub.TrackIPConnection("198.51.100.1")
	}

	ok, reason := hub.CanAcceptConnection("198.51.100.1")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	// a different IP is unaffected
	ok, _ = hub.CanAcceptConnection("198.51.100.2")
	assert.True(t, ok)

	hub.UntrackIPConnection("198.51.100.1")
	ok, _ = hub.CanAcceptConnection("198.51.100.1")
	assert.True(t, ok)
}
