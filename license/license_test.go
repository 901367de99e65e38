package license

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLicense(t *testing.T) {
	m := NewManager()

	lic, err := m.Generate(24 * time.Hour)
	require.NoError(t, err)

	assert.NotEmpty(t, lic.Key)
	assert.True(t, lic.Active)
	assert.Empty(t, lic.UsedBy)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), lic.ExpiresAt, time.Second)

	assert.True(t, m.IsValid(lic.Key))
}

func TestGenerateUniqueKeys(t *testing.T) {
	m := NewManager()
	seen := make(map[string]bool)

	for range 50 {
		lic, err := m.Generate(time.Hour)
		require.NoError(t, err)
		assert.False(t, seen[lic.Key])
		seen[lic.Key] = true
	}
}

func TestActivate(t *testing.T) {
	m := NewManager()

	lic, err := m.Generate(time.Hour)
	require.NoError(t, err)

	require.NoError(t, m.Activate(lic.Key, "agent-1"))
	assert.True(t, m.Entitled("agent-1"))

	// re-activating one's own key succeeds
	require.NoError(t, m.Activate(lic.Key, "agent-1"))

	// a key bound to one agent refuses another
	assert.ErrorIs(t, m.Activate(lic.Key, "agent-2"), ErrKeyInUse)
	assert.False(t, m.Entitled("agent-2"))

	assert.ErrorIs(t, m.Activate("no-such-key", "agent-1"), ErrKeyNotFound)
}

func TestActivateExpiredKey(t *testing.T) {
	m := NewManager()

	lic, err := m.Generate(-time.Minute)
	require.NoError(t, err)

	assert.ErrorIs(t, m.Activate(lic.Key, "agent-1"), ErrKeyExpired)
	assert.False(t, m.IsValid(lic.Key))
}

func TestEntitlementExpires(t *testing.T) {
	m := NewManager()

	lic, err := m.Generate(10 * time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, m.Activate(lic.Key, "agent-1"))

	require.True(t, m.Entitled("agent-1"))

	time.Sleep(20 * time.Millisecond)

	assert.False(t, m.Entitled("agent-1"))
}

func TestDeactivate(t *testing.T) {
	m := NewManager()

	lic, err := m.Generate(time.Hour)
	require.NoError(t, err)
	require.NoError(t, m.Activate(lic.Key, "agent-1"))

	m.Deactivate(lic.Key)

	assert.False(t, m.IsValid(lic.Key))
	assert.False(t, m.Entitled("agent-1"))

	_, ok := m.Expiry(lic.Key)
	assert.False(t, ok)
}

func TestCleanupExpired(t *testing.T) {
	m := NewManager()

	expired, err := m.Generate(-time.Minute)
	require.NoError(t, err)

	activatedExpired, err := m.Generate(50 * time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, m.Activate(activatedExpired.Key, "agent-1"))

	valid, err := m.Generate(time.Hour)
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	// only expired keys that were never activated are dropped
	assert.Equal(t, 1, m.CleanupExpired())

	_, ok := m.Expiry(expired.Key)
	assert.False(t, ok)

	_, ok = m.Expiry(activatedExpired.Key)
	assert.True(t, ok)

	assert.True(t, m.IsValid(valid.Key))
	assert.Len(t, m.List(), 2)
}
