package license

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"codeberg.org/parley/server/internal/logger"
)

// Manager issues and validates agent license keys. It implements the
// entitlement gate the chat registry consults on accept: an agent is
// entitled while it holds at least one activated, unexpired key.
type Manager struct {
	mu       sync.RWMutex
	licenses map[string]*License
}

// creates a new empty license manager
func NewManager() *Manager {
	return &Manager{
		licenses: make(map[string]*License),
	}
}

// issues a new key valid for ttl from now
func (m *Manager) Generate(ttl time.Duration) (*License, error) {
	key, err := generateKey()
	if err != nil {
		return nil, err
	}

	now := time.Now()

	lic := &License{
		Key:       key,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Active:    true,
	}

	m.mu.Lock()
	m.licenses[key] = lic
	m.mu.Unlock()

	logger.Info("license key generated", "expires_at", lic.ExpiresAt)

	return lic, nil
}

// binds a key to an agent. Refuses unknown keys, expired keys, and keys
// already bound to a different agent; re-activating one's own key succeeds.
func (m *Manager) Activate(key, agentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lic, exists := m.licenses[key]
	if !exists {
		return ErrKeyNotFound
	}

	if time.Now().After(lic.ExpiresAt) {
		return ErrKeyExpired
	}

	if lic.UsedBy != "" && lic.UsedBy != agentID {
		return ErrKeyInUse
	}

	lic.UsedBy = agentID

	logger.Info("license key activated", "agent_id", agentID)

	return nil
}

// revokes a key outright
func (m *Manager) Deactivate(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.licenses, key)
}

// reports whether a key is active and unexpired
func (m *Manager) IsValid(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lic, exists := m.licenses[key]
	if !exists {
		return false
	}

	return lic.Active && time.Now().Before(lic.ExpiresAt)
}

// returns a key's expiry; ok is false for unknown keys
func (m *Manager) Expiry(key string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lic, exists := m.licenses[key]
	if !exists {
		return time.Time{}, false
	}

	return lic.ExpiresAt, true
}

// Entitled reports whether the agent holds at least one activated,
// unexpired key. Satisfies the chat registry's entitlement gate.
func (m *Manager) Entitled(agentID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()

	for _, lic := range m.licenses {
		if lic.UsedBy == agentID && lic.Active && now.Before(lic.ExpiresAt) {
			return true
		}
	}

	return false
}

// drops expired keys that were never activated; returns how many were
// removed. Activated keys are kept for audit.
func (m *Manager) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := 0

	for key, lic := range m.licenses {
		if lic.UsedBy == "" && now.After(lic.ExpiresAt) {
			delete(m.licenses, key)
			removed++
		}
	}

	return removed
}

// returns a copy of all known licenses
func (m *Manager) List() []License {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]License, 0, len(m.licenses))

	for _, lic := range m.licenses {
		out = append(out, *lic)
	}

	return out
}

// generates a cryptographically secure random license key
func generateKey() (string, error) {
	bytes := make([]byte, 16)

	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate license key: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}
