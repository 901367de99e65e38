package license

import (
	"errors"
	"time"
)

// one issued license key. UsedBy is empty until an agent activates the key;
// activation is single-use per agent.
type License struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"active"`
	UsedBy    string    `json:"used_by,omitempty"`
}

var (
	ErrKeyNotFound = errors.New("license key not found")
	ErrKeyExpired  = errors.New("license key expired")
	ErrKeyInUse    = errors.New("license key already in use by another agent")
)
