package licenses

import (
	"time"

	"codeberg.org/parley/server/license"
)

type GenerateLicenseRequest struct {
	TTLDays int `json:"ttl_days" binding:"min=0,max=3650"` // 0 falls back to the default
}

type ActivateLicenseRequest struct {
	Key     string `json:"key" binding:"required,max=64"`
	AgentID string `json:"agent_id" binding:"required,max=100"`
}

type LicenseResponse struct {
	License license.License `json:"license"`
}

type LicenseListResponse struct {
	Licenses []license.License `json:"licenses"`
	Count    int               `json:"count"`
}

type ValidityResponse struct {
	Key       string     `json:"key"`
	Valid     bool       `json:"valid"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
