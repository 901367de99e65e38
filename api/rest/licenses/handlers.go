package licenses

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/internal/errors"
	"codeberg.org/parley/server/license"
)

const defaultTTL = 365 * 24 * time.Hour

// creates a handler that issues a new license key
func GenerateLicenseHandler(manager *license.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GenerateLicenseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		ttl := defaultTTL
		if req.TTLDays > 0 {
			ttl = time.Duration(req.TTLDays) * 24 * time.Hour
		}

		lic, err := manager.Generate(ttl)
		if err != nil {
			errors.InternalError(c, "failed to generate license key", err)
			return
		}

		c.JSON(http.StatusCreated, LicenseResponse{License: *lic})
	}
}

// creates a handler that binds a license key to an agent
func ActivateLicenseHandler(manager *license.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ActivateLicenseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if err := manager.Activate(req.Key, req.AgentID); err != nil {
			switch {
			case stderrors.Is(err, license.ErrKeyNotFound):
				errors.NotFound(c, "license key")
			case stderrors.Is(err, license.ErrKeyExpired):
				errors.InvalidLicense(c, "license key has expired")
			case stderrors.Is(err, license.ErrKeyInUse):
				errors.InvalidLicense(c, "license key is bound to another agent")
			default:
				errors.InternalError(c, "failed to activate license key", err)
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "license activated"})
	}
}

// creates a handler that revokes a license key
func DeactivateLicenseHandler(manager *license.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		manager.Deactivate(c.Param("key"))
		c.JSON(http.StatusOK, gin.H{"message": "license deactivated"})
	}
}

// creates a handler that reports a key's validity and expiry
func GetValidityHandler(manager *license.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")

		resp := ValidityResponse{
			Key:   key,
			Valid: manager.IsValid(key),
		}

		if expiry, ok := manager.Expiry(key); ok {
			resp.ExpiresAt = &expiry
		}

		c.JSON(http.StatusOK, resp)
	}
}

// creates a handler that lists all known licenses
func ListLicensesHandler(manager *license.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		all := manager.List()

		c.JSON(http.StatusOK, LicenseListResponse{
			Licenses: all,
			Count:    len(all),
		})
	}
}
