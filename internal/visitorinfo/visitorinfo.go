package visitorinfo

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"codeberg.org/parley/server/chat"
)

// Resolve derives the visitor identity recorded on a new chat session:
// a fresh opaque visitor id, a coarse device descriptor from the
// User-Agent header, and the network origin. Pure and stateless - a
// different deployment can substitute transport-provided metadata without
// touching the chat engine.
func Resolve(userAgent, remoteAddr string) (chat.VisitorInfo, error) {
	id, err := generateVisitorID()
	if err != nil {
		return chat.VisitorInfo{}, err
	}

	return chat.VisitorInfo{
		VisitorID: id,
		Device:    DeviceDescriptor(userAgent),
		Origin:    remoteAddr,
	}, nil
}

// returns a human-readable "Browser on OS" label from a User-Agent value
func DeviceDescriptor(userAgent string) string {
	return fmt.Sprintf("%s on %s", browserName(userAgent), osName(userAgent))
}

func browserName(userAgent string) string {
	ua := strings.ToLower(userAgent)

	// order matters: Edge and Opera embed "chrome", Chrome embeds "safari"
	switch {
	case strings.Contains(ua, "edg/"):
		return "Edge"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		return "Opera"
	case strings.Contains(ua, "firefox/"):
		return "Firefox"
	case strings.Contains(ua, "chrome/"):
		return "Chrome"
	case strings.Contains(ua, "safari/"):
		return "Safari"
	default:
		return "Unknown"
	}
}

func osName(userAgent string) string {
	ua := strings.ToLower(userAgent)

	// Android embeds "linux", iOS devices report "like Mac OS X"
	switch {
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		return "iOS"
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "mac os x"), strings.Contains(ua, "macintosh"):
		return "macOS"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "Unknown"
	}
}

// generates a fresh, unique, opaque visitor identifier
func generateVisitorID() (string, error) {
	bytes := make([]byte, 16)

	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate visitor ID: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}
