package visitorinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	info, err := Resolve(
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"203.0.113.7",
	)
	require.NoError(t, err)

	assert.NotEmpty(t, info.VisitorID)
	assert.Equal(t, "Chrome on Linux", info.Device)
	assert.Equal(t, "203.0.113.7", info.Origin)
}

func TestResolveGeneratesUniqueIDs(t *testing.T) {
	first, err := Resolve("", "")
	require.NoError(t, err)

	second, err := Resolve("", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.VisitorID, second.VisitorID)
}

func TestDeviceDescriptor(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{
			name:      "chrome on windows",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want:      "Chrome on Windows",
		},
		{
			name:      "firefox on macos",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:120.0) Gecko/20100101 Firefox/120.0",
			want:      "Firefox on macOS",
		},
		{
			name:      "safari on ios",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			want:      "Safari on iOS",
		},
		{
			name:      "edge on windows",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
			want:      "Edge on Windows",
		},
		{
			name:      "chrome on android",
			userAgent: "Mozilla/5.0 (Linux; Android 14) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			want:      "Chrome on Android",
		},
		{
			name:      "unknown agent",
			userAgent: "curl/8.4.0",
			want:      "Unknown on Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeviceDescriptor(tt.userAgent))
		})
	}
}
