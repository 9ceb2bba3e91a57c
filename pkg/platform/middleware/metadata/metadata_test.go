package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerResolvesClient(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		remoteAddr     string
		trustedProxies []string
		wantIP         string
		wantUA         string
	}{
		{
			name: "XFF ignored without trusted proxies",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1",
				"User-Agent":      "Mozilla/5.0",
			},
			remoteAddr: "192.168.1.1:12345",
			wantIP:     "192.168.1.1",
			wantUA:     "Mozilla/5.0",
		},
		{
			name: "XFF honored behind trusted proxy",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1",
				"User-Agent":      "curl/7.64.1",
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			wantIP:         "203.0.113.1",
			wantUA:         "curl/7.64.1",
		},
		{
			name: "first XFF hop wins",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1, 10.0.0.9, 10.0.0.1",
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			wantIP:         "203.0.113.1",
		},
		{
			name: "garbage XFF falls back to peer",
			headers: map[string]string{
				"X-Forwarded-For": "not-an-ip",
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			wantIP:         "10.0.0.1",
		},
		{
			name: "oversized XFF falls back to peer",
			headers: map[string]string{
				"X-Forwarded-For": strings.Repeat("127.0.0.1, ", 100),
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			wantIP:         "10.0.0.1",
		},
		{
			name: "X-Real-IP honored behind trusted proxy",
			headers: map[string]string{
				"X-Real-IP": "203.0.113.9",
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			wantIP:         "203.0.113.9",
		},
		{
			name:       "bare peer with no headers",
			headers:    map[string]string{"User-Agent": "test-agent"},
			remoteAddr: "192.168.1.100:54321",
			wantIP:     "192.168.1.100",
			wantUA:     "test-agent",
		},
		{
			name:       "bracketed IPv6 peer",
			remoteAddr: "[2001:db8::1]:443",
			wantIP:     "2001:db8::1",
		},
		{
			name:       "missing user agent stays empty",
			remoteAddr: "10.0.0.1:8080",
			wantIP:     "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedCtx context.Context
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedCtx = r.Context()
				w.WriteHeader(http.StatusOK)
			})

			var prefixes []netip.Prefix
			for _, cidr := range tt.trustedProxies {
				prefix, err := netip.ParsePrefix(cidr)
				assert.NoError(t, err)
				prefixes = append(prefixes, prefix)
			}
			handler := NewMiddleware(&Config{TrustedProxies: prefixes}).Handler(inner)

			req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
			req.RemoteAddr = tt.remoteAddr
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.wantIP, ClientIP(capturedCtx))
			assert.Equal(t, tt.wantUA, UserAgent(capturedCtx))
		})
	}
}

func TestAccessorsWithoutMiddleware(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", ClientIP(ctx))
	assert.Equal(t, "", UserAgent(ctx))
}

func TestWithClientMetadata(t *testing.T) {
	ctx := WithClientMetadata(context.Background(), "203.0.113.7", "test-agent/1.0")
	assert.Equal(t, "203.0.113.7", ClientIP(ctx))
	assert.Equal(t, "test-agent/1.0", UserAgent(ctx))
}

func TestParseRemoteAddr(t *testing.T) {
	assert.Equal(t, "127.0.0.1", parseRemoteAddr("127.0.0.1:8080"))
	assert.Equal(t, "::1", parseRemoteAddr("[::1]:8080"))
	assert.Equal(t, "", parseRemoteAddr(""))
	assert.Equal(t, "10.0.0.1", parseRemoteAddr("10.0.0.1"))
}
