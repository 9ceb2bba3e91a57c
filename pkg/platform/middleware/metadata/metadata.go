// Package metadata resolves the client IP and User-Agent for each request and
// carries them in the context. Handlers and services read them through the
// accessors instead of touching http.Request, so the login lockout and the
// request log agree on what "the client" means.
//
// X-Forwarded-For is honored only when the direct peer is a configured
// trusted proxy; otherwise a client could spoof its way out of a lockout by
// rotating the header.
package metadata

import (
	"context"
	"net/http"
	"net/netip"
	"strings"
)

// MaxForwardedHeaderLength caps X-Forwarded-For and X-Real-IP values so an
// oversized header cannot pollute logs or lockout keys.
const MaxForwardedHeaderLength = 500

type clientIPKey struct{}
type userAgentKey struct{}

// Config holds configuration for the metadata middleware.
type Config struct {
	// TrustedProxies lists IP prefixes (CIDR notation) allowed to set
	// X-Forwarded-For. Empty means forwarding headers are never trusted.
	TrustedProxies []netip.Prefix
}

// DefaultConfig trusts no proxies.
func DefaultConfig() *Config {
	return &Config{}
}

// Middleware extracts client metadata with configurable trusted proxies.
type Middleware struct {
	config *Config
}

// NewMiddleware creates a metadata middleware. A nil config uses defaults.
func NewMiddleware(cfg *Config) *Middleware {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Middleware{config: cfg}
}

// Handler resolves the client IP and User-Agent and stores both in the
// request context.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClientMetadata(r.Context(), m.resolveClientIP(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithClientMetadata returns a context carrying the client IP and User-Agent.
// Requests are normally stamped by Handler; this is for tests and in-process
// callers.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// ClientIP returns the resolved client IP, or "" when the request never
// passed through the middleware.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent returns the recorded User-Agent, or "" when the request never
// passed through the middleware.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// resolveClientIP picks the client address, consulting forwarding headers
// only for requests that arrive through a trusted proxy.
func (m *Middleware) resolveClientIP(r *http.Request) string {
	remoteIP := parseRemoteAddr(r.RemoteAddr)
	if remoteIP == "" {
		return "unknown"
	}

	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		if xri := r.Header.Get("X-Real-IP"); xri != "" && m.isTrustedProxy(remoteIP) {
			if len(xri) <= MaxForwardedHeaderLength {
				return strings.TrimSpace(xri)
			}
		}
		return remoteIP
	}

	if !m.isTrustedProxy(remoteIP) {
		return remoteIP
	}
	if len(xff) > MaxForwardedHeaderLength {
		return remoteIP
	}

	// First entry in the chain is the originating client.
	var clientIP string
	if before, _, ok := strings.Cut(xff, ","); ok {
		clientIP = strings.TrimSpace(before)
	} else {
		clientIP = strings.TrimSpace(xff)
	}

	if _, err := netip.ParseAddr(clientIP); err != nil {
		return remoteIP
	}
	return clientIP
}

func (m *Middleware) isTrustedProxy(ip string) bool {
	if len(m.config.TrustedProxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, prefix := range m.config.TrustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// parseRemoteAddr strips the port from an http.Request RemoteAddr.
func parseRemoteAddr(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}

	// IPv6 with brackets: [::1]:port
	if strings.HasPrefix(remoteAddr, "[") {
		if idx := strings.LastIndex(remoteAddr, "]:"); idx != -1 {
			return remoteAddr[1:idx]
		}
		return strings.Trim(strings.Split(remoteAddr, "]:")[0], "[]")
	}

	// IPv4: 127.0.0.1:port
	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		return remoteAddr[:idx]
	}
	return remoteAddr
}
