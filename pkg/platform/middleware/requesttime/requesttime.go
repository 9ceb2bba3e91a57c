// Package requesttime pins a single "now" to each HTTP request. Everything
// evaluated during one request sees the same instant: donation-gap day counts,
// lockout windows, and expiry checks cannot straddle a clock tick mid-request.
package requesttime

import (
	"context"
	"net/http"
	"time"
)

type contextKeyRequestTime struct{}

// Middleware stamps the request context with the wall-clock time at arrival.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), contextKeyRequestTime{}, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Now returns the request-scoped time, or time.Now() when the context never
// passed through Middleware (workers, CLI commands, bare tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(contextKeyRequestTime{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a fixed time into a context. Tests use it to freeze the
// clock; batch workers use it to give a whole sweep one consistent instant.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyRequestTime{}, t)
}
