// Package request provides request-shaping middleware.
package request

import (
	"net/http"
)

// BodyLimit caps request body size via http.MaxBytesReader. Reads past the
// cap fail and the connection is closed, so an oversized donor narrative or
// a deliberately unbounded upload cannot hold memory. Mount it ahead of any
// JSON decoding.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
