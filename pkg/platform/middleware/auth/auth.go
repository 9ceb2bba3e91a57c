package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "hemolink/pkg/domain"
)

// JWTValidator defines the interface for validating JWT tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	UserID string
	Role   string
	JTI    string
}

type userIDKey struct{}
type roleKey struct{}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth returns middleware that validates Bearer tokens and populates
// the context with the caller's typed user ID and role.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"path", r.URL.Path,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"path", r.URL.Path,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			userID, err := id.ParseUserID(claims.UserID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed token claims",
					"error", err,
					"path", r.URL.Path,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, userIDKey{}, userID)
			ctx = context.WithValue(ctx, roleKey{}, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser returns a context carrying an authenticated identity. Requests are
// normally stamped by RequireAuth; this is for tests and in-process callers.
func WithUser(ctx context.Context, userID id.UserID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey{}, userID)
	return context.WithValue(ctx, roleKey{}, role)
}

// GetUserID returns the authenticated user ID from the context, or the zero
// ID when the request did not pass through RequireAuth.
func GetUserID(ctx context.Context) id.UserID {
	if userID, ok := ctx.Value(userIDKey{}).(id.UserID); ok {
		return userID
	}
	return id.UserID{}
}

// GetRole returns the authenticated caller's role, or "" when absent.
func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey{}).(string); ok {
		return role
	}
	return ""
}
