// Package jwttoken issues and validates the signed access tokens used by the
// API. Tokens are HS256, carry the user ID and role, and expire after the
// configured TTL. There are no refresh tokens; clients re-authenticate.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "hemolink/pkg/domain"
	dErrors "hemolink/pkg/domain-errors"
)

const issuer = "hemolink"

// AccessTokenClaims represents the JWT claims for our access tokens.
type AccessTokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation.
type JWTService struct {
	signingKey []byte
	tokenTTL   time.Duration

	now func() time.Time
}

func NewJWTService(signingKey string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
		now:        time.Now,
	}
}

// GenerateAccessToken signs a token for the given user. The JTI is a fresh
// UUID so individual tokens stay distinguishable in logs.
func (s *JWTService) GenerateAccessToken(userID id.UserID, role string) (string, error) {
	if userID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user ID cannot be empty")
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		UserID: userID.String(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*AccessTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*AccessTokenClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	if claims.Issuer != issuer {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token issuer")
	}

	return claims, nil
}
