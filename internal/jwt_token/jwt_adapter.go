package jwttoken

import (
	"hemolink/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *AccessTokenClaims) *auth.JWTClaims {
	return &auth.JWTClaims{
		UserID: claims.UserID,
		Role:   claims.Role,
		JTI:    claims.ID,
	}
}

// JWTServiceAdapter bridges JWTService to the auth middleware's validator
// contract so the middleware stays decoupled from claim internals.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*auth.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
