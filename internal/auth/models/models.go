// Package models holds the pure account entities for authentication. Wire
// DTOs live alongside in requests.go and responses.go.
package models

import (
	"time"

	id "hemolink/pkg/domain"
	dErrors "hemolink/pkg/domain-errors"
)

// User is an account holder. The password never leaves the hash.
type User struct {
	ID           id.UserID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ClientInfo describes where a login attempt came from. Both fields may be
// empty when the transport could not resolve them.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// NewUser constructs a User and enforces basic invariants.
func NewUser(userID id.UserID, name, email, passwordHash string, role Role, now time.Time) (*User, error) {
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user email cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user password hash cannot be empty")
	}
	return &User{
		ID:           userID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
