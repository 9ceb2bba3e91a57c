package models

import (
	"fmt"
	"strings"

	"hemolink/internal/sentinel"
	"hemolink/pkg/platform/validation"
)

const minPasswordLength = 8

// RegisterRequest creates an account. Role defaults to donor when omitted.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`

	role Role
}

// Normalize trims free-text fields and lowercases the email so lookups are
// case-insensitive.
func (r *RegisterRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks the request and caches the parsed role for ParsedRole.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is required: %w", sentinel.ErrInvalidInput)
	}
	if r.Name == "" {
		return fmt.Errorf("name is required: %w", sentinel.ErrInvalidInput)
	}
	if err := validation.CheckStringLength("name", r.Name, validation.MaxNameLength); err != nil {
		return err
	}
	if r.Email == "" {
		return fmt.Errorf("email is required: %w", sentinel.ErrInvalidInput)
	}
	if err := validation.CheckStringLength("email", r.Email, validation.MaxEmailLength); err != nil {
		return err
	}
	if !validEmail(r.Email) {
		return fmt.Errorf("email %q is not a valid address: %w", r.Email, sentinel.ErrInvalidInput)
	}
	if len(r.Password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, sentinel.ErrInvalidInput)
	}
	if err := validation.CheckStringLength("password", r.Password, validation.MaxPasswordLength); err != nil {
		return err
	}
	role, err := ParseRole(r.Role)
	if err != nil {
		return err
	}
	r.role = role
	return nil
}

// ParsedRole returns the canonical role. Call after Validate.
func (r *RegisterRequest) ParsedRole() Role {
	return r.role
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize lowercases the email to match how accounts are stored.
func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks that credentials are present.
func (r *LoginRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is required: %w", sentinel.ErrInvalidInput)
	}
	if r.Email == "" {
		return fmt.Errorf("email is required: %w", sentinel.ErrInvalidInput)
	}
	if r.Password == "" {
		return fmt.Errorf("password is required: %w", sentinel.ErrInvalidInput)
	}
	return nil
}

// validEmail performs lightweight format validation: a single @ with a
// non-empty local part and a dotted domain. Deliverability is not checked.
func validEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	if parts[0] == "" || parts[1] == "" {
		return false
	}
	return strings.Contains(parts[1], ".")
}
