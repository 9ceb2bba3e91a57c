package models

import (
	"fmt"
	"strings"

	"hemolink/internal/sentinel"
)

// Role records what an account signed up to do. It gates nothing by itself;
// handlers that care read it from the token claims.
type Role string

const (
	RoleDonor  Role = "donor"
	RoleSeeker Role = "seeker"
)

var validRoles = map[Role]bool{
	RoleDonor:  true,
	RoleSeeker: true,
}

// ParseRole parses an account role. Empty input defaults to donor.
func ParseRole(s string) (Role, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return RoleDonor, nil
	}
	r := Role(trimmed)
	if !validRoles[r] {
		return "", fmt.Errorf("invalid role %q: %w", s, sentinel.ErrInvalidInput)
	}
	return r, nil
}

func (r Role) String() string { return string(r) }
