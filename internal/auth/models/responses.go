package models

import "time"

// UserResponse is the wire form of an account. The password hash never
// leaves the server.
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// AuthResponse is returned by register and login: a bearer token plus the
// account it belongs to.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// NewUserResponse converts a user into its wire form.
func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
