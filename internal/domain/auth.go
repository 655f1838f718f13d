package domain

import (
	"strings"
	"time"
)

// ============================================================
// Auth: request and response types
// ============================================================

// User is the account returned by POST /api/login.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"nome_completo,omitempty"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest is the body for POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate checks that both credentials were provided.
func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r)
}

// LoginResponse is the body for 200 from POST /api/login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SessionInfo is what the BFA hands back to the dashboard after login.
type SessionInfo struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}
