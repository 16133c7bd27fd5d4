package model

import "time"

// User represents a platform account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Roles.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Session is the minimal auth record kept in durable client storage.
// The token is opaque to this layer; the backend issues and verifies it.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}

// IsAdmin reports whether the session carries administrator capability.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
