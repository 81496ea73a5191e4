// Package model holds the records kept in durable client storage.
package model

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Identity is created once at sign-in and never modified afterwards.
type Identity struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	// Token is the backend-issued bearer token; empty when registration
	// did not reach the backend.
	Token string `json:"token,omitempty"`
}

type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// Timestamp is display-formatted, e.g. "09:41".
	Timestamp string `json:"timestamp"`
}

type WaitlistEntry struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
