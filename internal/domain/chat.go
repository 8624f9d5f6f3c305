package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a message on the public desktop chat window.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	Author    AuthorRef `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRecord is an audit entry written on every sign-in attempt.
type LoginRecord struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Email     string     `json:"email"`
	Method    string     `json:"method"` // "google", "password", "console"
	IPAddress string     `json:"ip_address,omitempty"`
	UserAgent string     `json:"user_agent,omitempty"`
	Success   bool       `json:"success"`
	CreatedAt time.Time  `json:"created_at"`
}
