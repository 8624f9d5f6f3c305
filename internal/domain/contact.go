package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContactStatus is the triage state of a contact form submission.
type ContactStatus string

const (
	ContactNew     ContactStatus = "new"
	ContactRead    ContactStatus = "read"
	ContactReplied ContactStatus = "replied"
)

// Valid reports whether the status is one of the known states.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactNew, ContactRead, ContactReplied:
		return true
	}
	return false
}

// ContactSubmission is a message sent through the contact form.
type ContactSubmission struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Subject     string        `json:"subject"`
	Message     string        `json:"message"`
	Status      ContactStatus `json:"status"`
	SubmittedAt time.Time     `json:"submitted_at"`
}
