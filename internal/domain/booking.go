package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the moderation state of an appointment request.
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingRejected BookingStatus = "rejected"
)

// Valid reports whether the status is one of the known states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingRejected:
		return true
	}
	return false
}

// Booking is an appointment request submitted through the booking form.
// Customers create bookings; only moderators change their status, and
// bookings are never deleted on rejection.
type Booking struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone,omitempty"`
	ServiceType string        `json:"service_type"`
	Date        string        `json:"date"` // 2006-01-02
	Time        string        `json:"time"` // 15:04
	Description string        `json:"description,omitempty"`
	Package     string        `json:"package,omitempty"`
	Status      BookingStatus `json:"status"`
	UserID      *uuid.UUID    `json:"user_id,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at"`
}

// StartsAt parses the booking's date and time fields into a single
// instant. The second return value is false when either field is
// malformed.
func (b Booking) StartsAt(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", b.Date+" "+b.Time, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// PartitionBookings splits bookings into upcoming and past relative to
// now. A booking whose date or time cannot be parsed counts as upcoming,
// so malformed records stay visible to moderators.
func PartitionBookings(bookings []Booking, now time.Time) (upcoming, past []Booking) {
	upcoming = make([]Booking, 0, len(bookings))
	past = make([]Booking, 0)
	for _, b := range bookings {
		starts, ok := b.StartsAt(now.Location())
		if !ok || !starts.Before(now) {
			upcoming = append(upcoming, b)
			continue
		}
		past = append(past, b)
	}
	return upcoming, past
}
