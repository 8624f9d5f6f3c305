package domain

import (
	"testing"
	"time"
)

func TestPartitionBookings(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		date, clock  string
		wantUpcoming bool
	}{
		{"future day", "2024-06-20", "10:00", true},
		{"past day", "2024-06-10", "10:00", false},
		{"same day later", "2024-06-15", "15:00", true},
		{"same day earlier", "2024-06-15", "09:00", false},
		{"exactly now", "2024-06-15", "12:00", true},
		{"malformed date", "15/06/2024", "10:00", true},
		{"malformed time", "2024-06-20", "10am", true},
		{"empty fields", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := []Booking{{Date: tt.date, Time: tt.clock}}
			upcoming, past := PartitionBookings(bookings, now)

			if tt.wantUpcoming {
				if len(upcoming) != 1 || len(past) != 0 {
					t.Fatalf("expected upcoming, got upcoming=%d past=%d", len(upcoming), len(past))
				}
			} else {
				if len(past) != 1 || len(upcoming) != 0 {
					t.Fatalf("expected past, got upcoming=%d past=%d", len(upcoming), len(past))
				}
			}
		})
	}
}

func TestBookingStatusValid(t *testing.T) {
	for _, s := range []BookingStatus{BookingPending, BookingApproved, BookingRejected} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if BookingStatus("deleted").Valid() {
		t.Error("unknown status should be invalid")
	}
}
