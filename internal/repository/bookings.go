package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pixeldesk/backend/internal/domain"
)

// CreateBooking inserts a new booking.
func (r *PostgresRepository) CreateBooking(ctx context.Context, booking domain.Booking) error {
	query := `
		INSERT INTO bookings (id, name, email, phone, service_type, date, time, description, package, status, user_id, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	return r.execWithRetry(ctx, query,
		booking.ID, booking.Name, booking.Email, booking.Phone, booking.ServiceType,
		booking.Date, booking.Time, booking.Description, booking.Package,
		string(booking.Status), booking.UserID, booking.SubmittedAt,
	)
}

// GetBooking returns one booking, or nil when absent.
func (r *PostgresRepository) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `
		SELECT id, name, email, phone, service_type, date, time, description, package, status, user_id, submitted_at
		FROM bookings WHERE id = $1
	`
	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return booking, err
}

// ListBookings returns bookings newest first, optionally scoped to one
// user's own records.
func (r *PostgresRepository) ListBookings(ctx context.Context, userID *uuid.UUID) ([]domain.Booking, error) {
	query := `
		SELECT id, name, email, phone, service_type, date, time, description, package, status, user_id, submitted_at
		FROM bookings
	`
	var rows pgx.Rows
	var err error
	if userID != nil {
		rows, err = r.db.Query(ctx, query+` WHERE user_id = $1 ORDER BY submitted_at DESC`, *userID)
	} else {
		rows, err = r.db.Query(ctx, query+` ORDER BY submitted_at DESC`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}

// UpsertBooking overwrites the full booking row, creating it if absent.
func (r *PostgresRepository) UpsertBooking(ctx context.Context, booking domain.Booking) error {
	query := `
		INSERT INTO bookings (id, name, email, phone, service_type, date, time, description, package, status, user_id, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			service_type = EXCLUDED.service_type,
			date = EXCLUDED.date,
			time = EXCLUDED.time,
			description = EXCLUDED.description,
			package = EXCLUDED.package,
			status = EXCLUDED.status,
			user_id = EXCLUDED.user_id
	`
	return r.execWithRetry(ctx, query,
		booking.ID, booking.Name, booking.Email, booking.Phone, booking.ServiceType,
		booking.Date, booking.Time, booking.Description, booking.Package,
		string(booking.Status), booking.UserID, booking.SubmittedAt,
	)
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var status string
	var phone, description, pkg *string

	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Email,
		&phone,
		&b.ServiceType,
		&b.Date,
		&b.Time,
		&description,
		&pkg,
		&status,
		&b.UserID,
		&b.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Status = domain.BookingStatus(status)
	if phone != nil {
		b.Phone = *phone
	}
	if description != nil {
		b.Description = *description
	}
	if pkg != nil {
		b.Package = *pkg
	}
	return &b, nil
}
