package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/domain"
	"github.com/pixeldesk/backend/internal/middleware"
	"github.com/pixeldesk/backend/internal/ratelimit"
	"github.com/pixeldesk/backend/pkg/response"
)

// BookingHandler handles appointment booking endpoints
type BookingHandler struct {
	bookings *domain.BookingService
	limiter  *ratelimit.Limiter
	logger   *zap.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *domain.BookingService, limiter *ratelimit.Limiter, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		limiter:  limiter,
		logger:   logger,
	}
}

// CreateBookingRequest represents the booking form body
type CreateBookingRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ServiceType string `json:"service_type"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	Package     string `json:"package"`
}

// Create handles a booking form submission
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	result, err := h.limiter.Check(r.Context(), userID, ratelimit.OpCreateBooking)
	if err != nil {
		h.logger.Warn("rate limit check failed", zap.Error(err))
	} else if result.Limited {
		response.TooManyRequests(w, result.Message)
		return
	}

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	id, err := h.bookings.AddBooking(r.Context(), domain.AddBookingInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		ServiceType: req.ServiceType,
		Date:        req.Date,
		Time:        req.Time,
		Description: req.Description,
		Package:     req.Package,
		UserID:      &userID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidBooking) {
			response.BadRequest(w, "name, email, service type, date and time are required")
			return
		}
		h.logger.Error("create booking failed", zap.Error(err))
		response.InternalError(w, "failed to create booking")
		return
	}

	response.Created(w, map[string]string{"id": id.String()})
}

// BookingListResponse partitions bookings for the moderation console
type BookingListResponse struct {
	Upcoming []domain.Booking `json:"upcoming"`
	Past     []domain.Booking `json:"past"`
}

// List returns every booking split into upcoming and past. Moderator only.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list bookings failed", zap.Error(err))
		response.InternalError(w, "failed to list bookings")
		return
	}

	upcoming, past := domain.PartitionBookings(bookings, time.Now())
	response.OK(w, BookingListResponse{Upcoming: upcoming, Past: past})
}

// ListMine returns the caller's own bookings. A failed read renders as
// an empty list, not a 5xx.
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	bookings, err := h.bookings.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("list own bookings failed", zap.Error(err))
		bookings = []domain.Booking{}
	}

	response.OK(w, bookings)
}

// UpdateStatusRequest represents the moderation body
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus approves or rejects a booking. Moderator only.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "bookingId"))
	if err != nil {
		response.BadRequest(w, "invalid booking id")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	err = h.bookings.UpdateStatus(r.Context(), id, domain.BookingStatus(req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			response.NotFound(w, "booking not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidBooking) {
			response.BadRequest(w, "status must be pending, approved or rejected")
			return
		}
		h.logger.Error("update booking status failed", zap.Error(err))
		response.InternalError(w, "failed to update booking")
		return
	}

	response.NoContent(w)
}
