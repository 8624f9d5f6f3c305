package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/domain"
	"github.com/pixeldesk/backend/internal/middleware"
	"github.com/pixeldesk/backend/internal/ratelimit"
	"github.com/pixeldesk/backend/pkg/response"
)

// ReviewHandler handles review submission and moderation endpoints
type ReviewHandler struct {
	reviews *domain.ReviewService
	limiter *ratelimit.Limiter
	logger  *zap.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *domain.ReviewService, limiter *ratelimit.Limiter, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		limiter: limiter,
		logger:  logger,
	}
}

// CreateReviewRequest represents the review form body
type CreateReviewRequest struct {
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
	Review    string `json:"review"`
	Company   string `json:"company"`
	AvatarURL string `json:"avatar"`
}

// Create handles a review form submission. The review starts unapproved.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}
	email, _ := middleware.GetEmail(r.Context())

	result, err := h.limiter.Check(r.Context(), userID, ratelimit.OpCreateReview)
	if err != nil {
		h.logger.Warn("rate limit check failed", zap.Error(err))
	} else if result.Limited {
		response.TooManyRequests(w, result.Message)
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	id, err := h.reviews.AddReview(r.Context(), domain.AddReviewInput{
		Name:      req.Name,
		Rating:    req.Rating,
		Body:      req.Review,
		Company:   req.Company,
		AvatarURL: req.AvatarURL,
		UserID:    &userID,
		UserEmail: email,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidReview) {
			response.BadRequest(w, "rating must be 1-5 and review text is required")
			return
		}
		h.logger.Error("create review failed", zap.Error(err))
		response.InternalError(w, "failed to create review")
		return
	}

	response.Created(w, map[string]string{"id": id.String()})
}

// ListPublic returns approved reviews for the public site. A failed read
// renders as an empty list; the public surface never answers 5xx.
func (h *ReviewHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListPublic(r.Context())
	if err != nil {
		h.logger.Error("list public reviews failed", zap.Error(err))
		reviews = []domain.Review{}
	}
	response.OK(w, reviews)
}

// ListAll returns every review for the moderation console
func (h *ReviewHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list reviews failed", zap.Error(err))
		response.InternalError(w, "failed to list reviews")
		return
	}
	response.OK(w, reviews)
}

// ApprovalRequest represents the moderation body
type ApprovalRequest struct {
	Approved bool `json:"approved"`
}

// UpdateApproval approves or rejects a review. Moderator only.
func (h *ReviewHandler) UpdateApproval(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "reviewId"))
	if err != nil {
		response.BadRequest(w, "invalid review id")
		return
	}

	var req ApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.reviews.UpdateApproval(r.Context(), id, req.Approved); err != nil {
		if errors.Is(err, domain.ErrReviewNotFound) {
			response.NotFound(w, "review not found")
			return
		}
		h.logger.Error("update review approval failed", zap.Error(err))
		response.InternalError(w, "failed to update review")
		return
	}

	response.NoContent(w)
}

// FeaturedRequest represents the featured toggle body
type FeaturedRequest struct {
	Featured bool `json:"featured"`
}

// UpdateFeatured toggles the featured flag. Moderator only.
func (h *ReviewHandler) UpdateFeatured(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "reviewId"))
	if err != nil {
		response.BadRequest(w, "invalid review id")
		return
	}

	var req FeaturedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.reviews.UpdateFeatured(r.Context(), id, req.Featured); err != nil {
		if errors.Is(err, domain.ErrReviewNotFound) {
			response.NotFound(w, "review not found")
			return
		}
		h.logger.Error("update review featured failed", zap.Error(err))
		response.InternalError(w, "failed to update review")
		return
	}

	response.NoContent(w)
}

// PositionRequest represents the sort position body
type PositionRequest struct {
	Position int `json:"position"`
}

// UpdatePosition sets a review's explicit sort position. Moderator only.
func (h *ReviewHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "reviewId"))
	if err != nil {
		response.BadRequest(w, "invalid review id")
		return
	}

	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.reviews.UpdatePosition(r.Context(), id, req.Position); err != nil {
		if errors.Is(err, domain.ErrReviewNotFound) {
			response.NotFound(w, "review not found")
			return
		}
		h.logger.Error("update review position failed", zap.Error(err))
		response.InternalError(w, "failed to update review")
		return
	}

	response.NoContent(w)
}

// Delete removes a review entirely. Moderator only.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "reviewId"))
	if err != nil {
		response.BadRequest(w, "invalid review id")
		return
	}

	if err := h.reviews.DeleteReview(r.Context(), id); err != nil {
		h.logger.Error("delete review failed", zap.Error(err))
		response.InternalError(w, "failed to delete review")
		return
	}

	response.NoContent(w)
}

// FixAll repairs legacy review encodings. Admin only.
func (h *ReviewHandler) FixAll(w http.ResponseWriter, r *http.Request) {
	fixed, err := h.reviews.FixAllReviewIssues(r.Context())
	if err != nil {
		h.logger.Error("fix reviews failed", zap.Error(err), zap.Int("fixed_before_error", fixed))
		response.InternalError(w, "failed to repair reviews")
		return
	}

	response.OK(w, map[string]int{"fixed": fixed})
}
