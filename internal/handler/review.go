package handler

import (
	"encoding/json"
	"net/http"

	"classifieds-api/internal/middleware"
	"classifieds-api/internal/service"
	"classifieds-api/pkg/apierror"
	"classifieds-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ReviewHandler handles review HTTP requests.
type ReviewHandler struct {
	reviewService *service.ReviewService
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// GetReviews handles GET /api/v1/listings/{public_id}/reviews
func (h *ReviewHandler) GetReviews(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "public_id")

	reviews, err := h.reviewService.GetReviewsForListing(r.Context(), publicID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, reviews)
}

// CreateReviewRequest represents the body for leaving a review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview handles POST /api/v1/listings/{public_id}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}
	publicID := chi.URLParam(r, "public_id")

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	review, err := h.reviewService.CreateReview(r.Context(), publicID, session.AccountID, req.Rating, req.Comment)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, review)
}
