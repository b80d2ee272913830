package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"classifieds-api/internal/model"
	"classifieds-api/internal/repository"
	"classifieds-api/pkg/apierror"
	"classifieds-api/pkg/uid"
)

// ReviewService handles listing reviews.
type ReviewService struct {
	reviews  repository.ReviewRepository
	listings repository.ListingRepository
	accounts repository.AccountRepository
	now      func() time.Time
}

// NewReviewService creates a new review service.
func NewReviewService(reviews repository.ReviewRepository, listings repository.ListingRepository, accounts repository.AccountRepository) *ReviewService {
	if reviews == nil {
		return nil
	}
	return &ReviewService{reviews: reviews, listings: listings, accounts: accounts, now: time.Now}
}

// GetReviewsForListing returns a listing's reviews, newest first. A listing
// with no reviews yields an empty list, not an error.
func (s *ReviewService) GetReviewsForListing(ctx context.Context, listingPublicID string) ([]model.Review, error) {
	reviews, err := s.reviews.ListForListing(ctx, listingPublicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// CreateReview stores feedback against a listing. Sellers cannot review
// their own listings.
func (s *ReviewService) CreateReview(ctx context.Context, listingPublicID, reviewerID string, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apierror.ValidationError("rating out of range",
			apierror.FieldError{Field: "rating", Message: "must be between 1 and 5"})
	}

	listing, err := s.listings.GetListingByPublicID(ctx, listingPublicID)
	if err != nil {
		return nil, apierror.NotFound("listing not found")
	}
	if listing.SellerID == reviewerID {
		return nil, apierror.Forbidden("cannot review your own listing")
	}

	name := ""
	if s.accounts != nil {
		if p, err := s.accounts.GetParticipant(ctx, reviewerID); err == nil {
			name = p.Name
		}
	}

	review := &model.Review{
		ID:              uid.New(),
		ListingPublicID: listingPublicID,
		ReviewerID:      reviewerID,
		ReviewerName:    name,
		Rating:          rating,
		Comment:         strings.TrimSpace(comment),
		CreatedAt:       s.now().UTC(),
	}
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}
