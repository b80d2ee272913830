package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"classifieds-api/internal/model"
)

// SQLiteReviewRepository implements ReviewRepository using SQLite.
type SQLiteReviewRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteReviewRepository creates a review repository over a shared market
// database handle.
func NewSQLiteReviewRepository(db *sql.DB) *SQLiteReviewRepository {
	return &SQLiteReviewRepository{db: db}
}

// CreateReview stores a review.
func (r *SQLiteReviewRepository) CreateReview(ctx context.Context, review *model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO reviews (id, listing_public_id, reviewer_id, reviewer_name, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		review.ID, review.ListingPublicID, review.ReviewerID, review.ReviewerName,
		review.Rating, review.Comment, review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// ListForListing returns reviews for a listing public id, newest first.
func (r *SQLiteReviewRepository) ListForListing(ctx context.Context, listingPublicID string) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, listing_public_id, reviewer_id, reviewer_name, rating, comment, created_at
		FROM reviews WHERE listing_public_id = ? ORDER BY created_at DESC`, listingPublicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rv model.Review
		err := rows.Scan(&rv.ID, &rv.ListingPublicID, &rv.ReviewerID, &rv.ReviewerName,
			&rv.Rating, &rv.Comment, &rv.CreatedAt)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
