package model

import "time"

// Review is buyer feedback left against a listing.
type Review struct {
	ID              string    `json:"id"`
	ListingPublicID string    `json:"listing_public_id"`
	ReviewerID      string    `json:"reviewer_id"`
	ReviewerName    string    `json:"reviewer_name"`
	Rating          int       `json:"rating"` // 1..5
	Comment         string    `json:"comment,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
