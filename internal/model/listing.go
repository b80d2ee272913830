package model

import "time"

// ListingStatus is the lifecycle state of a listing.
type ListingStatus string

const (
	ListingActive   ListingStatus = "active"
	ListingReserved ListingStatus = "reserved"
	ListingSold     ListingStatus = "sold"
	ListingExpired  ListingStatus = "expired"
	ListingDeleted  ListingStatus = "deleted"
)

// Listing is a classified ad. PriceCents is an integer count of minor
// currency units. ReservedFor/ReservationExpiresAt describe the time-boxed
// hold placed after an accepted offer; expiry is judged by wall-clock
// comparison at read time.
type Listing struct {
	ID                   string        `json:"id"`
	PublicID             string        `json:"public_id"`
	SellerID             string        `json:"seller_id"`
	CategorySlug         string        `json:"category_slug"`
	Title                string        `json:"title"`
	Description          string        `json:"description,omitempty"`
	PriceCents           int64         `json:"price_cents"`
	Location             string        `json:"location,omitempty"`
	Condition            string        `json:"condition,omitempty"`
	Status               ListingStatus `json:"status"`
	ReservedFor          string        `json:"reserved_for,omitempty"`
	ReservationExpiresAt *time.Time    `json:"reservation_expires_at,omitempty"`
	Attributes           map[string]string `json:"attributes,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// ReservationLapsedAt reports whether the listing's hold has passed as of now.
func (l *Listing) ReservationLapsedAt(now time.Time) bool {
	return l.Status == ListingReserved && l.ReservationExpiresAt != nil && l.ReservationExpiresAt.Before(now)
}

// ListingSummary is the compact listing shape embedded in conversations.
type ListingSummary struct {
	ID         string        `json:"id"`
	PublicID   string        `json:"public_id"`
	SellerID   string        `json:"seller_id"`
	Title      string        `json:"title"`
	PriceCents int64         `json:"price_cents"`
	Status     ListingStatus `json:"status"`
}

// Summary returns the embeddable summary of the listing.
func (l *Listing) Summary() *ListingSummary {
	return &ListingSummary{
		ID:         l.ID,
		PublicID:   l.PublicID,
		SellerID:   l.SellerID,
		Title:      l.Title,
		PriceCents: l.PriceCents,
		Status:     l.Status,
	}
}
