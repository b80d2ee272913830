package model

import "time"

// OfferStatus is the lifecycle state of an offer.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferCountered OfferStatus = "countered"
	OfferExpired   OfferStatus = "expired"
	OfferWithdrawn OfferStatus = "withdrawn"
)

// IsTerminal reports whether no further transition is possible from s.
func (s OfferStatus) IsTerminal() bool {
	return s != OfferPending
}

// IsValid reports whether s is a known offer status.
func (s OfferStatus) IsValid() bool {
	switch s {
	case OfferPending, OfferAccepted, OfferRejected, OfferCountered, OfferExpired, OfferWithdrawn:
		return true
	}
	return false
}

// Offer is a proposed price for a listing, exchanged inside a conversation.
// AmountCents is an integer count of minor currency units. A countered offer
// is never mutated back to pending; the counter spawns a new offer that
// references it via ParentOfferID.
type Offer struct {
	ID             string      `json:"id"`
	ListingID      string      `json:"listing_id"`
	ConversationID string      `json:"conversation_id"`
	SenderID       string      `json:"sender_id"`
	RecipientID    string      `json:"recipient_id"`
	AmountCents    int64       `json:"amount_cents"`
	Status         OfferStatus `json:"status"`
	Message        string      `json:"message,omitempty"`
	ParentOfferID  string      `json:"parent_offer_id,omitempty"`
	ExpiresAt      *time.Time  `json:"expires_at,omitempty"`
	RespondedAt    *time.Time  `json:"responded_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// IsExpiredAt reports whether a pending offer has lapsed as of now.
// Expiry is a wall-clock comparison; stored status may lag behind until the
// sweeper catches up.
func (o *Offer) IsExpiredAt(now time.Time) bool {
	return o.Status == OfferPending && o.ExpiresAt != nil && o.ExpiresAt.Before(now)
}

// OfferSummary is the compact shape embedded in offer-typed messages.
type OfferSummary struct {
	ID          string      `json:"id"`
	AmountCents int64       `json:"amount_cents"`
	Status      OfferStatus `json:"status"`
}

// Summary returns the embeddable summary of the offer.
func (o *Offer) Summary() *OfferSummary {
	return &OfferSummary{ID: o.ID, AmountCents: o.AmountCents, Status: o.Status}
}
