package repository

import (
	"context"
	"time"

	"classifieds-api/internal/model"
)

// NumRange bounds a numeric listing attribute in a search.
type NumRange struct {
	Min *float64
	Max *float64
}

// SearchQuery is the flattened filter set a listing search executes.
// Nil/empty members mean "no constraint".
type SearchQuery struct {
	Category        string
	Text            string
	Location        string
	Condition       string
	PriceMinCents   *int64
	PriceMaxCents   *int64
	Attributes      map[string]string
	AttributeRanges map[string]NumRange
	Limit           int
	Offset          int
}

// ListingRepository defines listing data access methods.
type ListingRepository interface {
	// CreateListing stores a new listing.
	CreateListing(ctx context.Context, listing *model.Listing) error

	// GetListing retrieves a listing by internal id.
	GetListing(ctx context.Context, id string) (*model.Listing, error)

	// GetListingByPublicID retrieves a listing by its public id.
	GetListingByPublicID(ctx context.Context, publicID string) (*model.Listing, error)

	// Search returns listings matching the query plus the total match count.
	Search(ctx context.Context, q SearchQuery) ([]model.Listing, int64, error)

	// Reserve places a time-boxed hold on a listing for a buyer.
	Reserve(ctx context.Context, listingID, buyerID string, until time.Time) error

	// ReleaseExpiredReservations returns lapsed reserved listings to active.
	ReleaseExpiredReservations(ctx context.Context, now time.Time) (int64, error)

	// Close closes the repository connection.
	Close() error
}

// OfferRepository defines offer data access methods.
type OfferRepository interface {
	// CreateOffer stores a new offer.
	CreateOffer(ctx context.Context, offer *model.Offer) error

	// GetOffer retrieves an offer by id.
	GetOffer(ctx context.Context, id string) (*model.Offer, error)

	// UpdateStatus transitions an offer. respondedAt may be zero for
	// transitions that are not responses (withdraw, expire).
	UpdateStatus(ctx context.Context, id string, status model.OfferStatus, respondedAt time.Time) error

	// LatestForConversation returns the newest offer in a conversation
	// regardless of status, or nil when the thread has none.
	LatestForConversation(ctx context.Context, conversationID string) (*model.Offer, error)

	// ExpirePendingBefore marks pending offers whose deadline passed as
	// expired and returns how many were swept.
	ExpirePendingBefore(ctx context.Context, now time.Time) (int64, error)
}

// ConversationRepository defines conversation and message data access.
type ConversationRepository interface {
	// CreateConversation stores a conversation with its participants.
	CreateConversation(ctx context.Context, conv *model.Conversation) error

	// GetConversation retrieves a conversation shaped for the viewer
	// (unread count, last message, pending offer).
	GetConversation(ctx context.Context, id, viewerID string) (*model.Conversation, error)

	// FindByListingAndBuyer returns an existing thread between a buyer and
	// a listing, or nil.
	FindByListingAndBuyer(ctx context.Context, listingID, buyerID string) (*model.Conversation, error)

	// ListForUser returns the viewer's conversations, most recent first.
	ListForUser(ctx context.Context, viewerID string) ([]model.Conversation, error)

	// AppendMessage adds a message to a thread and bumps its updated_at.
	AppendMessage(ctx context.Context, msg *model.Message) error

	// ListMessages returns a thread's messages in chronological order.
	ListMessages(ctx context.Context, conversationID string, limit int) ([]model.Message, error)

	// ApplyReadReceipts batch-applies buffered read receipts.
	ApplyReadReceipts(ctx context.Context, receipts []model.ReadReceipt) error
}

// NotificationRepository defines notification data access methods.
type NotificationRepository interface {
	// Insert stores a notification.
	Insert(ctx context.Context, n *model.Notification) error

	// ListForUser returns the user's notifications, newest first.
	ListForUser(ctx context.Context, userID string, limit int) ([]model.Notification, error)

	// UnreadCount returns how many notifications the user has not read.
	UnreadCount(ctx context.Context, userID string) (int, error)

	// MarkRead marks a single notification read.
	MarkRead(ctx context.Context, userID, id string) error

	// MarkAllRead marks every notification of the user read.
	MarkAllRead(ctx context.Context, userID string) error

	// Close closes the repository connection.
	Close() error
}

// ReviewRepository defines review data access methods.
type ReviewRepository interface {
	// CreateReview stores a review.
	CreateReview(ctx context.Context, review *model.Review) error

	// ListForListing returns reviews for a listing public id, newest first.
	ListForListing(ctx context.Context, listingPublicID string) ([]model.Review, error)
}

// LocationRepository defines location lookup methods.
type LocationRepository interface {
	// MajorCities returns up to limit cities ordered by population.
	MajorCities(ctx context.Context, limit int) ([]model.City, error)

	// SuburbsByCity returns up to limit suburbs of a city.
	SuburbsByCity(ctx context.Context, city string, limit int) ([]model.Suburb, error)
}

// AccountRepository defines account data access methods.
type AccountRepository interface {
	// ValidateCredentials checks an email/password pair for session issuance.
	ValidateCredentials(ctx context.Context, email, password string) (*model.AccountValidation, error)

	// GetParticipant resolves a user id to its display shape.
	GetParticipant(ctx context.Context, userID string) (*model.Participant, error)
}
