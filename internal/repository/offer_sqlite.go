package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"classifieds-api/internal/model"
)

// SQLiteOfferRepository implements OfferRepository using SQLite.
type SQLiteOfferRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteOfferRepository creates an offer repository over a shared market
// database handle.
func NewSQLiteOfferRepository(db *sql.DB) *SQLiteOfferRepository {
	return &SQLiteOfferRepository{db: db}
}

// CreateOffer stores a new offer.
func (r *SQLiteOfferRepository) CreateOffer(ctx context.Context, o *model.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO offers (id, listing_id, conversation_id, sender_id, recipient_id,
			amount_cents, status, message, parent_offer_id, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var expires interface{}
	if o.ExpiresAt != nil {
		expires = *o.ExpiresAt
	}

	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.ListingID, o.ConversationID, o.SenderID, o.RecipientID,
		o.AmountCents, string(o.Status), o.Message, o.ParentOfferID, expires,
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert offer: %w", err)
	}
	return nil
}

// GetOffer retrieves an offer by id.
func (r *SQLiteOfferRepository) GetOffer(ctx context.Context, id string) (*model.Offer, error) {
	query := offerSelect + ` WHERE id = ?`
	return scanOffer(r.db.QueryRowContext(ctx, query, id))
}

// UpdateStatus transitions an offer.
func (r *SQLiteOfferRepository) UpdateStatus(ctx context.Context, id string, status model.OfferStatus, respondedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var responded interface{}
	if !respondedAt.IsZero() {
		responded = respondedAt
	}

	query := `UPDATE offers SET status = ?, responded_at = COALESCE(?, responded_at), updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, string(status), responded, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update offer status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// LatestForConversation returns the newest offer in a conversation
// regardless of status, or nil when the thread has none.
func (r *SQLiteOfferRepository) LatestForConversation(ctx context.Context, conversationID string) (*model.Offer, error) {
	query := offerSelect + ` WHERE conversation_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`
	offer, err := scanOffer(r.db.QueryRowContext(ctx, query, conversationID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return offer, err
}

// ExpirePendingBefore marks overdue pending offers expired.
func (r *SQLiteOfferRepository) ExpirePendingBefore(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		UPDATE offers SET status = ?, updated_at = ?
		WHERE status = ? AND expires_at IS NOT NULL AND expires_at < ?`

	res, err := r.db.ExecContext(ctx, query,
		string(model.OfferExpired), now, string(model.OfferPending), now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire offers: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

const offerSelect = `
	SELECT id, listing_id, conversation_id, sender_id, recipient_id, amount_cents,
		status, message, parent_offer_id, expires_at, responded_at, created_at, updated_at
	FROM offers`

func scanOffer(row rowScanner) (*model.Offer, error) {
	var (
		o         model.Offer
		status    string
		expires   sql.NullTime
		responded sql.NullTime
	)
	err := row.Scan(&o.ID, &o.ListingID, &o.ConversationID, &o.SenderID, &o.RecipientID,
		&o.AmountCents, &status, &o.Message, &o.ParentOfferID, &expires, &responded,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = model.OfferStatus(status)
	if expires.Valid {
		o.ExpiresAt = &expires.Time
	}
	if responded.Valid {
		o.RespondedAt = &responded.Time
	}
	return &o, nil
}
