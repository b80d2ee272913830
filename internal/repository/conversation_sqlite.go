package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"classifieds-api/internal/model"
)

// SQLiteConversationRepository implements ConversationRepository using SQLite.
type SQLiteConversationRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteConversationRepository creates a conversation repository over a
// shared market database handle.
func NewSQLiteConversationRepository(db *sql.DB) *SQLiteConversationRepository {
	return &SQLiteConversationRepository{db: db}
}

// CreateConversation stores a conversation with its participants.
func (r *SQLiteConversationRepository) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO conversations (id, listing_id, updated_at) VALUES (?, ?, ?)`,
		conv.ID, conv.ListingID, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	for _, p := range conv.Participants {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO conversation_participants (conversation_id, user_id, name) VALUES (?, ?, ?)`,
			conv.ID, p.ID, p.Name)
		if err != nil {
			return fmt.Errorf("failed to insert participant %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetConversation retrieves a conversation shaped for the viewer.
func (r *SQLiteConversationRepository) GetConversation(ctx context.Context, id, viewerID string) (*model.Conversation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, listing_id, updated_at FROM conversations WHERE id = ?`, id)

	var conv model.Conversation
	if err := row.Scan(&conv.ID, &conv.ListingID, &conv.UpdatedAt); err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, &conv, viewerID); err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindByListingAndBuyer returns an existing thread between a buyer and a
// listing, or nil.
func (r *SQLiteConversationRepository) FindByListingAndBuyer(ctx context.Context, listingID, buyerID string) (*model.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT c.id, c.listing_id, c.updated_at
		FROM conversations c
		JOIN conversation_participants p ON p.conversation_id = c.id
		WHERE c.listing_id = ? AND p.user_id = ?
		LIMIT 1`, listingID, buyerID)

	var conv model.Conversation
	err := row.Scan(&conv.ID, &conv.ListingID, &conv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, &conv, buyerID); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListForUser returns the viewer's conversations, most recent first.
func (r *SQLiteConversationRepository) ListForUser(ctx context.Context, viewerID string) ([]model.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.listing_id, c.updated_at
		FROM conversations c
		JOIN conversation_participants p ON p.conversation_id = c.id
		WHERE p.user_id = ?
		ORDER BY c.updated_at DESC`, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var convs []model.Conversation
	for rows.Next() {
		var conv model.Conversation
		if err := rows.Scan(&conv.ID, &conv.ListingID, &conv.UpdatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range convs {
		if err := r.hydrate(ctx, &convs[i], viewerID); err != nil {
			return nil, err
		}
	}
	return convs, nil
}

// AppendMessage adds a message to a thread and bumps its updated_at.
func (r *SQLiteConversationRepository) AppendMessage(ctx context.Context, msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	offerID := ""
	if msg.Offer != nil {
		offerID = msg.Offer.ID
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, content, type, offer_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Content, string(msg.Type), offerID, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, msg.CreatedAt, msg.ConversationID)
	if err != nil {
		return fmt.Errorf("failed to bump conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListMessages returns a thread's messages in chronological order.
func (r *SQLiteConversationRepository) ListMessages(ctx context.Context, conversationID string, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.type, m.is_read, m.created_at,
			o.id, o.amount_cents, o.status
		FROM messages m
		LEFT JOIN offers o ON o.id = m.offer_id
		WHERE m.conversation_id = ?
		ORDER BY m.created_at ASC
		LIMIT ?`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

// ApplyReadReceipts batch-applies buffered read receipts. A receipt marks
// every message in the conversation not sent by the viewer, up to the
// receipt's timestamp, as read.
func (r *SQLiteConversationRepository) ApplyReadReceipts(ctx context.Context, receipts []model.ReadReceipt) error {
	if len(receipts) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE messages SET is_read = 1
		WHERE conversation_id = ? AND sender_id != ? AND is_read = 0 AND created_at <= ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, receipt := range receipts {
		if _, err := stmt.ExecContext(ctx, receipt.ConversationID, receipt.ViewerID, receipt.ReadAt); err != nil {
			return fmt.Errorf("failed to apply receipt for %s: %w", receipt.ConversationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// hydrate fills participants, unread count for the viewer, the last message
// and the latest offer of the thread.
func (r *SQLiteConversationRepository) hydrate(ctx context.Context, conv *model.Conversation, viewerID string) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, name FROM conversation_participants WHERE conversation_id = ? ORDER BY user_id`, conv.ID)
	if err != nil {
		return fmt.Errorf("failed to load participants: %w", err)
	}
	defer rows.Close()

	conv.Participants = conv.Participants[:0]
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return err
		}
		conv.Participants = append(conv.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if viewerID != "" {
		err = r.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM messages
			WHERE conversation_id = ? AND sender_id != ? AND is_read = 0`,
			conv.ID, viewerID).Scan(&conv.UnreadCount)
		if err != nil {
			return fmt.Errorf("failed to count unread: %w", err)
		}
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.type, m.is_read, m.created_at,
			o.id, o.amount_cents, o.status
		FROM messages m
		LEFT JOIN offers o ON o.id = m.offer_id
		WHERE m.conversation_id = ?
		ORDER BY m.created_at DESC, m.id DESC LIMIT 1`, conv.ID)
	last, err := scanMessage(row)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	conv.LastMessage = last

	offerRow := r.db.QueryRowContext(ctx,
		offerSelect+` WHERE conversation_id = ? AND status = ? ORDER BY created_at DESC LIMIT 1`,
		conv.ID, string(model.OfferPending))
	pending, err := scanOffer(offerRow)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	conv.PendingOffer = pending

	row = r.db.QueryRowContext(ctx, `
		SELECT seller_id, public_id, title, price_cents, status FROM listings WHERE id = ?`, conv.ListingID)
	var ls model.ListingSummary
	var lstatus string
	err = row.Scan(&ls.SellerID, &ls.PublicID, &ls.Title, &ls.PriceCents, &lstatus)
	if err == nil {
		ls.ID = conv.ListingID
		ls.Status = model.ListingStatus(lstatus)
		conv.Listing = &ls
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("failed to load listing summary: %w", err)
	}

	return nil
}

func scanMessage(row rowScanner) (*model.Message, error) {
	var (
		m           model.Message
		mtype       string
		isRead      int
		offerID     sql.NullString
		offerAmount sql.NullInt64
		offerStatus sql.NullString
	)
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &mtype, &isRead, &m.CreatedAt,
		&offerID, &offerAmount, &offerStatus)
	if err != nil {
		return nil, err
	}
	m.Type = model.MessageType(mtype)
	m.IsRead = isRead == 1
	if offerID.Valid && offerID.String != "" {
		m.Offer = &model.OfferSummary{
			ID:          offerID.String,
			AmountCents: offerAmount.Int64,
			Status:      model.OfferStatus(offerStatus.String),
		}
	}
	return &m, nil
}
