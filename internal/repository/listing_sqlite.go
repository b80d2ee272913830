package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"classifieds-api/internal/model"
)

// SQLiteListingRepository implements ListingRepository using SQLite.
type SQLiteListingRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteListingRepository creates a listing repository over a shared
// market database handle.
func NewSQLiteListingRepository(db *sql.DB) *SQLiteListingRepository {
	return &SQLiteListingRepository{db: db}
}

// CreateListing stores a new listing.
func (r *SQLiteListingRepository) CreateListing(ctx context.Context, l *model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	attrs, err := json.Marshal(l.Attributes)
	if err != nil {
		return fmt.Errorf("failed to encode attributes: %w", err)
	}

	query := `
		INSERT INTO listings (id, public_id, seller_id, category_slug, title, description,
			price_cents, location, condition, status, attributes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		l.ID, l.PublicID, l.SellerID, l.CategorySlug, l.Title, l.Description,
		l.PriceCents, l.Location, l.Condition, string(l.Status), string(attrs),
		l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

// GetListing retrieves a listing by internal id.
func (r *SQLiteListingRepository) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	return r.getBy(ctx, "id", id)
}

// GetListingByPublicID retrieves a listing by its public id.
func (r *SQLiteListingRepository) GetListingByPublicID(ctx context.Context, publicID string) (*model.Listing, error) {
	return r.getBy(ctx, "public_id", publicID)
}

func (r *SQLiteListingRepository) getBy(ctx context.Context, column, value string) (*model.Listing, error) {
	query := fmt.Sprintf(`
		SELECT id, public_id, seller_id, category_slug, title, description, price_cents,
			location, condition, status, reserved_for, reservation_expires_at,
			attributes, created_at, updated_at
		FROM listings WHERE %s = ?`, column)

	row := r.db.QueryRowContext(ctx, query, value)
	return scanListing(row)
}

// Search returns listings matching the query plus the total match count.
func (r *SQLiteListingRepository) Search(ctx context.Context, q SearchQuery) ([]model.Listing, int64, error) {
	where, args := buildListingWhere(q, sqlitePlaceholders{})

	var total int64
	countQuery := "SELECT COUNT(*) FROM listings " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, public_id, seller_id, category_slug, title, description, price_cents,
			location, condition, status, reserved_for, reservation_expires_at,
			attributes, created_at, updated_at
		FROM listings ` + where + ` ORDER BY updated_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search listings: %w", err)
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		listings = append(listings, *l)
	}
	return listings, total, rows.Err()
}

// Reserve places a time-boxed hold on a listing for a buyer.
func (r *SQLiteListingRepository) Reserve(ctx context.Context, listingID, buyerID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		UPDATE listings
		SET status = ?, reserved_for = ?, reservation_expires_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`

	res, err := r.db.ExecContext(ctx, query,
		string(model.ListingReserved), buyerID, until, time.Now().UTC(), listingID, string(model.ListingActive))
	if err != nil {
		return fmt.Errorf("failed to reserve listing: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReleaseExpiredReservations returns lapsed reserved listings to active.
func (r *SQLiteListingRepository) ReleaseExpiredReservations(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		UPDATE listings
		SET status = ?, reserved_for = '', reservation_expires_at = NULL, updated_at = ?
		WHERE status = ? AND reservation_expires_at IS NOT NULL AND reservation_expires_at < ?`

	res, err := r.db.ExecContext(ctx, query,
		string(model.ListingActive), now, string(model.ListingReserved), now)
	if err != nil {
		return 0, fmt.Errorf("failed to release reservations: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close closes the repository connection.
func (r *SQLiteListingRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*model.Listing, error) {
	var (
		l        model.Listing
		status   string
		attrs    string
		reserved sql.NullTime
	)
	err := row.Scan(&l.ID, &l.PublicID, &l.SellerID, &l.CategorySlug, &l.Title, &l.Description,
		&l.PriceCents, &l.Location, &l.Condition, &status, &l.ReservedFor, &reserved,
		&attrs, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Status = model.ListingStatus(status)
	if reserved.Valid {
		l.ReservationExpiresAt = &reserved.Time
	}
	if attrs != "" {
		if err := json.Unmarshal([]byte(attrs), &l.Attributes); err != nil {
			return nil, fmt.Errorf("failed to decode attributes: %w", err)
		}
	}
	return &l, nil
}

// placeholderStyle abstracts over ? (sqlite/mysql) and $n (postgres)
// placeholders so the WHERE builder is shared between backends.
type placeholderStyle interface {
	next() string
	jsonAttr(key string) string
}

type sqlitePlaceholders struct{}

func (sqlitePlaceholders) next() string { return "?" }
func (sqlitePlaceholders) jsonAttr(key string) string {
	// keys come from the category schema registry, not user input
	return fmt.Sprintf("json_extract(attributes, '$.%s')", strings.ReplaceAll(key, "'", ""))
}

func buildListingWhere(q SearchQuery, ph placeholderStyle) (string, []interface{}) {
	conds := []string{"status != '" + string(model.ListingDeleted) + "'"}
	var args []interface{}

	add := func(cond string, vals ...interface{}) {
		conds = append(conds, cond)
		args = append(args, vals...)
	}

	if q.Category != "" {
		add("category_slug = "+ph.next(), q.Category)
	}
	if q.Text != "" {
		p1, p2 := ph.next(), ph.next()
		add("(title LIKE "+p1+" OR description LIKE "+p2+")", "%"+q.Text+"%", "%"+q.Text+"%")
	}
	if q.Location != "" {
		add("location = "+ph.next(), q.Location)
	}
	if q.Condition != "" {
		add("condition = "+ph.next(), q.Condition)
	}
	if q.PriceMinCents != nil {
		add("price_cents >= "+ph.next(), *q.PriceMinCents)
	}
	if q.PriceMaxCents != nil {
		add("price_cents <= "+ph.next(), *q.PriceMaxCents)
	}
	for key, val := range q.Attributes {
		add(ph.jsonAttr(key)+" = "+ph.next(), val)
	}
	for key, rng := range q.AttributeRanges {
		if rng.Min != nil {
			add("CAST("+ph.jsonAttr(key)+" AS REAL) >= "+ph.next(), *rng.Min)
		}
		if rng.Max != nil {
			add("CAST("+ph.jsonAttr(key)+" AS REAL) <= "+ph.next(), *rng.Max)
		}
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}
