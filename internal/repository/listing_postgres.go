package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"classifieds-api/internal/model"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresListingRepository implements ListingRepository using PostgreSQL.
// Attributes are stored as JSONB so category-specific filters query
// directly against them.
type PostgresListingRepository struct {
	db *sql.DB
}

// NewPostgresListingRepository creates a new PostgreSQL listing repository.
func NewPostgresListingRepository(dsn string) (*PostgresListingRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	if err := createPostgresListingTable(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("[PostgresListingRepository] Initialized")
	return &PostgresListingRepository{db: db}, nil
}

func createPostgresListingTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		public_id TEXT NOT NULL UNIQUE,
		seller_id TEXT NOT NULL,
		category_slug TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price_cents BIGINT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		condition TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		reserved_for TEXT NOT NULL DEFAULT '',
		reservation_expires_at TIMESTAMPTZ,
		attributes JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category_slug, status);
	CREATE INDEX IF NOT EXISTS idx_listings_attrs ON listings USING GIN (attributes);
	`
	_, err := db.Exec(query)
	return err
}

// CreateListing stores a new listing.
func (r *PostgresListingRepository) CreateListing(ctx context.Context, l *model.Listing) error {
	attrs, err := json.Marshal(l.Attributes)
	if err != nil {
		return fmt.Errorf("failed to encode attributes: %w", err)
	}

	query := `
		INSERT INTO listings (id, public_id, seller_id, category_slug, title, description,
			price_cents, location, condition, status, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

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
func (r *PostgresListingRepository) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	return r.getBy(ctx, "id", id)
}

// GetListingByPublicID retrieves a listing by its public id.
func (r *PostgresListingRepository) GetListingByPublicID(ctx context.Context, publicID string) (*model.Listing, error) {
	return r.getBy(ctx, "public_id", publicID)
}

func (r *PostgresListingRepository) getBy(ctx context.Context, column, value string) (*model.Listing, error) {
	query := fmt.Sprintf(`
		SELECT id, public_id, seller_id, category_slug, title, description, price_cents,
			location, condition, status, reserved_for, reservation_expires_at,
			attributes, created_at, updated_at
		FROM listings WHERE %s = $1`, column)

	return scanListing(r.db.QueryRowContext(ctx, query, value))
}

// Search returns listings matching the query plus the total match count.
func (r *PostgresListingRepository) Search(ctx context.Context, q SearchQuery) ([]model.Listing, int64, error) {
	ph := &postgresPlaceholders{}
	where, args := buildListingWhere(q, ph)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT id, public_id, seller_id, category_slug, title, description, price_cents,
			location, condition, status, reserved_for, reservation_expires_at,
			attributes, created_at, updated_at
		FROM listings %s ORDER BY updated_at DESC LIMIT %s OFFSET %s`,
		where, ph.next(), ph.next())
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
func (r *PostgresListingRepository) Reserve(ctx context.Context, listingID, buyerID string, until time.Time) error {
	query := `
		UPDATE listings
		SET status = $1, reserved_for = $2, reservation_expires_at = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5`

	res, err := r.db.ExecContext(ctx, query,
		string(model.ListingReserved), buyerID, until, listingID, string(model.ListingActive))
	if err != nil {
		return fmt.Errorf("failed to reserve listing: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReleaseExpiredReservations returns lapsed reserved listings to active.
func (r *PostgresListingRepository) ReleaseExpiredReservations(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE listings
		SET status = $1, reserved_for = '', reservation_expires_at = NULL, updated_at = $2
		WHERE status = $3 AND reservation_expires_at IS NOT NULL AND reservation_expires_at < $2`

	res, err := r.db.ExecContext(ctx, query,
		string(model.ListingActive), now, string(model.ListingReserved))
	if err != nil {
		return 0, fmt.Errorf("failed to release reservations: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close closes the repository connection.
func (r *PostgresListingRepository) Close() error {
	return r.db.Close()
}

type postgresPlaceholders struct {
	n int
}

func (p *postgresPlaceholders) next() string {
	p.n++
	return fmt.Sprintf("$%d", p.n)
}

func (p *postgresPlaceholders) jsonAttr(key string) string {
	// keys come from the category schema registry, not user input
	return fmt.Sprintf("attributes->>'%s'", strings.ReplaceAll(key, "'", ""))
}
