package repository

import (
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// OpenSQLiteMarketDB opens the marketplace SQLite database and ensures its
// schema. The returned handle is shared by the listing, offer, conversation,
// review and location repositories.
func OpenSQLiteMarketDB(dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createMarketTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteMarketDB] Initialized with database: %s", dbPath)
	return db, nil
}

func createMarketTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		public_id TEXT NOT NULL UNIQUE,
		seller_id TEXT NOT NULL,
		category_slug TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT DEFAULT '',
		price_cents INTEGER NOT NULL,
		location TEXT DEFAULT '',
		condition TEXT DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		reserved_for TEXT DEFAULT '',
		reservation_expires_at DATETIME,
		attributes TEXT DEFAULT '{}',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category_slug, status);
	CREATE INDEX IF NOT EXISTS idx_listings_seller ON listings(seller_id);

	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		listing_id TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS conversation_participants (
		conversation_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (conversation_id, user_id)
	);
	CREATE INDEX IF NOT EXISTS idx_participants_user ON conversation_participants(user_id);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT 'text',
		offer_id TEXT DEFAULT '',
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);

	CREATE TABLE IF NOT EXISTS offers (
		id TEXT PRIMARY KEY,
		listing_id TEXT NOT NULL,
		conversation_id TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		recipient_id TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		message TEXT DEFAULT '',
		parent_offer_id TEXT DEFAULT '',
		expires_at DATETIME,
		responded_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_offers_conversation ON offers(conversation_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_offers_status ON offers(status, expires_at);

	CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		listing_public_id TEXT NOT NULL,
		reviewer_id TEXT NOT NULL,
		reviewer_name TEXT NOT NULL DEFAULT '',
		rating INTEGER NOT NULL,
		comment TEXT DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reviews_listing ON reviews(listing_public_id);

	CREATE TABLE IF NOT EXISTS cities (
		name TEXT PRIMARY KEY,
		region TEXT NOT NULL DEFAULT '',
		population INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS suburbs (
		name TEXT NOT NULL,
		city TEXT NOT NULL,
		PRIMARY KEY (name, city)
	);
	`
	_, err := db.Exec(query)
	return err
}
