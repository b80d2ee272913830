package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	"classifieds-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteNotificationRepository implements NotificationRepository using SQLite.
type SQLiteNotificationRepository struct {
	db     *sql.DB
	mu     sync.Mutex
	shared bool
}

// NewSQLiteNotificationRepository creates a notification repository over the
// shared market database handle.
func NewSQLiteNotificationRepository(db *sql.DB) (*SQLiteNotificationRepository, error) {
	if err := createNotificationTable(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	log.Println("[SQLiteNotificationRepository] Initialized")
	return &SQLiteNotificationRepository{db: db, shared: true}, nil
}

func createNotificationTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		target_id TEXT DEFAULT '',
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, is_read, created_at);
	`
	_, err := db.Exec(query)
	return err
}

// Insert stores a notification.
func (r *SQLiteNotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO notifications (id, user_id, type, title, body, target_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)`

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Body, n.TargetID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListForUser returns the user's notifications, newest first.
func (r *SQLiteNotificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, title, body, target_id, is_read, created_at
		FROM notifications WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		var isRead int
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.TargetID, &isRead, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		n.IsRead = isRead == 1
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// UnreadCount returns how many notifications the user has not read.
func (r *SQLiteNotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks a single notification read.
func (r *SQLiteNotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkAllRead marks every notification of the user read.
func (r *SQLiteNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark all read: %w", err)
	}
	return nil
}

// Close closes the repository connection unless the handle is shared with
// the market repositories.
func (r *SQLiteNotificationRepository) Close() error {
	if r.shared {
		return nil
	}
	return r.db.Close()
}
