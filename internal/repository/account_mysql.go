package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"classifieds-api/internal/model"
)

// MySQLAccountRepository implements AccountRepository using MySQL.
type MySQLAccountRepository struct {
	db *sql.DB
}

// NewMySQLAccountRepository creates a new MySQL account repository.
func NewMySQLAccountRepository(db *sql.DB) *MySQLAccountRepository {
	return &MySQLAccountRepository{db: db}
}

// ValidateCredentials checks an email/password pair for session issuance.
func (r *MySQLAccountRepository) ValidateCredentials(ctx context.Context, email, password string) (*model.AccountValidation, error) {
	log.Printf("[AccountRepository] Validating credentials for email=%s", email)

	query := `
		SELECT id, display_name, email, password_hash, status
		FROM accounts
		WHERE email = ? AND status = 'active'
		LIMIT 1`

	var (
		result       model.AccountValidation
		passwordHash string
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&result.AccountID,
		&result.DisplayName,
		&result.Email,
		&passwordHash,
		&result.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("invalid credentials")
		}
		return nil, fmt.Errorf("failed to validate credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	return &result, nil
}

// GetParticipant resolves a user id to its display shape.
func (r *MySQLAccountRepository) GetParticipant(ctx context.Context, userID string) (*model.Participant, error) {
	query := `SELECT id, display_name, COALESCE(avatar_url, '') FROM accounts WHERE id = ? LIMIT 1`

	var p model.Participant
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.ID, &p.Name, &p.AvatarURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("account not found: %s", userID)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &p, nil
}

// Ensure MySQLAccountRepository implements AccountRepository
var _ AccountRepository = (*MySQLAccountRepository)(nil)
