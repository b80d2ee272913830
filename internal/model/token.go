package model

import "time"

// SessionData contains the data stored with a session token.
type SessionData struct {
	AccountID   string    `json:"account_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AccountValidation contains the result of a credentials check against the
// accounts database.
type AccountValidation struct {
	AccountID   string
	DisplayName string
	Email       string
	Status      string
}
