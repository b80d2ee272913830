package model

import "time"

// Notification is a user-facing event record (new message, offer activity,
// review received). Read state is the only mutable field.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"` // message, offer_received, offer_accepted, offer_rejected, review
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	TargetID  string    `json:"target_id,omitempty"` // conversation, offer or listing id
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationPage is a notification list with its unread count, the shape
// clients poll for.
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}
