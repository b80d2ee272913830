package model

import "time"

// Participant is a user taking part in a conversation.
type Participant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Conversation is a message thread between a buyer and a seller about a
// listing. UnreadCount is always scoped to the requesting viewer.
type Conversation struct {
	ID           string          `json:"id"`
	ListingID    string          `json:"listing_id,omitempty"`
	Listing      *ListingSummary `json:"listing,omitempty"`
	Participants []Participant   `json:"participants"`
	LastMessage  *Message        `json:"last_message,omitempty"`
	PendingOffer *Offer          `json:"pending_offer,omitempty"`
	UnreadCount  int             `json:"unread_count"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MessageType distinguishes message payloads in a thread.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageOffer MessageType = "offer"
)

// Message is a single entry in a conversation. Immutable once created
// except for IsRead.
type Message struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	SenderID       string        `json:"sender_id"`
	Content        string        `json:"content"`
	Type           MessageType   `json:"type"`
	Offer          *OfferSummary `json:"offer,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	// CreatedAgo is the display form of CreatedAt ("5h ago"), filled at
	// response time, never stored.
	CreatedAgo string `json:"created_ago,omitempty"`
	IsRead     bool   `json:"is_read"`
}

// ReadReceipt records that a viewer has read a conversation up to a point
// in time. Receipts are buffered and flushed in batches.
type ReadReceipt struct {
	ConversationID string    `json:"conversation_id"`
	ViewerID       string    `json:"viewer_id"`
	ReadAt         time.Time `json:"read_at"`
}
