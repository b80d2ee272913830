package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"classifieds-api/internal/cache"
	"classifieds-api/internal/model"
	"classifieds-api/internal/repository"
	"classifieds-api/pkg/apierror"
	"classifieds-api/pkg/uid"
)

// ConversationRole labels the viewer's side of a thread.
type ConversationRole string

const (
	RoleSelling ConversationRole = "selling"
	RoleBuying  ConversationRole = "buying"
	RoleUnknown ConversationRole = "unknown"
)

// ConversationFilter narrows a conversation list.
type ConversationFilter struct {
	// Search matches participant names case-insensitively.
	Search string
	// Filter is "all", "buying" or "selling".
	Filter string
	// CurrentUserID is the viewer the buying/selling split is computed for.
	CurrentUserID string
}

// ConversationService owns the conversation and message flow. Mark-as-read
// is the one optimistic mutation in the system: the receipt is buffered and
// acknowledged immediately, then flushed to the database in batches. Every
// other mutation here is a confirmed write.
type ConversationService struct {
	conversations repository.ConversationRepository
	listings      repository.ListingRepository
	accounts      repository.AccountRepository
	receipts      *cache.RedisReceiptBuffer

	now func() time.Time
}

// NewConversationService creates a new conversation service. The receipt
// buffer may be nil; receipts are then applied synchronously.
func NewConversationService(
	conversations repository.ConversationRepository,
	listings repository.ListingRepository,
	accounts repository.AccountRepository,
	receipts *cache.RedisReceiptBuffer,
) *ConversationService {
	if conversations == nil {
		return nil
	}
	return &ConversationService{
		conversations: conversations,
		listings:      listings,
		accounts:      accounts,
		receipts:      receipts,
		now:           time.Now,
	}
}

// CreateConversation opens (or returns the existing) thread between a buyer
// and a listing's seller.
func (s *ConversationService) CreateConversation(ctx context.Context, listingID, buyerID string) (*model.Conversation, error) {
	listing, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		return nil, apierror.NotFound("listing not found")
	}
	if listing.SellerID == buyerID {
		return nil, apierror.Conflict("cannot start a conversation on your own listing")
	}

	if existing, err := s.conversations.FindByListingAndBuyer(ctx, listingID, buyerID); err != nil {
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	} else if existing != nil {
		return existing, nil
	}

	conv := &model.Conversation{
		ID:        uid.New(),
		ListingID: listingID,
		Participants: []model.Participant{
			s.participant(ctx, buyerID),
			s.participant(ctx, listing.SellerID),
		},
		UpdatedAt: s.now().UTC(),
	}
	if err := s.conversations.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	log.Printf("[ConversationService] Created conversation %s on listing %s", conv.ID, listingID)
	conv.Listing = listing.Summary()
	return conv, nil
}

// GetConversation returns a thread shaped for the viewer.
func (s *ConversationService) GetConversation(ctx context.Context, id, viewerID string) (*model.Conversation, error) {
	conv, err := s.conversations.GetConversation(ctx, id, viewerID)
	if err != nil {
		return nil, apierror.NotFound("conversation not found")
	}
	if !isParticipant(conv, viewerID) {
		return nil, apierror.Forbidden("not a participant of this conversation")
	}
	return conv, nil
}

// ListConversations returns the viewer's threads, most recent first.
func (s *ConversationService) ListConversations(ctx context.Context, viewerID string) ([]model.Conversation, error) {
	convs, err := s.conversations.ListForUser(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// SendMessage appends a plain text or image message to a thread.
func (s *ConversationService) SendMessage(ctx context.Context, conversationID, senderID, content string, msgType model.MessageType) (*model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apierror.ValidationError("message content is required",
			apierror.FieldError{Field: "content", Message: "must not be empty"})
	}
	if msgType != model.MessageText && msgType != model.MessageImage {
		return nil, apierror.BadRequest("unsupported message type")
	}

	conv, err := s.conversations.GetConversation(ctx, conversationID, senderID)
	if err != nil {
		return nil, apierror.NotFound("conversation not found")
	}
	if !isParticipant(conv, senderID) {
		return nil, apierror.Forbidden("not a participant of this conversation")
	}

	msg := &model.Message{
		ID:             uid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Type:           msgType,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.conversations.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return msg, nil
}

// ListMessages returns a thread's messages in chronological order.
func (s *ConversationService) ListMessages(ctx context.Context, conversationID, viewerID string, limit int) ([]model.Message, error) {
	conv, err := s.conversations.GetConversation(ctx, conversationID, viewerID)
	if err != nil {
		return nil, apierror.NotFound("conversation not found")
	}
	if !isParticipant(conv, viewerID) {
		return nil, apierror.Forbidden("not a participant of this conversation")
	}
	return s.conversations.ListMessages(ctx, conversationID, limit)
}

// MarkAsRead records that the viewer has read the conversation. With a
// receipt buffer the write is acknowledged immediately and persisted
// behind the caller's back; without one it is applied synchronously.
func (s *ConversationService) MarkAsRead(ctx context.Context, conversationID, viewerID string) error {
	receipt := model.ReadReceipt{
		ConversationID: conversationID,
		ViewerID:       viewerID,
		ReadAt:         s.now().UTC(),
	}

	if s.receipts != nil {
		if err := s.receipts.Add(ctx, receipt); err == nil {
			return nil
		}
		// Buffer unavailable; fall through to the synchronous path.
		log.Printf("[ConversationService] Receipt buffer write failed, applying directly")
	}

	return s.conversations.ApplyReadReceipts(ctx, []model.ReadReceipt{receipt})
}

// CreateReceiptFlushFunc builds the flush function wiring the receipt
// buffer to the conversation store.
func CreateReceiptFlushFunc(repo repository.ConversationRepository) cache.FlushFunc {
	return func(ctx context.Context, receipts []model.ReadReceipt) error {
		return repo.ApplyReadReceipts(ctx, receipts)
	}
}

// FilterConversations narrows a thread list by role and participant name.
// The "selling" filter keeps threads whose listing belongs to the viewer;
// "buying" keeps the rest. Search matches any participant name
// case-insensitively.
func FilterConversations(convs []model.Conversation, f ConversationFilter) []model.Conversation {
	out := make([]model.Conversation, 0, len(convs))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	for _, conv := range convs {
		switch f.Filter {
		case "selling":
			if GetConversationRole(&conv, f.CurrentUserID) != RoleSelling {
				continue
			}
		case "buying":
			if GetConversationRole(&conv, f.CurrentUserID) != RoleBuying {
				continue
			}
		}

		if search != "" && !participantMatches(&conv, search) {
			continue
		}
		out = append(out, conv)
	}
	return out
}

// GetConversationRole labels the viewer's side of a thread: selling when
// the viewer owns the listing, buying otherwise, unknown when the listing
// or viewer is absent.
func GetConversationRole(conv *model.Conversation, userID string) ConversationRole {
	if conv == nil || conv.Listing == nil || userID == "" {
		return RoleUnknown
	}
	if conv.Listing.SellerID == userID {
		return RoleSelling
	}
	return RoleBuying
}

func participantMatches(conv *model.Conversation, lowerSearch string) bool {
	for _, p := range conv.Participants {
		if strings.Contains(strings.ToLower(p.Name), lowerSearch) {
			return true
		}
	}
	return false
}

// participant resolves a user id to its display shape, degrading to a bare
// id when the accounts database is unavailable.
func (s *ConversationService) participant(ctx context.Context, userID string) model.Participant {
	if s.accounts != nil {
		if p, err := s.accounts.GetParticipant(ctx, userID); err == nil {
			return *p
		}
	}
	return model.Participant{ID: userID}
}
