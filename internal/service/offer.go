package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"classifieds-api/internal/model"
	"classifieds-api/internal/repository"
	"classifieds-api/pkg/apierror"
	"classifieds-api/pkg/uid"
)

// OfferFloorRatio is the minimum offer amount relative to the listing price.
// Offers below half the asking price are rejected before they reach the
// seller.
const OfferFloorRatio = 0.5

// OfferService drives the negotiation state machine. An offer starts pending
// and moves to exactly one terminal state; countering never reopens the
// original, it spawns a fresh pending offer chained via ParentOfferID.
//
// Offer mutations are confirmed writes: nothing is acknowledged to the
// caller until the store accepts the transition. This is deliberately the
// opposite of mark-as-read, which is buffered fire-and-forget.
type OfferService struct {
	offers        repository.OfferRepository
	listings      repository.ListingRepository
	conversations repository.ConversationRepository
	notifications repository.NotificationRepository

	// OfferTTL of zero means offers never expire.
	offerTTL       time.Duration
	reservationTTL time.Duration

	now func() time.Time
}

// OfferServiceConfig holds dependencies and tuning for an OfferService.
type OfferServiceConfig struct {
	Offers        repository.OfferRepository
	Listings      repository.ListingRepository
	Conversations repository.ConversationRepository
	Notifications repository.NotificationRepository
	OfferTTL      time.Duration
	ReservationTTL time.Duration
}

// NewOfferService creates a new offer service. Offers, Listings and
// Conversations are required; Notifications may be nil.
func NewOfferService(cfg OfferServiceConfig) *OfferService {
	if cfg.Offers == nil || cfg.Listings == nil || cfg.Conversations == nil {
		return nil
	}
	reservationTTL := cfg.ReservationTTL
	if reservationTTL == 0 {
		reservationTTL = 48 * time.Hour
	}
	return &OfferService{
		offers:         cfg.Offers,
		listings:       cfg.Listings,
		conversations:  cfg.Conversations,
		notifications:  cfg.Notifications,
		offerTTL:       cfg.OfferTTL,
		reservationTTL: reservationTTL,
		now:            time.Now,
	}
}

// CreateOffer submits a new offer inside a conversation. The amount must be
// a positive integer of minor units and at least half the listing price.
func (s *OfferService) CreateOffer(ctx context.Context, conversationID, senderID string, amountCents int64, message string) (*model.Offer, error) {
	if amountCents <= 0 {
		return nil, apierror.ValidationError("offer amount must be positive",
			apierror.FieldError{Field: "amount_cents", Message: "must be a positive integer"})
	}

	conv, err := s.conversations.GetConversation(ctx, conversationID, senderID)
	if err != nil {
		return nil, apierror.NotFound("conversation not found")
	}
	if !isParticipant(conv, senderID) {
		return nil, apierror.Forbidden("not a participant of this conversation")
	}

	listing, err := s.listings.GetListing(ctx, conv.ListingID)
	if err != nil {
		return nil, apierror.NotFound("listing not found")
	}
	if float64(amountCents) < OfferFloorRatio*float64(listing.PriceCents) {
		return nil, apierror.ValidationError("offer is too low",
			apierror.FieldError{Field: "amount_cents", Message: "must be at least 50% of the listing price"})
	}

	recipientID := counterparty(conv, senderID)
	if recipientID == "" {
		return nil, apierror.Conflict("conversation has no counterparty")
	}

	offer := s.newOffer(listing.ID, conversationID, senderID, recipientID, amountCents, message, "")
	if err := s.offers.CreateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	s.appendOfferMessage(ctx, offer)
	s.notify(ctx, recipientID, "offer_received", "New offer",
		fmt.Sprintf("You received an offer on %q", listing.Title), offer.ID)

	log.Printf("[OfferService] Created offer %s on listing %s (%d cents)", offer.ID, listing.ID, amountCents)
	return offer, nil
}

// RespondToOffer accepts or rejects a pending offer. Only the recipient may
// respond. Accepting reserves the listing for the sender for the
// reservation window.
func (s *OfferService) RespondToOffer(ctx context.Context, offerID, actorID string, accept bool) (*model.Offer, error) {
	offer, err := s.pendingOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.RecipientID != actorID {
		return nil, apierror.Forbidden("only the offer recipient can respond")
	}

	now := s.now().UTC()
	status := model.OfferRejected
	if accept {
		status = model.OfferAccepted
	}

	if err := s.offers.UpdateStatus(ctx, offerID, status, now); err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	if accept {
		until := now.Add(s.reservationTTL)
		if err := s.listings.Reserve(ctx, offer.ListingID, offer.SenderID, until); err != nil {
			// Put the offer back to pending so the accept can be retried.
			if rbErr := s.offers.UpdateStatus(ctx, offerID, model.OfferPending, time.Time{}); rbErr != nil {
				log.Printf("[OfferService] Failed to revert offer %s after reserve failure: %v", offerID, rbErr)
			}
			return nil, apierror.Conflict("listing is no longer available")
		}
	}
	offer.Status = status
	offer.RespondedAt = &now
	offer.UpdatedAt = now

	event, title := "offer_rejected", "Offer declined"
	if accept {
		event, title = "offer_accepted", "Offer accepted"
	}
	s.notify(ctx, offer.SenderID, event, title,
		fmt.Sprintf("Your offer of %d was %s", offer.AmountCents, status), offer.ID)

	log.Printf("[OfferService] Offer %s -> %s", offerID, status)
	return offer, nil
}

// CounterOffer declines a pending offer by proposing a different amount.
// Only the recipient may counter, and the amount must differ from the
// original. The original is marked countered and a new pending offer is
// created with the roles swapped.
func (s *OfferService) CounterOffer(ctx context.Context, offerID, actorID string, newAmountCents int64, message string) (*model.Offer, error) {
	if newAmountCents <= 0 {
		return nil, apierror.ValidationError("counter amount must be positive",
			apierror.FieldError{Field: "amount_cents", Message: "must be a positive integer"})
	}

	original, err := s.pendingOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if original.RecipientID != actorID {
		return nil, apierror.Forbidden("only the offer recipient can counter")
	}
	if newAmountCents == original.AmountCents {
		return nil, apierror.ValidationError("counter offer must differ from the original amount",
			apierror.FieldError{Field: "amount_cents", Message: "must differ from the original offer"})
	}

	// Insert the counter before touching the original: marking the original
	// countered with no durable child would dead-end the negotiation.
	counter := s.newOffer(original.ListingID, original.ConversationID,
		actorID, original.SenderID, newAmountCents, message, original.ID)
	if err := s.offers.CreateOffer(ctx, counter); err != nil {
		return nil, fmt.Errorf("failed to create counter offer: %w", err)
	}

	if err := s.offers.UpdateStatus(ctx, offerID, model.OfferCountered, s.now().UTC()); err != nil {
		// Retract the counter so the thread does not carry two pending offers.
		if rbErr := s.offers.UpdateStatus(ctx, counter.ID, model.OfferWithdrawn, time.Time{}); rbErr != nil {
			log.Printf("[OfferService] Failed to retract counter %s: %v", counter.ID, rbErr)
		}
		return nil, fmt.Errorf("failed to mark offer countered: %w", err)
	}

	s.appendOfferMessage(ctx, counter)
	s.notify(ctx, original.SenderID, "offer_countered", "Counter offer",
		fmt.Sprintf("You received a counter offer of %d", newAmountCents), counter.ID)

	log.Printf("[OfferService] Offer %s countered by %s", offerID, counter.ID)
	return counter, nil
}

// WithdrawOffer retracts a pending offer. Only the original sender may
// withdraw.
func (s *OfferService) WithdrawOffer(ctx context.Context, offerID, actorID string) (*model.Offer, error) {
	offer, err := s.pendingOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.SenderID != actorID {
		return nil, apierror.Forbidden("only the offer sender can withdraw")
	}

	if err := s.offers.UpdateStatus(ctx, offerID, model.OfferWithdrawn, time.Time{}); err != nil {
		return nil, fmt.Errorf("failed to withdraw offer: %w", err)
	}
	offer.Status = model.OfferWithdrawn

	log.Printf("[OfferService] Offer %s withdrawn", offerID)
	return offer, nil
}

// LatestOffer returns the newest offer of a conversation regardless of its
// status, so negotiation history (a past rejection, an expired offer) stays
// visible. Only participants may read it. Returns nil when the thread has
// no offers.
func (s *OfferService) LatestOffer(ctx context.Context, conversationID, viewerID string) (*model.Offer, error) {
	conv, err := s.conversations.GetConversation(ctx, conversationID, viewerID)
	if err != nil {
		return nil, apierror.NotFound("conversation not found")
	}
	if !isParticipant(conv, viewerID) {
		return nil, apierror.Forbidden("not a participant of this conversation")
	}
	return s.offers.LatestForConversation(ctx, conversationID)
}

// pendingOffer loads an offer and verifies it is still actionable.
func (s *OfferService) pendingOffer(ctx context.Context, offerID string) (*model.Offer, error) {
	offer, err := s.offers.GetOffer(ctx, offerID)
	if err != nil {
		return nil, apierror.NotFound("offer not found")
	}
	if offer.IsExpiredAt(s.now()) {
		return nil, apierror.Conflict("offer has expired")
	}
	if offer.Status != model.OfferPending {
		return nil, apierror.Conflict(fmt.Sprintf("offer is already %s", offer.Status))
	}
	return offer, nil
}

func (s *OfferService) newOffer(listingID, conversationID, senderID, recipientID string, amountCents int64, message, parentID string) *model.Offer {
	now := s.now().UTC()
	offer := &model.Offer{
		ID:             uid.New(),
		ListingID:      listingID,
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		AmountCents:    amountCents,
		Status:         model.OfferPending,
		Message:        message,
		ParentOfferID:  parentID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if s.offerTTL > 0 {
		expires := now.Add(s.offerTTL)
		offer.ExpiresAt = &expires
	}
	return offer
}

// appendOfferMessage records the offer in the thread. A failure here is
// logged but does not fail the offer; the offer row is the source of truth.
func (s *OfferService) appendOfferMessage(ctx context.Context, offer *model.Offer) {
	msg := &model.Message{
		ID:             uid.New(),
		ConversationID: offer.ConversationID,
		SenderID:       offer.SenderID,
		Content:        offer.Message,
		Type:           model.MessageOffer,
		Offer:          offer.Summary(),
		CreatedAt:      offer.CreatedAt,
	}
	if err := s.conversations.AppendMessage(ctx, msg); err != nil {
		log.Printf("[OfferService] Failed to append offer message: %v", err)
	}
}

func (s *OfferService) notify(ctx context.Context, userID, event, title, body, targetID string) {
	if s.notifications == nil {
		return
	}
	n := &model.Notification{
		ID:        uid.New(),
		UserID:    userID,
		Type:      event,
		Title:     title,
		Body:      body,
		TargetID:  targetID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.notifications.Insert(ctx, n); err != nil {
		log.Printf("[OfferService] Failed to insert notification: %v", err)
	}
}

func isParticipant(conv *model.Conversation, userID string) bool {
	for _, p := range conv.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// counterparty returns the other participant of a two-party thread. For the
// seller that is the buyer and vice versa; threads with more participants
// resolve to the first non-sender.
func counterparty(conv *model.Conversation, senderID string) string {
	for _, p := range conv.Participants {
		if p.ID != senderID {
			return p.ID
		}
	}
	return ""
}
