package service

import (
	"context"
	"testing"
	"time"

	"classifieds-api/internal/model"
)

const (
	sellerID = "user-seller"
	buyerID  = "user-buyer"
)

func negotiationFixture(t *testing.T) (*OfferService, *fakeOfferRepo, *fakeListingRepo, *fakeConversationRepo) {
	t.Helper()

	listing := &model.Listing{
		ID:         "listing-1",
		PublicID:   "pub-1",
		SellerID:   sellerID,
		Title:      "2014 Toyota Corolla",
		PriceCents: 1_000_000, // $10,000
		Status:     model.ListingActive,
	}
	conv := &model.Conversation{
		ID:        "conv-1",
		ListingID: listing.ID,
		Participants: []model.Participant{
			{ID: buyerID, Name: "James Smith"},
			{ID: sellerID, Name: "Mere Kahu"},
		},
	}

	offers := newFakeOfferRepo()
	listings := newFakeListingRepo(listing)
	convs := newFakeConversationRepo(conv)
	notifs := &fakeNotificationRepo{}

	svc := NewOfferService(OfferServiceConfig{
		Offers:        offers,
		Listings:      listings,
		Conversations: convs,
		Notifications: notifs,
	})
	if svc == nil {
		t.Fatal("NewOfferService returned nil")
	}
	return svc, offers, listings, convs
}

func TestCreateOfferRejectsNonPositiveAmounts(t *testing.T) {
	svc, _, _, _ := negotiationFixture(t)

	for _, amount := range []int64{0, -1, -500_000} {
		if _, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, amount, ""); err == nil {
			t.Errorf("CreateOffer accepted amount %d", amount)
		}
	}
}

func TestCreateOfferRejectsBelowFloor(t *testing.T) {
	svc, _, _, _ := negotiationFixture(t)

	// floor is 50% of the $10,000 listing
	if _, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 499_999, ""); err == nil {
		t.Error("CreateOffer accepted an offer below half the listing price")
	}
	if _, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 500_000, ""); err != nil {
		t.Errorf("CreateOffer rejected an offer exactly at the floor: %v", err)
	}
}

func TestCreateOfferStartsPendingAndAppendsMessage(t *testing.T) {
	svc, _, _, convs := negotiationFixture(t)

	offer, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 800_000, "would you take 8k?")
	if err != nil {
		t.Fatal(err)
	}
	if offer.Status != model.OfferPending {
		t.Errorf("new offer status = %s, want pending", offer.Status)
	}
	if offer.SenderID != buyerID || offer.RecipientID != sellerID {
		t.Errorf("offer parties = %s -> %s, want buyer -> seller", offer.SenderID, offer.RecipientID)
	}

	if len(convs.messages) != 1 {
		t.Fatalf("expected 1 offer message, got %d", len(convs.messages))
	}
	msg := convs.messages[0]
	if msg.Type != model.MessageOffer || msg.Offer == nil || msg.Offer.ID != offer.ID {
		t.Errorf("offer message not linked to offer: %+v", msg)
	}
}

func TestRespondToOfferOnlyRecipient(t *testing.T) {
	svc, _, _, _ := negotiationFixture(t)

	offer, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 800_000, "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.RespondToOffer(context.Background(), offer.ID, buyerID, true); err == nil {
		t.Error("sender was allowed to respond to their own offer")
	}
	if _, err := svc.RespondToOffer(context.Background(), offer.ID, sellerID, true); err != nil {
		t.Errorf("recipient could not respond: %v", err)
	}
}

func TestAcceptReservesListing(t *testing.T) {
	svc, _, listings, _ := negotiationFixture(t)

	offer, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 800_000, "")
	if err != nil {
		t.Fatal(err)
	}

	accepted, err := svc.RespondToOffer(context.Background(), offer.ID, sellerID, true)
	if err != nil {
		t.Fatal(err)
	}
	if accepted.Status != model.OfferAccepted {
		t.Errorf("status = %s, want accepted", accepted.Status)
	}
	if accepted.RespondedAt == nil {
		t.Error("accepted offer has no responded_at")
	}

	listing := listings.listings["listing-1"]
	if listing.Status != model.ListingReserved {
		t.Errorf("listing status = %s, want reserved", listing.Status)
	}
	if listing.ReservedFor != buyerID {
		t.Errorf("listing reserved for %s, want %s", listing.ReservedFor, buyerID)
	}
	if listing.ReservationExpiresAt == nil {
		t.Fatal("no reservation deadline set")
	}
	window := time.Until(*listing.ReservationExpiresAt)
	if window < 47*time.Hour || window > 49*time.Hour {
		t.Errorf("reservation window = %v, want about 48h", window)
	}
}

func TestFailedAcceptLeavesOfferRetryable(t *testing.T) {
	svc, offers, listings, _ := negotiationFixture(t)

	offer, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 800_000, "")
	if err != nil {
		t.Fatal(err)
	}

	offers.failUpdates = 1
	if _, err := svc.RespondToOffer(context.Background(), offer.ID, sellerID, true); err == nil {
		t.Fatal("accept succeeded despite a failed status write")
	}

	// the failed accept must leave nothing behind
	listing := listings.listings["listing-1"]
	if listing.Status != model.ListingActive || listing.ReservedFor != "" {
		t.Errorf("listing reserved after a failed accept: status=%s reservedFor=%q", listing.Status, listing.ReservedFor)
	}
	stored, _ := offers.GetOffer(context.Background(), offer.ID)
	if stored.Status != model.OfferPending {
		t.Errorf("offer status = %s after failed accept, want pending", stored.Status)
	}

	// and the retry must go through
	if _, err := svc.RespondToOffer(context.Background(), offer.ID, sellerID, true); err != nil {
		t.Fatalf("retry after failed accept: %v", err)
	}
	if listing.Status != model.ListingReserved || listing.ReservedFor != buyerID {
		t.Errorf("retry did not reserve the listing: status=%s reservedFor=%q", listing.Status, listing.ReservedFor)
	}
}

func TestAcceptRevertsWhenListingUnavailable(t *testing.T) {
	svc, offers, listings, _ := negotiationFixture(t)

	offer, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 800_000, "")
	if err != nil {
		t.Fatal(err)
	}

	// listing goes to another buyer before the seller responds
	listings.listings["listing-1"].Status = model.ListingSold

	if _, err := svc.RespondToOffer(context.Background(), offer.ID, sellerID, true); err == nil {
		t.Fatal("accept succeeded on a sold listing")
	}
	stored, _ := offers.GetOffer(context.Background(), offer.ID)
	if stored.Status != model.OfferPending {
		t.Errorf("offer status = %s after reserve failure, want pending", stored.Status)
	}
}

func TestRejectIsTerminal(t *testing.T) {
	svc, _, _, _ := negotiationFixture(t)

	offer, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 800_000, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RespondToOffer(context.Background(), offer.ID, sellerID, false); err != nil {
		t.Fatal(err)
	}

	// every further transition must fail
	if _, err := svc.RespondToOffer(context.Background(), offer.ID, sellerID, true); err == nil {
		t.Error("accept succeeded on a rejected offer")
	}
	if _, err := svc.CounterOffer(context.Background(), offer.ID, sellerID, 900_000, ""); err == nil {
		t.Error("counter succeeded on a rejected offer")
	}
	if _, err := svc.WithdrawOffer(context.Background(), offer.ID, buyerID); err == nil {
		t.Error("withdraw succeeded on a rejected offer")
	}
}

func TestCounterOfferChainsAndSupersedes(t *testing.T) {
	svc, offers, _, _ := negotiationFixture(t)

	original, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 800_000, "")
	if err != nil {
		t.Fatal(err)
	}

	counter, err := svc.CounterOffer(context.Background(), original.ID, sellerID, 900_000, "how about 9k")
	if err != nil {
		t.Fatal(err)
	}

	if counter.ParentOfferID != original.ID {
		t.Errorf("counter parent = %q, want %q", counter.ParentOfferID, original.ID)
	}
	if counter.Status != model.OfferPending {
		t.Errorf("counter status = %s, want pending", counter.Status)
	}
	if counter.SenderID != sellerID || counter.RecipientID != buyerID {
		t.Errorf("counter roles not swapped: %s -> %s", counter.SenderID, counter.RecipientID)
	}

	stored, err := offers.GetOffer(context.Background(), original.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != model.OfferCountered {
		t.Errorf("original status = %s, want countered", stored.Status)
	}
}

func TestFailedCounterKeepsOriginalPending(t *testing.T) {
	svc, offers, _, _ := negotiationFixture(t)

	original, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 800_000, "")
	if err != nil {
		t.Fatal(err)
	}

	offers.failCreates = 1
	if _, err := svc.CounterOffer(context.Background(), original.ID, sellerID, 900_000, ""); err == nil {
		t.Fatal("counter succeeded despite a failed insert")
	}

	stored, _ := offers.GetOffer(context.Background(), original.ID)
	if stored.Status != model.OfferPending {
		t.Errorf("original status = %s after failed counter, want pending", stored.Status)
	}

	// the retry must produce a properly chained counter
	counter, err := svc.CounterOffer(context.Background(), original.ID, sellerID, 900_000, "")
	if err != nil {
		t.Fatalf("retry after failed counter: %v", err)
	}
	if counter.ParentOfferID != original.ID {
		t.Errorf("retried counter parent = %q, want %q", counter.ParentOfferID, original.ID)
	}
}

func TestCounterOfferRejectsEqualAmount(t *testing.T) {
	svc, _, _, _ := negotiationFixture(t)

	original, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 800_000, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CounterOffer(context.Background(), original.ID, sellerID, 800_000, ""); err == nil {
		t.Error("counter with the original amount was accepted")
	}
}

func TestCounterOfferOnlyRecipient(t *testing.T) {
	svc, _, _, _ := negotiationFixture(t)

	original, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 800_000, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CounterOffer(context.Background(), original.ID, buyerID, 850_000, ""); err == nil {
		t.Error("sender was allowed to counter their own offer")
	}
}

func TestWithdrawOnlySenderWhilePending(t *testing.T) {
	svc, _, _, _ := negotiationFixture(t)

	offer, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 800_000, "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.WithdrawOffer(context.Background(), offer.ID, sellerID); err == nil {
		t.Error("recipient was allowed to withdraw")
	}

	withdrawn, err := svc.WithdrawOffer(context.Background(), offer.ID, buyerID)
	if err != nil {
		t.Fatal(err)
	}
	if withdrawn.Status != model.OfferWithdrawn {
		t.Errorf("status = %s, want withdrawn", withdrawn.Status)
	}

	if _, err := svc.WithdrawOffer(context.Background(), offer.ID, buyerID); err == nil {
		t.Error("withdraw succeeded twice")
	}
}

func TestExpiredOfferIsNotActionable(t *testing.T) {
	svc, offers, _, _ := negotiationFixture(t)

	offer, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 800_000, "")
	if err != nil {
		t.Fatal(err)
	}

	past := time.Now().Add(-time.Hour)
	offers.offers[offer.ID].ExpiresAt = &past

	if _, err := svc.RespondToOffer(context.Background(), offer.ID, sellerID, true); err == nil {
		t.Error("accept succeeded on an expired offer")
	}
}

func TestLatestOfferSurfacesTerminalStates(t *testing.T) {
	svc, _, _, _ := negotiationFixture(t)

	offer, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 800_000, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RespondToOffer(context.Background(), offer.ID, sellerID, false); err != nil {
		t.Fatal(err)
	}

	latest, err := svc.LatestOffer(context.Background(), "conv-1", buyerID)
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil {
		t.Fatal("latest offer is nil after rejection")
	}
	if latest.Status != model.OfferRejected {
		t.Errorf("latest status = %s, want rejected (history stays visible)", latest.Status)
	}
}

func TestLatestOfferEmptyConversation(t *testing.T) {
	svc, _, _, _ := negotiationFixture(t)

	latest, err := svc.LatestOffer(context.Background(), "conv-1", sellerID)
	if err != nil {
		t.Fatal(err)
	}
	if latest != nil {
		t.Errorf("expected nil for a thread with no offers, got %+v", latest)
	}
}

func TestLatestOfferRequiresParticipant(t *testing.T) {
	svc, _, _, _ := negotiationFixture(t)

	if _, err := svc.CreateOffer(context.Background(), "conv-1", buyerID, 800_000, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.LatestOffer(context.Background(), "conv-1", "user-stranger"); err == nil {
		t.Error("a non-participant could read the thread's latest offer")
	}
}
