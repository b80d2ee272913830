package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"classifieds-api/internal/model"
)

func openTestMarketDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLiteMarketDB(filepath.Join(t.TempDir(), "market.db"))
	if err != nil {
		t.Fatalf("open market db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestListMessagesJoinsOfferSummaries(t *testing.T) {
	db := openTestMarketDB(t)
	convs := NewSQLiteConversationRepository(db)
	offers := NewSQLiteOfferRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	conv := &model.Conversation{
		ID:        "conv-1",
		ListingID: "listing-1",
		UpdatedAt: base,
		Participants: []model.Participant{
			{ID: "user-buyer", Name: "James Smith"},
			{ID: "user-seller", Name: "Mere Kahu"},
		},
	}
	if err := convs.CreateConversation(ctx, conv); err != nil {
		t.Fatal(err)
	}

	if err := convs.AppendMessage(ctx, &model.Message{
		ID:             "msg-1",
		ConversationID: "conv-1",
		SenderID:       "user-buyer",
		Content:        "still available?",
		Type:           model.MessageText,
		CreatedAt:      base,
	}); err != nil {
		t.Fatal(err)
	}

	offer := &model.Offer{
		ID:             "offer-1",
		ListingID:      "listing-1",
		ConversationID: "conv-1",
		SenderID:       "user-buyer",
		RecipientID:    "user-seller",
		AmountCents:    800_000,
		Status:         model.OfferPending,
		CreatedAt:      base.Add(time.Minute),
		UpdatedAt:      base.Add(time.Minute),
	}
	if err := offers.CreateOffer(ctx, offer); err != nil {
		t.Fatal(err)
	}
	if err := convs.AppendMessage(ctx, &model.Message{
		ID:             "msg-2",
		ConversationID: "conv-1",
		SenderID:       "user-buyer",
		Content:        "would you take 8k?",
		Type:           model.MessageOffer,
		Offer:          offer.Summary(),
		CreatedAt:      base.Add(time.Minute),
	}); err != nil {
		t.Fatal(err)
	}

	msgs, err := convs.ListMessages(ctx, "conv-1", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].ID != "msg-1" || msgs[1].ID != "msg-2" {
		t.Errorf("messages out of order: %s, %s", msgs[0].ID, msgs[1].ID)
	}
	if msgs[0].Offer != nil {
		t.Error("text message carries an offer summary")
	}
	got := msgs[1].Offer
	if got == nil {
		t.Fatal("offer message lost its offer summary")
	}
	if got.ID != "offer-1" || got.AmountCents != 800_000 || got.Status != model.OfferPending {
		t.Errorf("offer summary = %+v", got)
	}
}

func TestGetConversationHydratesForViewer(t *testing.T) {
	db := openTestMarketDB(t)
	convs := NewSQLiteConversationRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	conv := &model.Conversation{
		ID:        "conv-1",
		ListingID: "listing-1",
		UpdatedAt: base,
		Participants: []model.Participant{
			{ID: "user-buyer", Name: "James Smith"},
			{ID: "user-seller", Name: "Mere Kahu"},
		},
	}
	if err := convs.CreateConversation(ctx, conv); err != nil {
		t.Fatal(err)
	}
	for i, content := range []string{"hi", "is it negotiable?"} {
		if err := convs.AppendMessage(ctx, &model.Message{
			ID:             "msg-" + content[:2],
			ConversationID: "conv-1",
			SenderID:       "user-buyer",
			Content:        content,
			Type:           model.MessageText,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := convs.GetConversation(ctx, "conv-1", "user-seller")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Participants) != 2 {
		t.Errorf("got %d participants, want 2", len(got.Participants))
	}
	if got.UnreadCount != 2 {
		t.Errorf("unread count for the seller = %d, want 2", got.UnreadCount)
	}
	if got.LastMessage == nil || got.LastMessage.Content != "is it negotiable?" {
		t.Errorf("last message = %+v", got.LastMessage)
	}

	// the sender sees their own messages as read
	asBuyer, err := convs.GetConversation(ctx, "conv-1", "user-buyer")
	if err != nil {
		t.Fatal(err)
	}
	if asBuyer.UnreadCount != 0 {
		t.Errorf("unread count for the buyer = %d, want 0", asBuyer.UnreadCount)
	}
}
