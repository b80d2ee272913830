package service

import (
	"context"
	"testing"

	"classifieds-api/internal/model"
)

func conversationFixture() []model.Conversation {
	return []model.Conversation{
		{
			ID: "conv-james",
			Listing: &model.ListingSummary{
				ID:       "listing-1",
				Title:    "2014 Toyota Corolla",
				SellerID: "user-me",
			},
			Participants: []model.Participant{
				{ID: "user-me", Name: "Mere Kahu"},
				{ID: "user-james", Name: "James Smith"},
			},
		},
		{
			ID: "conv-anna",
			Listing: &model.ListingSummary{
				ID:       "listing-2",
				Title:    "Mountain bike",
				SellerID: "user-me",
			},
			Participants: []model.Participant{
				{ID: "user-me", Name: "Mere Kahu"},
				{ID: "user-anna", Name: "Anna Lee"},
			},
		},
		{
			ID: "conv-buying",
			Listing: &model.ListingSummary{
				ID:       "listing-3",
				Title:    "Sofa",
				SellerID: "user-other",
			},
			Participants: []model.Participant{
				{ID: "user-me", Name: "Mere Kahu"},
				{ID: "user-other", Name: "James Brown"},
			},
		},
	}
}

func TestFilterConversationsSearchAndRole(t *testing.T) {
	convs := conversationFixture()

	got := FilterConversations(convs, ConversationFilter{
		Search:        "james",
		Filter:        "selling",
		CurrentUserID: "user-me",
	})
	if len(got) != 1 {
		t.Fatalf("got %d conversations, want 1", len(got))
	}
	if got[0].ID != "conv-james" {
		t.Errorf("got %s, want conv-james", got[0].ID)
	}
}

func TestFilterConversationsRoles(t *testing.T) {
	convs := conversationFixture()

	tests := []struct {
		filter string
		want   []string
	}{
		{"selling", []string{"conv-james", "conv-anna"}},
		{"buying", []string{"conv-buying"}},
		{"all", []string{"conv-james", "conv-anna", "conv-buying"}},
		{"", []string{"conv-james", "conv-anna", "conv-buying"}},
	}

	for _, tt := range tests {
		got := FilterConversations(convs, ConversationFilter{Filter: tt.filter, CurrentUserID: "user-me"})
		if len(got) != len(tt.want) {
			t.Errorf("filter %q: got %d conversations, want %d", tt.filter, len(got), len(tt.want))
			continue
		}
		for i, id := range tt.want {
			if got[i].ID != id {
				t.Errorf("filter %q: position %d = %s, want %s", tt.filter, i, got[i].ID, id)
			}
		}
	}
}

func TestFilterConversationsSearchIsCaseInsensitive(t *testing.T) {
	convs := conversationFixture()

	for _, search := range []string{"JAMES", "james", "  smith "} {
		got := FilterConversations(convs, ConversationFilter{Search: search, CurrentUserID: "user-me"})
		if len(got) == 0 {
			t.Errorf("search %q matched nothing", search)
		}
	}
}

func TestFilterConversationsNoMatch(t *testing.T) {
	got := FilterConversations(conversationFixture(), ConversationFilter{
		Search:        "nobody",
		CurrentUserID: "user-me",
	})
	if len(got) != 0 {
		t.Errorf("got %d conversations, want none", len(got))
	}
}

func TestGetConversationRole(t *testing.T) {
	conv := &model.Conversation{
		Listing: &model.ListingSummary{ID: "listing-1", SellerID: "user-seller"},
	}

	tests := []struct {
		name   string
		conv   *model.Conversation
		userID string
		want   ConversationRole
	}{
		{"seller is selling", conv, "user-seller", RoleSelling},
		{"anyone else is buying", conv, "user-buyer", RoleBuying},
		{"empty user", conv, "", RoleUnknown},
		{"nil conversation", nil, "user-seller", RoleUnknown},
		{"no listing", &model.Conversation{}, "user-seller", RoleUnknown},
	}

	for _, tt := range tests {
		if got := GetConversationRole(tt.conv, tt.userID); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestCreateConversationRejectsSellerSelf(t *testing.T) {
	listings := newFakeListingRepo(&model.Listing{
		ID:       "listing-1",
		SellerID: "user-seller",
		Status:   model.ListingActive,
	})
	svc := NewConversationService(newFakeConversationRepo(), listings, nil, nil)

	if _, err := svc.CreateConversation(context.Background(), "listing-1", "user-seller"); err == nil {
		t.Error("seller opened a conversation on their own listing")
	}
}

func TestCreateConversationReturnsExistingThread(t *testing.T) {
	listings := newFakeListingRepo(&model.Listing{
		ID:       "listing-1",
		SellerID: "user-seller",
		Status:   model.ListingActive,
	})
	convs := newFakeConversationRepo()
	svc := NewConversationService(convs, listings, nil, nil)

	first, err := svc.CreateConversation(context.Background(), "listing-1", "user-buyer")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.CreateConversation(context.Background(), "listing-1", "user-buyer")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("second call created a new thread %s, want %s", second.ID, first.ID)
	}
	if len(convs.conversations) != 1 {
		t.Errorf("store holds %d conversations, want 1", len(convs.conversations))
	}
}

func TestSendMessageValidation(t *testing.T) {
	convs := newFakeConversationRepo(&model.Conversation{
		ID:        "conv-1",
		ListingID: "listing-1",
		Participants: []model.Participant{
			{ID: "user-a"}, {ID: "user-b"},
		},
	})
	svc := NewConversationService(convs, newFakeListingRepo(), nil, nil)

	if _, err := svc.SendMessage(context.Background(), "conv-1", "user-a", "   ", model.MessageText); err == nil {
		t.Error("blank message was accepted")
	}
	if _, err := svc.SendMessage(context.Background(), "conv-1", "user-a", "hi", model.MessageOffer); err == nil {
		t.Error("offer-typed message was accepted through the text path")
	}
	if _, err := svc.SendMessage(context.Background(), "conv-1", "user-c", "hi", model.MessageText); err == nil {
		t.Error("non-participant was allowed to post")
	}

	msg, err := svc.SendMessage(context.Background(), "conv-1", "user-a", "still available?", model.MessageText)
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID == "" || msg.SenderID != "user-a" {
		t.Errorf("unexpected message shape: %+v", msg)
	}
	if len(convs.messages) != 1 {
		t.Errorf("store holds %d messages, want 1", len(convs.messages))
	}
}

func TestMarkAsReadAppliesSynchronouslyWithoutBuffer(t *testing.T) {
	convs := newFakeConversationRepo(&model.Conversation{
		ID: "conv-1",
		Participants: []model.Participant{
			{ID: "user-a"}, {ID: "user-b"},
		},
	})
	svc := NewConversationService(convs, newFakeListingRepo(), nil, nil)

	if err := svc.MarkAsRead(context.Background(), "conv-1", "user-a"); err != nil {
		t.Fatal(err)
	}
	if len(convs.receipts) != 1 {
		t.Fatalf("store holds %d receipts, want 1", len(convs.receipts))
	}
	r := convs.receipts[0]
	if r.ConversationID != "conv-1" || r.ViewerID != "user-a" || r.ReadAt.IsZero() {
		t.Errorf("unexpected receipt: %+v", r)
	}
}
