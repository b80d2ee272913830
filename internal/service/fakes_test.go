package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"classifieds-api/internal/model"
	"classifieds-api/internal/repository"
)

// In-memory repository fakes for service tests.

var errStoreUnavailable = errors.New("store unavailable")

type fakeOfferRepo struct {
	offers map[string]*model.Offer

	// failUpdates makes the next N UpdateStatus calls fail.
	failUpdates int
	// failCreates makes the next N CreateOffer calls fail.
	failCreates int
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: map[string]*model.Offer{}}
}

func (f *fakeOfferRepo) CreateOffer(ctx context.Context, o *model.Offer) error {
	if f.failCreates > 0 {
		f.failCreates--
		return errStoreUnavailable
	}
	cp := *o
	f.offers[o.ID] = &cp
	return nil
}

func (f *fakeOfferRepo) GetOffer(ctx context.Context, id string) (*model.Offer, error) {
	o, ok := f.offers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOfferRepo) UpdateStatus(ctx context.Context, id string, status model.OfferStatus, respondedAt time.Time) error {
	if f.failUpdates > 0 {
		f.failUpdates--
		return errStoreUnavailable
	}
	o, ok := f.offers[id]
	if !ok {
		return sql.ErrNoRows
	}
	o.Status = status
	if !respondedAt.IsZero() {
		o.RespondedAt = &respondedAt
	}
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeOfferRepo) LatestForConversation(ctx context.Context, conversationID string) (*model.Offer, error) {
	var all []*model.Offer
	for _, o := range f.offers {
		if o.ConversationID == conversationID {
			all = append(all, o)
		}
	}
	if len(all) == 0 {
		return nil, nil
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	cp := *all[0]
	return &cp, nil
}

func (f *fakeOfferRepo) ExpirePendingBefore(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, o := range f.offers {
		if o.IsExpiredAt(now) {
			o.Status = model.OfferExpired
			n++
		}
	}
	return n, nil
}

type fakeListingRepo struct {
	listings  map[string]*model.Listing
	lastQuery repository.SearchQuery
}

func newFakeListingRepo(listings ...*model.Listing) *fakeListingRepo {
	f := &fakeListingRepo{listings: map[string]*model.Listing{}}
	for _, l := range listings {
		cp := *l
		f.listings[l.ID] = &cp
	}
	return f
}

func (f *fakeListingRepo) CreateListing(ctx context.Context, l *model.Listing) error {
	cp := *l
	f.listings[l.ID] = &cp
	return nil
}

func (f *fakeListingRepo) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListingRepo) GetListingByPublicID(ctx context.Context, publicID string) (*model.Listing, error) {
	for _, l := range f.listings {
		if l.PublicID == publicID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeListingRepo) Search(ctx context.Context, q repository.SearchQuery) ([]model.Listing, int64, error) {
	f.lastQuery = q
	return nil, 0, nil
}

func (f *fakeListingRepo) Reserve(ctx context.Context, listingID, buyerID string, until time.Time) error {
	l, ok := f.listings[listingID]
	if !ok || l.Status != model.ListingActive {
		return sql.ErrNoRows
	}
	l.Status = model.ListingReserved
	l.ReservedFor = buyerID
	l.ReservationExpiresAt = &until
	return nil
}

func (f *fakeListingRepo) ReleaseExpiredReservations(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, l := range f.listings {
		if l.ReservationLapsedAt(now) {
			l.Status = model.ListingActive
			l.ReservedFor = ""
			l.ReservationExpiresAt = nil
			n++
		}
	}
	return n, nil
}

func (f *fakeListingRepo) Close() error { return nil }

type fakeConversationRepo struct {
	conversations map[string]*model.Conversation
	messages      []model.Message
	receipts      []model.ReadReceipt
}

func newFakeConversationRepo(convs ...*model.Conversation) *fakeConversationRepo {
	f := &fakeConversationRepo{conversations: map[string]*model.Conversation{}}
	for _, c := range convs {
		cp := *c
		f.conversations[c.ID] = &cp
	}
	return f
}

func (f *fakeConversationRepo) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	cp := *conv
	f.conversations[conv.ID] = &cp
	return nil
}

func (f *fakeConversationRepo) GetConversation(ctx context.Context, id, viewerID string) (*model.Conversation, error) {
	c, ok := f.conversations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeConversationRepo) FindByListingAndBuyer(ctx context.Context, listingID, buyerID string) (*model.Conversation, error) {
	for _, c := range f.conversations {
		if c.ListingID != listingID {
			continue
		}
		for _, p := range c.Participants {
			if p.ID == buyerID {
				cp := *c
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeConversationRepo) ListForUser(ctx context.Context, viewerID string) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, c := range f.conversations {
		for _, p := range c.Participants {
			if p.ID == viewerID {
				out = append(out, *c)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeConversationRepo) AppendMessage(ctx context.Context, msg *model.Message) error {
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeConversationRepo) ListMessages(ctx context.Context, conversationID string, limit int) ([]model.Message, error) {
	var out []model.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeConversationRepo) ApplyReadReceipts(ctx context.Context, receipts []model.ReadReceipt) error {
	f.receipts = append(f.receipts, receipts...)
	return nil
}

type fakeNotificationRepo struct {
	notifications []model.Notification
}

func (f *fakeNotificationRepo) Insert(ctx context.Context, n *model.Notification) error {
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) ListForUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	out := []model.Notification{}
	for i := len(f.notifications) - 1; i >= 0; i-- {
		if f.notifications[i].UserID == userID {
			out = append(out, f.notifications[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotificationRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	n := 0
	for _, notif := range f.notifications {
		if notif.UserID == userID && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].UserID == userID {
			f.notifications[i].IsRead = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	for i := range f.notifications {
		if f.notifications[i].UserID == userID {
			f.notifications[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) Close() error { return nil }
