package service

import (
	"context"
	"fmt"
	"time"

	"classifieds-api/internal/model"
	"classifieds-api/internal/repository"
	"classifieds-api/pkg/uid"
)

// NotificationService owns the notification list. All mutations go through
// it; nothing else touches the repository.
type NotificationService struct {
	repo repository.NotificationRepository
	now  func() time.Time
}

// NewNotificationService creates a new notification service.
func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	if repo == nil {
		return nil
	}
	return &NotificationService{repo: repo, now: time.Now}
}

// Publish stores a new notification for a user.
func (s *NotificationService) Publish(ctx context.Context, userID, event, title, body, targetID string) error {
	n := &model.Notification{
		ID:        uid.New(),
		UserID:    userID,
		Type:      event,
		Title:     title,
		Body:      body,
		TargetID:  targetID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// GetNotifications returns the user's notifications with the unread count,
// the shape clients poll for.
func (s *NotificationService) GetNotifications(ctx context.Context, userID string, limit int) (*model.NotificationPage, error) {
	notifications, err := s.repo.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread: %w", err)
	}
	return &model.NotificationPage{Notifications: notifications, UnreadCount: unread}, nil
}

// MarkAsRead marks a single notification read. Marking an already-read
// notification is a no-op, so concurrent calls are harmless.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}

// MarkAllAsRead marks every notification of the user read.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}
