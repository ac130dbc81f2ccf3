package service

import (
	"context"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/repository"
)

type NotificationService struct {
	notifications repository.NotificationRepository
}

func NewNotificationService(notifications repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) ListMine(ctx context.Context, userID int64, unreadOnly bool) ([]model.Notification, error) {
	notifications, err := s.notifications.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	count, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return 0, apperr.Database(err)
	}
	return count, nil
}

// MarkAllRead clears the user's unread notifications and returns how
// many were cleared.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	cleared, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperr.Database(err)
	}
	return cleared, nil
}

// MarkRead is owner-scoped: a notification belonging to someone else
// looks like it does not exist.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	ok, err := s.notifications.MarkRead(ctx, id, userID)
	if err != nil {
		return apperr.Database(err)
	}
	if !ok {
		return apperr.NotFound("notification")
	}
	return nil
}
