package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/gcmaps/gcm-server-go/internal/database"
	"github.com/gcmaps/gcm-server-go/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, userID int64, title, body string) (*model.Notification, error)
	ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	// MarkRead is owner-scoped; marking someone else's notification is a
	// silent no-op reported as false.
	MarkRead(ctx context.Context, id, userID int64) (bool, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	WithTx(tx *sqlx.Tx) NotificationRepository
}

type notificationRepo struct {
	db database.DBTX
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) WithTx(tx *sqlx.Tx) NotificationRepository {
	return &notificationRepo{db: tx}
}

func (r *notificationRepo) Create(ctx context.Context, userID int64, title, body string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.GetContext(ctx, &n, `
		INSERT INTO notifications (user_id, title, body)
		VALUES ($1, $2, $3)
		RETURNING *
	`, userID, title, body)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]model.Notification, error) {
	notifications := []model.Notification{}
	query := `
		SELECT * FROM notifications
		WHERE user_id = $1
	`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	err := r.db.SelectContext(ctx, &notifications, query, userID)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepo) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
