package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/gcmaps/gcm-server-go/internal/database"
	"github.com/gcmaps/gcm-server-go/internal/model"
)

type PurchaseRepository interface {
	Create(ctx context.Context, params model.CreatePurchaseParams) (*model.Purchase, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Purchase, error)
	// GetEntitlement resolves the user's strongest live entitlement for a
	// city, nil when the user holds none.
	GetEntitlement(ctx context.Context, userID, cityID int64) (*model.Entitlement, error)
	// EntitledUserIDs returns every user holding a live entitlement for
	// the city. Used for approval fan-out.
	EntitledUserIDs(ctx context.Context, cityID int64) ([]int64, error)
	ExpiringWithin(ctx context.Context, days int) ([]model.ExpiringSubscription, error)
	HasReminder(ctx context.Context, subscriptionID int64, reminderType model.ReminderType) (bool, error)
	RecordReminder(ctx context.Context, subscriptionID int64, reminderType model.ReminderType) error
	WithTx(tx *sqlx.Tx) PurchaseRepository
}

type purchaseRepo struct {
	db database.DBTX
}

func NewPurchaseRepository(db *sqlx.DB) PurchaseRepository {
	return &purchaseRepo{db: db}
}

func (r *purchaseRepo) WithTx(tx *sqlx.Tx) PurchaseRepository {
	return &purchaseRepo{db: tx}
}

func (r *purchaseRepo) Create(ctx context.Context, params model.CreatePurchaseParams) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.db.GetContext(ctx, &purchase, `
		INSERT INTO purchases (user_id, city_id, purchase_type, price, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.UserID, params.CityID, params.Type, params.Price, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) ListByUser(ctx context.Context, userID int64) ([]model.Purchase, error) {
	purchases := []model.Purchase{}
	err := r.db.SelectContext(ctx, &purchases, `
		SELECT * FROM purchases
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepo) GetEntitlement(ctx context.Context, userID, cityID int64) (*model.Entitlement, error) {
	var purchase model.Purchase
	// ONE_TIME never expires and wins over a subscription that might.
	err := r.db.GetContext(ctx, &purchase, `
		SELECT * FROM purchases
		WHERE user_id = $1 AND city_id = $2
			AND (purchase_type = 'ONE_TIME' OR expires_at > NOW())
		ORDER BY CASE purchase_type WHEN 'ONE_TIME' THEN 0 ELSE 1 END
		LIMIT 1
	`, userID, cityID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model.Entitlement{
		CityID:      purchase.CityID,
		Type:        &purchase.Type,
		ExpiresAt:   purchase.ExpiresAt,
		CanView:     true,
		CanDownload: true,
	}, nil
}

func (r *purchaseRepo) EntitledUserIDs(ctx context.Context, cityID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT user_id
		FROM purchases
		WHERE city_id = $1 AND (purchase_type = 'ONE_TIME' OR expires_at > NOW())
	`, cityID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *purchaseRepo) ExpiringWithin(ctx context.Context, days int) ([]model.ExpiringSubscription, error) {
	subs := []model.ExpiringSubscription{}
	err := r.db.SelectContext(ctx, &subs, `
		SELECT p.id, p.user_id, u.username, u.email,
			p.city_id, c.name AS city_name, p.expires_at
		FROM purchases p
		JOIN users u ON u.id = p.user_id
		JOIN cities c ON c.id = p.city_id
		WHERE p.purchase_type = 'SUBSCRIPTION'
			AND p.expires_at > NOW()
			AND p.expires_at <= NOW() + ($1 || ' days')::interval
		ORDER BY p.expires_at
	`, days)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *purchaseRepo) HasReminder(ctx context.Context, subscriptionID int64, reminderType model.ReminderType) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM subscription_reminders
			WHERE subscription_id = $1 AND reminder_type = $2
		)
	`, subscriptionID, reminderType)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *purchaseRepo) RecordReminder(ctx context.Context, subscriptionID int64, reminderType model.ReminderType) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscription_reminders (subscription_id, reminder_type)
		VALUES ($1, $2)
		ON CONFLICT (subscription_id, reminder_type) DO NOTHING
	`, subscriptionID, reminderType)
	return err
}
