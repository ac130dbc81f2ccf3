package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/gcmaps/gcm-server-go/internal/database"
	"github.com/gcmaps/gcm-server-go/internal/model"
)

type PricingRepository interface {
	Create(ctx context.Context, params model.CreatePricingRequestParams) (*model.PricingRequest, error)
	FindByID(ctx context.Context, id int64) (*model.PricingRequest, error)
	ListPending(ctx context.Context) ([]model.PricingRequest, error)
	// HasPending reports whether the city already has an undecided
	// pricing request.
	HasPending(ctx context.Context, cityID int64) (bool, error)
	MarkDecided(ctx context.Context, id int64, status model.ApprovalStatus, decidedBy int64, reason string) (bool, error)
	WithTx(tx *sqlx.Tx) PricingRepository
}

type pricingRepo struct {
	db database.DBTX
}

func NewPricingRepository(db *sqlx.DB) PricingRepository {
	return &pricingRepo{db: db}
}

func (r *pricingRepo) WithTx(tx *sqlx.Tx) PricingRepository {
	return &pricingRepo{db: tx}
}

func (r *pricingRepo) Create(ctx context.Context, params model.CreatePricingRequestParams) (*model.PricingRequest, error) {
	var request model.PricingRequest
	err := r.db.GetContext(ctx, &request, `
		INSERT INTO pricing_requests (city_id, current_price, proposed_price, justification, status, created_by)
		VALUES ($1, $2, $3, $4, 'PENDING', $5)
		RETURNING *
	`, params.CityID, params.CurrentPrice, params.ProposedPrice, params.Justification, params.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *pricingRepo) FindByID(ctx context.Context, id int64) (*model.PricingRequest, error) {
	var request model.PricingRequest
	err := r.db.GetContext(ctx, &request, `
		SELECT r.*, c.name AS city_name
		FROM pricing_requests r
		JOIN cities c ON c.id = r.city_id
		WHERE r.id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *pricingRepo) ListPending(ctx context.Context) ([]model.PricingRequest, error) {
	requests := []model.PricingRequest{}
	err := r.db.SelectContext(ctx, &requests, `
		SELECT r.*, c.name AS city_name
		FROM pricing_requests r
		JOIN cities c ON c.id = r.city_id
		WHERE r.status = 'PENDING'
		ORDER BY r.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *pricingRepo) HasPending(ctx context.Context, cityID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM pricing_requests WHERE city_id = $1 AND status = 'PENDING'
		)
	`, cityID)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *pricingRepo) MarkDecided(ctx context.Context, id int64, status model.ApprovalStatus, decidedBy int64, reason string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE pricing_requests SET
			status = $2,
			decided_by = $3,
			decided_at = NOW(),
			rejection_reason = NULLIF($4, '')
		WHERE id = $1 AND status = 'PENDING'
	`, id, status, decidedBy, reason)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
