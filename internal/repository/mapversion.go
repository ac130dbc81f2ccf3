package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/gcmaps/gcm-server-go/internal/database"
	"github.com/gcmaps/gcm-server-go/internal/model"
)

type MapVersionRepository interface {
	Create(ctx context.Context, params model.CreateMapVersionParams) (*model.MapVersion, error)
	FindByID(ctx context.Context, id int64) (*model.MapVersion, error)
	ListPending(ctx context.Context) ([]model.MapVersion, error)
	ListByMap(ctx context.Context, mapID int64) ([]model.MapVersion, error)
	// MarkDecided moves a version out of PENDING. It reports false when
	// the version was already decided, without touching the row.
	MarkDecided(ctx context.Context, id int64, status model.ApprovalStatus, decidedBy int64, reason string) (bool, error)
	// PublishLive points the parent map at the approved version.
	PublishLive(ctx context.Context, mapID, versionID int64) error
	WithTx(tx *sqlx.Tx) MapVersionRepository
}

type mapVersionRepo struct {
	db database.DBTX
}

func NewMapVersionRepository(db *sqlx.DB) MapVersionRepository {
	return &mapVersionRepo{db: db}
}

func (r *mapVersionRepo) WithTx(tx *sqlx.Tx) MapVersionRepository {
	return &mapVersionRepo{db: tx}
}

func (r *mapVersionRepo) Create(ctx context.Context, params model.CreateMapVersionParams) (*model.MapVersion, error) {
	var version model.MapVersion
	err := r.db.GetContext(ctx, &version, `
		INSERT INTO map_versions (map_id, content, summary, status, created_by)
		VALUES ($1, $2, $3, 'PENDING', $4)
		RETURNING *
	`, params.MapID, params.Content, params.Summary, params.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *mapVersionRepo) FindByID(ctx context.Context, id int64) (*model.MapVersion, error) {
	var version model.MapVersion
	err := r.db.GetContext(ctx, &version, `
		SELECT v.*, m.city_id, m.name AS map_name
		FROM map_versions v
		JOIN maps m ON m.id = v.map_id
		WHERE v.id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *mapVersionRepo) ListPending(ctx context.Context) ([]model.MapVersion, error) {
	versions := []model.MapVersion{}
	err := r.db.SelectContext(ctx, &versions, `
		SELECT v.*, m.city_id, m.name AS map_name
		FROM map_versions v
		JOIN maps m ON m.id = v.map_id
		WHERE v.status = 'PENDING'
		ORDER BY v.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *mapVersionRepo) ListByMap(ctx context.Context, mapID int64) ([]model.MapVersion, error) {
	versions := []model.MapVersion{}
	err := r.db.SelectContext(ctx, &versions, `
		SELECT v.*, m.city_id, m.name AS map_name
		FROM map_versions v
		JOIN maps m ON m.id = v.map_id
		WHERE v.map_id = $1
		ORDER BY v.created_at DESC
	`, mapID)
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *mapVersionRepo) MarkDecided(ctx context.Context, id int64, status model.ApprovalStatus, decidedBy int64, reason string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE map_versions SET
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

func (r *mapVersionRepo) PublishLive(ctx context.Context, mapID, versionID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE maps SET live_version_id = $2, updated_at = NOW() WHERE id = $1
	`, mapID, versionID)
	return err
}
