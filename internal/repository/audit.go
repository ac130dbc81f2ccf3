package repository

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/gcmaps/gcm-server-go/internal/database"
	"github.com/gcmaps/gcm-server-go/internal/model"
)

type AuditRepository interface {
	Insert(ctx context.Context, action string, actorID int64, entityType string, entityID int64, details any) error
	ListByEntity(ctx context.Context, entityType string, entityID int64) ([]model.AuditEntry, error)
	WithTx(tx *sqlx.Tx) AuditRepository
}

type auditRepo struct {
	db database.DBTX
}

func NewAuditRepository(db *sqlx.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) WithTx(tx *sqlx.Tx) AuditRepository {
	return &auditRepo{db: tx}
}

func (r *auditRepo) Insert(ctx context.Context, action string, actorID int64, entityType string, entityID int64, details any) error {
	var detailsJSON []byte
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return err
		}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (action, actor_id, entity_type, entity_id, details_json)
		VALUES ($1, $2, $3, $4, $5)
	`, action, actorID, entityType, entityID, detailsJSON)
	return err
}

func (r *auditRepo) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]model.AuditEntry, error) {
	entries := []model.AuditEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at
	`, entityType, entityID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
