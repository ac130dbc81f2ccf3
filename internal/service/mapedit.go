package service

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/approval"
	"github.com/gcmaps/gcm-server-go/internal/database"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/repository"
	"github.com/gcmaps/gcm-server-go/internal/util"
)

// MapEditService owns the content revision lifecycle: editors submit
// versions, managers decide them through the approval engine, customers
// download the published result.
type MapEditService struct {
	versions  repository.MapVersionRepository
	purchases repository.PurchaseRepository
	stats     repository.StatsRepository
	audits    repository.AuditRepository
	tx        database.TxRunner
	engine    *approval.Engine
}

func NewMapEditService(
	versions repository.MapVersionRepository,
	purchases repository.PurchaseRepository,
	stats repository.StatsRepository,
	audits repository.AuditRepository,
	tx database.TxRunner,
	engine *approval.Engine,
) *MapEditService {
	return &MapEditService{
		versions:  versions,
		purchases: purchases,
		stats:     stats,
		audits:    audits,
		tx:        tx,
		engine:    engine,
	}
}

// SubmitVersion creates a new PENDING version. Several versions may be
// pending for the same map at once; they are decided independently.
func (s *MapEditService) SubmitVersion(ctx context.Context, editorID int64, mapID int64, content json.RawMessage, summary string) (*model.MapVersion, error) {
	if len(content) == 0 || !json.Valid(content) {
		return nil, apperr.Validation("content must be a valid JSON document")
	}
	if util.Blank(summary) {
		return nil, apperr.Validation("a change summary is required")
	}

	var version *model.MapVersion
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		v, err := s.versions.WithTx(tx).Create(ctx, model.CreateMapVersionParams{
			MapID:     mapID,
			Content:   content,
			Summary:   summary,
			CreatedBy: editorID,
		})
		if err != nil {
			return err
		}
		if err := s.audits.WithTx(tx).Insert(ctx, model.AuditVersionSubmitted, editorID, model.EntityMapVersion, v.ID, map[string]any{"mapId": mapID}); err != nil {
			return err
		}
		version = v
		return nil
	})
	if err != nil {
		return nil, apperr.Database(err)
	}

	log.Info().
		Int64("versionId", version.ID).
		Int64("mapId", mapID).
		Int64("editorId", editorID).
		Msg("map version submitted")

	return version, nil
}

func (s *MapEditService) ListPending(ctx context.Context) ([]model.MapVersion, error) {
	versions, err := s.versions.ListPending(ctx)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return versions, nil
}

func (s *MapEditService) GetVersion(ctx context.Context, id int64) (*model.MapVersion, error) {
	version, err := s.versions.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if version == nil {
		return nil, apperr.NotFound("map version")
	}
	return version, nil
}

func (s *MapEditService) Approve(ctx context.Context, deciderID, versionID int64) (*model.MapVersion, error) {
	outcome, err := s.engine.Decide(ctx, approval.KindMapVersion, versionID, model.StatusApproved, deciderID, "")
	if err != nil {
		return nil, err
	}
	return outcome.Entity.(*model.MapVersion), nil
}

func (s *MapEditService) Reject(ctx context.Context, deciderID, versionID int64, reason string) (*model.MapVersion, error) {
	outcome, err := s.engine.Decide(ctx, approval.KindMapVersion, versionID, model.StatusRejected, deciderID, reason)
	if err != nil {
		return nil, err
	}
	return outcome.Entity.(*model.MapVersion), nil
}

// Download hands out an approved version's content to an entitled user
// and records the download against the city's daily stats.
func (s *MapEditService) Download(ctx context.Context, userID, versionID int64) (*model.MapVersion, error) {
	version, err := s.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if version.Status != model.StatusApproved {
		return nil, apperr.Validation("only approved versions can be downloaded")
	}

	ent, err := s.purchases.GetEntitlement(ctx, userID, version.CityID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if ent == nil || !ent.CanDownload {
		return nil, apperr.Forbidden("no entitlement for this city")
	}

	if err := s.stats.Increment(ctx, version.CityID, model.MetricDownload); err != nil {
		log.Warn().Err(err).Int64("cityId", version.CityID).Msg("download stat not recorded")
	}
	return version, nil
}

// RecordView counts a map view for reporting. Best effort from the
// caller's point of view but a failure is still surfaced.
func (s *MapEditService) RecordView(ctx context.Context, cityID int64) error {
	if err := s.stats.Increment(ctx, cityID, model.MetricView); err != nil {
		return apperr.Database(err)
	}
	return nil
}
