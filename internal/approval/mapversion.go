package approval

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/repository"
)

const KindMapVersion = "MAP_VERSION"

// MapVersionKind runs the approval workflow for proposed map content.
// Approving a version publishes it as the map's live content; the
// fan-out is every user entitled to the version's city at decision
// time. Rejection notifies only the author.
type MapVersionKind struct {
	versions  repository.MapVersionRepository
	purchases repository.PurchaseRepository
}

func NewMapVersionKind(versions repository.MapVersionRepository, purchases repository.PurchaseRepository) *MapVersionKind {
	return &MapVersionKind{versions: versions, purchases: purchases}
}

func (k *MapVersionKind) Name() string {
	return KindMapVersion
}

func (k *MapVersionKind) Decide(ctx context.Context, tx *sqlx.Tx, entityID int64, status model.ApprovalStatus, deciderID int64, reason string) (*Outcome, error) {
	versions := k.versions.WithTx(tx)

	version, err := versions.FindByID(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, apperr.NotFound("map version")
	}

	decided, err := versions.MarkDecided(ctx, entityID, status, deciderID, reason)
	if err != nil {
		return nil, err
	}
	if !decided {
		return nil, apperr.Validation(fmt.Sprintf("map version %d is already %s", entityID, version.Status))
	}

	// The row was fetched before the decision; stamp the decision onto
	// it so the caller sees the committed state.
	now := time.Now()
	version.Status = status
	version.DecidedBy = &deciderID
	version.DecidedAt = &now
	if status == model.StatusRejected {
		version.RejectionReason = &reason
	}

	outcome := &Outcome{
		EntityType: model.EntityMapVersion,
		EntityID:   entityID,
		Status:     status,
		AuditDetails: map[string]any{
			"mapId":  version.MapID,
			"cityId": version.CityID,
		},
		Entity: version,
	}

	if status == model.StatusApproved {
		if err := versions.PublishLive(ctx, version.MapID, version.ID); err != nil {
			return nil, err
		}

		recipients, err := k.purchases.WithTx(tx).EntitledUserIDs(ctx, version.CityID)
		if err != nil {
			return nil, err
		}

		outcome.AuditAction = model.AuditVersionApproved
		body := fmt.Sprintf("Map %q has been updated.", version.MapName)
		for _, userID := range recipients {
			outcome.Notices = append(outcome.Notices, Notice{
				UserID:    userID,
				Title:     "Map updated",
				Body:      body,
				EventType: "MAP_UPDATED",
				EventData: map[string]any{
					"mapId":     version.MapID,
					"cityId":    version.CityID,
					"versionId": version.ID,
				},
			})
		}
		return outcome, nil
	}

	outcome.AuditAction = model.AuditVersionRejected
	outcome.Notices = []Notice{{
		UserID:    version.CreatedBy,
		Title:     "Map version rejected",
		Body:      fmt.Sprintf("Your version for map %q was rejected: %s", version.MapName, reason),
		EventType: "VERSION_REJECTED",
		EventData: map[string]any{
			"versionId": version.ID,
			"mapId":     version.MapID,
			"reason":    reason,
		},
	}}
	return outcome, nil
}
