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

const KindPricingRequest = "PRICING_REQUEST"

// PricingKind runs the approval workflow for price change proposals.
// Approval writes the proposed price onto the city row; both outcomes
// notify the original submitter.
type PricingKind struct {
	pricing repository.PricingRepository
	cities  repository.CityRepository
}

func NewPricingKind(pricing repository.PricingRepository, cities repository.CityRepository) *PricingKind {
	return &PricingKind{pricing: pricing, cities: cities}
}

func (k *PricingKind) Name() string {
	return KindPricingRequest
}

func (k *PricingKind) Decide(ctx context.Context, tx *sqlx.Tx, entityID int64, status model.ApprovalStatus, deciderID int64, reason string) (*Outcome, error) {
	pricing := k.pricing.WithTx(tx)

	request, err := pricing.FindByID(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, apperr.NotFound("pricing request")
	}

	decided, err := pricing.MarkDecided(ctx, entityID, status, deciderID, reason)
	if err != nil {
		return nil, err
	}
	if !decided {
		return nil, apperr.Validation(fmt.Sprintf("pricing request %d is already %s", entityID, request.Status))
	}

	// The row was fetched before the decision; stamp the decision onto
	// it so the caller sees the committed state.
	now := time.Now()
	request.Status = status
	request.DecidedBy = &deciderID
	request.DecidedAt = &now
	if status == model.StatusRejected {
		request.RejectionReason = &reason
	}

	outcome := &Outcome{
		EntityType: model.EntityPricingRequest,
		EntityID:   entityID,
		Status:     status,
		AuditDetails: map[string]any{
			"cityId":        request.CityID,
			"proposedPrice": request.ProposedPrice,
		},
		Entity: request,
	}

	if status == model.StatusApproved {
		if err := k.cities.WithTx(tx).UpdatePrice(ctx, request.CityID, request.ProposedPrice); err != nil {
			return nil, err
		}

		outcome.AuditAction = model.AuditPricingApproved
		outcome.Notices = []Notice{{
			UserID: request.CreatedBy,
			Title:  "Price change approved",
			Body: fmt.Sprintf("Your price change for %s (%.2f -> %.2f) was approved.",
				request.CityName, request.CurrentPrice, request.ProposedPrice),
			EventType: "PRICING_APPROVED",
			EventData: map[string]any{
				"requestId": request.ID,
				"cityId":    request.CityID,
				"newPrice":  request.ProposedPrice,
			},
		}}
		return outcome, nil
	}

	outcome.AuditAction = model.AuditPricingRejected
	outcome.Notices = []Notice{{
		UserID:    request.CreatedBy,
		Title:     "Price change rejected",
		Body:      fmt.Sprintf("Your price change for %s was rejected: %s", request.CityName, reason),
		EventType: "PRICING_REJECTED",
		EventData: map[string]any{
			"requestId": request.ID,
			"cityId":    request.CityID,
			"reason":    reason,
		},
	}}
	return outcome, nil
}
