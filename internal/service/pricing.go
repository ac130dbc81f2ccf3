package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/approval"
	"github.com/gcmaps/gcm-server-go/internal/database"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/repository"
	"github.com/gcmaps/gcm-server-go/internal/util"
)

// PricingService owns price change proposals. At most one proposal per
// city may be pending at a time; decisions go through the approval
// engine.
type PricingService struct {
	pricing repository.PricingRepository
	cities  repository.CityRepository
	audits  repository.AuditRepository
	tx      database.TxRunner
	engine  *approval.Engine
}

func NewPricingService(
	pricing repository.PricingRepository,
	cities repository.CityRepository,
	audits repository.AuditRepository,
	tx database.TxRunner,
	engine *approval.Engine,
) *PricingService {
	return &PricingService{
		pricing: pricing,
		cities:  cities,
		audits:  audits,
		tx:      tx,
		engine:  engine,
	}
}

func (s *PricingService) Submit(ctx context.Context, submitterID, cityID int64, proposedPrice float64, justification string) (*model.PricingRequest, error) {
	if proposedPrice <= 0 {
		return nil, apperr.Validation("proposed price must be positive")
	}
	if util.Blank(justification) {
		return nil, apperr.Validation("a justification is required")
	}

	city, err := s.cities.FindByID(ctx, cityID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if city == nil {
		return nil, apperr.NotFound("city")
	}

	// The pending check runs inside the insert transaction; the partial
	// unique index on pending rows closes the window against a
	// concurrent submitter that passed the same check.
	var request *model.PricingRequest
	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		pricing := s.pricing.WithTx(tx)

		pending, err := pricing.HasPending(ctx, cityID)
		if err != nil {
			return err
		}
		if pending {
			return apperr.Validation("city already has a pending pricing request")
		}

		r, err := pricing.Create(ctx, model.CreatePricingRequestParams{
			CityID:        cityID,
			CurrentPrice:  city.Price,
			ProposedPrice: proposedPrice,
			Justification: justification,
			CreatedBy:     submitterID,
		})
		if err != nil {
			return err
		}
		if err := s.audits.WithTx(tx).Insert(ctx, model.AuditPricingRequested, submitterID, model.EntityPricingRequest, r.ID, map[string]any{
			"cityId":        cityID,
			"proposedPrice": proposedPrice,
		}); err != nil {
			return err
		}
		request = r
		return nil
	})
	if err != nil {
		if appErr, ok := apperr.As(err); ok {
			return nil, appErr
		}
		if database.IsUniqueViolation(err) {
			return nil, apperr.Validation("city already has a pending pricing request")
		}
		return nil, apperr.Database(err)
	}

	log.Info().
		Int64("requestId", request.ID).
		Int64("cityId", cityID).
		Float64("proposedPrice", proposedPrice).
		Msg("pricing request submitted")

	return request, nil
}

func (s *PricingService) ListPending(ctx context.Context) ([]model.PricingRequest, error) {
	requests, err := s.pricing.ListPending(ctx)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return requests, nil
}

func (s *PricingService) Approve(ctx context.Context, deciderID, requestID int64) (*model.PricingRequest, error) {
	outcome, err := s.engine.Decide(ctx, approval.KindPricingRequest, requestID, model.StatusApproved, deciderID, "")
	if err != nil {
		return nil, err
	}
	return outcome.Entity.(*model.PricingRequest), nil
}

func (s *PricingService) Reject(ctx context.Context, deciderID, requestID int64, reason string) (*model.PricingRequest, error) {
	outcome, err := s.engine.Decide(ctx, approval.KindPricingRequest, requestID, model.StatusRejected, deciderID, reason)
	if err != nil {
		return nil, err
	}
	return outcome.Entity.(*model.PricingRequest), nil
}
