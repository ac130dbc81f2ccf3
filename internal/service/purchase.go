package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/repository"
)

const (
	subscriptionMinMonths = 1
	subscriptionMaxMonths = 12
)

// Charger settles a payment. The production gateway is out of scope;
// the default implementation approves every charge.
type Charger interface {
	Charge(ctx context.Context, userID int64, amount float64) error
}

// MockCharger approves everything.
type MockCharger struct{}

func (MockCharger) Charge(ctx context.Context, userID int64, amount float64) error {
	log.Info().Int64("userId", userID).Float64("amount", amount).Msg("mock charge approved")
	return nil
}

type PurchaseService struct {
	purchases repository.PurchaseRepository
	cities    repository.CityRepository
	stats     repository.StatsRepository
	charger   Charger
}

func NewPurchaseService(
	purchases repository.PurchaseRepository,
	cities repository.CityRepository,
	stats repository.StatsRepository,
	charger Charger,
) *PurchaseService {
	return &PurchaseService{
		purchases: purchases,
		cities:    cities,
		stats:     stats,
		charger:   charger,
	}
}

// PurchaseOneTime buys permanent access to a city at its current price.
func (s *PurchaseService) PurchaseOneTime(ctx context.Context, userID, cityID int64) (*model.Purchase, error) {
	city, err := s.requireCity(ctx, cityID)
	if err != nil {
		return nil, err
	}

	if err := s.charger.Charge(ctx, userID, city.Price); err != nil {
		return nil, apperr.Validation("payment was declined")
	}

	purchase, err := s.purchases.Create(ctx, model.CreatePurchaseParams{
		UserID: userID,
		CityID: cityID,
		Type:   model.PurchaseOneTime,
		Price:  city.Price,
	})
	if err != nil {
		return nil, apperr.Database(err)
	}

	s.recordStat(ctx, cityID, model.MetricPurchaseOneTime)
	return purchase, nil
}

// PurchaseSubscription buys timed access, charged per month at the
// city's current price.
func (s *PurchaseService) PurchaseSubscription(ctx context.Context, userID, cityID int64, months int) (*model.Purchase, error) {
	if months < subscriptionMinMonths || months > subscriptionMaxMonths {
		return nil, apperr.Validation("subscription length must be 1-12 months")
	}

	city, err := s.requireCity(ctx, cityID)
	if err != nil {
		return nil, err
	}

	total := city.Price * float64(months)
	if err := s.charger.Charge(ctx, userID, total); err != nil {
		return nil, apperr.Validation("payment was declined")
	}

	expiresAt := time.Now().AddDate(0, months, 0)
	purchase, err := s.purchases.Create(ctx, model.CreatePurchaseParams{
		UserID:    userID,
		CityID:    cityID,
		Type:      model.PurchaseSubscription,
		Price:     total,
		ExpiresAt: &expiresAt,
	})
	if err != nil {
		return nil, apperr.Database(err)
	}

	s.recordStat(ctx, cityID, model.MetricPurchaseSubscription)
	return purchase, nil
}

// GetEntitlement resolves what the user may do with a city's content.
// A user with no live purchase gets a zero entitlement, not an error.
func (s *PurchaseService) GetEntitlement(ctx context.Context, userID, cityID int64) (*model.Entitlement, error) {
	ent, err := s.purchases.GetEntitlement(ctx, userID, cityID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if ent == nil {
		return &model.Entitlement{CityID: cityID}, nil
	}
	return ent, nil
}

func (s *PurchaseService) CanDownload(ctx context.Context, userID, cityID int64) (bool, error) {
	ent, err := s.GetEntitlement(ctx, userID, cityID)
	if err != nil {
		return false, err
	}
	return ent.CanDownload, nil
}

func (s *PurchaseService) History(ctx context.Context, userID int64) ([]model.Purchase, error) {
	purchases, err := s.purchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return purchases, nil
}

func (s *PurchaseService) requireCity(ctx context.Context, cityID int64) (*model.City, error) {
	city, err := s.cities.FindByID(ctx, cityID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if city == nil {
		return nil, apperr.NotFound("city")
	}
	return city, nil
}

func (s *PurchaseService) recordStat(ctx context.Context, cityID int64, metric model.StatMetric) {
	if err := s.stats.Increment(ctx, cityID, metric); err != nil {
		log.Warn().Err(err).Int64("cityId", cityID).Str("metric", string(metric)).Msg("purchase stat not recorded")
	}
}
