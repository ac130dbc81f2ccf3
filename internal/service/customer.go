package service

import (
	"context"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/repository"
	"github.com/gcmaps/gcm-server-go/internal/util"
)

type CustomerService struct {
	users     repository.UserRepository
	purchases repository.PurchaseRepository
}

func NewCustomerService(users repository.UserRepository, purchases repository.PurchaseRepository) *CustomerService {
	return &CustomerService{users: users, purchases: purchases}
}

func (s *CustomerService) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user")
	}
	return user, nil
}

func (s *CustomerService) UpdateProfile(ctx context.Context, userID int64, params model.UpdateProfileParams) (*model.User, error) {
	if params.Email == nil && params.Phone == nil {
		return nil, apperr.Validation("nothing to update")
	}
	if params.Email != nil && !util.ValidEmail(*params.Email) {
		return nil, apperr.Validation("invalid email address")
	}
	if params.Phone != nil && !util.ValidPhone(*params.Phone) {
		return nil, apperr.Validation("invalid phone number")
	}

	if params.Email != nil {
		existing, err := s.users.FindByEmail(ctx, *params.Email)
		if err != nil {
			return nil, apperr.Database(err)
		}
		if existing != nil && existing.ID != userID {
			return nil, apperr.Validation("email is already registered")
		}
	}

	if err := s.users.UpdateProfile(ctx, userID, params); err != nil {
		return nil, apperr.Database(err)
	}
	return s.GetProfile(ctx, userID)
}

// ListCustomers is the admin view: every customer with purchase counts.
func (s *CustomerService) ListCustomers(ctx context.Context) ([]model.CustomerListItem, error) {
	customers, err := s.users.ListCustomers(ctx)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return customers, nil
}

func (s *CustomerService) GetCustomerPurchases(ctx context.Context, customerID int64) ([]model.Purchase, error) {
	user, err := s.users.FindByID(ctx, customerID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if user == nil {
		return nil, apperr.NotFound("customer")
	}
	purchases, err := s.purchases.ListByUser(ctx, customerID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return purchases, nil
}
