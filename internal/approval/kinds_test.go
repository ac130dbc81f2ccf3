package approval

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/repository"
)

type mockPricingRepo struct {
	mock.Mock
}

func (m *mockPricingRepo) Create(ctx context.Context, params model.CreatePricingRequestParams) (*model.PricingRequest, error) {
	args := m.Called(ctx, params)
	request, _ := args.Get(0).(*model.PricingRequest)
	return request, args.Error(1)
}

func (m *mockPricingRepo) FindByID(ctx context.Context, id int64) (*model.PricingRequest, error) {
	args := m.Called(ctx, id)
	request, _ := args.Get(0).(*model.PricingRequest)
	return request, args.Error(1)
}

func (m *mockPricingRepo) ListPending(ctx context.Context) ([]model.PricingRequest, error) {
	args := m.Called(ctx)
	requests, _ := args.Get(0).([]model.PricingRequest)
	return requests, args.Error(1)
}

func (m *mockPricingRepo) HasPending(ctx context.Context, cityID int64) (bool, error) {
	args := m.Called(ctx, cityID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPricingRepo) MarkDecided(ctx context.Context, id int64, status model.ApprovalStatus, decidedBy int64, reason string) (bool, error) {
	args := m.Called(ctx, id, status, decidedBy, reason)
	return args.Bool(0), args.Error(1)
}

func (m *mockPricingRepo) WithTx(tx *sqlx.Tx) repository.PricingRepository {
	return m
}

type mockCityRepo struct {
	mock.Mock
}

func (m *mockCityRepo) FindByID(ctx context.Context, id int64) (*model.City, error) {
	args := m.Called(ctx, id)
	city, _ := args.Get(0).(*model.City)
	return city, args.Error(1)
}

func (m *mockCityRepo) ListCatalog(ctx context.Context) ([]model.City, error) {
	args := m.Called(ctx)
	cities, _ := args.Get(0).([]model.City)
	return cities, args.Error(1)
}

func (m *mockCityRepo) ListMaps(ctx context.Context, cityID int64) ([]model.Map, error) {
	args := m.Called(ctx, cityID)
	maps, _ := args.Get(0).([]model.Map)
	return maps, args.Error(1)
}

func (m *mockCityRepo) ListPrices(ctx context.Context) ([]model.CityPriceInfo, error) {
	args := m.Called(ctx)
	prices, _ := args.Get(0).([]model.CityPriceInfo)
	return prices, args.Error(1)
}

func (m *mockCityRepo) GetPrice(ctx context.Context, cityID int64) (*model.CityPriceInfo, error) {
	args := m.Called(ctx, cityID)
	price, _ := args.Get(0).(*model.CityPriceInfo)
	return price, args.Error(1)
}

func (m *mockCityRepo) SearchByCityName(ctx context.Context, query string) ([]model.CitySearchResult, error) {
	args := m.Called(ctx, query)
	results, _ := args.Get(0).([]model.CitySearchResult)
	return results, args.Error(1)
}

func (m *mockCityRepo) SearchByPoiName(ctx context.Context, query string) ([]model.CitySearchResult, error) {
	args := m.Called(ctx, query)
	results, _ := args.Get(0).([]model.CitySearchResult)
	return results, args.Error(1)
}

func (m *mockCityRepo) SearchByCityAndPoi(ctx context.Context, cityQuery, poiQuery string) ([]model.CitySearchResult, error) {
	args := m.Called(ctx, cityQuery, poiQuery)
	results, _ := args.Get(0).([]model.CitySearchResult)
	return results, args.Error(1)
}

func (m *mockCityRepo) UpdatePrice(ctx context.Context, cityID int64, price float64) error {
	args := m.Called(ctx, cityID, price)
	return args.Error(0)
}

func (m *mockCityRepo) WithTx(tx *sqlx.Tx) repository.CityRepository {
	return m
}

type mockVersionRepo struct {
	mock.Mock
}

func (m *mockVersionRepo) Create(ctx context.Context, params model.CreateMapVersionParams) (*model.MapVersion, error) {
	args := m.Called(ctx, params)
	version, _ := args.Get(0).(*model.MapVersion)
	return version, args.Error(1)
}

func (m *mockVersionRepo) FindByID(ctx context.Context, id int64) (*model.MapVersion, error) {
	args := m.Called(ctx, id)
	version, _ := args.Get(0).(*model.MapVersion)
	return version, args.Error(1)
}

func (m *mockVersionRepo) ListPending(ctx context.Context) ([]model.MapVersion, error) {
	args := m.Called(ctx)
	versions, _ := args.Get(0).([]model.MapVersion)
	return versions, args.Error(1)
}

func (m *mockVersionRepo) ListByMap(ctx context.Context, mapID int64) ([]model.MapVersion, error) {
	args := m.Called(ctx, mapID)
	versions, _ := args.Get(0).([]model.MapVersion)
	return versions, args.Error(1)
}

func (m *mockVersionRepo) MarkDecided(ctx context.Context, id int64, status model.ApprovalStatus, decidedBy int64, reason string) (bool, error) {
	args := m.Called(ctx, id, status, decidedBy, reason)
	return args.Bool(0), args.Error(1)
}

func (m *mockVersionRepo) PublishLive(ctx context.Context, mapID, versionID int64) error {
	args := m.Called(ctx, mapID, versionID)
	return args.Error(0)
}

func (m *mockVersionRepo) WithTx(tx *sqlx.Tx) repository.MapVersionRepository {
	return m
}

type mockPurchaseRepo struct {
	mock.Mock
}

func (m *mockPurchaseRepo) Create(ctx context.Context, params model.CreatePurchaseParams) (*model.Purchase, error) {
	args := m.Called(ctx, params)
	purchase, _ := args.Get(0).(*model.Purchase)
	return purchase, args.Error(1)
}

func (m *mockPurchaseRepo) ListByUser(ctx context.Context, userID int64) ([]model.Purchase, error) {
	args := m.Called(ctx, userID)
	purchases, _ := args.Get(0).([]model.Purchase)
	return purchases, args.Error(1)
}

func (m *mockPurchaseRepo) GetEntitlement(ctx context.Context, userID, cityID int64) (*model.Entitlement, error) {
	args := m.Called(ctx, userID, cityID)
	entitlement, _ := args.Get(0).(*model.Entitlement)
	return entitlement, args.Error(1)
}

func (m *mockPurchaseRepo) EntitledUserIDs(ctx context.Context, cityID int64) ([]int64, error) {
	args := m.Called(ctx, cityID)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *mockPurchaseRepo) ExpiringWithin(ctx context.Context, days int) ([]model.ExpiringSubscription, error) {
	args := m.Called(ctx, days)
	subs, _ := args.Get(0).([]model.ExpiringSubscription)
	return subs, args.Error(1)
}

func (m *mockPurchaseRepo) HasReminder(ctx context.Context, subscriptionID int64, reminderType model.ReminderType) (bool, error) {
	args := m.Called(ctx, subscriptionID, reminderType)
	return args.Bool(0), args.Error(1)
}

func (m *mockPurchaseRepo) RecordReminder(ctx context.Context, subscriptionID int64, reminderType model.ReminderType) error {
	args := m.Called(ctx, subscriptionID, reminderType)
	return args.Error(0)
}

func (m *mockPurchaseRepo) WithTx(tx *sqlx.Tx) repository.PurchaseRepository {
	return m
}

func pendingPricingRequest() *model.PricingRequest {
	return &model.PricingRequest{
		ID:            31,
		CityID:        4,
		CityName:      "Lisbon",
		CurrentPrice:  9.99,
		ProposedPrice: 12.50,
		Status:        model.StatusPending,
		CreatedBy:     8,
	}
}

func TestPricingKind_Approve(t *testing.T) {
	pricing := &mockPricingRepo{}
	cities := &mockCityRepo{}
	pricing.On("FindByID", mock.Anything, int64(31)).Return(pendingPricingRequest(), nil)
	pricing.On("MarkDecided", mock.Anything, int64(31), model.StatusApproved, int64(2), "").Return(true, nil)
	cities.On("UpdatePrice", mock.Anything, int64(4), 12.50).Return(nil)

	kind := NewPricingKind(pricing, cities)
	outcome, err := kind.Decide(context.Background(), nil, 31, model.StatusApproved, 2, "")
	require.NoError(t, err)

	request := outcome.Entity.(*model.PricingRequest)
	assert.Equal(t, model.StatusApproved, request.Status)
	require.NotNil(t, request.DecidedBy)
	assert.Equal(t, int64(2), *request.DecidedBy)
	assert.NotNil(t, request.DecidedAt)
	assert.Nil(t, request.RejectionReason)

	assert.Equal(t, model.AuditPricingApproved, outcome.AuditAction)
	require.Len(t, outcome.Notices, 1)
	assert.Equal(t, int64(8), outcome.Notices[0].UserID)
	assert.Equal(t, "PRICING_APPROVED", outcome.Notices[0].EventType)
	cities.AssertExpectations(t)
}

func TestPricingKind_Reject(t *testing.T) {
	pricing := &mockPricingRepo{}
	cities := &mockCityRepo{}
	pricing.On("FindByID", mock.Anything, int64(31)).Return(pendingPricingRequest(), nil)
	pricing.On("MarkDecided", mock.Anything, int64(31), model.StatusRejected, int64(2), "too steep").Return(true, nil)

	kind := NewPricingKind(pricing, cities)
	outcome, err := kind.Decide(context.Background(), nil, 31, model.StatusRejected, 2, "too steep")
	require.NoError(t, err)

	request := outcome.Entity.(*model.PricingRequest)
	assert.Equal(t, model.StatusRejected, request.Status)
	require.NotNil(t, request.RejectionReason)
	assert.Equal(t, "too steep", *request.RejectionReason)

	assert.Equal(t, model.AuditPricingRejected, outcome.AuditAction)
	require.Len(t, outcome.Notices, 1)
	assert.Equal(t, "PRICING_REJECTED", outcome.Notices[0].EventType)
	cities.AssertNotCalled(t, "UpdatePrice", mock.Anything, mock.Anything, mock.Anything)
}

func TestPricingKind_AlreadyDecided(t *testing.T) {
	pricing := &mockPricingRepo{}
	request := pendingPricingRequest()
	request.Status = model.StatusApproved
	pricing.On("FindByID", mock.Anything, int64(31)).Return(request, nil)
	pricing.On("MarkDecided", mock.Anything, int64(31), model.StatusRejected, int64(2), "late").Return(false, nil)

	kind := NewPricingKind(pricing, &mockCityRepo{})
	_, err := kind.Decide(context.Background(), nil, 31, model.StatusRejected, 2, "late")
	assert.Equal(t, apperr.CodeValidation, apperr.GetCode(err))
}

func pendingMapVersion() *model.MapVersion {
	return &model.MapVersion{
		ID:        77,
		MapID:     5,
		CityID:    4,
		MapName:   "Downtown",
		Status:    model.StatusPending,
		CreatedBy: 9,
	}
}

func TestMapVersionKind_ApproveFansOutToEntitledUsers(t *testing.T) {
	versions := &mockVersionRepo{}
	purchases := &mockPurchaseRepo{}
	versions.On("FindByID", mock.Anything, int64(77)).Return(pendingMapVersion(), nil)
	versions.On("MarkDecided", mock.Anything, int64(77), model.StatusApproved, int64(3), "").Return(true, nil)
	versions.On("PublishLive", mock.Anything, int64(5), int64(77)).Return(nil)
	purchases.On("EntitledUserIDs", mock.Anything, int64(4)).Return([]int64{21, 22, 23}, nil)

	kind := NewMapVersionKind(versions, purchases)
	outcome, err := kind.Decide(context.Background(), nil, 77, model.StatusApproved, 3, "")
	require.NoError(t, err)

	version := outcome.Entity.(*model.MapVersion)
	assert.Equal(t, model.StatusApproved, version.Status)
	require.NotNil(t, version.DecidedBy)
	assert.Equal(t, int64(3), *version.DecidedBy)
	assert.NotNil(t, version.DecidedAt)

	// One notice per user entitled to the city at decision time.
	assert.Equal(t, model.AuditVersionApproved, outcome.AuditAction)
	require.Len(t, outcome.Notices, 3)
	recipients := []int64{}
	for _, n := range outcome.Notices {
		recipients = append(recipients, n.UserID)
		assert.Equal(t, "MAP_UPDATED", n.EventType)
	}
	assert.ElementsMatch(t, []int64{21, 22, 23}, recipients)
	versions.AssertExpectations(t)
}

func TestMapVersionKind_RejectNotifiesOnlyAuthor(t *testing.T) {
	versions := &mockVersionRepo{}
	purchases := &mockPurchaseRepo{}
	versions.On("FindByID", mock.Anything, int64(77)).Return(pendingMapVersion(), nil)
	versions.On("MarkDecided", mock.Anything, int64(77), model.StatusRejected, int64(3), "broken geometry").Return(true, nil)

	kind := NewMapVersionKind(versions, purchases)
	outcome, err := kind.Decide(context.Background(), nil, 77, model.StatusRejected, 3, "broken geometry")
	require.NoError(t, err)

	version := outcome.Entity.(*model.MapVersion)
	assert.Equal(t, model.StatusRejected, version.Status)
	require.NotNil(t, version.RejectionReason)
	assert.Equal(t, "broken geometry", *version.RejectionReason)

	require.Len(t, outcome.Notices, 1)
	assert.Equal(t, int64(9), outcome.Notices[0].UserID)
	assert.Equal(t, "VERSION_REJECTED", outcome.Notices[0].EventType)
	versions.AssertNotCalled(t, "PublishLive", mock.Anything, mock.Anything, mock.Anything)
	purchases.AssertNotCalled(t, "EntitledUserIDs", mock.Anything, mock.Anything)
}

func TestMapVersionKind_NotFound(t *testing.T) {
	versions := &mockVersionRepo{}
	versions.On("FindByID", mock.Anything, int64(404)).Return(nil, nil)

	kind := NewMapVersionKind(versions, &mockPurchaseRepo{})
	_, err := kind.Decide(context.Background(), nil, 404, model.StatusApproved, 3, "")
	assert.Equal(t, apperr.CodeNotFound, apperr.GetCode(err))
}
