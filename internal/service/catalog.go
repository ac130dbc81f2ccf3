package service

import (
	"context"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/repository"
	"github.com/gcmaps/gcm-server-go/internal/util"
)

// CatalogService serves the public browse and search surface. None of
// these operations require a session.
type CatalogService struct {
	cities repository.CityRepository
}

func NewCatalogService(cities repository.CityRepository) *CatalogService {
	return &CatalogService{cities: cities}
}

func (s *CatalogService) GetCatalog(ctx context.Context) ([]model.City, error) {
	cities, err := s.cities.ListCatalog(ctx)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return cities, nil
}

func (s *CatalogService) GetCityMaps(ctx context.Context, cityID int64) ([]model.Map, error) {
	city, err := s.cities.FindByID(ctx, cityID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if city == nil {
		return nil, apperr.NotFound("city")
	}
	maps, err := s.cities.ListMaps(ctx, cityID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return maps, nil
}

func (s *CatalogService) SearchByCityName(ctx context.Context, query string) ([]model.CitySearchResult, error) {
	if util.Blank(query) {
		return nil, apperr.Validation("search query is required")
	}
	results, err := s.cities.SearchByCityName(ctx, query)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return results, nil
}

func (s *CatalogService) SearchByPoiName(ctx context.Context, query string) ([]model.CitySearchResult, error) {
	if util.Blank(query) {
		return nil, apperr.Validation("search query is required")
	}
	results, err := s.cities.SearchByPoiName(ctx, query)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return results, nil
}

func (s *CatalogService) SearchByCityAndPoi(ctx context.Context, cityQuery, poiQuery string) ([]model.CitySearchResult, error) {
	if util.Blank(cityQuery) || util.Blank(poiQuery) {
		return nil, apperr.Validation("both city and POI queries are required")
	}
	results, err := s.cities.SearchByCityAndPoi(ctx, cityQuery, poiQuery)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return results, nil
}

func (s *CatalogService) GetCurrentPrices(ctx context.Context) ([]model.CityPriceInfo, error) {
	prices, err := s.cities.ListPrices(ctx)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return prices, nil
}

func (s *CatalogService) GetCityPrice(ctx context.Context, cityID int64) (*model.CityPriceInfo, error) {
	info, err := s.cities.GetPrice(ctx, cityID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if info == nil {
		return nil, apperr.NotFound("city")
	}
	return info, nil
}
