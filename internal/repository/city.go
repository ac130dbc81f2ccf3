package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/gcmaps/gcm-server-go/internal/database"
	"github.com/gcmaps/gcm-server-go/internal/model"
)

type CityRepository interface {
	FindByID(ctx context.Context, id int64) (*model.City, error)
	ListCatalog(ctx context.Context) ([]model.City, error)
	ListMaps(ctx context.Context, cityID int64) ([]model.Map, error)
	ListPrices(ctx context.Context) ([]model.CityPriceInfo, error)
	GetPrice(ctx context.Context, cityID int64) (*model.CityPriceInfo, error)
	SearchByCityName(ctx context.Context, query string) ([]model.CitySearchResult, error)
	SearchByPoiName(ctx context.Context, query string) ([]model.CitySearchResult, error)
	SearchByCityAndPoi(ctx context.Context, cityQuery, poiQuery string) ([]model.CitySearchResult, error)
	UpdatePrice(ctx context.Context, cityID int64, price float64) error
	WithTx(tx *sqlx.Tx) CityRepository
}

type cityRepo struct {
	db database.DBTX
}

func NewCityRepository(db *sqlx.DB) CityRepository {
	return &cityRepo{db: db}
}

func (r *cityRepo) WithTx(tx *sqlx.Tx) CityRepository {
	return &cityRepo{db: tx}
}

func (r *cityRepo) FindByID(ctx context.Context, id int64) (*model.City, error) {
	var city model.City
	err := r.db.GetContext(ctx, &city, `
		SELECT * FROM cities WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &city, nil
}

func (r *cityRepo) ListCatalog(ctx context.Context) ([]model.City, error) {
	cities := []model.City{}
	err := r.db.SelectContext(ctx, &cities, `
		SELECT * FROM cities ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *cityRepo) ListMaps(ctx context.Context, cityID int64) ([]model.Map, error) {
	maps := []model.Map{}
	err := r.db.SelectContext(ctx, &maps, `
		SELECT * FROM maps WHERE city_id = $1 ORDER BY name
	`, cityID)
	if err != nil {
		return nil, err
	}
	return maps, nil
}

func (r *cityRepo) ListPrices(ctx context.Context) ([]model.CityPriceInfo, error) {
	prices := []model.CityPriceInfo{}
	err := r.db.SelectContext(ctx, &prices, `
		SELECT id, name, price FROM cities ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *cityRepo) GetPrice(ctx context.Context, cityID int64) (*model.CityPriceInfo, error) {
	var info model.CityPriceInfo
	err := r.db.GetContext(ctx, &info, `
		SELECT id, name, price FROM cities WHERE id = $1
	`, cityID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

const searchColumns = `
	SELECT c.id AS city_id, c.name AS city_name, c.description, c.price,
		COUNT(DISTINCT m.id) AS map_count,
		COUNT(DISTINCT p.id) AS poi_count
	FROM cities c
	LEFT JOIN maps m ON m.city_id = c.id
	LEFT JOIN pois p ON p.map_id = m.id
`

func (r *cityRepo) SearchByCityName(ctx context.Context, query string) ([]model.CitySearchResult, error) {
	results := []model.CitySearchResult{}
	err := r.db.SelectContext(ctx, &results, searchColumns+`
		WHERE c.name ILIKE '%' || $1 || '%'
		GROUP BY c.id
		ORDER BY c.name
	`, query)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cityRepo) SearchByPoiName(ctx context.Context, query string) ([]model.CitySearchResult, error) {
	results := []model.CitySearchResult{}
	err := r.db.SelectContext(ctx, &results, searchColumns+`
		WHERE c.id IN (
			SELECT m2.city_id FROM pois p2
			JOIN maps m2 ON m2.id = p2.map_id
			WHERE p2.name ILIKE '%' || $1 || '%'
		)
		GROUP BY c.id
		ORDER BY c.name
	`, query)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cityRepo) SearchByCityAndPoi(ctx context.Context, cityQuery, poiQuery string) ([]model.CitySearchResult, error) {
	results := []model.CitySearchResult{}
	err := r.db.SelectContext(ctx, &results, searchColumns+`
		WHERE c.name ILIKE '%' || $1 || '%'
		AND c.id IN (
			SELECT m2.city_id FROM pois p2
			JOIN maps m2 ON m2.id = p2.map_id
			WHERE p2.name ILIKE '%' || $2 || '%'
		)
		GROUP BY c.id
		ORDER BY c.name
	`, cityQuery, poiQuery)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cityRepo) UpdatePrice(ctx context.Context, cityID int64, price float64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE cities SET price = $2, updated_at = NOW() WHERE id = $1
	`, cityID, price)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
