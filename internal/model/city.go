package model

import "time"

type City struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Map is one named map inside a city. LiveVersionID points at the
// currently published content version, nil before first approval.
type Map struct {
	ID            int64     `db:"id" json:"id"`
	CityID        int64     `db:"city_id" json:"cityId"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description"`
	LiveVersionID *int64    `db:"live_version_id" json:"liveVersionId,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

type CityPriceInfo struct {
	CityID int64   `db:"id" json:"cityId"`
	Name   string  `db:"name" json:"name"`
	Price  float64 `db:"price" json:"price"`
}

type CitySearchResult struct {
	CityID      int64   `db:"city_id" json:"cityId"`
	CityName    string  `db:"city_name" json:"cityName"`
	Description string  `db:"description" json:"description"`
	Price       float64 `db:"price" json:"price"`
	MapCount    int     `db:"map_count" json:"mapCount"`
	PoiCount    int     `db:"poi_count" json:"poiCount"`
}
