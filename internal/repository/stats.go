package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gcmaps/gcm-server-go/internal/database"
	"github.com/gcmaps/gcm-server-go/internal/model"
)

type StatsRepository interface {
	// Increment upserts today's counter for the metric.
	Increment(ctx context.Context, cityID int64, metric model.StatMetric) error
	Aggregate(ctx context.Context, cityID *int64, from, to time.Time) ([]model.DailyStat, error)
	WithTx(tx *sqlx.Tx) StatsRepository
}

type statsRepo struct {
	db database.DBTX
}

func NewStatsRepository(db *sqlx.DB) StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) WithTx(tx *sqlx.Tx) StatsRepository {
	return &statsRepo{db: tx}
}

func (r *statsRepo) Increment(ctx context.Context, cityID int64, metric model.StatMetric) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_stats (city_id, day, metric, count)
		VALUES ($1, CURRENT_DATE, $2, 1)
		ON CONFLICT (city_id, day, metric) DO UPDATE SET count = daily_stats.count + 1
	`, cityID, metric)
	return err
}

func (r *statsRepo) Aggregate(ctx context.Context, cityID *int64, from, to time.Time) ([]model.DailyStat, error) {
	rows := []model.DailyStat{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT city_id, day, metric, count
		FROM daily_stats
		WHERE day BETWEEN $1 AND $2
			AND ($3::bigint IS NULL OR city_id = $3)
		ORDER BY day, city_id, metric
	`, from, to, cityID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
