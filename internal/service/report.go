package service

import (
	"context"
	"time"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/repository"
)

const reportMaxRangeDays = 366

type ReportService struct {
	stats repository.StatsRepository
}

func NewReportService(stats repository.StatsRepository) *ReportService {
	return &ReportService{stats: stats}
}

// ActivityReport aggregates daily counters over a date range, for one
// city or the whole catalog.
func (s *ReportService) ActivityReport(ctx context.Context, cityID *int64, from, to time.Time) (*model.ActivityReport, error) {
	if to.Before(from) {
		return nil, apperr.Validation("report range end precedes start")
	}
	if to.Sub(from) > reportMaxRangeDays*24*time.Hour {
		return nil, apperr.Validation("report range is limited to one year")
	}

	rows, err := s.stats.Aggregate(ctx, cityID, from, to)
	if err != nil {
		return nil, apperr.Database(err)
	}

	report := &model.ActivityReport{
		CityID: cityID,
		From:   from,
		To:     to,
		Rows:   rows,
	}
	for _, row := range rows {
		switch row.Metric {
		case model.MetricView:
			report.Views += row.Count
		case model.MetricDownload:
			report.Downloads += row.Count
		case model.MetricPurchaseOneTime:
			report.OneTimeSales += row.Count
		case model.MetricPurchaseSubscription:
			report.Subscriptions += row.Count
		}
	}
	return report, nil
}
