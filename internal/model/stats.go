package model

import "time"

// Daily stat metrics.
type StatMetric string

const (
	MetricView                StatMetric = "VIEW"
	MetricDownload            StatMetric = "DOWNLOAD"
	MetricPurchaseOneTime     StatMetric = "PURCHASE_ONE_TIME"
	MetricPurchaseSubscription StatMetric = "PURCHASE_SUBSCRIPTION"
)

type DailyStat struct {
	CityID int64      `db:"city_id" json:"cityId"`
	Day    time.Time  `db:"day" json:"day"`
	Metric StatMetric `db:"metric" json:"metric"`
	Count  int64      `db:"count" json:"count"`
}

// ActivityReport aggregates daily stats over a date range for one city
// (or all cities when CityID is nil on the request).
type ActivityReport struct {
	CityID        *int64      `json:"cityId,omitempty"`
	From          time.Time   `json:"from"`
	To            time.Time   `json:"to"`
	Views         int64       `json:"views"`
	Downloads     int64       `json:"downloads"`
	OneTimeSales  int64       `json:"oneTimeSales"`
	Subscriptions int64       `json:"subscriptions"`
	Rows          []DailyStat `json:"rows"`
}
