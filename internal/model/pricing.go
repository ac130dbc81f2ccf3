package model

import "time"

// PricingRequest is a proposed price change for a city. At most one
// PENDING request per city is allowed at a time.
type PricingRequest struct {
	ID              int64          `db:"id" json:"id"`
	CityID          int64          `db:"city_id" json:"cityId"`
	CityName        string         `db:"city_name" json:"cityName"`
	CurrentPrice    float64        `db:"current_price" json:"currentPrice"`
	ProposedPrice   float64        `db:"proposed_price" json:"proposedPrice"`
	Justification   string         `db:"justification" json:"justification"`
	Status          ApprovalStatus `db:"status" json:"status"`
	CreatedBy       int64          `db:"created_by" json:"createdBy"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	DecidedBy       *int64         `db:"decided_by" json:"decidedBy,omitempty"`
	DecidedAt       *time.Time     `db:"decided_at" json:"decidedAt,omitempty"`
	RejectionReason *string        `db:"rejection_reason" json:"rejectionReason,omitempty"`
}

type CreatePricingRequestParams struct {
	CityID        int64
	CurrentPrice  float64
	ProposedPrice float64
	Justification string
	CreatedBy     int64
}
