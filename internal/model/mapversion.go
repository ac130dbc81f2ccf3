package model

import (
	"encoding/json"
	"time"
)

// MapVersion is a proposed content revision for a map. Many versions may
// be pending for the same map at once; approval publishes the version as
// the map's live content.
type MapVersion struct {
	ID              int64           `db:"id" json:"id"`
	MapID           int64           `db:"map_id" json:"mapId"`
	CityID          int64           `db:"city_id" json:"cityId"`
	MapName         string          `db:"map_name" json:"mapName"`
	Content         json.RawMessage `db:"content" json:"content"`
	Summary         string          `db:"summary" json:"summary"`
	Status          ApprovalStatus  `db:"status" json:"status"`
	CreatedBy       int64           `db:"created_by" json:"createdBy"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	DecidedBy       *int64          `db:"decided_by" json:"decidedBy,omitempty"`
	DecidedAt       *time.Time      `db:"decided_at" json:"decidedAt,omitempty"`
	RejectionReason *string         `db:"rejection_reason" json:"rejectionReason,omitempty"`
}

type CreateMapVersionParams struct {
	MapID     int64
	Content   json.RawMessage
	Summary   string
	CreatedBy int64
}
