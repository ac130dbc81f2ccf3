package model

import "time"

type Purchase struct {
	ID        int64        `db:"id" json:"id"`
	UserID    int64        `db:"user_id" json:"userId"`
	CityID    int64        `db:"city_id" json:"cityId"`
	Type      PurchaseType `db:"purchase_type" json:"type"`
	Price     float64      `db:"price" json:"price"`
	ExpiresAt *time.Time   `db:"expires_at" json:"expiresAt,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
}

type CreatePurchaseParams struct {
	UserID    int64
	CityID    int64
	Type      PurchaseType
	Price     float64
	ExpiresAt *time.Time
}

// Entitlement is a user's resolved right to a city's content.
type Entitlement struct {
	CityID      int64         `json:"cityId"`
	Type        *PurchaseType `json:"type,omitempty"`
	ExpiresAt   *time.Time    `json:"expiresAt,omitempty"`
	CanView     bool          `json:"canView"`
	CanDownload bool          `json:"canDownload"`
}

// ExpiringSubscription is one row of the sweeper's lookahead query.
type ExpiringSubscription struct {
	SubscriptionID int64     `db:"id" json:"subscriptionId"`
	UserID         int64     `db:"user_id" json:"userId"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	CityID         int64     `db:"city_id" json:"cityId"`
	CityName       string    `db:"city_name" json:"cityName"`
	ExpiresAt      time.Time `db:"expires_at" json:"expiresAt"`
}

// DaysUntilExpiry counts whole days from now until expiry, rounding up
// so a subscription expiring in 36 hours is a 2-day reminder.
func (s ExpiringSubscription) DaysUntilExpiry(now time.Time) int {
	d := s.ExpiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
