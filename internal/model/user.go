package model

import "time"

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Email        string    `db:"email" json:"email"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Role         Role      `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateUserParams struct {
	Username     string
	PasswordHash string
	Email        string
	Phone        *string
	Role         Role
}

type UpdateProfileParams struct {
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// CustomerListItem is the admin-facing customer summary row.
type CustomerListItem struct {
	ID            int64      `db:"id" json:"id"`
	Username      string     `db:"username" json:"username"`
	Email         string     `db:"email" json:"email"`
	IsActive      bool       `db:"is_active" json:"isActive"`
	PurchaseCount int        `db:"purchase_count" json:"purchaseCount"`
	LastPurchase  *time.Time `db:"last_purchase" json:"lastPurchase,omitempty"`
}
