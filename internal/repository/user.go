package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/gcmaps/gcm-server-go/internal/database"
	"github.com/gcmaps/gcm-server-go/internal/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, params model.CreateUserParams) (*model.User, error)
	UpdateProfile(ctx context.Context, id int64, params model.UpdateProfileParams) error
	ListCustomers(ctx context.Context) ([]model.CustomerListItem, error)
}

type userRepo struct {
	db database.DBTX
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE username = $1
	`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE email = $1
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		INSERT INTO users (username, password_hash, email, phone, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.Username, params.PasswordHash, params.Email, params.Phone, params.Role)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, id int64, params model.UpdateProfileParams) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			email = COALESCE($2, email),
			phone = COALESCE($3, phone),
			updated_at = NOW()
		WHERE id = $1
	`, id, params.Email, params.Phone)
	return err
}

func (r *userRepo) ListCustomers(ctx context.Context) ([]model.CustomerListItem, error) {
	customers := []model.CustomerListItem{}
	err := r.db.SelectContext(ctx, &customers, `
		SELECT u.id, u.username, u.email, u.is_active,
			COUNT(p.id) AS purchase_count,
			MAX(p.created_at) AS last_purchase
		FROM users u
		LEFT JOIN purchases p ON p.user_id = u.id
		WHERE u.role = 'CUSTOMER'
		GROUP BY u.id
		ORDER BY u.username
	`)
	if err != nil {
		return nil, err
	}
	return customers, nil
}
