package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/audit"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/repository"
	"github.com/gcmaps/gcm-server-go/internal/session"
	"github.com/gcmaps/gcm-server-go/internal/util"
)

type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type RegisterParams struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
}

type AuthService struct {
	users    repository.UserRepository
	registry *session.Registry
}

func NewAuthService(users repository.UserRepository, registry *session.Registry) *AuthService {
	return &AuthService{users: users, registry: registry}
}

// Login verifies credentials and creates the user's single session.
// A user who already holds a live session gets ALREADY_LOGGED_IN; the
// existing session stays untouched.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if util.Blank(username) || util.Blank(password) {
		return nil, apperr.Validation("username and password are required")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if user == nil || !util.CheckPasswordHash(password, user.PasswordHash) {
		audit.Log(ctx, audit.Event{
			Type:     audit.EventLoginFailure,
			Username: username,
		})
		return nil, apperr.Unauthorized("invalid username or password")
	}
	if !user.IsActive {
		audit.Log(ctx, audit.Event{
			Type:     audit.EventLoginFailure,
			UserID:   user.ID,
			Username: username,
			Details:  map[string]interface{}{"reason": "account disabled"},
		})
		return nil, apperr.Unauthorized("account is disabled")
	}

	token, err := s.registry.Create(user.ID, user.Username, user.Role)
	if err != nil {
		audit.Log(ctx, audit.Event{
			Type:     audit.EventLoginConflict,
			UserID:   user.ID,
			Username: username,
		})
		return nil, err
	}

	audit.Log(ctx, audit.Event{
		Type:     audit.EventLoginSuccess,
		UserID:   user.ID,
		Username: user.Username,
	})

	return &LoginResult{Token: token, User: user}, nil
}

// Logout invalidates the session. A token that is already gone is not
// an error; logout is idempotent from the client's point of view.
func (s *AuthService) Logout(ctx context.Context, token string) {
	info := s.registry.Validate(token)
	if !s.registry.Invalidate(token) {
		return
	}
	audit.Log(ctx, audit.Event{
		Type:     audit.EventLogout,
		UserID:   info.UserID,
		Username: info.Username,
	})
}

// Register creates a customer account. Staff roles are provisioned out
// of band.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	if !util.ValidUsername(params.Username) {
		return nil, apperr.Validation("username must be 3-32 characters (letters, digits, . _ -)")
	}
	if !util.ValidEmail(params.Email) {
		return nil, apperr.Validation("invalid email address")
	}
	if !util.ValidPassword(params.Password) {
		return nil, apperr.Validation("password must be 8-72 characters")
	}
	if params.Phone != nil && !util.ValidPhone(*params.Phone) {
		return nil, apperr.Validation("invalid phone number")
	}

	if existing, err := s.users.FindByUsername(ctx, params.Username); err != nil {
		return nil, apperr.Database(err)
	} else if existing != nil {
		return nil, apperr.Validation("username is already taken")
	}
	if existing, err := s.users.FindByEmail(ctx, params.Email); err != nil {
		return nil, apperr.Database(err)
	} else if existing != nil {
		return nil, apperr.Validation("email is already registered")
	}

	hash, err := util.HashPassword(params.Password)
	if err != nil {
		return nil, apperr.Internal("could not hash password")
	}

	user, err := s.users.Create(ctx, model.CreateUserParams{
		Username:     params.Username,
		PasswordHash: hash,
		Email:        params.Email,
		Phone:        params.Phone,
		Role:         model.RoleCustomer,
	})
	if err != nil {
		return nil, apperr.Database(err)
	}

	audit.Log(ctx, audit.Event{
		Type:     audit.EventRegister,
		UserID:   user.ID,
		Username: user.Username,
	})
	log.Info().Int64("userId", user.ID).Str("username", user.Username).Msg("customer registered")

	return user, nil
}
