package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/util"
)

// Info is the identity a valid token attributes a request to.
type Info struct {
	UserID    int64
	Username  string
	Role      model.Role
	CreatedAt time.Time
}

// Registry maps bearer tokens to identities and enforces at most one
// live session per identity. Sessions are in-memory only: a restart
// logs everyone out. The registry is an explicitly constructed,
// injected component; tests build a fresh one per test.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Info // token -> session
	byUser   map[int64]string // userID -> token
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Info),
		byUser:   make(map[int64]string),
	}
}

// Create issues a token for the identity. Both maps are updated under
// one lock so concurrent logins for the same identity cannot both pass
// the already-logged-in check.
func (r *Registry) Create(userID int64, username string, role model.Role) (string, error) {
	token, err := util.GenerateToken()
	if err != nil {
		return "", apperr.Internal("failed to generate session token").WithCause(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, loggedIn := r.byUser[userID]; loggedIn {
		return "", apperr.AlreadyLoggedIn()
	}

	r.sessions[token] = &Info{
		UserID:    userID,
		Username:  username,
		Role:      role,
		CreatedAt: time.Now(),
	}
	r.byUser[userID] = token

	log.Info().Int64("userId", userID).Str("username", username).Msg("session created")
	return token, nil
}

// Validate resolves a token to its session, or nil.
func (r *Registry) Validate(token string) *Info {
	if token == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.sessions[token]; ok {
		copied := *info
		return &copied
	}
	return nil
}

// Invalidate removes a session by token.
func (r *Registry) Invalidate(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.sessions[token]
	if !ok {
		return false
	}
	delete(r.sessions, token)
	delete(r.byUser, info.UserID)

	log.Info().Int64("userId", info.UserID).Str("username", info.Username).Msg("session invalidated")
	return true
}

// InvalidateUser force-logs-out an identity.
func (r *Registry) InvalidateUser(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.byUser[userID]
	if !ok {
		return false
	}
	delete(r.sessions, token)
	delete(r.byUser, userID)
	return true
}

// ActiveCount returns the number of live sessions.
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
