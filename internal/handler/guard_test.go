package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/model"
	"github.com/gcmaps/gcm-server-go/internal/protocol"
	"github.com/gcmaps/gcm-server-go/internal/session"
)

func sessionFor(t *testing.T, registry *session.Registry, userID int64, role model.Role) string {
	t.Helper()
	token, err := registry.Create(userID, "user", role)
	require.NoError(t, err)
	return token
}

func TestGuardRequire(t *testing.T) {
	ctx := context.Background()
	registry := session.NewRegistry()
	g := &guard{registry: registry}

	t.Run("no token", func(t *testing.T) {
		_, err := g.require(ctx, &protocol.Request{Type: protocol.OpGetMyProfile})
		assert.Equal(t, apperr.CodeAuthRequired, apperr.GetCode(err))
	})

	t.Run("stale token", func(t *testing.T) {
		_, err := g.require(ctx, &protocol.Request{Type: protocol.OpGetMyProfile, Token: "gone"})
		assert.Equal(t, apperr.CodeSessionExpired, apperr.GetCode(err))
	})

	t.Run("valid token attributes the request", func(t *testing.T) {
		token := sessionFor(t, registry, 42, model.RoleCustomer)
		req := &protocol.Request{Type: protocol.OpGetMyProfile, Token: token}

		info, err := g.require(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, int64(42), info.UserID)
		assert.Equal(t, int64(42), req.UserID)
	})
}

func TestGuardRequireRank(t *testing.T) {
	ctx := context.Background()
	registry := session.NewRegistry()
	g := &guard{registry: registry}

	t.Run("customer cannot submit versions", func(t *testing.T) {
		token := sessionFor(t, registry, 1, model.RoleCustomer)
		_, err := g.requireRank(ctx, &protocol.Request{Token: token}, model.RoleContentEditor)
		assert.Equal(t, apperr.CodeForbidden, apperr.GetCode(err))
	})

	t.Run("higher rank passes a lower bar", func(t *testing.T) {
		token := sessionFor(t, registry, 2, model.RoleCompanyManager)
		info, err := g.requireRank(ctx, &protocol.Request{Token: token}, model.RoleContentEditor)
		require.NoError(t, err)
		assert.Equal(t, model.RoleCompanyManager, info.Role)
	})

	t.Run("exact rank passes", func(t *testing.T) {
		token := sessionFor(t, registry, 3, model.RoleContentManager)
		_, err := g.requireRank(ctx, &protocol.Request{Token: token}, model.RoleContentManager)
		assert.NoError(t, err)
	})
}

func TestGuardRequireRole(t *testing.T) {
	ctx := context.Background()
	registry := session.NewRegistry()
	g := &guard{registry: registry}

	t.Run("exact role required", func(t *testing.T) {
		token := sessionFor(t, registry, 4, model.RoleAgent)
		_, err := g.requireRole(ctx, &protocol.Request{Token: token}, model.RoleAgent)
		assert.NoError(t, err)
	})

	t.Run("rank does not substitute", func(t *testing.T) {
		token := sessionFor(t, registry, 5, model.RoleCompanyManager)
		_, err := g.requireRole(ctx, &protocol.Request{Token: token}, model.RoleAgent)
		assert.Equal(t, apperr.CodeForbidden, apperr.GetCode(err))
	})
}
