package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
	"github.com/gcmaps/gcm-server-go/internal/model"
)

func TestRegistry_SingleSessionInvariant(t *testing.T) {
	t.Run("second login for same user is rejected", func(t *testing.T) {
		r := NewRegistry()

		token, err := r.Create(1, "alice", model.RoleCustomer)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		_, err = r.Create(1, "alice", model.RoleCustomer)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeAlreadyLoggedIn, apperr.GetCode(err))
		assert.Equal(t, 1, r.ActiveCount())
	})

	t.Run("concurrent logins: exactly one succeeds", func(t *testing.T) {
		r := NewRegistry()

		const attempts = 50
		var wg sync.WaitGroup
		var mu sync.Mutex
		var successes, conflicts int

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := r.Create(42, "bob", model.RoleContentEditor)
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					successes++
				} else if apperr.GetCode(err) == apperr.CodeAlreadyLoggedIn {
					conflicts++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, attempts-1, conflicts)
		assert.Equal(t, 1, r.ActiveCount())
	})

	t.Run("logout then login issues a fresh token", func(t *testing.T) {
		r := NewRegistry()

		t1, err := r.Create(7, "carol", model.RoleCustomer)
		require.NoError(t, err)

		assert.True(t, r.Invalidate(t1))
		assert.Nil(t, r.Validate(t1))

		t2, err := r.Create(7, "carol", model.RoleCustomer)
		require.NoError(t, err)
		assert.NotEqual(t, t1, t2)
	})
}

func TestRegistry_Validate(t *testing.T) {
	r := NewRegistry()

	token, err := r.Create(9, "dave", model.RoleAgent)
	require.NoError(t, err)

	t.Run("valid token resolves identity", func(t *testing.T) {
		info := r.Validate(token)
		require.NotNil(t, info)
		assert.Equal(t, int64(9), info.UserID)
		assert.Equal(t, "dave", info.Username)
		assert.Equal(t, model.RoleAgent, info.Role)
	})

	t.Run("empty and unknown tokens resolve to nil", func(t *testing.T) {
		assert.Nil(t, r.Validate(""))
		assert.Nil(t, r.Validate("nope"))
	})

	t.Run("returned info is a copy", func(t *testing.T) {
		info := r.Validate(token)
		info.Role = model.RoleCompanyManager

		again := r.Validate(token)
		assert.Equal(t, model.RoleAgent, again.Role)
	})
}

func TestRegistry_InvalidateUser(t *testing.T) {
	r := NewRegistry()

	token, err := r.Create(3, "erin", model.RoleCustomer)
	require.NoError(t, err)

	assert.True(t, r.InvalidateUser(3))
	assert.Nil(t, r.Validate(token))
	assert.False(t, r.InvalidateUser(3))

	// User can log in again after forced invalidation.
	_, err = r.Create(3, "erin", model.RoleCustomer)
	assert.NoError(t, err)
}
