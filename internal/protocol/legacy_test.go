package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
)

func TestTranslateLegacy(t *testing.T) {
	t.Run("login", func(t *testing.T) {
		req, err := TranslateLegacy("login alice secret123")
		require.NoError(t, err)
		assert.Equal(t, OpLogin, req.Type)
		assert.NotEmpty(t, req.ID)
		assert.JSONEq(t, `{"username":"alice","password":"secret123"}`, string(req.Payload))
	})

	t.Run("login with missing arguments", func(t *testing.T) {
		_, err := TranslateLegacy("login alice")
		assert.Error(t, err)
	})

	t.Run("get_cities", func(t *testing.T) {
		req, err := TranslateLegacy("get_cities")
		require.NoError(t, err)
		assert.Equal(t, OpGetCitiesCatalog, req.Type)
	})

	t.Run("get_maps", func(t *testing.T) {
		req, err := TranslateLegacy("get_maps 42")
		require.NoError(t, err)
		assert.Equal(t, OpGetCityMaps, req.Type)
		assert.JSONEq(t, `{"cityId":42}`, string(req.Payload))
	})

	t.Run("get_maps with a non-numeric id", func(t *testing.T) {
		_, err := TranslateLegacy("get_maps lisbon")
		assert.Error(t, err)
	})

	t.Run("update_price is retired", func(t *testing.T) {
		_, err := TranslateLegacy("update_price 3 9.99")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no longer supported")
	})

	t.Run("unknown command", func(t *testing.T) {
		_, err := TranslateLegacy("frobnicate")
		assert.Error(t, err)
	})

	t.Run("blank line", func(t *testing.T) {
		_, err := TranslateLegacy("   ")
		assert.Error(t, err)
	})
}

func TestRenderLegacy(t *testing.T) {
	t.Run("login success", func(t *testing.T) {
		resp := &Response{OK: true, Payload: map[string]any{
			"token": "tok",
			"user":  map[string]any{"id": 7, "role": "CUSTOMER"},
		}}
		assert.Equal(t, "login_success 7 CUSTOMER", RenderLegacy(OpLogin, resp))
	})

	t.Run("login failure", func(t *testing.T) {
		resp := &Response{Error: &ErrorInfo{Code: apperr.CodeUnauthorized, Message: "bad creds"}}
		assert.Equal(t, "login_failed", RenderLegacy(OpLogin, resp))
	})

	t.Run("error renders code and message", func(t *testing.T) {
		resp := &Response{Error: &ErrorInfo{Code: apperr.CodeNotFound, Message: "city not found"}}
		assert.Equal(t, "error NOT_FOUND city not found", RenderLegacy(OpGetCityMaps, resp))
	})

	t.Run("success renders payload as json", func(t *testing.T) {
		resp := &Response{OK: true, Payload: []map[string]any{{"id": 1}}}
		assert.Equal(t, `[{"id":1}]`, RenderLegacy(OpGetCitiesCatalog, resp))
	})
}
