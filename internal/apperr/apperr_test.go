package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("error string includes code and message", func(t *testing.T) {
		err := Validation("price must be positive")
		assert.Equal(t, "VALIDATION_ERROR: price must be positive", err.Error())
	})

	t.Run("cause is unwrappable", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Database(cause)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("As finds wrapped AppError", func(t *testing.T) {
		inner := NotFound("city")
		wrapped := fmt.Errorf("lookup: %w", inner)

		appErr, ok := As(wrapped)
		assert.True(t, ok)
		assert.Equal(t, CodeNotFound, appErr.Code)
	})

	t.Run("GetCode falls back to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, GetCode(errors.New("boom")))
		assert.Equal(t, CodeAlreadyLoggedIn, GetCode(AlreadyLoggedIn()))
	})
}
