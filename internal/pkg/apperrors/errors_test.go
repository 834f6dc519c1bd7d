package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvalidFilterError(t *testing.T) {
	err := NewInvalidFilterError("unitsMin", "twelve")

	assert.ErrorIs(t, err, ErrInvalidFilterValue)
	assert.Equal(t, "invalid value for unitsMin", err.Error())
	assert.Equal(t, map[string]interface{}{"field": "unitsMin", "value": "twelve"}, err.Details)
}

func TestCustomError(t *testing.T) {
	t.Run("message wins over wrapped error", func(t *testing.T) {
		err := NewBadRequestError("course id is required")
		assert.Equal(t, "course id is required", err.Error())
		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("falls back to wrapped error", func(t *testing.T) {
		err := NewCustomError(ErrCourseNotFound, "")
		assert.Equal(t, ErrCourseNotFound.Error(), err.Error())
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "unknown error", (&CustomError{}).Error())
	})

	t.Run("found through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("service: %w", NewBadRequestError("bad"))
		var custom *CustomError
		require.True(t, errors.As(wrapped, &custom))
		assert.Equal(t, "bad", custom.Message)
	})
}
