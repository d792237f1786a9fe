package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	base := errors.New("connection reset")
	err := Wrap(base, CodeInternal, "failed to save intake")

	assert.True(t, HasCode(err, CodeInternal))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.ErrorIs(t, err, base)

	t.Run("finds inner code through fmt wrapping", func(t *testing.T) {
		inner := New(CodeNotFound, "profile not found")
		outer := fmt.Errorf("load dashboard: %w", inner)
		assert.True(t, HasCode(outer, CodeNotFound))
		assert.Equal(t, CodeNotFound, CodeOf(outer))
	})

	t.Run("finds nested codes", func(t *testing.T) {
		nested := Wrap(New(CodeConflict, "duplicate"), CodeInternal, "tx failed")
		assert.True(t, HasCode(nested, CodeConflict))
		assert.Equal(t, CodeInternal, CodeOf(nested))
	})

	t.Run("wrap nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
	})

	t.Run("plain errors default to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(base))
	})
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(CodeValidation))
	assert.Equal(t, http.StatusUnauthorized, ToHTTPStatus(CodeUnauthorized))
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusConflict, ToHTTPStatus(CodeConflict))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(Code("unknown")))
}
