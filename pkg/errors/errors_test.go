package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("clinic", nil).StatusCode())
	assert.Equal(t, http.StatusBadRequest, BadRequest("bad", nil).StatusCode())
	assert.Equal(t, http.StatusBadRequest, Validation("bad", nil).StatusCode())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized(nil).StatusCode())
	assert.Equal(t, http.StatusForbidden, Forbidden("nope").StatusCode())
	assert.Equal(t, http.StatusConflict, Conflict("busy").StatusCode())
	assert.Equal(t, http.StatusInternalServerError, Internal(nil).StatusCode())
}

func TestAsUnwrapsThroughWrapping(t *testing.T) {
	inner := NotFound("patient", nil)
	wrapped := fmt.Errorf("failed to load: %w", inner)

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrNotFound, appErr.Code)
	assert.True(t, IsNotFound(wrapped))
}

func TestIsNotFoundOnPlainError(t *testing.T) {
	assert.False(t, IsNotFound(fmt.Errorf("boom")))
}
