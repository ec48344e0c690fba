package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, GetStatusCode(ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, GetStatusCode(fmt.Errorf("ctx: %w", ErrBadRequest)))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(errors.New("plain")))
}

func TestWrapAndDetails(t *testing.T) {
	cause := errors.New("schedule payload required")
	err := Wrap(http.StatusBadRequest, cause)
	assert.True(t, IsAppError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "schedule payload required", err.Message)

	detailed := WithDetails(err, "body was {}")
	assert.Equal(t, http.StatusBadRequest, detailed.Code)
	assert.ErrorIs(t, detailed, cause)
	assert.Contains(t, detailed.Error(), "details=body was {}")
	assert.False(t, IsAppError(cause))
}
