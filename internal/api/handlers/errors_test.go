package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/connector"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/fleet"
	apperrors "github.com/frostdev-ops/pbi-monitor-go/pkg/errors"
)

func TestToAppError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid category", fleet.ErrInvalidCategory, http.StatusBadRequest},
		{"empty schedule", fleet.ErrEmptySchedule, http.StatusBadRequest},
		{"missing capacity", fleet.ErrMissingCapacityID, http.StatusBadRequest},
		{"no points", fleet.ErrNoCapacityPoints, http.StatusBadRequest},
		{"workspace not found", fleet.ErrWorkspaceNotFound, http.StatusNotFound},
		{"connector unavailable", fmt.Errorf("list datasets: %w", connector.ErrUnavailable), http.StatusServiceUnavailable},
		{"deadline", fmt.Errorf("helper: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"app error passes through", apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := toAppError(tt.err)
			assert.Equal(t, tt.code, appErr.Code)
			assert.NotEmpty(t, appErr.Message)
		})
	}
}
