package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/connector"
	"github.com/frostdev-ops/pbi-monitor-go/internal/core/fleet"
	apperrors "github.com/frostdev-ops/pbi-monitor-go/pkg/errors"
	"github.com/frostdev-ops/pbi-monitor-go/pkg/utils"
)

// toAppError maps domain errors onto HTTP statuses
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, fleet.ErrInvalidCategory),
		errors.Is(err, fleet.ErrEmptySchedule),
		errors.Is(err, fleet.ErrMissingCapacityID),
		errors.Is(err, fleet.ErrNoCapacityPoints):
		return apperrors.Wrap(http.StatusBadRequest, err)
	case errors.Is(err, fleet.ErrWorkspaceNotFound):
		return apperrors.Wrap(http.StatusNotFound, err)
	case errors.Is(err, connector.ErrUnavailable):
		return apperrors.Wrap(http.StatusServiceUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(http.StatusGatewayTimeout, err)
	}
	return apperrors.Wrap(http.StatusInternalServerError, err)
}

// fail logs err and writes it as the response
func (h *Handlers) fail(c *gin.Context, err error) {
	appErr := toAppError(err)
	entry := h.log.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     appErr.Code,
		"request_id": c.GetString("request_id"),
	}).WithError(err)
	if appErr.Code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}
	_ = c.Error(err)
	utils.SendAppError(c, appErr)
}
