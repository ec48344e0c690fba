package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/fleet"
	apperrors "github.com/frostdev-ops/pbi-monitor-go/pkg/errors"
	"github.com/frostdev-ops/pbi-monitor-go/pkg/utils"
)

// maxBodyBytes bounds schedule and capacity uploads
const maxBodyBytes = 4 << 20

// Dashboard returns the module/environment overview
func (h *Handlers) Dashboard(c *gin.Context) {
	view, err := h.fleet.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, view)
}

// Performance returns the windowed performance sets
func (h *Handlers) Performance(c *gin.Context) {
	view, err := h.fleet.Performance(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, view)
}

// CategorizePage returns workspaces, categories and known modules
func (h *Handlers) CategorizePage(c *gin.Context) {
	view, err := h.fleet.CategorizePage(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, view)
}

// ListWorkspaces returns the live workspace listing
func (h *Handlers) ListWorkspaces(c *gin.Context) {
	view, err := h.fleet.ListWorkspaces(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, view)
}

// Categorize assigns a workspace to an environment and module. JSON and form bodies are accepted.
func (h *Handlers) Categorize(c *gin.Context) {
	var item fleet.CategorizeItem
	if err := c.ShouldBind(&item); err != nil {
		h.fail(c, apperrors.WithDetails(apperrors.Wrap(http.StatusBadRequest, fleet.ErrInvalidCategory), err.Error()))
		return
	}
	res, err := h.fleet.Categorize(c.Request.Context(), item)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, res)
}

type bulkCategorizeRequest struct {
	Items []fleet.CategorizeItem `json:"items"`
}

// CategorizeBulk applies many categorizations, skipping invalid items
func (h *Handlers) CategorizeBulk(c *gin.Context) {
	var req bulkCategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		h.fail(c, apperrors.WithDetails(apperrors.ErrBadRequest, err.Error()))
		return
	}
	res, err := h.fleet.CategorizeBulk(c.Request.Context(), req.Items)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, res)
}

// WorkspaceDetail returns everything known about a workspace
func (h *Handlers) WorkspaceDetail(c *gin.Context) {
	view, err := h.fleet.WorkspaceDetail(c.Request.Context(), c.Param("workspace_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, view)
}

// FetchModels syncs the semantic models of a workspace
func (h *Handlers) FetchModels(c *gin.Context) {
	models, err := h.fleet.SyncModels(c.Request.Context(), c.Param("workspace_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{"models": models})
}

// FetchReports syncs the reports of a workspace
func (h *Handlers) FetchReports(c *gin.Context) {
	reports, err := h.fleet.SyncReports(c.Request.Context(), c.Param("workspace_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{"reports": reports})
}

// FetchRefreshes syncs the refresh history of a dataset
func (h *Handlers) FetchRefreshes(c *gin.Context) {
	refreshes, err := h.fleet.SyncRefreshes(c.Request.Context(), c.Param("workspace_id"), c.Param("dataset_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{"refreshes": refreshes})
}

// DatasetDetail returns the refresh history of a dataset; refresh=0 skips the live pull
func (h *Handlers) DatasetDetail(c *gin.Context) {
	refresh := c.DefaultQuery("refresh", "1") != "0"
	view, err := h.fleet.DatasetDetail(c.Request.Context(), c.Param("workspace_id"), c.Param("dataset_id"), refresh)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, view)
}

// GetSchedule returns the live refresh schedule of a dataset
func (h *Handlers) GetSchedule(c *gin.Context) {
	schedule, err := h.fleet.GetSchedule(c.Request.Context(), c.Param("workspace_id"), c.Param("dataset_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{"schedule": schedule})
}

// readJSONBody returns the raw request body, rejecting anything that is not JSON
func readJSONBody(c *gin.Context) (json.RawMessage, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.WithDetails(apperrors.ErrBadRequest, err.Error())
	}
	if len(body) > 0 && !json.Valid(body) {
		return nil, apperrors.WithDetails(apperrors.ErrBadRequest, "body is not valid JSON")
	}
	return body, nil
}

// SetSchedule replaces the refresh schedule of a dataset
func (h *Handlers) SetSchedule(c *gin.Context) {
	body, err := readJSONBody(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.fleet.SetSchedule(c.Request.Context(), c.Param("workspace_id"), c.Param("dataset_id"), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, res)
}

// SetWorkspaceSchedule applies one schedule to every model of a workspace
func (h *Handlers) SetWorkspaceSchedule(c *gin.Context) {
	body, err := readJSONBody(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.fleet.SetWorkspaceSchedule(c.Request.Context(), c.Param("workspace_id"), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, res)
}

// TriggerRefresh starts an on-demand refresh of a dataset
func (h *Handlers) TriggerRefresh(c *gin.Context) {
	result, err := h.fleet.TriggerRefresh(c.Request.Context(), c.Param("workspace_id"), c.Param("dataset_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{"result": result})
}

// IngestCapacity stores uploaded capacity samples
func (h *Handlers) IngestCapacity(c *gin.Context) {
	body, err := readJSONBody(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	ingest, err := fleet.ParseCapacityIngest(body)
	if err != nil {
		h.fail(c, apperrors.WithDetails(apperrors.ErrBadRequest, err.Error()))
		return
	}
	res, err := h.fleet.IngestCapacity(c.Request.Context(), ingest)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, res)
}
