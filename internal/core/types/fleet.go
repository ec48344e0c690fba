package types

import (
	"encoding/json"
	"strings"
)

// Environment is the deployment stage a workspace is categorized under
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvUAT  Environment = "uat"
	EnvProd Environment = "prod"
)

// ParseEnvironment normalizes a raw environment value and reports whether it is one of dev/uat/prod
func ParseEnvironment(raw string) (Environment, bool) {
	env := Environment(strings.ToLower(strings.TrimSpace(raw)))
	switch env {
	case EnvDev, EnvUAT, EnvProd:
		return env, true
	}
	return env, false
}

// Workspace is a BI workspace as reported by the connector
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category assigns a workspace to an environment and an optional module
type Category struct {
	WorkspaceID string      `json:"-" db:"workspace_id"`
	Env         Environment `json:"env" db:"env"`
	Module      *string     `json:"module" db:"module"`
	UpdatedAt   string      `json:"-" db:"updated_at"`
}

// ModuleName returns the module or an empty string when unset
func (c Category) ModuleName() string {
	if c.Module == nil {
		return ""
	}
	return *c.Module
}

// SemanticModel is a refreshable dataset owned by a workspace
type SemanticModel struct {
	WorkspaceID string  `json:"-" db:"workspace_id"`
	ModelID     string  `json:"model_id" db:"model_id"`
	Name        string  `json:"name" db:"name"`
	AddedAt     string  `json:"added_at" db:"added_at"`
	DeletedAt   *string `json:"deleted_at" db:"deleted_at"`
}

// DisplayName falls back to the model id when the model has no name
func (m SemanticModel) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ModelID
}

// RefreshRecord is one historical refresh of a semantic model
type RefreshRecord struct {
	WorkspaceID     string   `json:"-" db:"workspace_id"`
	DatasetID       string   `json:"-" db:"dataset_id"`
	StartTime       string   `json:"start_time" db:"start_time"`
	EndTime         *string  `json:"end_time" db:"end_time"`
	Status          string   `json:"status" db:"status"`
	DurationSeconds *float64 `json:"duration_seconds" db:"duration_seconds"`
}

// Completed reports whether the refresh finished successfully
func (r RefreshRecord) Completed() bool {
	return strings.EqualFold(r.Status, "completed")
}

// RefreshMap maps dataset id to its refresh records, newest first
type RefreshMap map[string][]RefreshRecord

// CapacityPoint is a fleet-wide capacity utilization sample
type CapacityPoint struct {
	CapacityID string   `json:"capacity_id,omitempty" db:"capacity_id"`
	TS         string   `json:"ts" db:"ts"`
	Metric     string   `json:"metric" db:"metric"`
	Value      *float64 `json:"value" db:"value"`
}

// DefaultCapacityMetric is used when a sample does not name its metric
const DefaultCapacityMetric = "cu"

// Report is a BI report bound to a dataset
type Report struct {
	WorkspaceID string  `json:"-" db:"workspace_id"`
	ID          string  `json:"id" db:"report_id"`
	Name        *string `json:"name" db:"name"`
	DatasetID   *string `json:"datasetId" db:"dataset_id"`
	WebURL      *string `json:"webUrl" db:"web_url"`
	EmbedURL    *string `json:"embedUrl" db:"embed_url"`
	CreatedAt   *string `json:"created_at" db:"created_at"`
}

// Schedule is the stored refresh schedule of a dataset
type Schedule struct {
	WorkspaceID  string  `db:"workspace_id"`
	DatasetID    string  `db:"dataset_id"`
	ScheduleJSON *string `db:"schedule_json"`
	UpdatedAt    string  `db:"updated_at"`
}

// Decoded returns the schedule as JSON, or the raw string when it does not parse
func (s Schedule) Decoded() interface{} {
	if s.ScheduleJSON == nil {
		return nil
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(*s.ScheduleJSON), &parsed); err != nil {
		return *s.ScheduleJSON
	}
	return parsed
}
