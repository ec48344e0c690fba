package fleet

import "errors"

var (
	// ErrInvalidCategory is returned when a categorization lacks an id or a dev/uat/prod env
	ErrInvalidCategory = errors.New("id and env (dev/uat/prod) are required")
	// ErrWorkspaceNotFound is returned when a workspace is absent from the live listing
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrEmptySchedule is returned for a schedule update without a payload
	ErrEmptySchedule = errors.New("schedule payload required")
	// ErrMissingCapacityID is returned when neither the request nor the config names a capacity
	ErrMissingCapacityID = errors.New("capacity_id missing (set PBI_CAPACITY_ID or pass in body)")
	// ErrNoCapacityPoints is returned for an ingest without samples
	ErrNoCapacityPoints = errors.New("no points to save")
)
