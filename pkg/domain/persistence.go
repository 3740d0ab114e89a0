package domain

import (
	"context"
	"time"
)

// RunStatus describes the lifecycle stage of a pipeline invocation.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// GroupStatus describes the outcome of one image group within a run.
type GroupStatus string

const (
	GroupStatusSucceeded GroupStatus = "succeeded"
	GroupStatusUnmatched GroupStatus = "unmatched"
	GroupStatusFailed    GroupStatus = "failed"
)

// GroupOutcome records what happened to one image group: the join it
// resolved to, the manifest it produced, and the staging file lists.
type GroupOutcome struct {
	GroupID     string      `json:"group_id"`
	JoinKey     string      `json:"join_key"`
	Status      GroupStatus `json:"status"`
	ManifestKey string      `json:"manifest_key,omitempty"`
	Images      []string    `json:"images,omitempty"`
	Corrections []string    `json:"corrections,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// RunRecord captures one pipeline invocation end to end. Records are written
// once per run; a rerun creates a new record rather than mutating an old one.
type RunRecord struct {
	ID          string         `json:"id"`
	GroupBy     []string       `json:"group_by"`
	JoinBy      []string       `json:"join_by"`
	Status      RunStatus      `json:"status"`
	Groups      []GroupOutcome `json:"groups,omitempty"`
	Error       string         `json:"error,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// RunStore persists run records. Implementations live under
// internal/infra/persistence (memory, sqlite, postgres).
type RunStore interface {
	// SaveRun inserts or replaces the record keyed by its ID.
	SaveRun(ctx context.Context, record RunRecord) error
	// GetRun returns the record and whether it exists.
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	// ListRuns returns all records ordered by StartedAt ascending.
	ListRuns(ctx context.Context) ([]RunRecord, error)
	// Close releases any underlying resources.
	Close() error
}
