package model

import "time"

// RunStatus represents the final state of a collection run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one row of local run history.
type Run struct {
	ID          string     `json:"id"`
	Query       string     `json:"query"`
	Location    string     `json:"location"`
	Status      RunStatus  `json:"status"`
	ResultCount int        `json:"result_count"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
