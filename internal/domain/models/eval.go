package models

import (
	"time"
)

// JobStatus is the lifecycle state of an evaluation job as reported by the
// backend.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the job will not change state again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// SubmitJobRequest is the payload for submitting an evaluation job.
type SubmitJobRequest struct {
	ConfigID  string `json:"config_id"`
	Version   int    `json:"version"`
	DatasetID string `json:"dataset_id"`
	// ClientRef correlates the submission with dashboard state; generated
	// server-side when the caller omits it.
	ClientRef string `json:"client_ref,omitempty"`
}

// EvalJob is the backend's view of a submitted evaluation job.
type EvalJob struct {
	ID          string     `json:"id"`
	ConfigID    string     `json:"config_id"`
	Version     int        `json:"version"`
	DatasetID   string     `json:"dataset_id"`
	ClientRef   string     `json:"client_ref,omitempty"`
	Status      JobStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ResultRow is one scored example from a completed evaluation job.
type ResultRow struct {
	ExampleID  string             `json:"example_id"`
	Input      string             `json:"input"`
	Expected   string             `json:"expected"`
	Output     string             `json:"output"`
	Scores     map[string]float64 `json:"scores,omitempty"`
	DurationMS int64              `json:"duration_ms,omitempty"`
}

// Dataset is the backend's record of an uploaded dataset.
type Dataset struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	RowCount   int       `json:"row_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}
