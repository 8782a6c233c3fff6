package remote

import (
	"time"

	"konsole/internal/domain/models"
)

// Wire types mirror the backend's loosely-typed JSON. Fields the backend may
// omit stay optional here and are defaulted during conversion; the strict
// internal models never carry surprises.

type wireGroup struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	UpdatedAt    string `json:"updated_at"`
	VersionCount int    `json:"version_count"`
}

type wireVersionSummary struct {
	ID            string `json:"id"`
	Version       int    `json:"version"`
	CommitMessage string `json:"commit_message"`
	InsertedAt    string `json:"inserted_at"`
}

type wireTool struct {
	Type        string   `json:"type"`
	ResourceIDs []string `json:"resource_ids"`
}

type wireVersionDetail struct {
	ID            string     `json:"id"`
	ConfigID      string     `json:"config_id"`
	Version       int        `json:"version"`
	CommitMessage string     `json:"commit_message"`
	InsertedAt    string     `json:"inserted_at"`
	Provider      string     `json:"provider"`
	Model         string     `json:"model"`
	Temperature   *float64   `json:"temperature"`
	Instructions  string     `json:"instructions"`
	Tools         []wireTool `json:"tools"`
}

// toModel converts a detail payload, preferring the caller's configID and
// version when the backend omits them.
func (w wireVersionDetail) toModel(configID string, version int) models.ConfigVersion {
	if w.ConfigID != "" {
		configID = w.ConfigID
	}
	if w.Version != 0 {
		version = w.Version
	}

	tools := make([]models.Tool, 0, len(w.Tools))
	for _, t := range w.Tools {
		if t.Type == "" {
			continue
		}
		tools = append(tools, models.Tool{Type: t.Type, ResourceIDs: t.ResourceIDs})
	}
	if len(tools) == 0 {
		tools = nil
	}

	return models.ConfigVersion{
		ID:            w.ID,
		ConfigID:      configID,
		Version:       version,
		CommitMessage: w.CommitMessage,
		InsertedAt:    parseTime(w.InsertedAt),
		Payload: models.ConfigPayload{
			Provider:     w.Provider,
			Model:        w.Model,
			Temperature:  w.Temperature,
			Instructions: w.Instructions,
			Tools:        tools,
		},
	}
}

type wireJob struct {
	ID          string `json:"id"`
	ConfigID    string `json:"config_id"`
	Version     int    `json:"version"`
	DatasetID   string `json:"dataset_id"`
	ClientRef   string `json:"client_ref"`
	Status      string `json:"status"`
	Error       string `json:"error"`
	SubmittedAt string `json:"submitted_at"`
	CompletedAt string `json:"completed_at"`
}

func (w wireJob) toModel() models.EvalJob {
	job := models.EvalJob{
		ID:          w.ID,
		ConfigID:    w.ConfigID,
		Version:     w.Version,
		DatasetID:   w.DatasetID,
		ClientRef:   w.ClientRef,
		Status:      models.JobStatus(w.Status),
		Error:       w.Error,
		SubmittedAt: parseTime(w.SubmittedAt),
	}
	if w.Status == "" {
		job.Status = models.JobStatusQueued
	}
	if w.CompletedAt != "" {
		t := parseTime(w.CompletedAt)
		job.CompletedAt = &t
	}
	return job
}

type wireResultRow struct {
	ExampleID  string             `json:"example_id"`
	Input      string             `json:"input"`
	Expected   string             `json:"expected"`
	Output     string             `json:"output"`
	Scores     map[string]float64 `json:"scores"`
	DurationMS int64              `json:"duration_ms"`
}

type wireDataset struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RowCount   int    `json:"row_count"`
	UploadedAt string `json:"uploaded_at"`
}

// parseTime accepts the backend's RFC 3339 timestamps, with or without
// fractional seconds, and falls back to the zero time on anything else.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
