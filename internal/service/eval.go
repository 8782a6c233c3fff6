package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"konsole/internal/config"
	"konsole/internal/domain"
	"konsole/internal/domain/models"
)

// EvalService proxies evaluation jobs and datasets to the backend. Scoring
// happens entirely on the backend; this service only validates, forwards and
// reshapes.
type EvalService struct {
	backend domain.JobBackend
	logger  *slog.Logger
}

// NewEvalService creates an eval service.
func NewEvalService(backend domain.JobBackend, logger *slog.Logger) *EvalService {
	return &EvalService{backend: backend, logger: logger}
}

// SubmitJob validates and forwards a job submission. A missing client
// reference is filled in so the dashboard can correlate the submission.
func (s *EvalService) SubmitJob(ctx context.Context, req *models.SubmitJobRequest) (*models.EvalJob, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ConfigID, validation.Required),
		validation.Field(&req.Version, validation.Required, validation.Min(1)),
		validation.Field(&req.DatasetID, validation.Required),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	if req.ClientRef == "" {
		req.ClientRef = uuid.NewString()
	}

	job, err := s.backend.SubmitJob(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("submit job: %w", err)
	}

	s.logger.Info("evaluation job submitted",
		"job_id", job.ID,
		"config_id", job.ConfigID,
		"version", job.Version,
		"client_ref", job.ClientRef,
	)
	return job, nil
}

// GetJob returns the backend's current view of a job.
func (s *EvalService) GetJob(ctx context.Context, jobID string) (*models.EvalJob, error) {
	if jobID == "" {
		return nil, &domain.ValidationError{Message: "job id is required"}
	}
	job, err := s.backend.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ListResults returns the scored rows of a job.
func (s *EvalService) ListResults(ctx context.Context, jobID string) ([]models.ResultRow, error) {
	if jobID == "" {
		return nil, &domain.ValidationError{Message: "job id is required"}
	}
	rows, err := s.backend.ListJobResults(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return rows, nil
}

// ExportCSV writes a job's results as CSV. Score columns are the union of
// all score names across rows, sorted, so every row has the same width.
func (s *EvalService) ExportCSV(ctx context.Context, jobID string, w io.Writer) error {
	rows, err := s.ListResults(ctx, jobID)
	if err != nil {
		return err
	}

	scoreNames := map[string]bool{}
	for _, row := range rows {
		for name := range row.Scores {
			scoreNames[name] = true
		}
	}
	scoreCols := make([]string, 0, len(scoreNames))
	for name := range scoreNames {
		scoreCols = append(scoreCols, name)
	}
	sort.Strings(scoreCols)

	cw := csv.NewWriter(w)
	header := append([]string{"example_id", "input", "expected", "output"}, scoreCols...)
	header = append(header, "duration_ms")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{row.ExampleID, row.Input, row.Expected, row.Output}
		for _, name := range scoreCols {
			if score, ok := row.Scores[name]; ok {
				record = append(record, strconv.FormatFloat(score, 'f', -1, 64))
			} else {
				record = append(record, "")
			}
		}
		record = append(record, strconv.FormatInt(row.DurationMS, 10))
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// UploadDataset validates and streams a dataset upload through to the
// backend.
func (s *EvalService) UploadDataset(ctx context.Context, name, filename string, content io.Reader) (*models.Dataset, error) {
	if err := validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxDatasetNameLength),
	); err != nil {
		return nil, &domain.ValidationError{Message: "dataset name: " + err.Error()}
	}
	if filename == "" {
		filename = "dataset"
	}

	dataset, err := s.backend.UploadDataset(ctx, name, filename, content)
	if err != nil {
		return nil, fmt.Errorf("upload dataset: %w", err)
	}

	s.logger.Info("dataset uploaded",
		"dataset_id", dataset.ID,
		"name", dataset.Name,
		"rows", dataset.RowCount,
	)
	return dataset, nil
}
