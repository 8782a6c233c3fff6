package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"konsole/internal/domain"
	"konsole/internal/domain/models"
)

type stubBackend struct {
	submitted *models.SubmitJobRequest
	job       *models.EvalJob
	results   []models.ResultRow
	uploaded  string
}

func (b *stubBackend) SubmitJob(ctx context.Context, req *models.SubmitJobRequest) (*models.EvalJob, error) {
	b.submitted = req
	return &models.EvalJob{
		ID:        "job-1",
		ConfigID:  req.ConfigID,
		Version:   req.Version,
		DatasetID: req.DatasetID,
		ClientRef: req.ClientRef,
		Status:    models.JobStatusQueued,
	}, nil
}

func (b *stubBackend) GetJob(ctx context.Context, jobID string) (*models.EvalJob, error) {
	if b.job == nil {
		return nil, &domain.NotFoundError{Message: "job " + jobID + " not found"}
	}
	return b.job, nil
}

func (b *stubBackend) ListJobResults(ctx context.Context, jobID string) ([]models.ResultRow, error) {
	return b.results, nil
}

func (b *stubBackend) UploadDataset(ctx context.Context, name, filename string, content io.Reader) (*models.Dataset, error) {
	data, _ := io.ReadAll(content)
	b.uploaded = string(data)
	return &models.Dataset{ID: "ds-1", Name: name, RowCount: 1}, nil
}

func newEvalService(backend *stubBackend) *EvalService {
	return NewEvalService(backend, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSubmitJobFillsClientRef(t *testing.T) {
	backend := &stubBackend{}
	svc := newEvalService(backend)

	job, err := svc.SubmitJob(context.Background(), &models.SubmitJobRequest{
		ConfigID:  "cfg-a",
		Version:   2,
		DatasetID: "ds-1",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if job.ClientRef == "" || backend.submitted.ClientRef != job.ClientRef {
		t.Errorf("client ref not generated and forwarded: %+v", job)
	}

	// A caller-provided ref is kept
	job2, err := svc.SubmitJob(context.Background(), &models.SubmitJobRequest{
		ConfigID:  "cfg-a",
		Version:   2,
		DatasetID: "ds-1",
		ClientRef: "my-ref",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if job2.ClientRef != "my-ref" {
		t.Errorf("client ref overwritten: %q", job2.ClientRef)
	}
}

func TestSubmitJobValidation(t *testing.T) {
	backend := &stubBackend{}
	svc := newEvalService(backend)

	tests := []models.SubmitJobRequest{
		{Version: 1, DatasetID: "ds-1"},              // no config
		{ConfigID: "cfg-a", DatasetID: "ds-1"},       // no version
		{ConfigID: "cfg-a", Version: 1},              // no dataset
		{ConfigID: "cfg-a", Version: 0, DatasetID: "ds-1"},
	}

	for i, req := range tests {
		if _, err := svc.SubmitJob(context.Background(), &req); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
	if backend.submitted != nil {
		t.Error("invalid submission reached the backend")
	}
}

func TestExportCSV(t *testing.T) {
	backend := &stubBackend{
		results: []models.ResultRow{
			{
				ExampleID:  "ex-1",
				Input:      "say hello",
				Expected:   "hello",
				Output:     "hello",
				Scores:     map[string]float64{"wer": 0, "accuracy": 1},
				DurationMS: 120,
			},
			{
				ExampleID: "ex-2",
				Input:     "say goodbye",
				Expected:  "goodbye",
				Output:    "good bye",
				Scores:    map[string]float64{"wer": 0.5},
			},
		},
	}
	svc := newEvalService(backend)

	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), "job-1", &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	// Score columns are sorted, so accuracy comes before wer
	if lines[0] != "example_id,input,expected,output,accuracy,wer,duration_ms" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "ex-1,say hello,hello,hello,1,0,120" {
		t.Errorf("unexpected first row: %s", lines[1])
	}
	// Missing score cells stay empty
	if lines[2] != "ex-2,say goodbye,goodbye,good bye,,0.5,0" {
		t.Errorf("unexpected second row: %s", lines[2])
	}
}

func TestUploadDatasetValidation(t *testing.T) {
	backend := &stubBackend{}
	svc := newEvalService(backend)

	if _, err := svc.UploadDataset(context.Background(), "", "f.jsonl", strings.NewReader("x")); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for empty name, got %v", err)
	}

	ds, err := svc.UploadDataset(context.Background(), "smoke set", "rows.jsonl", strings.NewReader("row"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if ds.ID != "ds-1" || backend.uploaded != "row" {
		t.Errorf("upload not forwarded: %+v, body %q", ds, backend.uploaded)
	}
}
