package domain

import (
	"context"
	"io"

	"konsole/internal/domain/models"
)

// ConfigSource is the read-side contract against the evaluation backend's
// configuration API. The cache manager is its only consumer.
type ConfigSource interface {
	// ListConfigGroups returns the lightweight group listing used both for
	// display and for staleness comparison.
	ListConfigGroups(ctx context.Context) ([]models.GroupSummary, error)

	// ListVersions returns the version listing of one group, newest first.
	ListVersions(ctx context.Context, configID string) ([]models.VersionSummary, error)

	// GetVersionDetail returns one version with its full payload.
	GetVersionDetail(ctx context.Context, configID string, version int) (*models.ConfigVersion, error)
}

// ConfigWriter is the write-side contract for configuration management.
// Every successful mutation must be followed by a cache invalidation so the
// next read refetches.
type ConfigWriter interface {
	CreateConfig(ctx context.Context, req *models.CreateConfigRequest) (*models.GroupSummary, error)
	CreateVersion(ctx context.Context, configID string, req *models.CreateVersionRequest) (*models.ConfigVersion, error)
}

// JobBackend is the evaluation-job contract against the backend. Handlers
// proxy through it; the dashboard never computes scores itself.
type JobBackend interface {
	SubmitJob(ctx context.Context, req *models.SubmitJobRequest) (*models.EvalJob, error)
	GetJob(ctx context.Context, jobID string) (*models.EvalJob, error)
	ListJobResults(ctx context.Context, jobID string) ([]models.ResultRow, error)
	UploadDataset(ctx context.Context, name, filename string, content io.Reader) (*models.Dataset, error)
}
