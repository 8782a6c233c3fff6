package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"konsole/internal/cache"
	"konsole/internal/domain"
	"konsole/internal/domain/models"
	"konsole/internal/registry"
)

// stubSource serves a fixed two-group catalog.
type stubSource struct {
	mu         sync.Mutex
	groupCalls int
}

func (s *stubSource) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupCalls
}

func (s *stubSource) ListConfigGroups(ctx context.Context) ([]models.GroupSummary, error) {
	s.mu.Lock()
	s.groupCalls++
	s.mu.Unlock()
	updated := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	return []models.GroupSummary{
		{ID: "cfg-z", Name: "zeta", UpdatedAt: updated, VersionCount: 1},
		{ID: "cfg-a", Name: "Alpha", UpdatedAt: updated, VersionCount: 2},
	}, nil
}

func (s *stubSource) ListVersions(ctx context.Context, configID string) ([]models.VersionSummary, error) {
	if configID == "cfg-a" {
		return []models.VersionSummary{{ID: "a1", Version: 1}, {ID: "a2", Version: 2}}, nil
	}
	return []models.VersionSummary{{ID: "z1", Version: 1}}, nil
}

func (s *stubSource) GetVersionDetail(ctx context.Context, configID string, version int) (*models.ConfigVersion, error) {
	return &models.ConfigVersion{
		ID:       fmt.Sprintf("%s-v%d", configID, version),
		ConfigID: configID,
		Version:  version,
	}, nil
}

type stubWriter struct {
	createdConfigs  int
	createdVersions int
	fail            bool
}

func (w *stubWriter) CreateConfig(ctx context.Context, req *models.CreateConfigRequest) (*models.GroupSummary, error) {
	if w.fail {
		return nil, &domain.RemoteError{Op: "create config", Status: 500}
	}
	w.createdConfigs++
	return &models.GroupSummary{ID: "cfg-new", Name: req.Name}, nil
}

func (w *stubWriter) CreateVersion(ctx context.Context, configID string, req *models.CreateVersionRequest) (*models.ConfigVersion, error) {
	if w.fail {
		return nil, &domain.RemoteError{Op: "create version", Status: 500}
	}
	w.createdVersions++
	return &models.ConfigVersion{ID: "ver-new", ConfigID: configID, Version: 7}, nil
}

func newConfigService(t *testing.T, source domain.ConfigSource, writer domain.ConfigWriter) *ConfigService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := cache.NewManager(source, nil, time.Minute, logger)
	t.Cleanup(manager.Close)

	reg, err := registry.NewRegistry()
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return NewConfigService(manager, writer, reg, logger)
}

func TestListGroupsOrdering(t *testing.T) {
	svc := newConfigService(t, &stubSource{}, &stubWriter{})

	groups, err := svc.ListGroups(context.Background(), false)
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	// Case-insensitive name ordering: Alpha before zeta
	if groups[0].ConfigID != "cfg-a" || groups[1].ConfigID != "cfg-z" {
		t.Errorf("unexpected group order: %s, %s", groups[0].ConfigID, groups[1].ConfigID)
	}
	// Versions newest first
	if groups[0].LatestVersion() != 2 || groups[0].TotalVersions() != 2 {
		t.Errorf("unexpected version view: latest=%d total=%d", groups[0].LatestVersion(), groups[0].TotalVersions())
	}
	if groups[0].Versions[0].Version != 2 || groups[0].Versions[1].Version != 1 {
		t.Errorf("versions not descending: %+v", groups[0].Versions)
	}
}

func TestCreateConfigInvalidatesCache(t *testing.T) {
	source := &stubSource{}
	writer := &stubWriter{}
	svc := newConfigService(t, source, writer)

	if _, err := svc.ListGroups(context.Background(), false); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	callsAfterPrime := source.calls()

	_, err := svc.CreateConfig(context.Background(), &models.CreateConfigRequest{
		Name: "new experiment",
		Payload: models.ConfigPayload{
			Provider: "anthropic",
			Model:    "claude-sonnet-4-5",
		},
	})
	if err != nil {
		t.Fatalf("create config: %v", err)
	}
	if writer.createdConfigs != 1 {
		t.Error("config not forwarded to backend")
	}

	// The next read must hit the backend again
	if _, err := svc.ListGroups(context.Background(), false); err != nil {
		t.Fatalf("list after create: %v", err)
	}
	if source.calls() <= callsAfterPrime {
		t.Error("cache not invalidated after mutation")
	}
}

func TestCreateConfigValidation(t *testing.T) {
	writer := &stubWriter{}
	svc := newConfigService(t, &stubSource{}, writer)

	tests := []struct {
		name string
		req  models.CreateConfigRequest
	}{
		{
			name: "missing name",
			req: models.CreateConfigRequest{
				Payload: models.ConfigPayload{Provider: "anthropic", Model: "claude-sonnet-4-5"},
			},
		},
		{
			name: "unknown model",
			req: models.CreateConfigRequest{
				Name:    "x",
				Payload: models.ConfigPayload{Provider: "anthropic", Model: "made-up-model"},
			},
		},
		{
			name: "temperature out of range",
			req: models.CreateConfigRequest{
				Name: "x",
				Payload: models.ConfigPayload{
					Provider:    "anthropic",
					Model:       "claude-sonnet-4-5",
					Temperature: floatPtr(3.5),
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateConfig(context.Background(), &tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
	if writer.createdConfigs != 0 {
		t.Error("invalid requests reached the backend")
	}
}

func TestCreateVersion(t *testing.T) {
	writer := &stubWriter{}
	svc := newConfigService(t, &stubSource{}, writer)

	version, err := svc.CreateVersion(context.Background(), "cfg-a", &models.CreateVersionRequest{
		CommitMessage: "raise temperature",
		Payload: models.ConfigPayload{
			Provider:    "openai",
			Model:       "gpt-4o",
			Temperature: floatPtr(0.7),
		},
	})
	if err != nil {
		t.Fatalf("create version: %v", err)
	}
	if version.Version != 7 || writer.createdVersions != 1 {
		t.Errorf("unexpected version result: %+v", version)
	}

	if _, err := svc.CreateVersion(context.Background(), "", &models.CreateVersionRequest{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for empty config id, got %v", err)
	}
}

func floatPtr(f float64) *float64 { return &f }
