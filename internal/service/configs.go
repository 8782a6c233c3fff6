package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"konsole/internal/cache"
	"konsole/internal/domain"
	"konsole/internal/domain/models"
	"konsole/internal/registry"
)

// ConfigService serves the grouped configuration view from the cache and
// forwards mutations to the backend, invalidating the cache afterwards.
type ConfigService struct {
	cache    *cache.Manager
	writer   domain.ConfigWriter
	registry *registry.Registry
	logger   *slog.Logger
}

// NewConfigService creates a config service.
func NewConfigService(cacheManager *cache.Manager, writer domain.ConfigWriter, reg *registry.Registry, logger *slog.Logger) *ConfigService {
	return &ConfigService{
		cache:    cacheManager,
		writer:   writer,
		registry: reg,
		logger:   logger,
	}
}

// ListGroups returns all configuration groups the caller can see, ordered by
// name, with versions newest first. With refresh, a full refetch runs before
// the listing is built. While another refresh is in flight, the last
// complete snapshot is served instead of blocking or erroring.
func (s *ConfigService) ListGroups(ctx context.Context, refresh bool) ([]models.ConfigGroup, error) {
	entry, err := s.cache.FetchAll(ctx, refresh)
	if err != nil {
		if errors.Is(err, domain.ErrFetchInProgress) {
			if stale := s.cache.Entry(); stale != nil {
				return groupEntry(stale), nil
			}
		}
		return nil, fmt.Errorf("fetch configs: %w", err)
	}
	return groupEntry(entry), nil
}

// Invalidate drops both cache tiers.
func (s *ConfigService) Invalidate() {
	s.cache.Invalidate()
}

// CacheState reports the cache lifecycle state for the health endpoint.
func (s *ConfigService) CacheState() cache.State {
	return s.cache.State()
}

// CreateConfig creates a new configuration group with its first version.
func (s *ConfigService) CreateConfig(ctx context.Context, req *models.CreateConfigRequest) (*models.GroupSummary, error) {
	if err := s.validateCreateConfig(req); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	group, err := s.writer.CreateConfig(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create config: %w", err)
	}

	// The cached snapshot no longer reflects the backend; drop it so the
	// next read refetches.
	s.cache.Invalidate()
	s.logger.Info("config created", "config_id", group.ID, "name", group.Name)
	return group, nil
}

// CreateVersion saves a new version of an existing configuration.
func (s *ConfigService) CreateVersion(ctx context.Context, configID string, req *models.CreateVersionRequest) (*models.ConfigVersion, error) {
	if configID == "" {
		return nil, &domain.ValidationError{Message: "config id is required"}
	}
	if err := s.validatePayload(&req.Payload); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	version, err := s.writer.CreateVersion(ctx, configID, req)
	if err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}

	s.cache.Invalidate()
	s.logger.Info("config version created",
		"config_id", configID,
		"version", version.Version,
	)
	return version, nil
}

func (s *ConfigService) validateCreateConfig(req *models.CreateConfigRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
	); err != nil {
		return err
	}
	return s.validatePayload(&req.Payload)
}

func (s *ConfigService) validatePayload(p *models.ConfigPayload) error {
	if err := validation.ValidateStruct(p,
		validation.Field(&p.Provider, validation.Required),
		validation.Field(&p.Model, validation.Required),
		validation.Field(&p.Temperature, validation.Min(0.0), validation.Max(2.0)),
	); err != nil {
		return err
	}
	if !s.registry.KnownModel(p.Provider, p.Model) {
		return fmt.Errorf("unknown model %q for provider %q", p.Model, p.Provider)
	}
	return nil
}

// groupEntry folds the flattened cache entry into the grouped view model.
// Groups whose versions all failed to fetch still appear, empty, so the
// dashboard can show them.
func groupEntry(entry *models.CacheEntry) []models.ConfigGroup {
	byID := make(map[string]*models.ConfigGroup, len(entry.Meta))
	for configID, meta := range entry.Meta {
		byID[configID] = &models.ConfigGroup{
			ConfigID:    configID,
			Name:        meta.Name,
			Description: meta.Description,
			Versions:    []models.ConfigVersion{},
		}
	}

	for _, v := range entry.Versions {
		group, ok := byID[v.ConfigID]
		if !ok {
			// Version without listing metadata; surface it anyway
			group = &models.ConfigGroup{ConfigID: v.ConfigID, Versions: []models.ConfigVersion{}}
			byID[v.ConfigID] = group
		}
		group.Versions = append(group.Versions, v)
	}

	groups := make([]models.ConfigGroup, 0, len(byID))
	for _, g := range byID {
		sort.Slice(g.Versions, func(i, j int) bool {
			return g.Versions[i].Version > g.Versions[j].Version
		})
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		ni, nj := strings.ToLower(groups[i].Name), strings.ToLower(groups[j].Name)
		if ni != nj {
			return ni < nj
		}
		return groups[i].ConfigID < groups[j].ConfigID
	})
	return groups
}
