// Package registry holds the static catalog of providers and models that a
// configuration payload may reference. The catalog ships embedded in the
// binary; the backend is never consulted for it.
package registry

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var catalogFiles embed.FS

// ModelInfo describes one selectable model.
type ModelInfo struct {
	ID                  string `yaml:"id" json:"id"`
	DisplayName         string `yaml:"display_name" json:"display_name"`
	SupportsTemperature bool   `yaml:"supports_temperature" json:"supports_temperature"`
	SupportsTools       bool   `yaml:"supports_tools" json:"supports_tools"`
}

// Provider describes one provider and its models, ordered as in the catalog
// file.
type Provider struct {
	ID     string      `yaml:"id" json:"id"`
	Name   string      `yaml:"name" json:"name"`
	Models []ModelInfo `yaml:"models" json:"models"`
}

type catalogFile struct {
	Providers []Provider `yaml:"providers"`
}

// Registry is the loaded provider catalog.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	byID      map[string]*Provider
}

// NewRegistry loads the embedded catalog.
func NewRegistry() (*Registry, error) {
	data, err := catalogFiles.ReadFile("catalog/providers.yaml")
	if err != nil {
		return nil, fmt.Errorf("read provider catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal provider catalog: %w", err)
	}
	if len(file.Providers) == 0 {
		return nil, fmt.Errorf("provider catalog is empty")
	}

	r := &Registry{
		providers: file.Providers,
		byID:      make(map[string]*Provider, len(file.Providers)),
	}
	for i := range r.providers {
		r.byID[r.providers[i].ID] = &r.providers[i]
	}
	return r, nil
}

// Providers returns all providers in catalog order.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers
}

// KnownModel reports whether the provider/model pair exists in the catalog.
func (r *Registry) KnownModel(provider, model string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[provider]
	if !ok {
		return false
	}
	for _, m := range p.Models {
		if m.ID == model {
			return true
		}
	}
	return false
}
