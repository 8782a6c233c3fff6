package models

import (
	"time"
)

// Tool describes one tool attached to a configuration, such as a retrieval
// tool with its backing resource ids.
type Tool struct {
	Type        string   `json:"type"`
	ResourceIDs []string `json:"resource_ids,omitempty"`
}

// ConfigPayload holds the evaluation parameters of one configuration version.
type ConfigPayload struct {
	Provider     string   `json:"provider"`
	Model        string   `json:"model"`
	Temperature  *float64 `json:"temperature,omitempty"` // Pointer to allow null (provider default)
	Instructions string   `json:"instructions"`
	Tools        []Tool   `json:"tools,omitempty"`
}

// ConfigVersion is one immutable, numbered snapshot of a configuration.
// Versions never change after creation; edits produce a new version.
type ConfigVersion struct {
	ID            string        `json:"id"`
	ConfigID      string        `json:"config_id"`
	Version       int           `json:"version"`
	CommitMessage string        `json:"commit_message,omitempty"`
	InsertedAt    time.Time     `json:"inserted_at"`
	Payload       ConfigPayload `json:"payload"`
}

// ConfigGroup is the dashboard view of all versions sharing one config_id,
// ordered by version descending.
type ConfigGroup struct {
	ConfigID    string          `json:"config_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Versions    []ConfigVersion `json:"versions"`
}

// LatestVersion returns the highest version number in the group, or 0 for an
// empty group.
func (g *ConfigGroup) LatestVersion() int {
	if len(g.Versions) == 0 {
		return 0
	}
	return g.Versions[0].Version
}

// TotalVersions returns the number of versions in the group.
func (g *ConfigGroup) TotalVersions() int {
	return len(g.Versions)
}

// GroupSummary is the lightweight group listing returned by the backend,
// used for display names and for staleness comparison.
type GroupSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
	VersionCount int       `json:"version_count"`
}

// VersionSummary is one row of a group's version listing, without the full
// payload.
type VersionSummary struct {
	ID            string    `json:"id"`
	Version       int       `json:"version"`
	CommitMessage string    `json:"commit_message,omitempty"`
	InsertedAt    time.Time `json:"inserted_at"`
}

// CreateConfigRequest is the payload for creating a new configuration group
// with its first version.
type CreateConfigRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Payload     ConfigPayload `json:"payload"`
}

// CreateVersionRequest is the payload for saving a new version of an
// existing configuration.
type CreateVersionRequest struct {
	CommitMessage string        `json:"commit_message,omitempty"`
	Payload       ConfigPayload `json:"payload"`
}

// GroupMeta is the per-group metadata recorded alongside a cache entry.
// It exists purely for staleness comparison against a fresh group listing.
type GroupMeta struct {
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
	VersionCount int       `json:"version_count"`
}

// CacheEntry is one complete snapshot of all visible configuration versions,
// flattened across groups, plus the metadata needed to detect staleness.
// Entries are replaced wholesale, never mutated in place.
type CacheEntry struct {
	Versions []ConfigVersion      `json:"versions"`
	Meta     map[string]GroupMeta `json:"meta"` // keyed by config_id
	CachedAt time.Time            `json:"cached_at"`
}
