// Package cache maintains the read-through cache of configuration versions
// fetched from the evaluation backend. Entries live in two tiers, process
// memory and an optional persisted key-value store, and are revalidated in
// the background on every cache hit.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"konsole/internal/domain"
	"konsole/internal/domain/models"
)

// KeyValueStore is the persisted tier contract. A nil store means the
// manager runs memory-only.
type KeyValueStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// State describes the cache lifecycle for observability.
type State string

const (
	StateEmpty      State = "empty"
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateValidating State = "validating"
)

const (
	// DefaultMaxAge is how long an entry is served without a full refetch.
	DefaultMaxAge = 5 * time.Minute

	// fetchWindow bounds how many groups are fetched concurrently during a
	// full fetch.
	fetchWindow = 5

	// persistKey is the single key the entry is stored under in the
	// persisted tier.
	persistKey = "konsole.config-cache.v1"
)

// credentialChecker is implemented by sources that can report up front
// whether an API key is available.
type credentialChecker interface {
	HasCredential() bool
}

// Manager is the config cache manager. All tier mutation happens here;
// callers receive completed entries and must not modify them.
type Manager struct {
	source domain.ConfigSource
	store  KeyValueStore
	maxAge time.Duration
	logger *slog.Logger

	mu         sync.Mutex
	entry      *models.CacheEntry
	fetching   bool
	validating bool

	// Background validation is tied to the manager's own lifetime so a
	// torn-down manager never leaves a goroutine running.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a cache manager. store may be nil, in which case the
// persisted tier is skipped. maxAge <= 0 selects DefaultMaxAge.
func NewManager(source domain.ConfigSource, store KeyValueStore, maxAge time.Duration, logger *slog.Logger) *Manager {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		source: source,
		store:  store,
		maxAge: maxAge,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Close cancels background validation and waits for it to finish.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.fetching:
		return StateLoading
	case m.validating:
		return StateValidating
	case m.entry != nil:
		return StateReady
	default:
		return StateEmpty
	}
}

// Entry returns the current in-memory entry without consulting any tier
// freshness rules, or nil when none is cached.
func (m *Manager) Entry() *models.CacheEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entry
}

// FetchAll returns the cached entry, fetching from the backend when needed.
//
// Without force, a non-expired entry from the fastest available tier is
// returned immediately and a background staleness check is kicked off. With
// force, or when no valid entry exists, a full remote fetch runs: group
// list, then per-group version lists, then per-version details, with at most
// fetchWindow groups in flight. Individual group or version failures are
// logged and omitted; only a failure of the top-level group list fails the
// call.
//
// Only one full fetch runs at a time. A call that finds one already in
// flight declines to start another and returns ErrFetchInProgress.
func (m *Manager) FetchAll(ctx context.Context, force bool) (*models.CacheEntry, error) {
	if c, ok := m.source.(credentialChecker); ok && !c.HasCredential() {
		return nil, domain.ErrMissingCredential
	}

	if !force {
		if entry := m.lookup(); entry != nil {
			m.spawnValidation(entry)
			return entry, nil
		}
	}

	m.mu.Lock()
	if m.fetching {
		m.mu.Unlock()
		return nil, domain.ErrFetchInProgress
	}
	m.fetching = true
	m.mu.Unlock()

	entry, err := m.fetchRemote(ctx)

	m.mu.Lock()
	m.fetching = false
	if err == nil {
		m.entry = entry
	}
	m.mu.Unlock()

	if err != nil {
		// Prior tiers are intentionally left untouched; a stale entry beats
		// no entry on the next read.
		return nil, err
	}

	m.persist(entry)
	return entry, nil
}

// Invalidate clears both tiers. The next FetchAll performs a full fetch.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.entry = nil
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Remove(persistKey); err != nil {
			m.logger.Warn("failed to clear persisted cache tier", "error", err)
		}
	}
	m.logger.Debug("config cache invalidated")
}

// lookup returns a non-expired entry from the fastest tier that has one,
// promoting a persisted entry into memory on the way.
func (m *Manager) lookup() *models.CacheEntry {
	m.mu.Lock()
	entry := m.entry
	m.mu.Unlock()

	if entry != nil && m.fresh(entry) {
		return entry
	}

	if m.store == nil {
		return nil
	}
	raw, ok := m.store.Get(persistKey)
	if !ok {
		return nil
	}

	var persisted models.CacheEntry
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		m.logger.Warn("discarding unreadable persisted cache entry", "error", err)
		m.store.Remove(persistKey)
		return nil
	}
	if !m.fresh(&persisted) {
		return nil
	}

	m.mu.Lock()
	m.entry = &persisted
	m.mu.Unlock()
	return &persisted
}

func (m *Manager) fresh(entry *models.CacheEntry) bool {
	return time.Since(entry.CachedAt) < m.maxAge
}

// persist writes the entry to the persisted tier. Persistence failures are
// logged and ignored; the memory tier already holds the entry.
func (m *Manager) persist(entry *models.CacheEntry) {
	if m.store == nil {
		return
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		m.logger.Warn("failed to serialize cache entry", "error", err)
		return
	}
	if err := m.store.Set(persistKey, string(raw)); err != nil {
		m.logger.Warn("failed to persist cache entry", "error", err)
	}
}

// fetchRemote performs the full fetch sequence and assembles a new entry.
func (m *Manager) fetchRemote(ctx context.Context) (*models.CacheEntry, error) {
	groups, err := m.source.ListConfigGroups(ctx)
	if err != nil {
		return nil, err
	}

	type groupVersions struct {
		versions []models.ConfigVersion
	}
	results := make([]groupVersions, len(groups))

	// Bounded fan-out: fetchWindow groups in flight, next window only after
	// the current one fully resolves. Results land at their group's index,
	// so final ordering follows the backend's listing rather than
	// completion order.
	for start := 0; start < len(groups); start += fetchWindow {
		end := min(start+fetchWindow, len(groups))
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = groupVersions{versions: m.fetchGroupVersions(ctx, groups[i].ID)}
			}(i)
		}
		wg.Wait()
	}

	entry := &models.CacheEntry{
		Versions: []models.ConfigVersion{},
		Meta:     make(map[string]models.GroupMeta, len(groups)),
		CachedAt: time.Now(),
	}
	for i, g := range groups {
		entry.Versions = append(entry.Versions, results[i].versions...)
		entry.Meta[g.ID] = models.GroupMeta{
			Name:         g.Name,
			Description:  g.Description,
			UpdatedAt:    g.UpdatedAt,
			VersionCount: g.VersionCount,
		}
	}

	m.logger.Info("config cache refreshed",
		"groups", len(groups),
		"versions", len(entry.Versions),
	)
	return entry, nil
}

// fetchGroupVersions fetches one group's version list and details. Failures
// are isolated: a failed list drops the group, a failed detail drops that
// version.
func (m *Manager) fetchGroupVersions(ctx context.Context, configID string) []models.ConfigVersion {
	summaries, err := m.source.ListVersions(ctx, configID)
	if err != nil {
		m.logger.Warn("skipping config group", "config_id", configID, "error", err)
		return nil
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Version > summaries[j].Version
	})

	versions := make([]models.ConfigVersion, 0, len(summaries))
	for _, s := range summaries {
		detail, err := m.source.GetVersionDetail(ctx, configID, s.Version)
		if err != nil {
			m.logger.Warn("skipping config version",
				"config_id", configID,
				"version", s.Version,
				"error", err,
			)
			continue
		}
		versions = append(versions, *detail)
	}
	return versions
}

// spawnValidation starts a background staleness check for the given entry.
// At most one check runs at a time, and none while a full fetch is active.
func (m *Manager) spawnValidation(entry *models.CacheEntry) {
	m.mu.Lock()
	if m.validating || m.fetching {
		m.mu.Unlock()
		return
	}
	m.validating = true
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			m.mu.Lock()
			m.validating = false
			m.mu.Unlock()
		}()
		m.validate(entry)
	}()
}

// validate compares the cached metadata against a fresh group listing. On
// staleness the memory tier is dropped and a forced refetch runs; a failed
// check is inconclusive and leaves the cache alone.
func (m *Manager) validate(entry *models.CacheEntry) {
	groups, err := m.source.ListConfigGroups(m.ctx)
	if err != nil {
		m.logger.Debug("cache validation inconclusive", "error", err)
		return
	}

	if !metaStale(entry.Meta, groups) {
		return
	}

	m.logger.Info("config cache stale, refetching")
	m.mu.Lock()
	m.entry = nil
	m.mu.Unlock()

	if _, err := m.FetchAll(m.ctx, true); err != nil {
		m.logger.Warn("stale cache refetch failed", "error", err)
	}
}

// metaStale reports whether the cached metadata disagrees with a fresh group
// listing: a changed updated_at, an added or removed group, or a changed
// version count.
func metaStale(meta map[string]models.GroupMeta, groups []models.GroupSummary) bool {
	if len(groups) != len(meta) {
		return true
	}
	for _, g := range groups {
		cached, ok := meta[g.ID]
		if !ok {
			return true
		}
		if !cached.UpdatedAt.Equal(g.UpdatedAt) {
			return true
		}
		if cached.VersionCount != g.VersionCount {
			return true
		}
	}
	return false
}
