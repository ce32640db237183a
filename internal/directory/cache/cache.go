// Package cache owns the directory cache state: point entries, the
// full-snapshot flag, named-list trees, TTL policy, persistence and
// single-flight refresh coordination.
package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"directory-enricher/internal/common/errors"
	"directory-enricher/internal/common/logging"
	"directory-enricher/internal/directory"
	"directory-enricher/internal/directory/client"
	"directory-enricher/internal/directory/enrich"
	"directory-enricher/internal/storage"
)

// DefaultTTL is how long a cache entry or named-list tree stays fresh.
// An entry is stale once its age reaches the TTL exactly.
const DefaultTTL = 24 * time.Hour

// RefreshPolicy selects what a read does when the full directory
// snapshot is older than the TTL.
type RefreshPolicy string

const (
	// RefreshPolicyEager triggers a synchronous full refresh before the
	// read, favoring consistency over latency.
	RefreshPolicyEager RefreshPolicy = "eager"
	// RefreshPolicyLazy serves whatever is cached; full refreshes only
	// happen when requested explicitly or by schedule.
	RefreshPolicyLazy RefreshPolicy = "lazy"
)

// DirectoryClient is the upstream fetch surface the cache composes.
type DirectoryClient interface {
	FetchEmployee(ctx context.Context, creds client.Credentials, email string) (*directory.RawEmployeeRecord, error)
	FetchAllEmployees(ctx context.Context, creds client.Credentials) ([]directory.RawEmployeeRecord, error)
	FetchNamedList(ctx context.Context, creds client.Credentials, category string) (*directory.NamedList, error)
}

// CredentialSource supplies credentials per request.
type CredentialSource interface {
	Current() client.Credentials
}

// Config tunes the cache.
type Config struct {
	TTL    time.Duration
	Policy RefreshPolicy
}

// Stats describes the cache for diagnostics endpoints.
type Stats struct {
	Entries         int       `json:"entries"`
	FullLoaded      bool      `json:"fullLoaded"`
	LastFullRefresh time.Time `json:"lastFullRefresh,omitempty"`
	Policy          string    `json:"policy"`
}

// Cache is the directory cache and enrichment engine. Construct it with
// New and pass the handle around; there is no ambient global instance.
type Cache struct {
	client DirectoryClient
	creds  CredentialSource
	store  storage.Store
	logger logging.Logger

	ttl    time.Duration
	policy RefreshPolicy

	mu              sync.RWMutex
	entries         map[string]directory.CacheEntry
	lastFullRefresh time.Time
	// generation increments on Clear so that work started before a
	// clear cannot write pre-clear data back into the map.
	generation uint64

	group singleflight.Group
	lists *gocache.Cache

	now func() time.Time
}

// New constructs the cache and hydrates it from the snapshot store when
// a persisted snapshot exists. store may be nil (no persistence).
func New(ctx context.Context, directoryClient DirectoryClient, creds CredentialSource, store storage.Store, cfg Config, logger logging.Logger) *Cache {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Policy == "" {
		cfg.Policy = RefreshPolicyEager
	}

	c := &Cache{
		client:  directoryClient,
		creds:   creds,
		store:   store,
		logger:  logger.WithFields(logging.Field{Key: "component", Value: "directory-cache"}),
		ttl:     cfg.TTL,
		policy:  cfg.Policy,
		entries: make(map[string]directory.CacheEntry),
		lists:   gocache.New(cfg.TTL, 10*time.Minute),
		now:     time.Now,
	}

	c.hydrate(ctx)
	return c
}

// hydrate loads the persisted snapshot. Runs before any concurrent
// caller exists, so no locking is needed on the load path.
func (c *Cache) hydrate(ctx context.Context) {
	if c.store == nil {
		return
	}

	snapshot, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("Failed to load cache snapshot, starting empty",
			logging.Field{Key: "error", Value: err.Error()})
		return
	}
	if snapshot == nil {
		return
	}

	for key, entry := range snapshot.Entries {
		identity := directory.NormalizeIdentity(key)
		if identity == "" {
			continue
		}
		c.entries[identity] = directory.CacheEntry{
			Record:    entry.Record,
			FetchedAt: directory.ParseTimestamp(entry.FetchedAt),
		}
	}
	c.lastFullRefresh = directory.ParseTimestamp(snapshot.LastFullRefresh)

	c.logger.Info("Hydrated cache from snapshot",
		logging.Field{Key: "entries", Value: len(c.entries)},
		logging.Field{Key: "last_full_refresh", Value: snapshot.LastFullRefresh},
	)
}

// GetEmployee returns the enriched record for an identity, or nil when
// no data is available. Upstream failures are logged and degrade to nil;
// the only returned error is a blank identity, which is caller misuse.
//
// When the full directory has been loaded at least once, absence from
// the cache is authoritative: the lookup returns nil without a network
// call instead of falling through to a point fetch.
func (c *Cache) GetEmployee(ctx context.Context, email string) (*directory.EnrichedEmployeeRecord, error) {
	identity := directory.NormalizeIdentity(email)
	if identity == "" {
		return nil, errors.ValidationError("identity must not be blank")
	}

	if c.policy == RefreshPolicyEager && c.fullRefreshDue() {
		if err := c.RefreshAll(ctx); err != nil {
			c.logger.Warn("Eager full refresh failed, serving cached state",
				logging.Field{Key: "error", Value: err.Error()})
		}
	}

	c.mu.RLock()
	entry, cached := c.entries[identity]
	fullLoaded := !c.lastFullRefresh.IsZero()
	c.mu.RUnlock()

	// Cached entries are served regardless of freshness; the eager
	// policy has already refreshed anything worth refreshing.
	if cached {
		record := entry.Record
		return &record, nil
	}

	if fullLoaded {
		return nil, nil
	}

	return c.pointFetch(ctx, identity)
}

// pointFetch fetches, enriches and stores a single record. Concurrent
// requests for the same identity share one upstream call; distinct
// identities proceed independently.
func (c *Cache) pointFetch(ctx context.Context, identity string) (*directory.EnrichedEmployeeRecord, error) {
	result, err, _ := c.group.Do("point:"+identity, func() (interface{}, error) {
		// The flight outlives its first caller: collapsed waiters share
		// the result, so they must not inherit that caller's cancellation.
		ctx := context.WithoutCancel(ctx)
		generation := c.currentGeneration()

		raw, err := c.client.FetchEmployee(ctx, c.creds.Current(), identity)
		if err != nil {
			return nil, err
		}

		record := c.enrichRecord(*raw, c.fetchLists(ctx))
		c.storeEntry(ctx, identity, record, generation)
		return record, nil
	})
	if err != nil {
		if errors.IsRecoverable(err) {
			c.logger.Warn("Point fetch failed, returning no data",
				logging.Field{Key: "identity", Value: identity},
				logging.Field{Key: "error", Value: err.Error()},
			)
			return nil, nil
		}
		return nil, err
	}

	record := result.(directory.EnrichedEmployeeRecord)
	return &record, nil
}

// RefreshAll fetches the whole directory and replaces the point cache
// atomically. Single-flight: concurrent callers block on the in-flight
// refresh and share its outcome. On failure the previous cache state is
// left untouched.
func (c *Cache) RefreshAll(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		// Waiters share this refresh; detach from the first caller.
		return nil, c.refreshAll(context.WithoutCancel(ctx))
	})
	return err
}

func (c *Cache) refreshAll(ctx context.Context) error {
	generation := c.currentGeneration()
	started := c.now()
	creds := c.creds.Current()

	records, err := c.client.FetchAllEmployees(ctx, creds)
	if err != nil {
		c.logger.Warn("Full directory refresh failed, keeping existing cache",
			logging.Field{Key: "error", Value: err.Error()})
		return err
	}

	// One tree resolution serves the whole sweep. Resolving per record
	// would re-attempt failed fetches N times, each with retry backoff.
	lists := c.fetchLists(ctx)

	fresh := make(map[string]directory.CacheEntry, len(records))
	for _, raw := range records {
		identity := directory.NormalizeIdentity(raw.Email)
		if identity == "" {
			continue
		}
		fresh[identity] = directory.CacheEntry{
			Record:    c.enrichRecord(raw, lists),
			FetchedAt: started,
		}
	}

	c.mu.Lock()
	if c.generation != generation {
		c.mu.Unlock()
		c.logger.Info("Discarding refresh result, cache was cleared mid-flight")
		return nil
	}
	c.entries = fresh
	c.lastFullRefresh = started
	c.mu.Unlock()

	c.persist(ctx)

	c.logger.Info("Full directory refresh completed",
		logging.Field{Key: "entries", Value: len(fresh)})
	return nil
}

// namedLists bundles the three category trees for one enrichment pass.
// Any of them may be nil when the fetch failed; enrichment then degrades
// that category to raw text.
type namedLists struct {
	departments *directory.NamedList
	titles      *directory.NamedList
	sites       *directory.NamedList
}

// fetchLists resolves all three category trees at most once per caller.
// Callers enriching many records reuse the returned set rather than
// resolving per record.
func (c *Cache) fetchLists(ctx context.Context) namedLists {
	return namedLists{
		departments: c.namedList(ctx, directory.CategoryDepartments),
		titles:      c.namedList(ctx, directory.CategoryTitles),
		sites:       c.namedList(ctx, directory.CategorySites),
	}
}

// enrichRecord runs one raw record through the enrichment pipeline with
// whatever named-list trees are available. A missing tree never fails
// the record.
func (c *Cache) enrichRecord(raw directory.RawEmployeeRecord, lists namedLists) directory.EnrichedEmployeeRecord {
	record := enrich.Enrich(raw, lists.departments, lists.titles, lists.sites)
	return enrich.FillIDs(record, lists.departments, lists.titles, lists.sites)
}

// storeEntry writes one point-fetched entry unless a clear happened
// since the fetch started.
func (c *Cache) storeEntry(ctx context.Context, identity string, record directory.EnrichedEmployeeRecord, generation uint64) {
	c.mu.Lock()
	if c.generation != generation {
		c.mu.Unlock()
		return
	}
	c.entries[identity] = directory.CacheEntry{Record: record, FetchedAt: c.now()}
	c.mu.Unlock()

	c.persist(ctx)
}

// Clear drops all in-memory state, resets the full-load flag and
// persists the empty snapshot. Safe to call while a refresh is in
// flight: the refresh discards its result via the generation counter.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]directory.CacheEntry)
	c.lastFullRefresh = time.Time{}
	c.generation++
	c.mu.Unlock()

	c.lists.Flush()
	c.persist(ctx)

	c.logger.Info("Cache cleared")
}

// Flush persists the current in-memory state. Called at shutdown.
func (c *Cache) Flush(ctx context.Context) {
	c.persist(ctx)
}

// Stats reports the cache state for the diagnostics endpoint.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Entries:         len(c.entries),
		FullLoaded:      !c.lastFullRefresh.IsZero(),
		LastFullRefresh: c.lastFullRefresh,
		Policy:          string(c.policy),
	}
}

// fullRefreshDue reports whether the last full refresh is older than
// the TTL. The boundary is inclusive: exactly TTL-old is due.
func (c *Cache) fullRefreshDue() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastFullRefresh.IsZero() {
		return true
	}
	return c.now().Sub(c.lastFullRefresh) >= c.ttl
}

func (c *Cache) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// persist rewrites the snapshot from current in-memory state. Snapshot
// construction happens under the read lock; the store write does not.
func (c *Cache) persist(ctx context.Context) {
	if c.store == nil {
		return
	}

	c.mu.RLock()
	snapshot := &directory.CacheSnapshot{
		Entries:         make(map[string]directory.SnapshotEntry, len(c.entries)),
		LastFullRefresh: directory.FormatTimestamp(c.lastFullRefresh),
	}
	for identity, entry := range c.entries {
		snapshot.Entries[identity] = directory.SnapshotEntry{
			Record:    entry.Record,
			FetchedAt: directory.FormatTimestamp(entry.FetchedAt),
		}
	}
	c.mu.RUnlock()

	if err := c.store.Save(ctx, snapshot); err != nil {
		c.logger.Warn("Failed to persist cache snapshot",
			logging.Field{Key: "error", Value: err.Error()})
	}
}
