package corpus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zsy-dream/aigcguard/internal/logging"
)

// Source is the durable side of the cache. *Store satisfies it; tests
// substitute fakes.
type Source interface {
	All(ctx context.Context) ([]Record, error)
	Profiles(ctx context.Context, ownerIDs []string) (map[string]string, error)
}

// Cache serves TTL-scoped snapshots of the corpus so repeated detection
// calls do not hit the database on every frame. Reads return the shared
// snapshot slice; callers must not mutate it.
type Cache struct {
	source     Source
	ttl        time.Duration
	profileTTL time.Duration
	logger     *slog.Logger
	clock      func() time.Time

	mu         sync.RWMutex
	records    []Record
	loadedAt   time.Time
	profiles   map[string]string
	profilesAt time.Time
}

// NewCache wraps source with snapshot caching. ttl covers corpus records,
// profileTTL the owner display names.
func NewCache(source Source, ttl, profileTTL time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		source:     source,
		ttl:        ttl,
		profileTTL: profileTTL,
		logger:     logging.NewComponentLogger(logger, "corpus-cache"),
		clock:      time.Now,
	}
}

// All returns the current corpus snapshot, reloading from the source when
// the snapshot has expired. If a reload fails and a previous snapshot
// exists, the stale snapshot is returned and the failure logged.
func (c *Cache) All(ctx context.Context) ([]Record, error) {
	c.mu.RLock()
	if c.records != nil && c.clock().Sub(c.loadedAt) < c.ttl {
		records := c.records
		c.mu.RUnlock()
		return records, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.records != nil && c.clock().Sub(c.loadedAt) < c.ttl {
		return c.records, nil
	}

	records, err := c.source.All(ctx)
	if err != nil {
		if c.records != nil {
			c.logger.Warn("corpus reload failed, serving stale snapshot",
				logging.Error(err),
				logging.Int("stale_records", len(c.records)))
			return c.records, nil
		}
		return nil, err
	}

	c.records = records
	c.loadedAt = c.clock()
	c.logger.Debug("corpus snapshot refreshed", logging.Int("records", len(records)))
	return records, nil
}

// Profiles returns owner display names, served from a separately aged
// snapshot of the whole profile table.
func (c *Cache) Profiles(ctx context.Context, ownerIDs []string) (map[string]string, error) {
	c.mu.RLock()
	snapshot := c.profiles
	fresh := snapshot != nil && c.clock().Sub(c.profilesAt) < c.profileTTL
	c.mu.RUnlock()

	if !fresh {
		loaded, err := c.source.Profiles(ctx, ownerIDs)
		if err != nil {
			if snapshot == nil {
				return nil, err
			}
			c.logger.Warn("profile reload failed, serving stale snapshot", logging.Error(err))
		} else {
			c.mu.Lock()
			if c.profiles == nil {
				c.profiles = make(map[string]string)
			}
			for id, name := range loaded {
				c.profiles[id] = name
			}
			c.profilesAt = c.clock()
			snapshot = c.profiles
			c.mu.Unlock()
		}
	}

	names := make(map[string]string, len(ownerIDs))
	for _, id := range ownerIDs {
		if name, ok := snapshot[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

// Invalidate drops the current snapshots so the next read reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.records = nil
	c.loadedAt = time.Time{}
	c.profiles = nil
	c.profilesAt = time.Time{}
	c.mu.Unlock()
	c.logger.Debug("corpus cache invalidated")
}

// Inject adds a record to the live snapshot without touching the source,
// so a detection issued right after an embed sees the new record even
// before the snapshot next expires.
func (c *Cache) Inject(record Record) {
	if !record.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.records == nil {
		// No snapshot yet; the next All() will load it from the source,
		// which already has the record.
		return
	}
	for _, existing := range c.records {
		if existing.ID == record.ID {
			return
		}
	}
	updated := make([]Record, 0, len(c.records)+1)
	updated = append(updated, record)
	updated = append(updated, c.records...)
	c.records = updated
}

// Size reports how many records the live snapshot holds, without
// triggering a reload. Used by status reporting.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
