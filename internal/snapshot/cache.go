package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/sales-feed-service/internal/domain"
	"github.com/couchcryptid/sales-feed-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Snapshot is the full set of sales parsed from the feed at one point in time.
// Sales is shared between callers within a TTL window and must not be modified.
type Snapshot struct {
	Sales    []domain.Sale `json:"sales"`
	LoadedAt time.Time     `json:"loaded_at"`
	TornTail bool          `json:"torn_tail"`
}

// Cache memoizes the latest snapshot for a fixed TTL. Within the window, Get
// returns the same snapshot without touching the source; the first call after
// expiry reloads. Failed loads are not cached.
type Cache struct {
	source  Source
	ttl     time.Duration
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	current *Snapshot
	expires time.Time
	loaded  atomic.Bool
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheClock replaces the real clock, e.g. with a fake in tests.
func WithCacheClock(c clockwork.Clock) CacheOption {
	return func(cache *Cache) { cache.clock = c }
}

// NewCache wraps source with a TTL cache.
func NewCache(source Source, ttl time.Duration, logger *slog.Logger, metrics *observability.Metrics, opts ...CacheOption) *Cache {
	c := &Cache{
		source:  source,
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current snapshot, reloading the source if the cached one
// has expired. Concurrent callers during a reload wait for and share it.
func (c *Cache) Get(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.current != nil && now.Before(c.expires) {
		c.metrics.SnapshotCache.WithLabelValues("hit").Inc()
		return *c.current, nil
	}
	c.metrics.SnapshotCache.WithLabelValues("miss").Inc()

	start := time.Now()
	res, err := c.source.Load(ctx)
	if err != nil {
		c.metrics.SnapshotLoads.WithLabelValues("error").Inc()
		c.logger.Error("load snapshot failed", "error", err)
		return Snapshot{}, err
	}
	c.metrics.SnapshotLoads.WithLabelValues("success").Inc()
	c.metrics.SnapshotLoadDuration.Observe(time.Since(start).Seconds())
	c.metrics.SnapshotRecords.Set(float64(len(res.Sales)))
	if res.TornTail {
		c.metrics.TornRowsDiscarded.Inc()
		c.logger.Debug("skipped incomplete trailing row")
	}

	snap := Snapshot{Sales: res.Sales, LoadedAt: now, TornTail: res.TornTail}
	c.current = &snap
	c.expires = now.Add(c.ttl)
	c.loaded.Store(true)

	c.logger.Debug("snapshot loaded", "records", len(snap.Sales), "expires", c.expires)
	return snap, nil
}

// Invalidate drops the cached snapshot so the next Get reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

// CheckReadiness returns nil once a snapshot has been loaded successfully.
func (c *Cache) CheckReadiness(_ context.Context) error {
	if !c.loaded.Load() {
		return errors.New("no snapshot has been loaded yet")
	}
	return nil
}
