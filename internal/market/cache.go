package market

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/cryptowallet/internal/logging"
)

// DefaultStalenessWindow is how long cached quotes stay usable before a
// refresh is required.
const DefaultStalenessWindow = 30 * time.Minute

// Provider fetches the current asset universe from an external market-data
// source.
type Provider interface {
	Fetch(ctx context.Context) ([]Asset, error)
}

// Cache holds the latest known asset quotes. All methods must be called from
// the event-loop goroutine; the cache does no locking of its own.
//
// A refresh failure is logged and the previous data is served instead; the
// caller never sees provider errors.
type Cache struct {
	provider Provider
	logger   logging.Logger
	window   time.Duration

	assets        map[string]Asset
	lastRefreshed time.Time

	// now is a test seam for staleness checks.
	now func() time.Time
}

func NewCache(provider Provider, window time.Duration, logger logging.Logger) *Cache {
	if window <= 0 {
		window = DefaultStalenessWindow
	}
	return &Cache{
		provider: provider,
		logger:   logger.With("module", "price_cache"),
		window:   window,
		assets:   make(map[string]Asset),
		now:      time.Now,
	}
}

// Restore seeds the cache from a persisted snapshot, typically at startup.
func (c *Cache) Restore(s Snapshot) {
	c.assets = make(map[string]Asset, len(s.Assets))
	for _, a := range s.Assets {
		c.assets[a.ID] = a
	}
	c.lastRefreshed = s.LastRefreshed
}

// Snapshot exports the cache state for persistence. Assets are ordered by ID
// so snapshots are stable.
func (c *Cache) Snapshot() Snapshot {
	return Snapshot{Assets: c.sorted(), LastRefreshed: c.lastRefreshed}
}

// Assets returns the current asset universe, refreshing it first if the data
// is older than the staleness window.
func (c *Cache) Assets(ctx context.Context) []Asset {
	c.refreshIfStale(ctx)
	return c.sorted()
}

// Lookup returns the quote for one asset, refreshing stale data first.
func (c *Cache) Lookup(ctx context.Context, assetID string) (Asset, bool) {
	c.refreshIfStale(ctx)
	a, ok := c.assets[assetID]
	return a, ok
}

// LastRefreshed reports when the cache last got fresh provider data.
func (c *Cache) LastRefreshed() time.Time {
	return c.lastRefreshed
}

func (c *Cache) refreshIfStale(ctx context.Context) {
	if !c.lastRefreshed.IsZero() && !c.now().After(c.lastRefreshed.Add(c.window)) {
		return
	}

	assets, err := c.provider.Fetch(ctx)
	if err != nil {
		// Fail-soft: keep serving whatever we have.
		c.logger.Warn(ctx, "provider refresh failed, serving cached data", "error", err.Error())
		return
	}

	c.assets = make(map[string]Asset, len(assets))
	for _, a := range assets {
		c.assets[a.ID] = a
	}
	c.lastRefreshed = c.now()
	c.logger.Info(ctx, "price cache refreshed", "assets", len(assets))
}

func (c *Cache) sorted() []Asset {
	out := make([]Asset, 0, len(c.assets))
	for _, a := range c.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
