package carrier

import (
	"context"
	"sync"
	"time"

	"wholesale-portal/internal/core"
)

// Cached wraps a tracking provider with a per-order TTL cache so that
// repeated order-view refreshes do not hammer the carrier API. It is an
// explicit, injected collaborator; errors are never cached.
type Cached struct {
	provider core.TrackingProvider
	ttl      time.Duration
	mu       sync.Mutex
	entries  map[string]cacheEntry
	now      func() time.Time
}

type cacheEntry struct {
	events  []core.TrackingEvent
	expires time.Time
}

func NewCached(provider core.TrackingProvider, ttl time.Duration) *Cached {
	return &Cached{
		provider: provider,
		ttl:      ttl,
		entries:  make(map[string]cacheEntry),
		now:      time.Now,
	}
}

func (c *Cached) FetchTrackingEvents(ctx context.Context, orderID string) ([]core.TrackingEvent, error) {
	c.mu.Lock()
	entry, ok := c.entries[orderID]
	c.mu.Unlock()
	if ok && c.now().Before(entry.expires) {
		out := make([]core.TrackingEvent, len(entry.events))
		copy(out, entry.events)
		return out, nil
	}

	events, err := c.provider.FetchTrackingEvents(ctx, orderID)
	if err != nil {
		return nil, err
	}

	cached := make([]core.TrackingEvent, len(events))
	copy(cached, events)
	c.mu.Lock()
	c.entries[orderID] = cacheEntry{events: cached, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return events, nil
}
