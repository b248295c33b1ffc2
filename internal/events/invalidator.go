package events

import (
	"context"
	"fmt"
)

// StatsCache is the part of the dashboard cache the invalidator needs.
type StatsCache interface {
	Invalidate(ctx context.Context) error
}

// CacheInvalidator drops cached dashboard stats whenever a person event
// can change them.
type CacheInvalidator struct {
	cache StatsCache
}

// NewCacheInvalidator returns a handler that invalidates cache.
func NewCacheInvalidator(cache StatsCache) *CacheInvalidator {
	return &CacheInvalidator{cache: cache}
}

// HandleEvent implements EventHandler.
func (h *CacheInvalidator) HandleEvent(ctx context.Context, event *PersonEvent) error {
	if h.cache == nil || !event.ChangesStats() {
		return nil
	}
	if err := h.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate dashboard cache after %s: %w", event.Type, err)
	}
	return nil
}
