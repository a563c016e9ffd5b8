package services

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-wiki/internal/logger"
)

// ComputeFunc produces a summary on a cache miss.
type ComputeFunc func(ctx context.Context) (*domain.SummaryEntry, error)

// SummaryCache is a two-tier cache of AI summaries: an in-memory map in
// front of an optional persistent store.
//
// Concurrent GetOrCreate calls for the same key share a single computation.
// Results are written to both tiers before callers are answered. When the
// store fails the cache degrades to memory-only for the rest of the process.
type SummaryCache struct {
	store driven.SummaryStore
	group singleflight.Group

	mu        sync.RWMutex
	memory    map[domain.SummaryKey]domain.SummaryEntry
	epoch     uint64
	keyEpochs map[domain.SummaryKey]uint64
	degraded  bool
	listeners []func()
}

// NewSummaryCache creates a cache. store may be nil for memory-only operation.
func NewSummaryCache(store driven.SummaryStore) *SummaryCache {
	return &SummaryCache{
		store:     store,
		memory:    make(map[domain.SummaryKey]domain.SummaryEntry),
		keyEpochs: make(map[domain.SummaryKey]uint64),
	}
}

// Lookup returns a cached entry without computing on a miss.
// A persistent hit is promoted to memory.
func (c *SummaryCache) Lookup(ctx context.Context, key domain.SummaryKey) (*domain.SummaryEntry, bool) {
	c.mu.RLock()
	entry, ok := c.memory[key]
	c.mu.RUnlock()
	if ok {
		return &entry, true
	}

	store := c.persistent()
	if store == nil {
		return nil, false
	}
	stored, err := store.GetSummary(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.degrade("get", err)
		}
		return nil, false
	}

	c.mu.Lock()
	c.memory[key] = *stored
	c.mu.Unlock()
	return stored, true
}

// GetOrCreate returns the entry for key, calling compute on a miss.
// The boolean reports whether the entry came from cache. At most one
// compute runs per key at a time; concurrent callers share its result.
// A failed compute is not cached.
//
// The shared compute is not cancelled with any one caller's context. A
// caller whose ctx ends stops waiting and gets ctx.Err(); the others still
// receive the result, which is cached as usual.
func (c *SummaryCache) GetOrCreate(ctx context.Context, key domain.SummaryKey, compute ComputeFunc) (*domain.SummaryEntry, bool, error) {
	if entry, ok := c.Lookup(ctx, key); ok {
		return entry, true, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		// A caller that lost the race may find the winner's result.
		c.mu.RLock()
		entry, ok := c.memory[key]
		epoch, keyEpoch := c.epoch, c.keyEpochs[key]
		c.mu.RUnlock()
		if ok {
			return &entry, nil
		}

		computed, err := compute(shared)
		if err != nil {
			return nil, err
		}
		c.writeThrough(shared, key, computed, epoch, keyEpoch)
		return computed, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		entry := *res.Val.(*domain.SummaryEntry)
		return &entry, false, nil
	}
}

// writeThrough stores entry in both tiers unless the key was invalidated
// or the cache cleared while it was being computed.
func (c *SummaryCache) writeThrough(ctx context.Context, key domain.SummaryKey, entry *domain.SummaryEntry, epoch, keyEpoch uint64) {
	c.mu.Lock()
	if c.epoch != epoch || c.keyEpochs[key] != keyEpoch {
		c.mu.Unlock()
		logger.Debug("summary cache: dropping result for %s computed before invalidation", key)
		return
	}
	c.memory[key] = *entry
	c.mu.Unlock()

	if store := c.persistent(); store != nil {
		if err := store.PutSummary(ctx, entry); err != nil {
			c.degrade("put", err)
		}
	}
}

// Invalidate removes key from both tiers. The next GetOrCreate recomputes.
func (c *SummaryCache) Invalidate(ctx context.Context, key domain.SummaryKey) error {
	c.mu.Lock()
	delete(c.memory, key)
	c.keyEpochs[key]++
	c.mu.Unlock()
	c.group.Forget(key.String())

	if store := c.persistent(); store != nil {
		if err := store.DeleteSummary(ctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
			c.degrade("delete", err)
		}
	}
	return nil
}

// ClearAll empties both tiers and notifies listeners.
func (c *SummaryCache) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	c.memory = make(map[domain.SummaryKey]domain.SummaryEntry)
	c.keyEpochs = make(map[domain.SummaryKey]uint64)
	c.epoch++
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	if store := c.persistent(); store != nil {
		if err := store.ClearSummaries(ctx); err != nil {
			c.degrade("clear", err)
		}
	}

	for _, fn := range listeners {
		fn()
	}
	return nil
}

// OnClear registers fn to run after every ClearAll.
func (c *SummaryCache) OnClear(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Degraded reports whether the persistent tier has been abandoned.
func (c *SummaryCache) Degraded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.degraded
}

// Len returns the number of entries held in memory.
func (c *SummaryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}

func (c *SummaryCache) persistent() driven.SummaryStore {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.degraded {
		return nil
	}
	return c.store
}

func (c *SummaryCache) degrade(op string, err error) {
	c.mu.Lock()
	already := c.degraded
	c.degraded = true
	c.mu.Unlock()
	if !already {
		logger.Warn("summary cache: persistent store %s failed, continuing in memory: %v", op, err)
	}
}
