package cache

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/erms/internal/domain"
)

type memoryEntry struct {
	summary domain.CapacitySummary
	expires time.Time
}

// MemoryCapacityCache is a process-local CapacityCache for single-instance
// runs on the in-memory store.
type MemoryCapacityCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	gens    map[string]int64
	entries map[string]map[string]memoryEntry
}

// NewMemoryCapacityCache builds an empty cache. A non-positive ttl disables expiry.
func NewMemoryCapacityCache(ttl time.Duration) *MemoryCapacityCache {
	return &MemoryCapacityCache{
		ttl:     ttl,
		now:     time.Now,
		gens:    make(map[string]int64),
		entries: make(map[string]map[string]memoryEntry),
	}
}

func (c *MemoryCapacityCache) Get(_ context.Context, engineerID string, day time.Time) (*domain.CapacitySummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[engineerID][domain.FormatDate(day)]
	if !ok {
		return nil, false, nil
	}
	if !entry.expires.IsZero() && c.now().After(entry.expires) {
		delete(c.entries[engineerID], domain.FormatDate(day))
		return nil, false, nil
	}
	summary := entry.summary
	return &summary, true, nil
}

func (c *MemoryCapacityCache) Generation(_ context.Context, engineerID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[engineerID], nil
}

func (c *MemoryCapacityCache) Set(_ context.Context, summary *domain.CapacitySummary, gen int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[summary.EngineerID] != gen {
		return nil
	}
	days, ok := c.entries[summary.EngineerID]
	if !ok {
		days = make(map[string]memoryEntry)
		c.entries[summary.EngineerID] = days
	}
	entry := memoryEntry{summary: *summary}
	if c.ttl > 0 {
		entry.expires = c.now().Add(c.ttl)
	}
	days[domain.FormatDate(summary.AsOf)] = entry
	return nil
}

func (c *MemoryCapacityCache) Invalidate(_ context.Context, engineerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[engineerID]++
	delete(c.entries, engineerID)
	return nil
}
