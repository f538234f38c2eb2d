package totals

import (
	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
)

// CacheKey identifies the inputs a variant's totals were computed from.
// Versions come from the store and change whenever the variant's links or
// its collection's entries are replaced; they are compared, never the data.
type CacheKey struct {
	LinksVersion   uint64
	EntriesVersion uint64
}

type cacheEntry struct {
	key    CacheKey
	totals *equipment.VariantTotals
}

// Cache is a shallow identity cache of variant totals. It is not safe for
// concurrent use; the orchestrator owning it processes one event at a time.
type Cache struct {
	entries map[string]cacheEntry
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// ShouldRecompute reports whether the variant has no cached totals for key
func (c *Cache) ShouldRecompute(variantID string, key CacheKey) bool {
	_, ok := c.Lookup(variantID, key)
	return !ok
}

// Lookup returns the cached totals when both versions match
func (c *Cache) Lookup(variantID string, key CacheKey) (*equipment.VariantTotals, bool) {
	entry, ok := c.entries[variantID]
	if !ok || entry.key != key {
		return nil, false
	}
	return entry.totals, true
}

// Store records totals for a variant, replacing any previous entry
func (c *Cache) Store(variantID string, key CacheKey, totals *equipment.VariantTotals) {
	c.entries[variantID] = cacheEntry{key: key, totals: totals}
}

// Compute returns the cached totals for key or calls compute and caches the
// result. The second return value reports a cache hit.
func (c *Cache) Compute(variantID string, key CacheKey, compute func() *equipment.VariantTotals) (*equipment.VariantTotals, bool) {
	if totals, ok := c.Lookup(variantID, key); ok {
		return totals, true
	}

	totals := compute()
	c.Store(variantID, key, totals)
	return totals, false
}

// Invalidate drops the entry of a deleted or reused variant id
func (c *Cache) Invalidate(variantID string) {
	delete(c.entries, variantID)
}

// Prune drops every entry whose variant id keep rejects and returns how many
// were dropped
func (c *Cache) Prune(keep func(variantID string) bool) int {
	dropped := 0
	for variantID := range c.entries {
		if !keep(variantID) {
			delete(c.entries, variantID)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of cached variants
func (c *Cache) Len() int {
	return len(c.entries)
}
