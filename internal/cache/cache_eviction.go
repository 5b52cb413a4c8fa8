package cache

import (
	"log"
	"time"
)

// poolCapForKeyCount tiers the eviction candidate pool's target size by
// how many keys the coordinator is currently tracking, so sampling
// overhead grows sublinearly with the keyspace.
func poolCapForKeyCount(keyCount int) int {
	switch {
	case keyCount < 1000:
		return 8
	case keyCount < 10000:
		return 16
	case keyCount < 100000:
		return 32
	default:
		return 64
	}
}

// evictIfNeededLocked evicts keys, worst-eviction-quality first, until
// the coordinator is back under its memory budget or no candidates
// remain. Caller must hold c.mu. A MaxMemory of 0 disables eviction.
func (c *Cache) evictIfNeededLocked() {
	if c.cfg.MaxMemory <= 0 {
		return
	}

	for c.currentMemory > c.cfg.MaxMemory {
		if !c.refillPoolLocked() {
			return
		}

		victim := c.pool[0]
		c.pool = c.pool[1:]

		if _, ok := c.dict.Get(victim); !ok {
			// Sampled earlier, deleted since; not a real eviction.
			continue
		}
		c.deleteKeyLocked(victim, false)
		c.evictions++
		logEviction(victim)
	}
}

// refillPoolLocked leaves a non-empty candidate pool as it is; an empty
// pool is refilled to its target size by sampling fresh random keys and
// sorting them by eviction quality. Reports false if the keyspace is
// empty.
func (c *Cache) refillPoolLocked() bool {
	if len(c.pool) > 0 {
		return true
	}

	keyCount := c.dict.Len()
	if keyCount == 0 {
		return false
	}

	target := poolCapForKeyCount(keyCount)
	sampleSize := c.cfg.EvictionSampleSize * 2
	if sampleSize > keyCount {
		sampleSize = keyCount
	}
	if sampleSize <= 0 {
		return false
	}

	candidates := c.dict.RandomKeys(sampleSize)
	if len(candidates) == 0 {
		return false
	}

	c.usage.SortByEvictionQuality(candidates)
	if len(candidates) > target {
		candidates = candidates[:target]
	}
	c.pool = candidates
	return true
}

var lastEvictionLog int64

// logEviction rate-limits eviction logging to roughly once per second.
// Always called with c.mu held, so a plain package var is enough --
// unlike a per-shard hot path, there's no concurrent writer to race.
func logEviction(key string) {
	now := time.Now().Unix()
	if now == lastEvictionLog {
		return
	}
	lastEvictionLog = now
	log.Printf("[EVICTION] evicted key %q", key)
}
