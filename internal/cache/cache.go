// Package cache implements the cache coordinator:
// it owns the entry dictionary, dispatches each operation to the
// right value engine, enforces WRONGTYPE safety, maintains approximate
// memory accounting, and drives eviction when the memory budget is
// exceeded.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pomai-cache/corekv/internal/dict"
	"github.com/pomai-cache/corekv/internal/memberset"
	"github.com/pomai-cache/corekv/internal/ttl"
	"github.com/pomai-cache/corekv/internal/usage"
	"github.com/pomai-cache/corekv/internal/zset"
)

// LazyExpireFreq is how often (in operations, reads and writes alike)
// an operation additionally triggers a small active-expiration sample.
const LazyExpireFreq = 100

// DefaultEvictionSampleSize is the default eviction candidate pool
// sample size.
const DefaultEvictionSampleSize = 8

// DefaultMemberSetCap is the default compact-encoding member cap
// before a MemberSet upgrades to its general hash-set form.
const DefaultMemberSetCap = 512

// ValueShape tags which of the three value shapes an entry holds.
type ValueShape int

const (
	ShapeScalar ValueShape = iota
	ShapeOrderedCollection
	ShapeMemberSet
)

type entry struct {
	shape      ValueShape
	scalar     []byte
	zset       *zset.ZSet
	mset       *memberset.MemberSet
	memoryUsed int64
}

// Stats is the coordinator's public stats snapshot.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
	Operations  uint64
	KeyCount    int
	MemoryUsed  int64
	HitRate     float64
}

// Config configures a Cache.
type Config struct {
	MaxMemory          int64
	EvictionPolicy     usage.Policy
	EvictionSampleSize int
	MemberSetCap       int

	ActiveExpireInterval time.Duration
	ActiveExpireSample   int
	ActiveExpireMaxRound int

	DecayInterval time.Duration
}

// DefaultConfig returns a Config with reasonable production defaults.
func DefaultConfig() Config {
	return Config{
		EvictionPolicy:       usage.LRU,
		EvictionSampleSize:   DefaultEvictionSampleSize,
		MemberSetCap:         DefaultMemberSetCap,
		ActiveExpireInterval: 200 * time.Millisecond,
		ActiveExpireSample:   10,
		ActiveExpireMaxRound: 2,
		DecayInterval:        60 * time.Second,
	}
}

// Cache is the coordinator. All public methods are safe for concurrent
// use: a single coarse mutex serializes them rather than sharding, since
// the value engines behind it (skip lists, the rehashing dict) are not
// themselves safe for concurrent mutation.
type Cache struct {
	mu sync.Mutex

	dict  *dict.Dict
	ttl   *ttl.Manager
	usage *usage.Tracker
	cfg   Config

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64
	operations  uint64

	currentMemory int64
	pool          []string

	sf singleflight.Group

	stopCh       chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once

	nowFn func() int64
}

// New constructs a Cache and starts its background TTL-expiration and
// (for LFU) frequency-decay loops.
func New(cfg Config) *Cache {
	if cfg.EvictionSampleSize <= 0 {
		cfg.EvictionSampleSize = DefaultEvictionSampleSize
	}
	if cfg.MemberSetCap <= 0 {
		cfg.MemberSetCap = DefaultMemberSetCap
	}
	if cfg.ActiveExpireSample <= 0 {
		cfg.ActiveExpireSample = 10
	}
	if cfg.ActiveExpireMaxRound <= 0 {
		cfg.ActiveExpireMaxRound = 2
	}
	if cfg.ActiveExpireInterval <= 0 {
		cfg.ActiveExpireInterval = 200 * time.Millisecond
	}
	if cfg.DecayInterval <= 0 {
		cfg.DecayInterval = 60 * time.Second
	}

	c := &Cache{
		dict:   dict.New(),
		ttl:    ttl.NewManager(),
		usage:  usage.NewTracker(cfg.EvictionPolicy),
		cfg:    cfg,
		stopCh: make(chan struct{}),
		nowFn:  func() int64 { return time.Now().UnixMilli() },
	}

	c.startBackgroundLoops()
	return c
}

func (c *Cache) nowMs() int64 { return c.nowFn() }

func (c *Cache) startBackgroundLoops() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.cfg.ActiveExpireInterval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stopCh:
				return
			case <-ticker.C:
				c.runActiveExpireCycle()
			}
		}
	}()

	if c.cfg.EvictionPolicy == usage.LFU {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			ticker := time.NewTicker(c.cfg.DecayInterval)
			defer ticker.Stop()
			for {
				select {
				case <-c.stopCh:
					return
				case <-ticker.C:
					c.mu.Lock()
					c.usage.DecayAll(c.nowMs())
					c.mu.Unlock()
				}
			}
		}()
	}
}

func (c *Cache) runActiveExpireCycle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.nowMs()
	expCfg := ttl.ActiveExpireConfig{SampleSize: c.cfg.ActiveExpireSample, MaxRounds: c.cfg.ActiveExpireMaxRound}
	ttl.RunActiveExpireCycle(c.ttl, expCfg, now, func(key string) {
		c.deleteKeyLocked(key, true)
	})
}

// Shutdown flushes any buffered TTL deletions and stops both
// background loops. Idempotent.
func (c *Cache) Shutdown() {
	c.shutdownOnce.Do(func() {
		close(c.stopCh)
		c.wg.Wait()

		c.mu.Lock()
		c.ttl.FlushPendingDeletes(func(key string) {
			c.deleteKeyLocked(key, true)
		})
		c.mu.Unlock()
	})
}

// bumpOperations increments the operation counter and, every
// LazyExpireFreq operations, runs a small extra active-expiration
// sample, spreading active-expiration work across ordinary traffic
// instead of relying solely on the background ticker. Caller must hold
// c.mu.
func (c *Cache) bumpOperations() {
	c.operations++
	if c.operations%LazyExpireFreq == 0 {
		now := c.nowMs()
		c.ttl.SamplePurge(5, now, func(key string) {
			c.deleteKeyLocked(key, true)
		})
	}
}

// checkExpiredLocked deletes key if its TTL has passed. Caller must
// hold c.mu.
func (c *Cache) checkExpiredLocked(key string, now int64) {
	if c.ttl.IsExpired(key, now) {
		c.deleteKeyLocked(key, true)
	}
}

// deleteKeyLocked is the single convergence point every destruction
// path (explicit delete, TTL expiry, eviction) routes through: it
// removes the entry, TTL row, and usage metadata, and subtracts the
// entry's memory. Caller must hold c.mu.
func (c *Cache) deleteKeyLocked(key string, expired bool) bool {
	raw, ok := c.dict.Get(key)
	if !ok {
		c.ttl.Delete(key)
		c.usage.Delete(key)
		return false
	}
	e := raw.(*entry)
	c.dict.Delete(key)
	c.ttl.Delete(key)
	c.usage.Delete(key)
	c.subtractMemory(e.memoryUsed)
	if expired {
		c.expirations++
	}
	return true
}

func (c *Cache) addMemory(delta int64) {
	c.currentMemory += delta
	if c.currentMemory < 0 {
		c.currentMemory = 0
	}
}

func (c *Cache) subtractMemory(amount int64) {
	c.currentMemory -= amount
	if c.currentMemory < 0 {
		c.currentMemory = 0
	}
}

func scalarMemory(key string, value []byte) int64 {
	return int64(len(key)*2 + len(value)*2 + 48)
}

// Set writes a scalar entry, replacing any prior entry at key
// regardless of its shape. ttlMs <= 0 means no expiration.
func (c *Cache) Set(key string, value []byte, ttlMs int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bumpOperations()
	c.evictIfNeededLocked()

	now := c.nowMs()
	c.checkExpiredLocked(key, now)

	if raw, ok := c.dict.Get(key); ok {
		c.subtractMemory(raw.(*entry).memoryUsed)
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	mem := scalarMemory(key, value)
	c.dict.Set(key, &entry{shape: ShapeScalar, scalar: stored, memoryUsed: mem})
	c.addMemory(mem)

	if ttlMs > 0 {
		c.ttl.Set(key, now+ttlMs)
	} else {
		c.ttl.Delete(key)
	}
	c.usage.Touch(key, now)
	return nil
}

// Get returns the scalar stored at key, nil if the key is missing or
// expired, or ErrWrongType if key holds a non-scalar entry. Concurrent
// Get calls for the same key are coalesced through singleflight so
// only one of them pays for the expiry check and usage touch.
func (c *Cache) Get(key string) ([]byte, error) {
	type result struct {
		value []byte
		err   error
	}
	v, err, _ := c.sf.Do("get:"+key, func() (interface{}, error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.bumpOperations()
		now := c.nowMs()
		c.checkExpiredLocked(key, now)

		raw, ok := c.dict.Get(key)
		if !ok {
			c.misses++
			return result{}, nil
		}
		e := raw.(*entry)
		if e.shape != ShapeScalar {
			return result{}, ErrWrongType
		}
		c.usage.Touch(key, now)
		c.hits++
		val := make([]byte, len(e.scalar))
		copy(val, e.scalar)
		return result{value: val}, nil
	})
	if err != nil {
		return nil, err
	}
	r := v.(result)
	if r.value == nil {
		return nil, nil
	}
	out := make([]byte, len(r.value))
	copy(out, r.value)
	return out, nil
}

// Del removes key, reporting 1 if it was present and live, 0
// otherwise.
func (c *Cache) Del(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bumpOperations()
	now := c.nowMs()
	c.checkExpiredLocked(key, now)

	if c.deleteKeyLocked(key, false) {
		return 1
	}
	return 0
}

// GetStats returns a snapshot of coordinator statistics.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var hitRate float64
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		Operations:  c.operations,
		KeyCount:    c.dict.Len(),
		MemoryUsed:  c.currentMemory,
		HitRate:     hitRate,
	}
}

// negInfScore and posInfScore bound an unrestricted ZRANGEBYSCORE sweep.
const (
	negInfScore = -1 << 62
	posInfScore = 1 << 62
)
