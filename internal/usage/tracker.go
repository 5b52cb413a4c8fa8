// Package usage implements the per-key metadata the eviction engine
// ranks candidates by: an approximate-LRU access timestamp, or a
// probabilistic LFU frequency counter that fits in one byte and ages
// out with a background decay loop.
package usage

import (
	"math/rand"
	"sort"
)

// Policy selects which signal the coordinator evicts by.
type Policy int

const (
	LRU Policy = iota
	LFU
)

// DefaultDecayIntervalMs and DefaultDecayAmount are the default
// parameters for the LFU frequency-aging loop.
const (
	DefaultDecayIntervalMs = 60_000
	DefaultDecayAmount     = 1
)

// Meta is per-key usage metadata.
type Meta struct {
	LastAccess int64
	Freq       uint8
	LastDecay  int64
}

// Tracker holds usage metadata for every live key.
type Tracker struct {
	policy       Policy
	meta         map[string]*Meta
	decayInterval int64
	decayAmount   uint8
	rng           *rand.Rand
}

// NewTracker returns a tracker for the given eviction policy.
func NewTracker(policy Policy) *Tracker {
	return &Tracker{
		policy:        policy,
		meta:          make(map[string]*Meta),
		decayInterval: DefaultDecayIntervalMs,
		decayAmount:   DefaultDecayAmount,
		rng:           rand.New(rand.NewSource(1)),
	}
}

// Policy reports the configured eviction policy.
func (t *Tracker) Policy() Policy { return t.policy }

// Touch records an access to key at nowMs, initializing metadata on
// first touch. Under the LFU policy the frequency counter is bumped
// probabilistically with probability 1/(1+freq), approximating a
// logarithmic counter in a single byte.
func (t *Tracker) Touch(key string, nowMs int64) {
	m, ok := t.meta[key]
	if !ok {
		m = &Meta{LastDecay: nowMs}
		t.meta[key] = m
	}
	m.LastAccess = nowMs

	if t.policy == LFU && m.Freq < 255 {
		if t.rng.Float64() < 1.0/float64(1+m.Freq) {
			m.Freq++
		}
	}
}

// Delete drops key's metadata.
func (t *Tracker) Delete(key string) {
	delete(t.meta, key)
}

// Get returns key's metadata, if any.
func (t *Tracker) Get(key string) (Meta, bool) {
	m, ok := t.meta[key]
	if !ok {
		return Meta{}, false
	}
	return *m, true
}

// DecayAll ages every key's frequency counter down by decayAmount,
// once per key per decayInterval. Only meaningful under LFU; callers
// should not invoke it for an LRU tracker.
func (t *Tracker) DecayAll(nowMs int64) {
	for _, m := range t.meta {
		if nowMs-m.LastDecay < t.decayInterval {
			continue
		}
		if int(m.Freq)-int(t.decayAmount) < 0 {
			m.Freq = 0
		} else {
			m.Freq -= t.decayAmount
		}
		m.LastDecay = nowMs
	}
}

// Less reports whether a is a better eviction candidate than b: under
// LRU, the key with the smaller last-access wins; under LFU, the key
// with the smaller frequency wins, ties broken by last-access. Keys
// with no metadata sort as the best (oldest / coldest) candidates.
func (t *Tracker) Less(a, b string) bool {
	ma, okA := t.meta[a]
	mb, okB := t.meta[b]
	if !okA {
		return okB || a < b
	}
	if !okB {
		return false
	}

	if t.policy == LFU && ma.Freq != mb.Freq {
		return ma.Freq < mb.Freq
	}
	return ma.LastAccess < mb.LastAccess
}

// SortByEvictionQuality sorts keys in place, best eviction candidate
// first.
func (t *Tracker) SortByEvictionQuality(keys []string) {
	sort.Slice(keys, func(i, j int) bool { return t.Less(keys[i], keys[j]) })
}
