// Package ttl implements the cache's expiration subsystem: a
// key->deadline map, passive (on-access) expiry checks, and an
// iterator-based active sampler that amortizes cleanup across many
// small batches instead of ever walking the whole keyspace at once.
package ttl

import "log"

// pendingFlushSize is how many expired keys accumulate in the pending
// buffer before SamplePurge flushes them through the delete callback.
const pendingFlushSize = 100

// Manager owns the absolute-deadline map and the long-lived iteration
// cursor used by active expiration.
type Manager struct {
	deadlines map[string]int64

	cursorKeys []string
	cursorIdx  int

	pending []string
}

// NewManager returns an empty TTL manager.
func NewManager() *Manager {
	return &Manager{deadlines: make(map[string]int64)}
}

// Set records key's absolute expiration deadline in epoch milliseconds.
func (m *Manager) Set(key string, deadlineMs int64) {
	m.deadlines[key] = deadlineMs
}

// Delete removes key's TTL row, if any.
func (m *Manager) Delete(key string) {
	delete(m.deadlines, key)
}

// Has reports whether key carries a TTL row at all (expired or not).
func (m *Manager) Has(key string) bool {
	_, ok := m.deadlines[key]
	return ok
}

// IsExpired reports whether key has a deadline that has already
// passed. A key with no TTL row is never expired.
func (m *Manager) IsExpired(key string, nowMs int64) bool {
	deadline, ok := m.deadlines[key]
	return ok && nowMs >= deadline
}

// Len returns the number of tracked TTL rows.
func (m *Manager) Len() int { return len(m.deadlines) }

func (m *Manager) resetCursor() {
	m.cursorKeys = make([]string, 0, len(m.deadlines))
	for k := range m.deadlines {
		m.cursorKeys = append(m.cursorKeys, k)
	}
	m.cursorIdx = 0
}

// SamplePurge visits up to k keys from the iteration cursor, wrapping
// around (rebuilding the snapshot) whenever it runs out mid-scan, and
// reports how many of the visited keys had passed their deadline. Each
// expired key is buffered once (a key already in the buffer is counted
// but not buffered again) and flushed through onExpire once the
// pending buffer reaches pendingFlushSize entries.
func (m *Manager) SamplePurge(k int, nowMs int64, onExpire func(string)) int {
	if len(m.deadlines) == 0 {
		return 0
	}

	expired := 0
	visited := 0
	for visited < k {
		if m.cursorIdx >= len(m.cursorKeys) {
			m.resetCursor()
			if len(m.cursorKeys) == 0 {
				break
			}
		}
		key := m.cursorKeys[m.cursorIdx]
		m.cursorIdx++
		visited++

		deadline, ok := m.deadlines[key]
		if !ok {
			continue // deleted since the snapshot was taken
		}
		if nowMs >= deadline {
			expired++
			alreadyPending := false
			for _, p := range m.pending {
				if p == key {
					alreadyPending = true
					break
				}
			}
			if !alreadyPending {
				m.pending = append(m.pending, key)
				if len(m.pending) >= pendingFlushSize {
					m.flush(onExpire)
				}
			}
		}
	}
	return expired
}

func (m *Manager) flush(onExpire func(string)) {
	for _, key := range m.pending {
		onExpire(key)
	}
	m.pending = m.pending[:0]
}

// FlushPendingDeletes drains the pending-delete buffer unconditionally.
// Used at shutdown and at cycle boundaries.
func (m *Manager) FlushPendingDeletes(onExpire func(string)) {
	m.flush(onExpire)
}

// ActiveExpireConfig configures the background active-expiration loop.
type ActiveExpireConfig struct {
	SampleSize int
	MaxRounds  int
}

// DefaultActiveExpireConfig returns reasonable defaults for the
// background active-expiration loop.
func DefaultActiveExpireConfig() ActiveExpireConfig {
	return ActiveExpireConfig{SampleSize: 10, MaxRounds: 2}
}

// RunActiveExpireCycle runs up to cfg.MaxRounds rounds of
// SamplePurge(cfg.SampleSize), continuing a round only while more than
// a quarter of the sampled keys were stale -- adaptive effort so a
// burst of expired keys gets cleaned faster than a quiet keyspace. The
// pending-delete buffer is flushed at the end of the cycle.
func RunActiveExpireCycle(m *Manager, cfg ActiveExpireConfig, nowMs int64, onExpire func(string)) int {
	total := 0
	for round := 0; round < cfg.MaxRounds; round++ {
		expired := m.SamplePurge(cfg.SampleSize, nowMs, onExpire)
		total += expired
		if float64(expired) <= 0.25*float64(cfg.SampleSize) {
			break
		}
	}
	m.FlushPendingDeletes(onExpire)
	if total > 0 {
		log.Printf("[TTL] active expiration purged %d key(s)", total)
	}
	return total
}
