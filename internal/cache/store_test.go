package cache

import "testing"

func makeValue(n int) []byte {
	v := make([]byte, n)
	for i := range v {
		v[i] = byte('a' + i%26)
	}
	return v
}

func newTestCache(cfg Config) *Cache {
	c := New(cfg)
	c.nowFn = func() int64 { return 0 }
	return c
}

func TestSetGetRoundTrip(t *testing.T) {
	c := newTestCache(DefaultConfig())
	defer c.Shutdown()

	if err := c.Set("k", makeValue(10), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(makeValue(10)) {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestGetMissingKeyReturnsNil(t *testing.T) {
	c := newTestCache(DefaultConfig())
	defer c.Shutdown()

	got, err := c.Get("absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing key, got %v", got)
	}
}

func TestSetOverwritesPriorShape(t *testing.T) {
	c := newTestCache(DefaultConfig())
	defer c.Shutdown()

	if _, err := c.SAdd("k", "1"); err != nil {
		t.Fatalf("SAdd: %v", err)
	}
	if err := c.Set("k", []byte("scalar"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get("k")
	if err != nil {
		t.Fatalf("Get after overwrite: %v", err)
	}
	if string(got) != "scalar" {
		t.Fatalf("expected scalar value after overwrite, got %q", got)
	}
}

func TestGetWrongTypeAgainstOrderedCollection(t *testing.T) {
	c := newTestCache(DefaultConfig())
	defer c.Shutdown()

	if _, err := c.ZAdd("z", "m", 1.0); err != nil {
		t.Fatalf("ZAdd: %v", err)
	}
	if _, err := c.Get("z"); err != ErrWrongType {
		t.Fatalf("expected ErrWrongType, got %v", err)
	}
}

func TestDelReportsPresenceAndIsIdempotent(t *testing.T) {
	c := newTestCache(DefaultConfig())
	defer c.Shutdown()

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if n := c.Del("k"); n != 1 {
		t.Fatalf("expected 1 on first delete, got %d", n)
	}
	if n := c.Del("k"); n != 0 {
		t.Fatalf("expected 0 on repeated delete, got %d", n)
	}
}

func TestExpiredKeyIsTreatedAsMissing(t *testing.T) {
	c := newTestCache(DefaultConfig())
	defer c.Shutdown()

	ticks := int64(0)
	c.nowFn = func() int64 { return ticks }

	if err := c.Set("k", []byte("v"), 100); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ticks = 50
	if got, _ := c.Get("k"); got == nil {
		t.Fatalf("expected key to still be live before ttl elapses")
	}
	ticks = 200
	got, err := c.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired key to read as missing, got %v", got)
	}
}

func TestSetWithNoTTLClearsPriorTTL(t *testing.T) {
	c := newTestCache(DefaultConfig())
	defer c.Shutdown()

	ticks := int64(0)
	c.nowFn = func() int64 { return ticks }

	if err := c.Set("k", []byte("v"), 10); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set("k", []byte("v2"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ticks = 1000
	got, err := c.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected key to survive past the original ttl once cleared, got %v", got)
	}
}

func TestMemoryAccountingNeverGoesNegative(t *testing.T) {
	c := newTestCache(DefaultConfig())
	defer c.Shutdown()

	for i := 0; i < 100; i++ {
		if err := c.Set("k", makeValue(i), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
		c.Del("k")
	}
	stats := c.GetStats()
	if stats.MemoryUsed < 0 {
		t.Fatalf("memory accounting went negative: %d", stats.MemoryUsed)
	}
	if stats.MemoryUsed != 0 {
		t.Fatalf("expected memory back to zero after all keys deleted, got %d", stats.MemoryUsed)
	}
}

func TestStatsCountsHitsMissesAndHitRate(t *testing.T) {
	c := newTestCache(DefaultConfig())
	defer c.Shutdown()

	c.Set("k", []byte("v"), 0)
	c.Get("k")
	c.Get("missing")

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got hits=%d misses=%d", stats.Hits, stats.Misses)
	}
	if stats.HitRate != 0.5 {
		t.Fatalf("expected hit rate 0.5, got %f", stats.HitRate)
	}
}
