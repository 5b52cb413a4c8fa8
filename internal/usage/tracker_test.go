package usage

import "testing"

func TestLRULessOrdersByLastAccess(t *testing.T) {
	tr := NewTracker(LRU)
	tr.Touch("old", 100)
	tr.Touch("new", 200)

	if !tr.Less("old", "new") {
		t.Fatalf("expected older last-access to be the better eviction candidate")
	}
	if tr.Less("new", "old") {
		t.Fatalf("expected newer last-access to not be the better candidate")
	}
}

func TestLFULessPrefersSmallerFreqThenLastAccess(t *testing.T) {
	tr := NewTracker(LFU)
	tr.meta["cold"] = &Meta{Freq: 0, LastAccess: 500}
	tr.meta["hot"] = &Meta{Freq: 10, LastAccess: 100}

	if !tr.Less("cold", "hot") {
		t.Fatalf("expected lower frequency to win regardless of last-access")
	}

	tr.meta["tieOld"] = &Meta{Freq: 3, LastAccess: 100}
	tr.meta["tieNew"] = &Meta{Freq: 3, LastAccess: 200}
	if !tr.Less("tieOld", "tieNew") {
		t.Fatalf("expected equal frequencies to fall back to the older last-access")
	}
}

func TestKeyWithNoMetadataIsBestCandidate(t *testing.T) {
	tr := NewTracker(LRU)
	tr.Touch("known", 100)
	if !tr.Less("unknown", "known") {
		t.Fatalf("expected untouched key to be the best eviction candidate")
	}
}

func TestDecayAgesFrequencyDown(t *testing.T) {
	tr := NewTracker(LFU)
	tr.meta["k"] = &Meta{Freq: 5, LastAccess: 0, LastDecay: 0}
	tr.DecayAll(DefaultDecayIntervalMs)
	m, _ := tr.Get("k")
	if m.Freq != 4 {
		t.Fatalf("expected freq to decay to 4, got %d", m.Freq)
	}
	tr.DecayAll(DefaultDecayIntervalMs) // too soon, should not decay again
	m, _ = tr.Get("k")
	if m.Freq != 4 {
		t.Fatalf("expected no decay before interval elapses, got %d", m.Freq)
	}
}

func TestFreqNeverExceeds255(t *testing.T) {
	tr := NewTracker(LFU)
	for i := 0; i < 100000; i++ {
		tr.Touch("k", int64(i))
	}
	m, _ := tr.Get("k")
	if m.Freq > 255 {
		t.Fatalf("freq must stay within a byte, got %d", m.Freq)
	}
}

func TestSortByEvictionQuality(t *testing.T) {
	tr := NewTracker(LRU)
	tr.Touch("a", 300)
	tr.Touch("b", 100)
	tr.Touch("c", 200)
	keys := []string{"a", "b", "c"}
	tr.SortByEvictionQuality(keys)
	want := []string{"b", "c", "a"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, keys)
		}
	}
}
