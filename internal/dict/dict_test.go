package dict

import (
	"fmt"
	"testing"
)

func TestSetGetDelete(t *testing.T) {
	d := New()
	d.Set("a", 1)
	v, ok := d.Get("a")
	if !ok || v.(int) != 1 {
		t.Fatalf("expected 1, got %v ok=%v", v, ok)
	}
	if !d.Delete("a") {
		t.Fatalf("expected delete to succeed")
	}
	if d.Delete("a") {
		t.Fatalf("expected second delete to fail")
	}
	if _, ok := d.Get("a"); ok {
		t.Fatalf("expected key gone after delete")
	}
}

func TestSurvivesRehash(t *testing.T) {
	d := New()
	const n = 500
	for i := 0; i < n; i++ {
		d.Set(fmt.Sprintf("k%d", i), i)
	}
	// Drive enough operations past the grow trigger to fully migrate.
	for i := 0; i < n*4; i++ {
		d.Get(fmt.Sprintf("k%d", i%n))
	}
	for i := 0; i < n; i++ {
		v, ok := d.Get(fmt.Sprintf("k%d", i))
		if !ok || v.(int) != i {
			t.Fatalf("key k%d: expected %d, got %v ok=%v", i, i, v, ok)
		}
	}
	if d.Len() != n {
		t.Fatalf("expected length %d, got %d", n, d.Len())
	}
}

func TestRandomKeysDistinctAndBounded(t *testing.T) {
	d := New()
	for i := 0; i < 50; i++ {
		d.Set(fmt.Sprintf("k%d", i), i)
	}
	keys := d.RandomKeys(10)
	if len(keys) != 10 {
		t.Fatalf("expected 10 keys, got %d", len(keys))
	}
	seen := make(map[string]bool)
	for _, k := range keys {
		if seen[k] {
			t.Fatalf("expected distinct keys, got duplicate %s", k)
		}
		seen[k] = true
	}

	all := d.RandomKeys(1000)
	if len(all) != 50 {
		t.Fatalf("expected RandomKeys to cap at key count 50, got %d", len(all))
	}
}
