package memberset

import "testing"

func TestCompactStaysCompactForIntegers(t *testing.T) {
	m := New(10)
	for _, v := range []string{"1", "2", "3"} {
		added, upgraded := m.Add(v)
		if !added || upgraded {
			t.Fatalf("adding %s: expected added=true upgraded=false, got added=%v upgraded=%v", v, added, upgraded)
		}
	}
	if m.Encoding() != EncodingCompact {
		t.Fatalf("expected compact encoding, got %v", m.Encoding())
	}
	if m.Size() != 3 {
		t.Fatalf("expected size 3, got %d", m.Size())
	}
}

func TestUpgradeOnNonInteger(t *testing.T) {
	m := New(10)
	m.Add("1")
	m.Add("2")
	m.Add("3")

	added, upgraded := m.Add("string")
	if !added || !upgraded {
		t.Fatalf("expected added=true upgraded=true for non-integer, got added=%v upgraded=%v", added, upgraded)
	}
	if m.Encoding() != EncodingGeneral {
		t.Fatalf("expected general encoding after upgrade, got %v", m.Encoding())
	}
	if m.Size() != 4 {
		t.Fatalf("expected size 4 after upgrade add, got %d", m.Size())
	}
	if got := m.Members(); len(got) != 4 {
		t.Fatalf("expected 4 members, got %d (%v)", len(got), got)
	}
}

func TestUpgradeOnCapReached(t *testing.T) {
	m := New(2)
	m.Add("1")
	m.Add("2")
	added, upgraded := m.Add("3")
	if !added || !upgraded {
		t.Fatalf("expected cap overflow to upgrade and add, got added=%v upgraded=%v", added, upgraded)
	}
	if m.Encoding() != EncodingGeneral {
		t.Fatalf("expected general encoding, got %v", m.Encoding())
	}
}

func TestDeleteAndHasAcrossEncodings(t *testing.T) {
	m := New(10)
	m.Add("1")
	m.Add("2")
	if !m.Has("1") {
		t.Fatalf("expected Has(1)")
	}
	if !m.Delete("1") {
		t.Fatalf("expected Delete(1) to succeed")
	}
	if m.Delete("1") {
		t.Fatalf("expected second Delete(1) to fail")
	}

	m.Add("non-integer")
	if !m.Has("non-integer") {
		t.Fatalf("expected Has(non-integer) after upgrade")
	}
	if !m.Delete("non-integer") {
		t.Fatalf("expected Delete(non-integer) to succeed")
	}
}
