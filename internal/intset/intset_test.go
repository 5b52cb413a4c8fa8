package intset

import "testing"

func TestAddPresentUpgrade(t *testing.T) {
	s := New(4)
	if r := s.Add(3); r != Added {
		t.Fatalf("expected Added, got %v", r)
	}
	if r := s.Add(1); r != Added {
		t.Fatalf("expected Added, got %v", r)
	}
	if r := s.Add(3); r != Present {
		t.Fatalf("expected Present for duplicate, got %v", r)
	}
	if r := s.Add(2); r != Added {
		t.Fatalf("expected Added, got %v", r)
	}
	if r := s.Add(10); r != Added {
		t.Fatalf("expected Added (cap reached exactly), got %v", r)
	}
	if r := s.Add(20); r != UpgradeRequired {
		t.Fatalf("expected UpgradeRequired once cap exceeded, got %v", r)
	}

	want := []int64{1, 2, 3, 10}
	got := s.Values()
	if len(got) != len(want) {
		t.Fatalf("expected sorted values %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected sorted values %v, got %v", want, got)
		}
	}
}

func TestDeleteAndHas(t *testing.T) {
	s := New(10)
	s.Add(5)
	s.Add(9)
	if !s.Has(5) {
		t.Fatalf("expected Has(5)")
	}
	if !s.Delete(5) {
		t.Fatalf("expected Delete(5) to succeed")
	}
	if s.Delete(5) {
		t.Fatalf("expected second Delete(5) to fail")
	}
	if s.Has(5) {
		t.Fatalf("expected Has(5) false after delete")
	}
	if s.Size() != 1 {
		t.Fatalf("expected size 1, got %d", s.Size())
	}
}

func TestUpgradeToGeneralSeedsContents(t *testing.T) {
	s := New(10)
	s.Add(1)
	s.Add(2)
	s.Add(3)
	general := s.UpgradeToGeneral()
	if len(general) != 3 {
		t.Fatalf("expected 3 entries in general set, got %d", len(general))
	}
	for _, m := range []string{"1", "2", "3"} {
		if _, ok := general[m]; !ok {
			t.Fatalf("expected %s in upgraded set", m)
		}
	}
}
