package tactus

import (
	"testing"
)

func TestNewHypothesisPanicsOnNonPositiveDelta(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-positive delta")
		}
	}()
	NewHypothesis(100, 0)
}

func TestHypothesisAt(t *testing.T) {
	h := NewHypothesis(100, 500)
	cases := []struct {
		k    int
		want float64
	}{
		{0, 100},
		{1, 600},
		{-1, -400},
		{4, 2100},
	}
	for _, c := range cases {
		if got := h.At(c.k); got != c.want {
			t.Errorf("At(%d) = %v, want %v", c.k, got, c.want)
		}
	}
}

func TestIndexRange(t *testing.T) {
	h := NewHypothesis(0, 500)
	kMin, kMax, ok := h.IndexRange(0, 1999)
	if !ok {
		t.Fatal("expected ok range")
	}
	if kMin != 0 || kMax != 4 {
		t.Errorf("IndexRange = (%d, %d), want (0, 4)", kMin, kMax)
	}
}

func TestIndexRangeEmpty(t *testing.T) {
	h := NewHypothesis(0, 500)
	// The widened interval is [lo-Delta/2, hi+Delta/2], so any lo <= hi
	// admits a projection; only an interval inverted by more than Delta
	// is empty.
	_, _, ok := h.IndexRange(1000, 0)
	if ok {
		t.Error("expected no projection for an inverted interval")
	}
}

func TestProjectRange(t *testing.T) {
	h := NewHypothesis(0, 1000)
	beats := h.ProjectRange(0, 3000)
	if len(beats) != 4 {
		t.Fatalf("got %d beats, want 4", len(beats))
	}
	for i, b := range beats {
		if b.X != i {
			t.Errorf("beat %d has X=%d", i, b.X)
		}
		if b.Time != float64(i)*1000 {
			t.Errorf("beat %d has Time=%v", i, b.Time)
		}
	}
}

func TestBPM(t *testing.T) {
	h := NewHypothesis(0, 500)
	if got := h.BPM(); got != 120 {
		t.Errorf("BPM() = %v, want 120", got)
	}
}
