package tactus

import "testing"

func TestStaticPlayback(t *testing.T) {
	p := NewPlayback([]float64{100, 600, 1100})
	if p.Min() != 100 || p.Max() != 1100 {
		t.Errorf("Min/Max = (%v, %v), want (100, 1100)", p.Min(), p.Max())
	}
	if p.DiscoveredIndex() != 2 {
		t.Errorf("DiscoveredIndex() = %d, want 2", p.DiscoveredIndex())
	}
	if len(p.Discovered()) != 3 {
		t.Errorf("len(Discovered()) = %d, want 3", len(p.Discovered()))
	}
}

func TestOngoingPlaybackAdvance(t *testing.T) {
	onsets := []float64{0, 500, 1000, 1500}
	p := NewOngoingPlayback(onsets)

	if p.DiscoveredIndex() != 0 {
		t.Fatalf("initial DiscoveredIndex() = %d, want 0", p.DiscoveredIndex())
	}

	for want := 1; want < len(onsets); want++ {
		if !p.Advance() {
			t.Fatalf("Advance() returned false before exhausting onsets at step %d", want)
		}
		if p.DiscoveredIndex() != want {
			t.Errorf("DiscoveredIndex() = %d, want %d", p.DiscoveredIndex(), want)
		}
		if len(p.Discovered()) != want+1 {
			t.Errorf("len(Discovered()) = %d, want %d", len(p.Discovered()), want+1)
		}
	}

	if p.Advance() {
		t.Error("Advance() should return false once the sequence is exhausted")
	}
}
