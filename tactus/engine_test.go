package tactus

import (
	"reflect"
	"testing"
)

func labelTracker(label int) *Tracker {
	return &Tracker{OriginA: label, OriginB: label, Current: NewHypothesis(float64(label), 100)}
}

func labelOf(h Hypothesis) int { return int(h.Rho) }

// TestTrimSimilarFIFOQueueWalk exercises the exact call sequence and
// kept/trimmed partition described by the queue-walk pruning algorithm
// (spec section 4.F / section 9): each surviving baseline is compared, in
// pool order, against every tracker still ahead of it in the queue.
func TestTrimSimilarFIFOQueueWalk(t *testing.T) {
	similarPairs := map[[2]int]bool{
		{2, 4}: true,
		{2, 6}: true,
		{2, 8}: true,
		{3, 9}: true,
	}

	var calls [][2]int
	simF := func(h, i Hypothesis, _ Playback) float64 {
		pair := [2]int{labelOf(h), labelOf(i)}
		calls = append(calls, pair)
		if similarPairs[pair] {
			return 1.0
		}
		return 0.0
	}

	pool := []*Tracker{
		labelTracker(2), labelTracker(3), labelTracker(4), labelTracker(5),
		labelTracker(6), labelTracker(7), labelTracker(8), labelTracker(9),
	}
	play := NewPlayback([]float64{0, 1})

	kept, trimmed := trimSimilar(pool, play, simF, 0.5)

	wantCalls := [][2]int{
		{2, 3}, {2, 4}, {2, 5}, {2, 6}, {2, 7}, {2, 8}, {2, 9},
		{3, 5}, {3, 7}, {3, 9},
		{5, 7},
	}
	if !reflect.DeepEqual(calls, wantCalls) {
		t.Fatalf("calls = %v, want %v", calls, wantCalls)
	}

	var keptLabels []int
	for _, tr := range kept {
		keptLabels = append(keptLabels, labelOf(tr.Current))
	}
	if want := []int{2, 3, 5, 7}; !reflect.DeepEqual(keptLabels, want) {
		t.Fatalf("kept = %v, want %v", keptLabels, want)
	}

	type pair struct{ trimmed, by int }
	var gotTrimmed []pair
	for _, p := range trimmed {
		gotTrimmed = append(gotTrimmed, pair{labelOf(p[0].Current), labelOf(p[1].Current)})
	}
	wantTrimmed := []pair{{4, 2}, {6, 2}, {8, 2}, {9, 3}}
	if !reflect.DeepEqual(gotTrimmed, wantTrimmed) {
		t.Fatalf("trimmed = %v, want %v", gotTrimmed, wantTrimmed)
	}
}

// TestSplitKBestHypotheses exercises the stable top-K split: ties are
// broken by original pool order, and both best and other are returned in
// their original order rather than rank order (spec section 4.H).
func TestSplitKBestHypotheses(t *testing.T) {
	pool := make([]*Tracker, 11)
	for idx := 0; idx < 11; idx++ {
		conf := float64(idx)
		if idx%3 == 0 {
			conf = 7
		}
		tr := labelTracker(idx)
		tr.Confidences = []ConfidenceStep{{OnsetIndex: 0, Score: conf}}
		pool[idx] = tr
	}

	best, other := splitKBestHypotheses(pool, 5)

	var bestLabels, otherLabels []int
	for _, tr := range best {
		bestLabels = append(bestLabels, labelOf(tr.Current))
	}
	for _, tr := range other {
		otherLabels = append(otherLabels, labelOf(tr.Current))
	}

	if want := []int{0, 3, 6, 8, 10}; !reflect.DeepEqual(bestLabels, want) {
		t.Fatalf("best = %v, want %v", bestLabels, want)
	}
	if want := []int{1, 2, 4, 5, 7, 9}; !reflect.DeepEqual(otherLabels, want) {
		t.Fatalf("other = %v, want %v", otherLabels, want)
	}
}

func TestSplitKBestHypothesesKAtOrAboveLength(t *testing.T) {
	pool := []*Tracker{labelTracker(1), labelTracker(2)}
	best, other := splitKBestHypotheses(pool, 5)
	if len(best) != 2 || other != nil {
		t.Fatalf("expected all trackers in best with none left over, got best=%v other=%v", best, other)
	}
}

func TestEngineGeneratesTrackersWithinDeltaBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimFunc = func(Hypothesis, Hypothesis, Playback) float64 { return 0 } // never prune in this test
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	onsets := []float64{0, 300, 600, 900}
	play := NewOngoingPlayback(onsets)
	for play.Advance() {
		e.Step(play)
	}

	for _, tr := range e.Pool() {
		delta := tr.Beta.Delta
		if delta < cfg.MinDelta || delta > cfg.MaxDelta {
			t.Errorf("tracker %s has out-of-bounds delta %v", tr.Name(), delta)
		}
	}
	if len(e.Pool()) == 0 {
		t.Fatal("expected at least one generated tracker")
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinDelta = -1
	if _, err := NewEngine(cfg); err == nil {
		t.Error("expected error for invalid MinDelta")
	}
}
