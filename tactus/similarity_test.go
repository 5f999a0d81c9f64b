package tactus

import "testing"

func TestMinDistSimilarityIdentical(t *testing.T) {
	h := NewHypothesis(100, 500)
	sim := MinDistSimilarity(h, h, NewPlayback([]float64{0, 1000}))
	if sim != 1 {
		t.Errorf("MinDistSimilarity(h, h) = %v, want 1", sim)
	}
}

func TestMinDistSimilarityDifferentPeriod(t *testing.T) {
	h := NewHypothesis(0, 500)
	i := NewHypothesis(0, 1000)
	sim := MinDistSimilarity(h, i, NewPlayback([]float64{0, 1000}))
	if sim >= 1 {
		t.Errorf("MinDistSimilarity for differing deltas = %v, want < 1", sim)
	}
}

func TestIdentitySimilarity(t *testing.T) {
	h := NewHypothesis(0, 500)
	samePhase := NewHypothesis(1500, 500)
	offPhase := NewHypothesis(250, 500)

	if got := IdentitySimilarity(h, samePhase, NewPlayback([]float64{0, 1})); got != 1 {
		t.Errorf("IdentitySimilarity(in-phase) = %v, want 1", got)
	}
	if got := IdentitySimilarity(h, offPhase, NewPlayback([]float64{0, 1})); got != 0 {
		t.Errorf("IdentitySimilarity(out-of-phase) = %v, want 0", got)
	}
}

func TestProjectionConfidenceSimilaritySelf(t *testing.T) {
	play := NewPlayback([]float64{0, 500, 1000, 1500, 2000})
	h := NewHypothesis(0, 500)
	sim := ProjectionConfidenceSimilarity(h, h, play)
	if sim <= 0 {
		t.Errorf("ProjectionConfidenceSimilarity(h, h) = %v, want > 0", sim)
	}
}
