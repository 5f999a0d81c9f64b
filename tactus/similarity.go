package tactus

import "math"

// SimilarityFunc scores how similar two hypotheses are given the current
// playback, in [0, 1] (spec section 4.F). i is assumed newer than h
// (created later, or with equal Rho and larger Delta) wherever that
// matters to the specific predicate.
type SimilarityFunc func(h, i Hypothesis, play Playback) float64

// MinDistSimilarity is the production default (spec section 4.F): close
// to 1 when both periods and phases (modulo period) agree.
func MinDistSimilarity(h, i Hypothesis, _ Playback) float64 {
	d := math.Abs(h.Delta - i.Delta)
	deltaRel := d / math.Max(h.Delta, i.Delta)

	r := math.Mod(math.Abs(i.Rho-h.Rho), h.Delta)
	a := h.Delta / 2
	rhoRel := (a - math.Abs(r-a)) / a

	return 1 - math.Max(deltaRel, rhoRel)
}

// IdentitySimilarity treats two hypotheses as fully similar (1) when they
// share Delta and an equivalent phase modulo Delta, 0 otherwise. Recovered
// from original_source/tactus/similarity.py:id_sim (spec section 9:
// "alternate predicates... exist but are not used by the default engine").
func IdentitySimilarity(h, i Hypothesis, _ Playback) float64 {
	if h.Delta != i.Delta {
		return 0
	}
	ratio := (h.Rho - i.Rho) / i.Delta
	if ratio == math.Trunc(ratio) {
		return 1
	}
	return 0
}

// ProjectionConfidenceSimilarity scores h against i's own projections
// treated as a playback, using AllHistoryConfidence. Recovered from
// original_source/m2/tht/similarity.py:proj_conf_sim.
func ProjectionConfidenceSimilarity(h, i Hypothesis, play Playback) float64 {
	beats := i.Project(play)
	proj := make([]float64, len(beats))
	for idx, b := range beats {
		proj[idx] = b.Time
	}
	if len(proj) == 0 {
		return 0
	}
	return AllHistoryConfidence(h, NewPlayback(proj))
}
