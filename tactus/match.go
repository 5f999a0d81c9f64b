package tactus

import "math"

// Match is one matched triple (X, Predicted, Reference) produced by
// ProjectMatch (spec section 4.C).
type Match struct {
	X         int
	Predicted float64
	Reference float64
}

// ProjectMatch performs the greedy left-to-right walk with lookahead
// described in spec section 4.C: for each predicted beat (in increasing
// order of Predicted), it advances a cursor over reference as long as the
// next reference value is strictly closer, then emits the match. The
// cursor never resets between predictions, so a reference value may be
// reused by several predictions when predictions are denser than the
// reference. Returns nil if reference is empty.
func ProjectMatch(beats []Beat, reference []float64) []Match {
	if len(reference) == 0 {
		return nil
	}
	if len(beats) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(beats))
	refIdx := 0
	refVal := reference[0]

	for _, b := range beats {
		lastDist := math.Abs(refVal - b.Time)
		for refIdx+1 < len(reference) {
			newDist := math.Abs(reference[refIdx+1] - b.Time)
			if newDist < lastDist {
				refIdx++
				refVal = reference[refIdx]
				lastDist = newDist
			} else {
				break
			}
		}
		matches = append(matches, Match{X: b.X, Predicted: b.Time, Reference: refVal})
	}
	return matches
}
