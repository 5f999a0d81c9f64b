package tactus

import (
	"fmt"
	"math"
)

// Hypothesis is an immutable affine beat predictor t_k = Rho + Delta*k.
// Rho is the phase offset in milliseconds, Delta the beat period in
// milliseconds (Delta > 0).
type Hypothesis struct {
	Rho   float64
	Delta float64
}

// NewHypothesis builds a Hypothesis, panicking if delta is not positive.
// Construction is the only place this is checked: every operator in this
// package that derives a new Hypothesis is expected to preserve Delta > 0
// (spec section 3, "delta may drift... this is allowed" refers to
// *magnitude* drift, not sign).
func NewHypothesis(rho, delta float64) Hypothesis {
	if delta <= 0 {
		panic(fmt.Sprintf("tactus: non-positive delta %v", delta))
	}
	return Hypothesis{Rho: rho, Delta: delta}
}

// BPM returns the beats-per-minute implied by Delta.
func (h Hypothesis) BPM() float64 {
	return 60000.0 / h.Delta
}

// Beat is one projected beat: X is the hypothesis-local beat index, Time
// the predicted time in milliseconds (Rho + Delta*X).
type Beat struct {
	X    int
	Time float64
}

// IndexRange returns the contiguous integer range [kMin, kMax] of indices
// k for which Rho + Delta*k falls within [lo - Delta/2, hi + Delta/2]
// (spec section 3, K(H, lo, hi)). ok is false when the interval admits no
// projection (kMin > kMax).
func (h Hypothesis) IndexRange(lo, hi float64) (kMin, kMax int, ok bool) {
	kMin = int(math.Ceil((lo - h.Delta/2.0 - h.Rho) / h.Delta))
	kMax = int(math.Floor((hi + h.Delta/2.0 - h.Rho) / h.Delta))
	return kMin, kMax, kMin <= kMax
}

// At returns the predicted time for beat index k.
func (h Hypothesis) At(k int) float64 {
	return h.Rho + h.Delta*float64(k)
}

// ProjectRange returns every Beat with predicted time in [lo, hi]
// (widened by Delta/2 on each side, per IndexRange), ordered by
// increasing X.
func (h Hypothesis) ProjectRange(lo, hi float64) []Beat {
	kMin, kMax, ok := h.IndexRange(lo, hi)
	if !ok {
		return nil
	}
	beats := make([]Beat, 0, kMax-kMin+1)
	for k := kMin; k <= kMax; k++ {
		beats = append(beats, Beat{X: k, Time: h.At(k)})
	}
	return beats
}

// Project projects the hypothesis over the min/max of a Playback view.
func (h Hypothesis) Project(p Playback) []Beat {
	return h.ProjectRange(p.Min(), p.Max())
}

func (h Hypothesis) String() string {
	return fmt.Sprintf("H(%.2f, %.2f)", h.Rho, h.Delta)
}
