package tactus

import (
	"math"

	"github.com/m2march/tactus/internal/numutil"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Correction is the result of correcting a hypothesis: the previous
// (Rho, Delta), the revised pair, their difference, and optional
// regression diagnostics (spec section 3, "Correction").
type Correction struct {
	OldRho, OldDelta float64
	NewRho, NewDelta float64
	DRho, DDelta     float64

	// HasDiagnostics is false for the identity correction and any other
	// path that never ran a regression.
	HasDiagnostics  bool
	RValue, PValue  float64
	StdErr          float64
}

// NewHypothesis returns the corrected hypothesis (spec section 4.E step 5).
func (c Correction) NewHypothesis() Hypothesis {
	return NewHypothesis(c.NewRho, c.NewDelta)
}

func identityCorrection(h Hypothesis) Correction {
	return Correction{
		OldRho: h.Rho, OldDelta: h.Delta,
		NewRho: h.Rho, NewDelta: h.Delta,
	}
}

// CorrectionFunc produces a Correction for a hypothesis over a playback
// (spec section 4.E, corr_f).
type CorrectionFunc func(h Hypothesis, play Playback) Correction

// NoCorrection is the identity correction function used in tests
// (original_source/m2/tht/correction.py:no_corr).
func NoCorrection(h Hypothesis, _ Playback) Correction {
	return identityCorrection(h)
}

// olsResult holds an ordinary-least-squares fit of y on x, replacing
// scipy.stats.linregress (spec section 4.E step 4).
type olsResult struct {
	slope, intercept float64
	r, p, stderr     float64
	ok               bool
}

// ols fits y = intercept + slope*x by OLS, following exactly the
// formulas scipy.stats.linregress uses so results match
// original_source/*/correction.py bit for bit: population (not sample)
// variances, Student's-t two-sided p-value on the slope with n-2
// degrees of freedom. ok is false when fewer than 2 points are given or
// x has zero variance (spec section 7, "Regression underdetermined").
func ols(xs, ys []float64) olsResult {
	n := len(xs)
	if n < 2 {
		return olsResult{}
	}

	meanX := stat.Mean(xs, nil)
	meanY := stat.Mean(ys, nil)

	var ssxm, ssym, ssxym float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		ssxm += dx * dx
		ssym += dy * dy
		ssxym += dx * dy
	}
	ssxm /= float64(n)
	ssym /= float64(n)
	ssxym /= float64(n)

	if ssxm == 0 {
		return olsResult{}
	}

	slope := ssxym / ssxm
	intercept := meanY - slope*meanX

	var r float64
	if ssym == 0 {
		r = 0
	} else {
		r = ssxym / math.Sqrt(ssxm*ssym)
		r = numutil.Clamp(r, -1, 1)
	}

	df := float64(n - 2)
	if df <= 0 {
		return olsResult{slope: slope, intercept: intercept, r: r, ok: true}
	}

	stderr := math.Sqrt((1 - r*r) * ssym / ssxm / df)

	var pvalue float64
	if stderr == 0 || r*r >= 1 {
		pvalue = 0
	} else {
		tValue := r * math.Sqrt(df/(1-r*r))
		tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		pvalue = 2 * (1 - tDist.CDF(math.Abs(tValue)))
	}

	return olsResult{slope: slope, intercept: intercept, r: r, p: pvalue, stderr: stderr, ok: true}
}

// gaussianSmoothedError is the production smoothing form (spec section
// 4.E step 3, Gaussian variant): y_i = mult * err_i * exp(-(decay*err_i/delta)^2).
func gaussianSmoothedError(err, mult, decay, delta float64) float64 {
	return mult * err * gaussianWeight(decay*err/delta)
}

// exponentialSmoothedError is the alternate smoothing form (spec section
// 4.E step 3): y_i = mult * err_i * decay^(|err_i|/delta).
func exponentialSmoothedError(err, mult, decay, delta float64) float64 {
	return mult * err * math.Pow(decay, math.Abs(err)/delta)
}

// errorCalc projects h over play, matches against the discovered prefix,
// and returns the hypothesis-local indices and signed errors (reference
// minus predicted). Grounded on
// original_source/m2/tht/correction.py:error_calc.
func errorCalc(h Hypothesis, play Playback) (xs []float64, errs []float64) {
	beats := h.Project(play)
	matches := ProjectMatch(beats, play.Discovered())
	xs = make([]float64, len(matches))
	errs = make([]float64, len(matches))
	for i, m := range matches {
		xs[i] = float64(m.X)
		errs[i] = m.Reference - m.Predicted
	}
	return xs, errs
}

// LinearRegressCorrection is the production correction operator (spec
// section 4.E): OLS regression of Gaussian-smoothed residuals against
// hypothesis-local beat index. Grounded on
// original_source/m2/tht/correction.py:LinearRegressOverSmoothedErrorCorrection,
// with the Gaussian smoothing form spec section 9 resolves as the
// production default.
type LinearRegressCorrection struct {
	Mult  float64
	Decay float64
}

// NewLinearRegressCorrection returns the production-default operator:
// mult=2, decay=0.0001 (spec section 4.E defaults).
func NewLinearRegressCorrection() LinearRegressCorrection {
	return LinearRegressCorrection{Mult: 2, Decay: 0.0001}
}

func (c LinearRegressCorrection) Correct(h Hypothesis, play Playback) Correction {
	xs, errs := errorCalc(h, play)
	if len(xs) < 2 {
		return identityCorrection(h)
	}

	ys := make([]float64, len(xs))
	for i, e := range errs {
		ys[i] = gaussianSmoothedError(e, c.Mult, c.Decay, h.Delta)
	}

	fit := ols(xs, ys)
	if !fit.ok {
		return identityCorrection(h)
	}

	return Correction{
		OldRho: h.Rho, OldDelta: h.Delta,
		NewRho: h.Rho + fit.intercept, NewDelta: h.Delta + fit.slope,
		DRho: fit.intercept, DDelta: fit.slope,
		HasDiagnostics: true,
		RValue:         fit.r, PValue: fit.p, StdErr: fit.stderr,
	}
}

// PeakedCorrection sets Mult = -Delta/ln(Decay) and otherwise behaves like
// LinearRegressCorrection (spec section 4.E, "A 'peaked' variant").
// Grounded on
// original_source/m2/tht/correction.py:LinRegsOverSmoothedErrorCorrectionWithPeak.
type PeakedCorrection struct {
	Decay float64
}

// NewPeakedCorrection returns the default peaked operator (decay=0.0001).
func NewPeakedCorrection() PeakedCorrection {
	return PeakedCorrection{Decay: 0.0001}
}

func (c PeakedCorrection) Correct(h Hypothesis, play Playback) Correction {
	mult := -h.Delta / math.Log(c.Decay)
	return LinearRegressCorrection{Mult: mult, Decay: c.Decay}.Correct(h, play)
}

// IteratedCorrection applies a base operator Times times in sequence,
// feeding each result's hypothesis into the next correction (spec section
// 4.E, "An 'iterated' variant"). Grounded on
// original_source/m2/tht/correction.py:MultLinRegsOSEC. The returned
// Correction's Old(Rho|Delta) reflect the next-to-last iterate, matching
// the original's behavior of returning the last inner correction
// unmodified rather than rebasing it against the very first hypothesis.
type IteratedCorrection struct {
	Base  LinearRegressCorrection
	Times int
}

// NewIteratedCorrection returns the default iterated operator: base
// mult=2, decay=0.0001, applied 5 times (spec section 4.E defaults).
func NewIteratedCorrection() IteratedCorrection {
	return IteratedCorrection{Base: NewLinearRegressCorrection(), Times: 5}
}

func (c IteratedCorrection) Correct(h Hypothesis, play Playback) Correction {
	times := c.Times
	if times <= 0 {
		times = 1
	}
	current := h
	var last Correction
	for i := 0; i < times; i++ {
		last = c.Base.Correct(current, play)
		current = last.NewHypothesis()
	}
	return last
}

// WindowedCorrection moves the hypothesis forward to its last
// projections within a recent time window, rather than translating it by
// the regressed intercept/slope directly (spec section 4.E, "Correction
// operator... a recency sub-window"). Grounded on
// original_source/m2/tht/correction.py:MovingWindowedSmoothCorrection.
// Per spec section 9's resolution of open question #3, it regresses over
// and weights by the same (x_i, err_i) set rather than two different
// prediction sets.
type WindowedCorrection struct {
	Mult     float64
	Decay    float64
	WindowMS float64
}

func (c WindowedCorrection) Correct(h Hypothesis, play Playback) Correction {
	discovered := play.Discovered()
	if len(discovered) == 0 {
		return identityCorrection(h)
	}
	threshold := discovered[len(discovered)-1] - c.WindowMS
	start := 0
	for start < len(discovered) && discovered[start] < threshold {
		start++
	}
	sub := NewPlayback(discovered[start:])

	xs, errs := errorCalc(h, sub)
	if len(xs) < 3 {
		return identityCorrection(h)
	}

	ys := make([]float64, len(xs))
	for i, e := range errs {
		ys[i] = gaussianSmoothedError(e, c.Mult, c.Decay, h.Delta)
	}

	fit := ols(xs, ys)
	if !fit.ok {
		return identityCorrection(h)
	}

	moved := NewHypothesis(h.Rho+fit.intercept, h.Delta+fit.slope)
	beats := moved.ProjectRange(sub.Min(), sub.Max())
	if len(beats) < 2 {
		return identityCorrection(h)
	}
	last, prev := beats[len(beats)-1], beats[len(beats)-2]

	return Correction{
		OldRho: h.Rho, OldDelta: h.Delta,
		NewRho: prev.Time, NewDelta: last.Time - prev.Time,
		DRho: fit.intercept, DDelta: fit.slope,
		HasDiagnostics: true,
		RValue:         fit.r, PValue: fit.p, StdErr: fit.stderr,
	}
}
