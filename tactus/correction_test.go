package tactus

import "testing"

func TestOLSPerfectFit(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{1, 3, 5, 7, 9} // y = 1 + 2x
	fit := ols(xs, ys)
	if !fit.ok {
		t.Fatal("expected ok fit")
	}
	if diff := fit.slope - 2; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("slope = %v, want 2", fit.slope)
	}
	if diff := fit.intercept - 1; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("intercept = %v, want 1", fit.intercept)
	}
	if diff := fit.r - 1; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("r = %v, want 1", fit.r)
	}
}

func TestOLSTooFewPoints(t *testing.T) {
	if fit := ols([]float64{1}, []float64{1}); fit.ok {
		t.Error("expected not-ok fit with a single point")
	}
	if fit := ols(nil, nil); fit.ok {
		t.Error("expected not-ok fit with no points")
	}
}

func TestOLSZeroVariance(t *testing.T) {
	xs := []float64{1, 1, 1}
	ys := []float64{1, 2, 3}
	if fit := ols(xs, ys); fit.ok {
		t.Error("expected not-ok fit when x has zero variance")
	}
}

func TestNoCorrectionIsIdentity(t *testing.T) {
	h := NewHypothesis(100, 500)
	c := NoCorrection(h, NewPlayback([]float64{0, 1000}))
	if c.NewRho != h.Rho || c.NewDelta != h.Delta {
		t.Errorf("NoCorrection changed hypothesis: %+v", c)
	}
	if c.HasDiagnostics {
		t.Error("NoCorrection should not report diagnostics")
	}
}

func TestLinearRegressCorrectionPullsTowardTruth(t *testing.T) {
	truth := NewHypothesis(0, 500)
	onsets := onsetsFromHypothesis(truth, 12)
	play := NewPlayback(onsets)

	drifted := NewHypothesis(20, 520)
	corr := NewLinearRegressCorrection()
	c := corr.Correct(drifted, play)

	if !c.HasDiagnostics {
		t.Fatal("expected regression diagnostics")
	}
	if absFloat(c.NewDelta-truth.Delta) >= absFloat(drifted.Delta-truth.Delta) {
		t.Errorf("corrected delta %v did not move closer to truth delta %v than drifted %v", c.NewDelta, truth.Delta, drifted.Delta)
	}
}

func TestLinearRegressCorrectionIdentityWithTooFewMatches(t *testing.T) {
	h := NewHypothesis(0, 500)
	play := NewPlayback([]float64{0})
	corr := NewLinearRegressCorrection()
	c := corr.Correct(h, play)
	if c.NewRho != h.Rho || c.NewDelta != h.Delta {
		t.Errorf("expected identity correction with a single onset, got %+v", c)
	}
}

func TestIteratedCorrectionConverges(t *testing.T) {
	truth := NewHypothesis(0, 500)
	onsets := onsetsFromHypothesis(truth, 12)
	play := NewPlayback(onsets)

	drifted := NewHypothesis(20, 520)
	iterated := NewIteratedCorrection()
	c := iterated.Correct(drifted, play)

	if absFloat(c.NewDelta-truth.Delta) >= absFloat(drifted.Delta-truth.Delta) {
		t.Errorf("iterated correction did not converge toward truth: got delta %v", c.NewDelta)
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
