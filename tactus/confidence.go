package tactus

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ConfEntry is one prediction's confidence contribution: a predicted beat
// matched against a discovered reference onset, with its resulting
// weight (spec section 4.D).
type ConfEntry struct {
	X         int
	Predicted float64
	Reference float64
	Conf      float64
}

// confContext is the (P, R, confs) tuple confidence modifiers fold over,
// spec section 4.D: "each transforms (ht, P, R, confs) -> (P', R', confs')".
// Entries already carry P (Predicted) and confs (Conf); Reference is kept
// as a separate slice because the reduction's second denominator (|R|) is
// the size of the reference window under consideration, which a modifier
// may narrow independently of which entries survive.
type confContext struct {
	entries   []ConfEntry
	reference []float64
}

// ConfidenceFunc scores a hypothesis against a playback (spec section
// 4.D, eval_f).
type ConfidenceFunc func(ht Hypothesis, play Playback) float64

// ConfidenceModifier narrows or reweights a confidence context before
// reduction (spec section 4.D).
type ConfidenceModifier func(ht Hypothesis, ctx confContext) confContext

// EndModifier rescales a reduced score (spec section 4.D, "End modifiers").
type EndModifier func(ht Hypothesis, score float64) float64

// gaussianWeight is exp(-x^2), the Gaussian weighting kernel shared by the
// confidence evaluator and the production correction operator.
func gaussianWeight(x float64) float64 {
	return math.Exp(-x * x)
}

// confEntries computes the primary-form confidence (spec section 4.D) for
// every predicted beat in proj, matched against reference.
func confEntries(proj []Beat, reference []float64, delta, mult, decay float64) []ConfEntry {
	matches := ProjectMatch(proj, reference)
	entries := make([]ConfEntry, len(matches))
	for idx, m := range matches {
		errVal := m.Reference - m.Predicted
		relErr := decay * errVal / delta
		entries[idx] = ConfEntry{
			X:         m.X,
			Predicted: m.Predicted,
			Reference: m.Reference,
			Conf:      mult * gaussianWeight(relErr),
		}
	}
	return entries
}

func reduceConfidence(ctx confContext) float64 {
	if len(ctx.entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range ctx.entries {
		sum += e.Conf
	}
	if len(ctx.reference) == 0 {
		// The engine never evaluates against an empty reference (spec
		// section 7). A caller that does gets a score of 0; no error is
		// reported.
		return 0
	}
	return (sum / float64(len(ctx.entries))) * (sum / float64(len(ctx.reference)))
}

// ConfidenceEvaluator scores a hypothesis against a playback via the
// pipeline described in spec section 4.D and section 9 ("Modifier
// composition"): base Gaussian confidence per matched prediction, folded
// through ordered confidence modifiers, reduced, then folded through
// ordered end modifiers.
type ConfidenceEvaluator struct {
	Mult  float64
	Decay float64

	Modifiers    []ConfidenceModifier
	EndModifiers []EndModifier
}

// NewConfidenceEvaluator returns the production-default evaluator: mult=1,
// decay=5, no modifiers (spec section 4.D defaults).
func NewConfidenceEvaluator() *ConfidenceEvaluator {
	return &ConfidenceEvaluator{Mult: 1, Decay: 5}
}

// Eval implements the eval_f signature the engine and tracker expect.
func (c *ConfidenceEvaluator) Eval(ht Hypothesis, play Playback) float64 {
	proj := ht.Project(play)
	reference := play.Discovered()

	ctx := confContext{
		entries:   confEntries(proj, reference, ht.Delta, c.Mult, c.Decay),
		reference: reference,
	}
	for _, m := range c.Modifiers {
		ctx = m(ht, ctx)
	}

	score := reduceConfidence(ctx)
	for _, m := range c.EndModifiers {
		score = m(ht, score)
	}
	return score
}

// AllHistoryConfidence is the production default confidence function:
// Gaussian weighting (decay=5) over the whole discovered history, no
// modifiers. Grounded on original_source/m2/tht/confidence.py:all_history_eval.
func AllHistoryConfidence(ht Hypothesis, play Playback) float64 {
	return NewConfidenceEvaluator().Eval(ht, play)
}

// TimeWindowModifier drops entries whose matched reference onset precedes
// the most recent discovered onset minus windowMS, and narrows the
// reference window the same way (spec section 4.D, default W = 1000).
func TimeWindowModifier(windowMS float64) ConfidenceModifier {
	return func(_ Hypothesis, ctx confContext) confContext {
		if len(ctx.reference) == 0 {
			return ctx
		}
		threshold := ctx.reference[len(ctx.reference)-1] - windowMS

		kept := ctx.entries[:0:0]
		for _, e := range ctx.entries {
			if e.Reference >= threshold {
				kept = append(kept, e)
			}
		}

		refStart := 0
		for refStart < len(ctx.reference) && ctx.reference[refStart] < threshold {
			refStart++
		}
		return confContext{entries: kept, reference: ctx.reference[refStart:]}
	}
}

// AccentModifier multiplies an entry's confidence by weight whenever its
// matched reference onset is accented per the supplied accent predicate
// (spec section 4.D / section 9, Povel 1985 accent rule). accented is the
// external collaborator `accented_onsets(R) -> set of ms`.
func AccentModifier(weight float64, accented map[float64]bool) ConfidenceModifier {
	return func(_ Hypothesis, ctx confContext) confContext {
		for i, e := range ctx.entries {
			if accented[e.Reference] {
				ctx.entries[i].Conf *= weight
			}
		}
		return ctx
	}
}

// PrevKModifier keeps only the last n entries and narrows the reference
// window to the last n discovered onsets (spec section 4.D; grounded on
// original_source/m2/tht/confidence.py:OnsetRestrictedEval).
func PrevKModifier(n int) ConfidenceModifier {
	return func(_ Hypothesis, ctx confContext) confContext {
		entries := ctx.entries
		if len(entries) > n {
			entries = entries[len(entries)-n:]
		}
		reference := ctx.reference
		if len(reference) > n {
			reference = reference[len(reference)-n:]
		}
		return confContext{entries: entries, reference: reference}
	}
}

// Delta-prior constants (spec section 4.D "Delta prior"), matching
// original_source/m2/tht/confidence.py:DeltaPriorEval.
const (
	deltaPriorMu    = 600.0
	deltaPriorSigma = 400.0
	deltaPriorMin   = 187.0
	deltaPriorMax   = 1500.0
)

// DeltaPriorEndModifier multiplies a reduced score by a truncated-normal
// PDF over Delta (mu=600ms, sigma=400ms, clipped to [187, 1500]); any
// Delta outside the clip yields prior 0 (spec section 4.D).
func DeltaPriorEndModifier(ht Hypothesis, score float64) float64 {
	if ht.Delta < deltaPriorMin || ht.Delta > deltaPriorMax {
		return 0
	}
	n := distuv.Normal{Mu: deltaPriorMu, Sigma: deltaPriorSigma}
	norm := n.CDF(deltaPriorMax) - n.CDF(deltaPriorMin)
	if norm <= 0 {
		return 0
	}
	prior := n.Prob(ht.Delta) / norm
	return prior * score
}
