package tactus

import "fmt"

// CorrectionStep pairs a correction with the onset index it was computed
// at (spec section 3, "corrections" timeline entry).
type CorrectionStep struct {
	OnsetIndex int
	Correction Correction
}

// ConfidenceStep pairs a confidence score with the onset index it was
// computed at (spec section 3, "confidences" timeline entry).
type ConfidenceStep struct {
	OnsetIndex int
	Score      float64
}

// Tracker is a Hypothesis Tracker record (spec section 3, "Hypothesis
// Tracker (HT)"): the immutable origin and seed hypothesis, the evolving
// current hypothesis, and the aligned correction/confidence timelines.
type Tracker struct {
	OriginA, OriginB int
	Beta             Hypothesis
	Current          Hypothesis

	Corrections []CorrectionStep
	Confidences []ConfidenceStep

	onsetTimes []float64
}

// NewTracker seeds a tracker from two onset indices (a < b) into
// onsetTimes: Beta = (onsetTimes[a], onsetTimes[b]-onsetTimes[a]).
func NewTracker(a, b int, onsetTimes []float64) *Tracker {
	beta := NewHypothesis(onsetTimes[a], onsetTimes[b]-onsetTimes[a])
	return &Tracker{
		OriginA: a, OriginB: b,
		Beta: beta, Current: beta,
		onsetTimes: onsetTimes,
	}
}

// Name is the "a-b" string key used by the engine's pool map (spec
// section 3 and section 6).
func (t *Tracker) Name() string {
	return fmt.Sprintf("%d-%d", t.OriginA, t.OriginB)
}

// OriginOnsets returns (a, a+b), the legacy origin representation used as
// a uniqueness check (spec section 4.G).
func (t *Tracker) OriginOnsets() (int, int) {
	return t.OriginA, t.OriginA + t.OriginB
}

// OnsetTimes returns the full onset sequence this tracker was created
// against, carried for convenience by the output contract (spec section 6).
func (t *Tracker) OnsetTimes() []float64 {
	return t.onsetTimes
}

// Update corrects then scores the tracker against play, appending one
// entry to each timeline (spec section 4.G). Ordering is mandatory:
// correction happens before confidence, and confidence sees the
// already-corrected hypothesis.
func (t *Tracker) Update(play Playback, evalF ConfidenceFunc, corrF CorrectionFunc) {
	c := corrF(t.Current, play)
	t.Corrections = append(t.Corrections, CorrectionStep{OnsetIndex: play.DiscoveredIndex(), Correction: c})
	t.Current = c.NewHypothesis()

	s := evalF(t.Current, play)
	t.Confidences = append(t.Confidences, ConfidenceStep{OnsetIndex: play.DiscoveredIndex(), Score: s})
}

// LastConfidence returns the most recently recorded confidence score, or
// 0 if none has been recorded yet.
func (t *Tracker) LastConfidence() float64 {
	if len(t.Confidences) == 0 {
		return 0
	}
	return t.Confidences[len(t.Confidences)-1].Score
}

// ConfidenceAt returns the confidence recorded at onsetIndex and whether
// one was recorded.
func (t *Tracker) ConfidenceAt(onsetIndex int) (float64, bool) {
	for _, c := range t.Confidences {
		if c.OnsetIndex == onsetIndex {
			return c.Score, true
		}
	}
	return 0, false
}

// CorrectionAt returns the correction recorded at onsetIndex and whether
// one was recorded.
func (t *Tracker) CorrectionAt(onsetIndex int) (Correction, bool) {
	for _, c := range t.Corrections {
		if c.OnsetIndex == onsetIndex {
			return c.Correction, true
		}
	}
	return Correction{}, false
}

func (t *Tracker) String() string {
	return fmt.Sprintf("Ht:%s", t.Name())
}
