package tactus

import (
	"fmt"
	"sort"
)

// Engine runs the online tracking loop described in spec section 4.H:
// at each newly discovered onset, generate any new hypothesis trackers,
// correct and score every tracker in the pool, then prune the pool down
// to a non-redundant, bounded set. Grounded on
// original_source/m2/tht/tactus_hypothesis_tracker.py:TactusHypothesisTracker.
type Engine struct {
	cfg    Config
	pool   []*Tracker
	byName map[string]*Tracker
}

// NewEngine validates cfg and returns a fresh engine with an empty pool.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, byName: make(map[string]*Tracker)}, nil
}

// Pool returns the current set of tracked hypotheses, in creation order.
func (e *Engine) Pool() []*Tracker {
	return e.pool
}

// Tracker looks up a pool member by its "a-b" origin name.
func (e *Engine) Tracker(name string) (*Tracker, bool) {
	t, ok := e.byName[name]
	return t, ok
}

// Step advances the engine by one discovered onset: it seeds any new
// trackers the newly discovered onset makes eligible, updates every
// tracker in the pool against play, and prunes the result (spec section
// 4.H).
func (e *Engine) Step(play Playback) {
	e.generateNew(play)
	for _, t := range e.pool {
		t.Update(play, e.cfg.EvalFunc, e.cfg.CorrFunc)
	}
	e.prune(play)
}

// Run drives the engine over a complete onset sequence via an
// OngoingPlayback, one Step per discovered onset from the second onward
// (len(onsetTimes)-1 steps), and returns the final pool keyed by tracker
// name.
func (e *Engine) Run(onsetTimes []float64) map[string]*Tracker {
	play := NewOngoingPlayback(onsetTimes)
	for play.Advance() {
		e.Step(play)
	}
	out := make(map[string]*Tracker, len(e.byName))
	for k, v := range e.byName {
		out[k] = v
	}
	return out
}

// generateNew seeds one tracker per eligible (a, b) origin pair, where b
// is the index of the just-discovered onset and a ranges over every
// earlier discovered onset, filtered to pairs whose implied delta falls
// within [MinDelta, MaxDelta] and that are not already in the pool
// (spec section 4.H, "for each k in [0, e)").
func (e *Engine) generateNew(play Playback) {
	b := play.DiscoveredIndex()
	if b <= 0 {
		return
	}
	onsets := play.Discovered()

	for k := 0; k < b; k++ {
		a := b - 1 - k
		delta := onsets[b] - onsets[a]
		if delta < e.cfg.MinDelta || delta > e.cfg.MaxDelta {
			continue
		}
		name := fmt.Sprintf("%d-%d", a, b)
		if _, exists := e.byName[name]; exists {
			continue
		}
		t := NewTracker(a, b, onsets)
		e.pool = append(e.pool, t)
		e.byName[name] = t
	}
}

// prune trims near-duplicate trackers and, if MaxHypotheses is set,
// caps the survivors to the best-scoring subset (spec section 4.H).
func (e *Engine) prune(play Playback) {
	kept, _ := trimSimilar(e.pool, play, e.cfg.SimFunc, e.cfg.SimilarityEpsilon)
	if e.cfg.MaxHypotheses > 0 && len(kept) > e.cfg.MaxHypotheses {
		best, _ := splitKBestHypotheses(kept, e.cfg.MaxHypotheses)
		kept = best
	}
	e.setPool(kept)
}

func (e *Engine) setPool(pool []*Tracker) {
	e.pool = pool
	e.byName = make(map[string]*Tracker, len(pool))
	for _, t := range pool {
		e.byName[t.Name()] = t
	}
}

// trimSimilar removes redundant trackers from pool via a FIFO queue walk
// (spec section 4.F / section 9's resolution of the pruning-cost open
// question): the oldest surviving tracker is compared, in pool order,
// against every tracker still ahead of it in the queue; any comparison
// at or above 1-epsilon similarity removes the later tracker, recording
// it as trimmed by the earlier one. A tracker is compared against each
// earlier survivor only once, so a later baseline can still trim a
// tracker an earlier baseline judged dissimilar. Grounded on
// original_source/m2/tht/tests/tactus_hypothesis_tracker_test.py's
// _trim_similar_hypotheses fixture.
func trimSimilar(pool []*Tracker, play Playback, simF SimilarityFunc, epsilon float64) (kept []*Tracker, trimmed [][2]*Tracker) {
	queue := make([]*Tracker, len(pool))
	copy(queue, pool)
	threshold := 1 - epsilon

	for len(queue) > 0 {
		baseline := queue[0]
		rest := queue[1:]
		survivors := rest[:0:0]
		for _, c := range rest {
			if simF(baseline.Current, c.Current, play) >= threshold {
				trimmed = append(trimmed, [2]*Tracker{c, baseline})
			} else {
				survivors = append(survivors, c)
			}
		}
		kept = append(kept, baseline)
		queue = survivors
	}
	return kept, trimmed
}

// splitKBestHypotheses splits pool into the k trackers with the highest
// LastConfidence (ties broken by pool order) and the rest, both returned
// in their original pool order (spec section 4.H, optional top-K cap).
// Grounded on
// original_source/m2/tht/tests/tactus_hypothesis_tracker_test.py's
// test_k_best_hypothesis fixture.
func splitKBestHypotheses(pool []*Tracker, k int) (best, other []*Tracker) {
	if k >= len(pool) {
		return append([]*Tracker{}, pool...), nil
	}
	if k <= 0 {
		return nil, append([]*Tracker{}, pool...)
	}

	type ranked struct {
		idx  int
		conf float64
	}
	ranking := make([]ranked, len(pool))
	for i, t := range pool {
		ranking[i] = ranked{idx: i, conf: t.LastConfidence()}
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].conf > ranking[j].conf
	})

	isBest := make([]bool, len(pool))
	for _, r := range ranking[:k] {
		isBest[r.idx] = true
	}
	for i, t := range pool {
		if isBest[i] {
			best = append(best, t)
		} else {
			other = append(other, t)
		}
	}
	return best, other
}
