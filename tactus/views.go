package tactus

import "sort"

// TopHypothesisStep is one entry of the top-hypothesis-over-time output
// view (spec section 4.I): at onset index OnsetIndex, Name names the
// highest-confidence tracker and Score its confidence.
type TopHypothesisStep struct {
	OnsetIndex int
	Name       string
	Score      float64
}

// TopHypothesis walks onset indices [3, len(onsetTimes)) and, for every
// index at which at least one tracker recorded a confidence, reports the
// name and score of the highest-scoring one. Steps with no recorded
// confidence are skipped rather than zero-filled. Grounded on
// original_source/m2/tht/tracker_analysis.py:top_hypothesis.
func TopHypothesis(pool map[string]*Tracker, onsetTimes []float64) []TopHypothesisStep {
	names := sortedNames(pool)

	var out []TopHypothesisStep
	for i := 3; i < len(onsetTimes); i++ {
		bestName := ""
		bestScore := 0.0
		found := false
		for _, name := range names {
			t := pool[name]
			score, ok := t.ConfidenceAt(i)
			if !ok {
				continue
			}
			if !found || score > bestScore {
				found = true
				bestScore = score
				bestName = name
			}
		}
		if found {
			out = append(out, TopHypothesisStep{OnsetIndex: i, Name: bestName, Score: bestScore})
		}
	}
	return out
}

// RankedHypothesis is one tracker's confidence at a particular onset
// index, used by RanksOverTime (spec section 7, supplemented feature).
type RankedHypothesis struct {
	Name  string
	Score float64
}

// RanksOverTime is TopHypothesis generalized to the full confidence
// ranking (not just the winner) at every onset index that has at least
// one recorded confidence, sorted highest score first, ties broken by
// name for determinism. Grounded on
// original_source/m2/tht/tracker_analysis.py:hypothesis_ranks_overtime.
func RanksOverTime(pool map[string]*Tracker, onsetTimes []float64) map[int][]RankedHypothesis {
	names := sortedNames(pool)
	out := make(map[int][]RankedHypothesis)

	for i := 3; i < len(onsetTimes); i++ {
		var ranks []RankedHypothesis
		for _, name := range names {
			t := pool[name]
			score, ok := t.ConfidenceAt(i)
			if !ok {
				continue
			}
			ranks = append(ranks, RankedHypothesis{Name: name, Score: score})
		}
		if len(ranks) == 0 {
			continue
		}
		sort.SliceStable(ranks, func(a, b int) bool {
			if ranks[a].Score != ranks[b].Score {
				return ranks[a].Score > ranks[b].Score
			}
			return ranks[a].Name < ranks[b].Name
		})
		out[i] = ranks
	}
	return out
}

// Segment is a maximal run of consecutive onset indices during which the
// same tracker held the top rank (spec section 7, supplemented feature).
type Segment struct {
	Name       string
	StartIndex int
	EndIndex   int
}

// TopSegments condenses RanksOverTime's winners into runs, merging
// consecutive onset indices that share the same top-ranked tracker.
// Grounded on
// original_source/m2/tht/tracker_analysis.py:create_trackers_segments.
func TopSegments(pool map[string]*Tracker, onsetTimes []float64) []Segment {
	top := TopHypothesis(pool, onsetTimes)
	var segs []Segment
	for _, step := range top {
		if len(segs) > 0 {
			last := &segs[len(segs)-1]
			if last.Name == step.Name && step.OnsetIndex == last.EndIndex+1 {
				last.EndIndex = step.OnsetIndex
				continue
			}
		}
		segs = append(segs, Segment{Name: step.Name, StartIndex: step.OnsetIndex, EndIndex: step.OnsetIndex})
	}
	return segs
}

// HypothesisAtTime is one entry of the overtime-by-time view (spec
// section 4.I): the highest-confidence hypothesis known as of
// onsetTimes[OnsetIndex], expressed directly as beat phase/period rather
// than by tracker name.
type HypothesisAtTime struct {
	Time       float64
	OnsetIndex int
	Name       string
	Hypothesis Hypothesis
	Score      float64
}

// OvertimeTracking re-expresses TopHypothesis against wall-clock time and
// the winning tracker's corrected hypothesis at that step, suitable for
// plotting a beat/phase trajectory. Grounded on
// original_source/m2/tht/tracking_overtime.py.
func OvertimeTracking(pool map[string]*Tracker, onsetTimes []float64) []HypothesisAtTime {
	top := TopHypothesis(pool, onsetTimes)
	out := make([]HypothesisAtTime, 0, len(top))
	for _, step := range top {
		t := pool[step.Name]
		h := t.Current
		if c, ok := t.CorrectionAt(step.OnsetIndex); ok {
			h = c.NewHypothesis()
		}
		out = append(out, HypothesisAtTime{
			Time:       onsetTimes[step.OnsetIndex],
			OnsetIndex: step.OnsetIndex,
			Name:       step.Name,
			Hypothesis: h,
			Score:      step.Score,
		})
	}
	return out
}

// ProducedBeat is one beat on the output click-track (spec section
// 4.I), carrying both the originating tracker and the raw predicted
// time.
type ProducedBeat struct {
	Time  float64
	Name  string
	BeatX int
}

// ProduceBeats renders the winning tracker's own projected beats across
// the whole onset sequence, switching hypotheses whenever TopHypothesis
// hands the lead to a different tracker. Each segment's projection drops
// its first element (the beat nearest the segment's start, which may fall
// up to Delta/2 before or after it), matching the original's beats[1:] slice rather than a
// time-value filter, so the produced sequence stays strictly increasing
// across handoffs. Grounded on
// original_source/m2/tht/tracker_analysis.py:produce_beats_information
// and track_beats.
func ProduceBeats(pool map[string]*Tracker, onsetTimes []float64) []ProducedBeat {
	if len(onsetTimes) == 0 {
		return nil
	}
	top := TopHypothesis(pool, onsetTimes)
	if len(top) == 0 {
		return nil
	}

	var out []ProducedBeat
	for i, step := range top {
		t := pool[step.Name]
		h := t.Current
		if c, ok := t.CorrectionAt(step.OnsetIndex); ok {
			h = c.NewHypothesis()
		}

		lo := onsetTimes[step.OnsetIndex]
		hi := onsetTimes[len(onsetTimes)-1]
		if i+1 < len(top) {
			hi = onsetTimes[top[i+1].OnsetIndex]
		}

		beats := h.ProjectRange(lo, hi)
		if len(beats) == 0 {
			continue
		}
		for _, b := range beats[1:] {
			out = append(out, ProducedBeat{Time: b.Time, Name: step.Name, BeatX: b.X})
		}
	}
	return out
}

func sortedNames(pool map[string]*Tracker) []string {
	names := make([]string, 0, len(pool))
	for name := range pool {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
