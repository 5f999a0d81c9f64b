package tactus

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Dump writes a line-oriented textual snapshot of pool to w: one "ht
// name"/"ht beta" pair per tracker, followed by one "ht corr" line per
// recorded correction and one "ht conf" line per recorded confidence,
// trackers emitted in name order for a deterministic byte stream. The
// "ht corr" line carries only the corrected (n_rho, n_delta) pair, per
// original_source/m2/tht/tracker_analysis.py:tracker_dump
// ('ht corr %d %f %f' % (n, corr.n_rho, corr.n_delta)); the
// pre-correction hypothesis is not persisted and is reconstructed on
// read from the tracker's running Current value.
func Dump(w io.Writer, pool map[string]*Tracker) error {
	bw := bufio.NewWriter(w)
	for _, name := range sortedNames(pool) {
		t := pool[name]
		if _, err := fmt.Fprintf(bw, "ht name %s\n", t.Name()); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(bw, "ht beta %f %f\n", t.Beta.Rho, t.Beta.Delta); err != nil {
			return err
		}
		for _, c := range t.Corrections {
			if _, err := fmt.Fprintf(bw, "ht corr %d %f %f\n",
				c.OnsetIndex, c.Correction.NewRho, c.Correction.NewDelta); err != nil {
				return err
			}
		}
		for _, c := range t.Confidences {
			if _, err := fmt.Fprintf(bw, "ht conf %d %f\n", c.OnsetIndex, c.Score); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ParseDump reads back the format Dump writes, reconstructing one
// Tracker per "ht name" block. Origin indices are recovered by parsing
// the tracker's "a-b" name; the reconstructed Tracker carries no
// onsetTimes (ParseDump is a reporting round-trip, not a resumable
// engine state).
func ParseDump(r io.Reader) (map[string]*Tracker, error) {
	pool := make(map[string]*Tracker)
	var current *Tracker

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "ht" {
			return nil, fmt.Errorf("tactus: malformed dump line %q", line)
		}

		switch fields[1] {
		case "name":
			if len(fields) != 3 {
				return nil, fmt.Errorf("tactus: malformed ht name line %q", line)
			}
			a, b, err := splitOriginName(fields[2])
			if err != nil {
				return nil, err
			}
			current = &Tracker{OriginA: a, OriginB: b}
			pool[fields[2]] = current

		case "beta":
			if current == nil || len(fields) != 4 {
				return nil, fmt.Errorf("tactus: malformed ht beta line %q", line)
			}
			rho, delta, err := parsePair(fields[2], fields[3])
			if err != nil {
				return nil, err
			}
			current.Beta = NewHypothesis(rho, delta)
			current.Current = current.Beta

		case "corr":
			if current == nil || len(fields) != 5 {
				return nil, fmt.Errorf("tactus: malformed ht corr line %q", line)
			}
			onsetIdx, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, err
			}
			newRho, newDelta, err := parsePair(fields[3], fields[4])
			if err != nil {
				return nil, err
			}
			corr := Correction{
				OldRho: current.Current.Rho, OldDelta: current.Current.Delta,
				NewRho: newRho, NewDelta: newDelta,
			}
			current.Corrections = append(current.Corrections, CorrectionStep{OnsetIndex: onsetIdx, Correction: corr})
			current.Current = corr.NewHypothesis()

		case "conf":
			if current == nil || len(fields) != 4 {
				return nil, fmt.Errorf("tactus: malformed ht conf line %q", line)
			}
			onsetIdx, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, err
			}
			score, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, err
			}
			current.Confidences = append(current.Confidences, ConfidenceStep{OnsetIndex: onsetIdx, Score: score})

		default:
			return nil, fmt.Errorf("tactus: unknown dump record %q", fields[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pool, nil
}

func parsePair(a, b string) (float64, float64, error) {
	x, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func splitOriginName(name string) (int, int, error) {
	parts := strings.SplitN(name, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("tactus: malformed tracker name %q", name)
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// WriteCSV renders pool as a tabular report: one row per (tracker, onset
// step) pair with columns a, b, onset_index, onset_time, score, phase,
// period. Rows are emitted per tracker in name order, then by onset
// index; phase/period are the tracker's corrected hypothesis as of that
// step.
func WriteCSV(w io.Writer, pool map[string]*Tracker, onsetTimes []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"a", "b", "onset_index", "onset_time", "score", "phase", "period"}); err != nil {
		return err
	}

	for _, name := range sortedNames(pool) {
		t := pool[name]
		corrByIdx := make(map[int]Correction, len(t.Corrections))
		for _, c := range t.Corrections {
			corrByIdx[c.OnsetIndex] = c.Correction
		}

		steps := make([]int, 0, len(t.Confidences))
		for _, c := range t.Confidences {
			steps = append(steps, c.OnsetIndex)
		}
		sort.Ints(steps)

		for _, idx := range steps {
			score, _ := t.ConfidenceAt(idx)
			h := t.Beta
			if c, ok := corrByIdx[idx]; ok {
				h = c.NewHypothesis()
			}
			onsetTime := 0.0
			if idx >= 0 && idx < len(onsetTimes) {
				onsetTime = onsetTimes[idx]
			}
			row := []string{
				strconv.Itoa(t.OriginA),
				strconv.Itoa(t.OriginB),
				strconv.Itoa(idx),
				strconv.FormatFloat(onsetTime, 'f', -1, 64),
				strconv.FormatFloat(score, 'f', -1, 64),
				strconv.FormatFloat(h.Rho, 'f', -1, 64),
				strconv.FormatFloat(h.Delta, 'f', -1, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
