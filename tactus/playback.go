package tactus

// Playback is the read-only view over a prefix of onset times exposed to
// the rest of the package (spec section 4.A). A static Playback (built
// with NewPlayback) exposes the entire slice handed to it; an
// OngoingPlayback additionally tracks how much of a larger onset sequence
// has been "discovered" so far and grows one onset at a time via Advance.
type Playback interface {
	// Min is the first onset of the discovered prefix.
	Min() float64
	// Max is the last onset of the discovered prefix.
	Max() float64
	// Discovered is the discovered prefix, oldest first.
	Discovered() []float64
	// DiscoveredIndex is the index (into the full onset sequence) of the
	// last discovered onset: m - 1, per spec section 9's resolution of the
	// discovered_index open question.
	DiscoveredIndex() int
}

// StaticPlayback wraps a fixed onset slice with the Playback interface; it
// behaves like an OngoingPlayback with the whole sequence discovered, and
// is used to restrict an evaluation to a sub-window (spec section 4.A).
type StaticPlayback struct {
	onsets []float64
}

// NewPlayback wraps onsets (must be non-empty) as a static Playback.
func NewPlayback(onsets []float64) StaticPlayback {
	return StaticPlayback{onsets: onsets}
}

func (p StaticPlayback) Min() float64            { return p.onsets[0] }
func (p StaticPlayback) Max() float64            { return p.onsets[len(p.onsets)-1] }
func (p StaticPlayback) Discovered() []float64   { return p.onsets }
func (p StaticPlayback) DiscoveredIndex() int    { return len(p.onsets) - 1 }

// OngoingPlayback exposes a growing prefix of a fixed onset sequence,
// advanced one onset at a time (spec section 4.A and section 3).
type OngoingPlayback struct {
	onsetTimes []float64
	// upToDiscovered is the count of discovered onsets (m in spec
	// section 3); it starts at 1 so that the first Advance reveals the
	// second onset and yields DiscoveredIndex() == 1.
	upToDiscovered int
}

// NewOngoingPlayback wraps a full onset sequence (length >= 2 required for
// any Advance to succeed, per spec section 6).
func NewOngoingPlayback(onsetTimes []float64) *OngoingPlayback {
	return &OngoingPlayback{onsetTimes: onsetTimes, upToDiscovered: 1}
}

// Advance reveals one more onset, returning whether it moved (false once
// the whole sequence is discovered).
func (p *OngoingPlayback) Advance() bool {
	if p.upToDiscovered < len(p.onsetTimes) {
		p.upToDiscovered++
		return true
	}
	return false
}

func (p *OngoingPlayback) Min() float64 { return p.onsetTimes[0] }

func (p *OngoingPlayback) Max() float64 { return p.onsetTimes[p.upToDiscovered-1] }

// DiscoveredIndex returns m - 1, the index of the last discovered onset.
func (p *OngoingPlayback) DiscoveredIndex() int { return p.upToDiscovered - 1 }

// Discovered returns the discovered prefix O[0:m].
func (p *OngoingPlayback) Discovered() []float64 {
	return p.onsetTimes[:p.upToDiscovered]
}

// OnsetTimes returns the full underlying onset sequence, carried for
// convenience by the output contract (spec section 6).
func (p *OngoingPlayback) OnsetTimes() []float64 { return p.onsetTimes }

// Len returns the number of onsets in the full underlying sequence.
func (p *OngoingPlayback) Len() int { return len(p.onsetTimes) }
