package tactus

import "errors"

// Sentinel errors for engine configuration failures (spec section 7,
// "Invalid configuration"). These surface at construction time, never
// mid-loop.
var (
	ErrDeltaBounds  = errors.New("tactus: min_delta must be positive and <= max_delta")
	ErrEpsilonRange = errors.New("tactus: similarity_epsilon must be in (0, 1)")
	ErrMissingFunc  = errors.New("tactus: eval_f, corr_f and sim_f are required")
)

// errEmptyPrefix marks the structural violation described in spec section 7
// ("Empty discovered prefix at evaluation time"): it is a bug in the
// caller's loop, not a runtime condition the engine recovers from.
var errEmptyPrefix = errors.New("tactus: empty discovered prefix at evaluation time")
