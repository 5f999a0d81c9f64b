package tactus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the engine configuration enumerated in spec section 4.H.
type Config struct {
	EvalFunc ConfidenceFunc
	CorrFunc CorrectionFunc
	SimFunc  SimilarityFunc

	SimilarityEpsilon float64
	MinDelta          float64
	MaxDelta          float64
	// MaxHypotheses caps the pool size after pruning; 0 disables the cap
	// (spec section 4.H, "optional").
	MaxHypotheses int
}

// DefaultConfig returns the production configuration (spec section 4.H
// defaults): AllHistoryConfidence, the mult=2/decay=0.0001 linear
// regression correction, MinDistSimilarity, epsilon=0.005,
// min_delta=60000/320, max_delta=60000/40, max_hypotheses=30. Grounded on
// original_source/m2/tht/defaults.py.
func DefaultConfig() Config {
	corr := NewLinearRegressCorrection()
	return Config{
		EvalFunc:          AllHistoryConfidence,
		CorrFunc:          corr.Correct,
		SimFunc:           MinDistSimilarity,
		SimilarityEpsilon: 0.005,
		MinDelta:          60000.0 / 320,
		MaxDelta:          60000.0 / 40,
		MaxHypotheses:     30,
	}
}

// Validate checks the configuration invariants spec section 7 places at
// construction time ("Invalid configuration").
func (c Config) Validate() error {
	if c.EvalFunc == nil || c.CorrFunc == nil || c.SimFunc == nil {
		return ErrMissingFunc
	}
	if c.MinDelta <= 0 || c.MinDelta > c.MaxDelta {
		return ErrDeltaBounds
	}
	if c.SimilarityEpsilon <= 0 || c.SimilarityEpsilon >= 1 {
		return ErrEpsilonRange
	}
	return nil
}

// ConfigFile is the JSON/TOML overlay schema for the numeric and named
// parts of Config (spec section 4.H); function-valued fields are
// selected by name rather than embedded, since they are not themselves
// serializable. Grounded on preset/json.go's pointer-field
// overlay-onto-defaults idiom (every field optional, validated
// individually, merged onto a caller-supplied base).
type ConfigFile struct {
	SimilarityEpsilon *float64 `json:"similarity_epsilon" toml:"similarity_epsilon"`
	MinDelta          *float64 `json:"min_delta" toml:"min_delta"`
	MaxDelta          *float64 `json:"max_delta" toml:"max_delta"`
	MaxHypotheses     *int     `json:"max_hypotheses" toml:"max_hypotheses"`

	// Correction names a CorrectionFunc variant: "linear" (default),
	// "peaked", "iterated", "identity".
	Correction *string `json:"correction" toml:"correction"`
	// Similarity names a SimilarityFunc variant: "min_dist" (default),
	// "identity", "projection_confidence".
	Similarity *string `json:"similarity" toml:"similarity"`
}

// ApplyFile overlays f onto a base Config, validating every field it
// sets, and returns the merged, still-unvalidated-as-a-whole Config
// (call Validate on the result).
func ApplyFile(base Config, f *ConfigFile) (Config, error) {
	if f == nil {
		return base, nil
	}
	cfg := base

	if f.SimilarityEpsilon != nil {
		if *f.SimilarityEpsilon <= 0 || *f.SimilarityEpsilon >= 1 {
			return cfg, fmt.Errorf("similarity_epsilon must be in (0, 1): %w", ErrEpsilonRange)
		}
		cfg.SimilarityEpsilon = *f.SimilarityEpsilon
	}
	if f.MinDelta != nil {
		if *f.MinDelta <= 0 {
			return cfg, fmt.Errorf("min_delta must be > 0: %w", ErrDeltaBounds)
		}
		cfg.MinDelta = *f.MinDelta
	}
	if f.MaxDelta != nil {
		if *f.MaxDelta <= 0 {
			return cfg, fmt.Errorf("max_delta must be > 0: %w", ErrDeltaBounds)
		}
		cfg.MaxDelta = *f.MaxDelta
	}
	if cfg.MinDelta > cfg.MaxDelta {
		return cfg, ErrDeltaBounds
	}
	if f.MaxHypotheses != nil {
		if *f.MaxHypotheses < 0 {
			return cfg, fmt.Errorf("max_hypotheses must be >= 0")
		}
		cfg.MaxHypotheses = *f.MaxHypotheses
	}
	if f.Correction != nil {
		fn, err := correctionByName(*f.Correction)
		if err != nil {
			return cfg, err
		}
		cfg.CorrFunc = fn
	}
	if f.Similarity != nil {
		fn, err := similarityByName(*f.Similarity)
		if err != nil {
			return cfg, err
		}
		cfg.SimFunc = fn
	}
	return cfg, nil
}

func correctionByName(name string) (CorrectionFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear":
		return NewLinearRegressCorrection().Correct, nil
	case "peaked":
		return NewPeakedCorrection().Correct, nil
	case "iterated":
		return NewIteratedCorrection().Correct, nil
	case "identity":
		return NoCorrection, nil
	default:
		return nil, fmt.Errorf("tactus: unknown correction variant %q", name)
	}
}

func similarityByName(name string) (SimilarityFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "min_dist":
		return MinDistSimilarity, nil
	case "identity":
		return IdentitySimilarity, nil
	case "projection_confidence":
		return ProjectionConfidenceSimilarity, nil
	default:
		return nil, fmt.Errorf("tactus: unknown similarity variant %q", name)
	}
}

// LoadConfigJSON reads a ConfigFile overlay from a JSON document at path
// and applies it onto DefaultConfig().
func LoadConfigJSON(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var f ConfigFile
	if err := json.Unmarshal(b, &f); err != nil {
		return Config{}, err
	}
	cfg, err := ApplyFile(DefaultConfig(), &f)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// LoadConfigTOML reads a ConfigFile overlay from a TOML document at path
// and applies it onto DefaultConfig(). TOML support matches the
// hand-editable config style of stojg-playlist-sorter (see SPEC_FULL.md).
func LoadConfigTOML(path string) (Config, error) {
	var f ConfigFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return Config{}, err
	}
	cfg, err := ApplyFile(DefaultConfig(), &f)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}
