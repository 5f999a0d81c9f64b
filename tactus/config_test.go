package tactus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidateRejectsMissingFuncs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EvalFunc = nil
	assert.ErrorIs(t, cfg.Validate(), ErrMissingFunc)
}

func TestConfigValidateRejectsBadDeltaBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinDelta = cfg.MaxDelta + 1
	assert.ErrorIs(t, cfg.Validate(), ErrDeltaBounds)
}

func TestConfigValidateRejectsBadEpsilon(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimilarityEpsilon = 1.5
	assert.ErrorIs(t, cfg.Validate(), ErrEpsilonRange)
}

func TestApplyFileOverlaysNumericFields(t *testing.T) {
	eps := 0.02
	maxH := 10
	f := &ConfigFile{SimilarityEpsilon: &eps, MaxHypotheses: &maxH}

	cfg, err := ApplyFile(DefaultConfig(), f)
	require.NoError(t, err)
	assert.Equal(t, eps, cfg.SimilarityEpsilon)
	assert.Equal(t, maxH, cfg.MaxHypotheses)
	assert.NoError(t, cfg.Validate())
}

func TestApplyFileSelectsCorrectionVariant(t *testing.T) {
	name := "identity"
	f := &ConfigFile{Correction: &name}
	cfg, err := ApplyFile(DefaultConfig(), f)
	require.NoError(t, err)

	h := NewHypothesis(10, 500)
	c := cfg.CorrFunc(h, NewPlayback([]float64{0, 1000}))
	assert.Equal(t, h.Rho, c.NewRho)
	assert.Equal(t, h.Delta, c.NewDelta)
}

func TestApplyFileRejectsUnknownVariant(t *testing.T) {
	name := "not-a-real-variant"
	f := &ConfigFile{Correction: &name}
	_, err := ApplyFile(DefaultConfig(), f)
	assert.Error(t, err)
}

func TestApplyFileRejectsInvertedDeltaBounds(t *testing.T) {
	min := 2000.0
	f := &ConfigFile{MinDelta: &min}
	_, err := ApplyFile(DefaultConfig(), f)
	assert.ErrorIs(t, err, ErrDeltaBounds)
}
