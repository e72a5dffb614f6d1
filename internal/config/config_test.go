package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestDefaultWeightsAndThresholds(t *testing.T) {
	cfg := Default()
	w := cfg.Scoring.Weights
	assert.InDelta(t, 1.0, w.Title+w.Location+w.Skills+w.Experience+w.Donor, 1e-9)
	assert.Equal(t, 70, cfg.Scoring.Thresholds.High)
	assert.Equal(t, 50, cfg.Scoring.Thresholds.Good)
}

func TestValidateRejectsBadWeights(t *testing.T) {
	cfg := Default()
	cfg.Scoring.Weights.Title = 0.5 // sum now 1.2
	require.Error(t, Validate(cfg))
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	cfg := Default()
	cfg.Scoring.Thresholds.Good = 80
	cfg.Scoring.Thresholds.High = 70
	require.Error(t, Validate(cfg))
}

func TestSaveAtomicRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := Default()
	cfg.Notifier.Enabled = true
	cfg.Notifier.To = "me@example.org"

	require.NoError(t, SaveAtomic(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Scoring.Thresholds, got.Scoring.Thresholds)
	assert.Equal(t, "me@example.org", got.Notifier.To)
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, SaveAtomic(path, Default()))

	second := Default()
	second.Generator.MaxPerRun = 3
	require.NoError(t, SaveAtomic(path, second))

	_, err := os.Stat(path + ".bak")
	require.NoError(t, err)
}

func TestEnsureUserConfigBootstrapsDefaults(t *testing.T) {
	dir := t.TempDir()
	path, err := EnsureUserConfig(dir)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Scoring.Thresholds, cfg.Scoring.Thresholds)

	// second call returns the same file untouched
	again, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, path, again)
}
