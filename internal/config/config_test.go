package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Ingest.BatchSize = 500
	cfg.Scoring.AmountPolicy = PolicyBanded
	cfg.Scoring.AmountBands = []AmountBand{
		{Over: 1e6, Points: 25},
		{Over: 50000, Points: 15},
		{Over: 10000, Points: 5},
	}
	twoSided := true
	cfg.Ingest.TwoSided = &twoSided

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, got.Ingest.BatchSize)
	assert.Equal(t, PolicyBanded, got.Scoring.AmountPolicy)
	require.Len(t, got.Scoring.AmountBands, 3)
	assert.InDelta(t, 1e6, got.Scoring.AmountBands[0].Over, 0.001)
	require.NotNil(t, got.Ingest.TwoSided)
	assert.True(t, *got.Ingest.TwoSided)
	assert.Equal(t, cfg.Scoring.PaymentFormats, got.Scoring.PaymentFormats)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 10000, cfg.Ingest.BatchSize)
	assert.Equal(t, 1, cfg.Ingest.Workers)
	assert.Equal(t, "generic", cfg.Ingest.Profile)
	assert.Nil(t, cfg.Ingest.TwoSided)
	assert.Equal(t, PolicyCumulative, cfg.Scoring.AmountPolicy)
	assert.Equal(t, 30, cfg.Scoring.PaymentFormats["cash"])
	assert.Equal(t, 5, cfg.Scoring.PaymentFormats["debit"])
	assert.Equal(t, 50, cfg.Scoring.LaunderingPenalty)
	assert.InDelta(t, 2.0, cfg.Scoring.Deviation.K, 0.001)
	assert.Equal(t, 60, cfg.Alerts.Threshold)
	assert.Equal(t, 20, cfg.Alerts.TopK)
	assert.Equal(t, int64(42), cfg.Anomaly.Seed)
	assert.Equal(t, 5, cfg.Report.TopBanks)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOrDefault_EmptyPath(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("alerts:\n  threshold: 50\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Alerts.Threshold)
	assert.Equal(t, 20, cfg.Alerts.TopK)
	assert.Equal(t, 10000, cfg.Ingest.BatchSize)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("ingest:\n  batch_size: 0\nscoring:\n  amount_policy: stepped\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch_size")
	assert.Contains(t, err.Error(), "amount_policy")
}

func TestValidate_LevelBands(t *testing.T) {
	cfg := Default()
	cfg.Scoring.Levels = LevelBands{LowMax: 80, MediumMax: 70}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "low_max")
}

func TestSortedBands(t *testing.T) {
	s := ScoringConfig{AmountBands: []AmountBand{{Over: 50000}, {Over: 10000}, {Over: 1e6}}}
	got := s.SortedBands()
	assert.InDelta(t, 10000, got[0].Over, 0.001)
	assert.InDelta(t, 50000, got[1].Over, 0.001)
	assert.InDelta(t, 1e6, got[2].Over, 0.001)
	// Source order untouched.
	assert.InDelta(t, 50000, s.AmountBands[0].Over, 0.001)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "batch_size: 10000")
	assert.Contains(t, contents, "amount_policy: cumulative")
	assert.Contains(t, contents, "threshold: 60")
	assert.NotContains(t, contents, "two_sided")
}
