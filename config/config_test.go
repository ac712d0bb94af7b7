package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
analysis:
  sample_rate: 500
  segment_sec: 2
  alpha: 0.1
  interval_sec: 1.5
  group1: [3, 4]
  group2: [7]
  channel_rates:
    7: 250
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)

	s := cfg.Settings()
	assert.Equal(t, 500.0, s.SampleRate)
	assert.Equal(t, 2.0, s.SegmentSec)
	assert.Equal(t, 0.1, s.Alpha)
	assert.Equal(t, 1500*time.Millisecond, s.Interval)
	assert.Equal(t, []int{3, 4}, s.Group1)
	assert.Equal(t, []int{7}, s.Group2)
	assert.Equal(t, map[int]float64{7: 250}, s.ChannelRates)

	// Omitted fields keep their defaults.
	assert.Equal(t, 2.0, s.WindowSec)
	assert.Equal(t, 1.0, s.FreqStart)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
analysis:
  sample_rte: 500
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	path := writeConfig(t, `
analysis:
  alpha: 1.5
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Settings().Validate())
}
