// Package config loads engine settings from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-coherence/coherence"
)

// Analysis mirrors coherence.Settings in YAML form. Zero fields fall back
// to the defaults applied by Default.
type Analysis struct {
	SampleRate  float64 `yaml:"sample_rate"`
	SegmentSec  float64 `yaml:"segment_sec"`
	WindowSec   float64 `yaml:"window_sec"`
	StepSec     float64 `yaml:"step_sec"`
	FreqStart   float64 `yaml:"freq_start"`
	FreqEnd     float64 `yaml:"freq_end"`
	FreqStep    float64 `yaml:"freq_step"`
	InterpRatio int     `yaml:"interp_ratio"`
	Alpha       float64 `yaml:"alpha"`
	IntervalSec float64 `yaml:"interval_sec"`

	Group1       []int           `yaml:"group1"`
	Group2       []int           `yaml:"group2"`
	ChannelRates map[int]float64 `yaml:"channel_rates"`
}

// Root is the top-level configuration document.
type Root struct {
	LogLevel string   `yaml:"log_level"`
	Analysis Analysis `yaml:"analysis"`
}

// Default returns a configuration for a typical 1 kHz recording with two
// channels per group.
func Default() Root {
	return Root{
		LogLevel: "info",
		Analysis: Analysis{
			SampleRate:  1000,
			SegmentSec:  4,
			WindowSec:   2,
			StepSec:     0.1,
			FreqStart:   1,
			FreqEnd:     41,
			FreqStep:    1,
			InterpRatio: 1,
			Group1:      []int{0, 1},
			Group2:      []int{2, 3},
		},
	}
}

// Load reads a YAML file into the default configuration, so omitted fields
// keep their defaults, and validates the result.
func Load(path string) (*Root, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Settings().Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// Settings converts the analysis section to engine settings.
func (r *Root) Settings() coherence.Settings {
	a := r.Analysis
	return coherence.Settings{
		SampleRate:   a.SampleRate,
		SegmentSec:   a.SegmentSec,
		WindowSec:    a.WindowSec,
		StepSec:      a.StepSec,
		FreqStart:    a.FreqStart,
		FreqEnd:      a.FreqEnd,
		FreqStep:     a.FreqStep,
		InterpRatio:  a.InterpRatio,
		Alpha:        a.Alpha,
		Group1:       a.Group1,
		Group2:       a.Group2,
		ChannelRates: a.ChannelRates,
		Interval:     time.Duration(a.IntervalSec * float64(time.Second)),
	}
}
