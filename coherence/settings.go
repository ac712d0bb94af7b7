package coherence

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-coherence/tfr"
)

// Settings is the configuration surface of an Engine. All fields are fixed
// for the engine's lifetime; changing any of them requires constructing a
// new engine (or Reconfigure while the worker is stopped).
type Settings struct {
	// SampleRate is the nominal acquisition rate in Hz.
	SampleRate float64

	// SegmentSec is the analysis epoch length in seconds, WindowSec the
	// wavelet window length, StepSec the spacing of time bins.
	SegmentSec float64
	WindowSec  float64
	StepSec    float64

	// FreqStart, FreqEnd and FreqStep define the frequency grid in Hz.
	FreqStart float64
	FreqEnd   float64
	FreqStep  float64

	// InterpRatio pads the convolution FFT for frequency-domain
	// interpolation; 1 disables padding.
	InterpRatio int

	// Alpha selects the accumulator weighting: 0 for cumulative averaging,
	// (0, 1] for exponential decay.
	Alpha float64

	// Group1 and Group2 list the external channel indices of the two
	// groups. Membership must be disjoint; order defines the pair layout
	// of the snapshot.
	Group1 []int
	Group2 []int

	// ChannelRates optionally carries per-channel acquisition rates.
	// Channels whose rate differs from SampleRate are excluded from
	// processing with a warning; the remaining channels are unaffected.
	ChannelRates map[int]float64

	// Interval is the worker's soft recalculation budget: a segment is
	// processed once it is ready and at least Interval has passed since
	// the previous computation. Zero means "as soon as ready".
	Interval time.Duration
}

// Validate checks the settings without building anything.
func (s Settings) Validate() error {
	if len(s.Group1) == 0 || len(s.Group2) == 0 {
		return fmt.Errorf("%w: both groups need at least one channel", ErrBadSettings)
	}
	if s.Interval < 0 {
		return fmt.Errorf("%w: negative interval", ErrBadSettings)
	}
	if _, err := tfr.New(s.tfrParams(len(s.Group1), len(s.Group2))); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSettings, err)
	}
	return nil
}

func (s Settings) tfrParams(n1, n2 int) tfr.Params {
	return tfr.Params{
		SampleRate:  s.SampleRate,
		NGroup1:     n1,
		NGroup2:     n2,
		FreqStart:   s.FreqStart,
		FreqEnd:     s.FreqEnd,
		FreqStep:    s.FreqStep,
		SegmentSec:  s.SegmentSec,
		WindowSec:   s.WindowSec,
		StepSec:     s.StepSec,
		InterpRatio: s.InterpRatio,
		Alpha:       s.Alpha,
	}
}
