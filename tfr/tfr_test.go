package tfr

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams(alpha float64) Params {
	return Params{
		SampleRate:  200,
		NGroup1:     1,
		NGroup2:     1,
		FreqStart:   5,
		FreqEnd:     25,
		FreqStep:    5,
		SegmentSec:  1,
		WindowSec:   0.25,
		StepSec:     0.05,
		InterpRatio: 1,
		Alpha:       alpha,
	}
}

func noiseSegment(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}

func feedSegment(t *testing.T, tf *TFR, segments ...[]float64) {
	t.Helper()
	for ch, seg := range segments {
		require.NoError(t, tf.AddChannel(ch, seg))
	}
	tf.FinishSegment()
}

func TestGeometry(t *testing.T) {
	tf, err := New(testParams(0))
	require.NoError(t, err)

	assert.Equal(t, 2, tf.NChannels())
	assert.Equal(t, 1, tf.NCombinations())
	assert.Equal(t, 4, tf.NFreqs())
	assert.Equal(t, 200, tf.SegmentSamples())

	// (200 - 50)/10 + 1 time bins after trimming half a window per edge.
	assert.Equal(t, 16, tf.NTimes())

	assert.Equal(t, []float64{5, 10, 15, 20}, tf.Frequencies())
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
		err    error
	}{
		{"zero sample rate", func(p *Params) { p.SampleRate = 0 }, ErrBadParams},
		{"empty group", func(p *Params) { p.NGroup2 = 0 }, ErrBadParams},
		{"inverted freq range", func(p *Params) { p.FreqEnd = p.FreqStart }, ErrBadParams},
		{"zero freq step", func(p *Params) { p.FreqStep = 0 }, ErrBadParams},
		{"empty grid", func(p *Params) { p.FreqEnd = p.FreqStart + p.FreqStep/2 }, ErrBadParams},
		{"zero step", func(p *Params) { p.StepSec = 0 }, ErrBadParams},
		{"bad interp", func(p *Params) { p.InterpRatio = 0 }, ErrBadParams},
		{"bad alpha", func(p *Params) { p.Alpha = 1.5 }, ErrBadParams},
		{"window exceeds segment", func(p *Params) { p.WindowSec = 2 }, ErrWindowTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testParams(0)
			tc.mutate(&p)
			_, err := New(p)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestAddChannelArgumentChecks(t *testing.T) {
	tf, err := New(testParams(0))
	require.NoError(t, err)

	seg := make([]float64, tf.SegmentSamples())
	assert.ErrorIs(t, tf.AddChannel(2, seg), ErrChannelRange)
	assert.ErrorIs(t, tf.AddChannel(-1, seg), ErrChannelRange)
	assert.ErrorIs(t, tf.AddChannel(0, seg[:10]), ErrSegmentLength)
}

// Identical channels must be perfectly coherent at every frequency that
// carries power, regardless of how many segments accumulated.
func TestIdenticalChannelsFullyCoherent(t *testing.T) {
	tf, err := New(testParams(0))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for s := 0; s < 5; s++ {
		seg := noiseSegment(rng, tf.SegmentSamples())
		feedSegment(t, tf, seg, seg)
	}

	mean, _ := tf.Coherence()
	require.Len(t, mean, 1)
	require.Len(t, mean[0], tf.NFreqs())

	for k, c := range mean[0] {
		assert.InDelta(t, 1.0, c, 1e-6, "freq bin %d", k)
	}
}

// Independent white noise channels decorrelate as segments accumulate: a
// single observation is trivially coherent, many average toward zero.
func TestIndependentNoiseCoherenceDecays(t *testing.T) {
	tf, err := New(testParams(0))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(2))

	feedSegment(t, tf,
		noiseSegment(rng, tf.SegmentSamples()),
		noiseSegment(rng, tf.SegmentSamples()))

	early, _ := tf.Coherence()

	for s := 0; s < 40; s++ {
		feedSegment(t, tf,
			noiseSegment(rng, tf.SegmentSamples()),
			noiseSegment(rng, tf.SegmentSamples()))
	}

	late, _ := tf.Coherence()

	for k := 0; k < tf.NFreqs(); k++ {
		assert.InDelta(t, 1.0, early[0][k], 1e-6, "single observation should be trivially coherent")
		assert.Less(t, late[0][k], early[0][k], "freq bin %d", k)
	}

	// Averaged over the grid the residual coherence should be well below 1.
	avg := 0.0
	for _, c := range late[0] {
		avg += c
	}
	avg /= float64(len(late[0]))
	assert.Less(t, avg, 0.5)
}

// A shared sinusoid buried in independent noise shows up as elevated
// coherence in its own frequency bin.
func TestSharedToneElevatesItsBin(t *testing.T) {
	p := testParams(0)
	tf, err := New(p)
	require.NoError(t, err)

	const toneHz = 10
	rng := rand.New(rand.NewSource(3))

	for s := 0; s < 30; s++ {
		n := tf.SegmentSamples()
		x := make([]float64, n)
		y := make([]float64, n)
		phase := rng.Float64() * 2 * math.Pi
		for i := 0; i < n; i++ {
			tone := math.Sin(2*math.Pi*toneHz*float64(i)/p.SampleRate + phase)
			x[i] = tone + 0.5*rng.NormFloat64()
			y[i] = 0.7*tone + 0.5*rng.NormFloat64()
		}
		feedSegment(t, tf, x, y)
	}

	mean, _ := tf.Coherence()

	// Bin index of the tone in the 5/10/15/20 Hz grid.
	toneBin := 1
	assert.Greater(t, mean[0][toneBin], 0.8)

	for k := range mean[0] {
		if k == toneBin {
			continue
		}
		assert.Less(t, mean[0][k], mean[0][toneBin], "freq bin %d", k)
	}
}

// With decay alpha the estimate follows a step change in input coupling
// within O(1/alpha) segments, while the cumulative estimate is still
// dominated by its long incoherent history.
func TestExponentialTracksStepChange(t *testing.T) {
	run := func(alpha float64) float64 {
		tf, err := New(testParams(alpha))
		require.NoError(t, err)

		rng := rand.New(rand.NewSource(4))

		// Long incoherent history.
		for s := 0; s < 40; s++ {
			feedSegment(t, tf,
				noiseSegment(rng, tf.SegmentSamples()),
				noiseSegment(rng, tf.SegmentSamples()))
		}

		// Step change: inputs become identical. Give the estimator a few
		// multiples of 1/alpha segments to catch up.
		for s := 0; s < 8; s++ {
			seg := noiseSegment(rng, tf.SegmentSamples())
			feedSegment(t, tf, seg, seg)
		}

		mean, _ := tf.Coherence()
		avg := 0.0
		for _, c := range mean[0] {
			avg += c
		}
		return avg / float64(len(mean[0]))
	}

	exponential := run(0.5)
	linear := run(0)

	assert.Greater(t, exponential, 0.9,
		"decayed estimate should reflect the new coupling within O(1/alpha) segments")
	assert.Less(t, linear, exponential,
		"cumulative estimate should lag behind the decayed one")
}

// With alpha = 0 an early coherent phase keeps contributing: the final
// estimate stays measurably above what pure noise of the same total length
// produces.
func TestLinearNeverForgetsEarlyCoherence(t *testing.T) {
	run := func(coherentFirst int) float64 {
		tf, err := New(testParams(0))
		require.NoError(t, err)

		rng := rand.New(rand.NewSource(5))

		for s := 0; s < coherentFirst; s++ {
			seg := noiseSegment(rng, tf.SegmentSamples())
			feedSegment(t, tf, seg, seg)
		}
		for s := 0; s < 40-coherentFirst; s++ {
			feedSegment(t, tf,
				noiseSegment(rng, tf.SegmentSamples()),
				noiseSegment(rng, tf.SegmentSamples()))
		}

		mean, _ := tf.Coherence()
		avg := 0.0
		for _, c := range mean[0] {
			avg += c
		}
		return avg / float64(len(mean[0]))
	}

	base := run(0)
	withHistory := run(10)

	// 10 of 40 coherent observations leave roughly (10/40)^2 of residual
	// coherence, well above the pure-noise floor.
	assert.Greater(t, withHistory, base+0.02)
}

func TestCoherenceBeforeAnySegmentIsZero(t *testing.T) {
	tf, err := New(testParams(0))
	require.NoError(t, err)

	mean, stddev := tf.Coherence()
	for k := range mean[0] {
		assert.Zero(t, mean[0][k])
		assert.Zero(t, stddev[0][k])
	}
}

func TestStdDevBounded(t *testing.T) {
	tf, err := New(testParams(0))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(5))
	for s := 0; s < 10; s++ {
		feedSegment(t, tf,
			noiseSegment(rng, tf.SegmentSamples()),
			noiseSegment(rng, tf.SegmentSamples()))
	}

	mean, stddev := tf.Coherence()
	for k := range mean[0] {
		assert.GreaterOrEqual(t, mean[0][k], 0.0)
		assert.LessOrEqual(t, mean[0][k], 1.0)
		assert.GreaterOrEqual(t, stddev[0][k], 0.0)
		// Values live in [0,1], so the spread cannot exceed half the range
		// by much.
		assert.LessOrEqual(t, stddev[0][k], 0.6)
	}
}

func TestWaveletUnitEnergy(t *testing.T) {
	w := makeWavelet(10, 200, 50)
	require.Len(t, w, 50)

	energy := 0.0
	for _, c := range w {
		energy += real(c)*real(c) + imag(c)*imag(c)
	}
	assert.InDelta(t, 1.0, energy, 1e-9)
}
