package tfr

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-coherence/internal/numeric"
	"github.com/cwbudde/algo-coherence/stats/accum"
)

// Params fixes the analysis geometry of a TFR for its whole lifetime.
// Changing any field requires constructing a new instance; the accumulated
// statistics cannot survive a geometry change.
type Params struct {
	// SampleRate is the acquisition rate in Hz.
	SampleRate float64

	// NGroup1 and NGroup2 are the channel counts of the two groups.
	// Channels 0..NGroup1-1 belong to group 1, the rest to group 2.
	NGroup1 int
	NGroup2 int

	// FreqStart, FreqEnd and FreqStep define the frequency grid in Hz.
	// The grid holds floor((FreqEnd-FreqStart)/FreqStep) frequencies
	// starting at FreqStart.
	FreqStart float64
	FreqEnd   float64
	FreqStep  float64

	// SegmentSec, WindowSec and StepSec are the analysis epoch, wavelet
	// window and time-bin step lengths in seconds.
	SegmentSec float64
	WindowSec  float64
	StepSec    float64

	// InterpRatio zero-pads the convolution FFT by this factor for finer
	// frequency-domain interpolation. 1 disables padding.
	InterpRatio int

	// Alpha is the exponential decay of the accumulators; 0 selects plain
	// cumulative averaging.
	Alpha float64
}

// Option configures optional TFR behavior.
type Option func(*TFR)

// WithLogger sets the logger used for informational and warning output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(t *TFR) {
		if log != nil {
			t.log = log
		}
	}
}

// TFR accumulates windowed time-frequency statistics across segments and
// derives magnitude-squared coherence between two channel groups.
//
// TFR is not safe for concurrent use; in the streaming pipeline it is owned
// exclusively by the analysis worker goroutine.
type TFR struct {
	p   Params
	log logrus.FieldLogger

	nChans int
	nCombs int
	nFreqs int
	nTimes int

	segSamples  int
	winSamples  int
	stepSamples int
	trim        int // half a window, dropped at each segment edge
	center      int // wavelet group delay in samples
	nfft        int

	freqs []float64

	plan        *algofft.Plan[complex128]
	waveletSpec [][]complex128 // nFreqs x nfft

	// Scratch buffers, reused for every channel of every segment.
	segPadded []complex128
	segSpec   []complex128
	prod      []complex128
	convOut   []complex128
	reBuf     []float64
	imBuf     []float64
	powBuf    []float64

	// Current-segment spectra, overwritten on every segment.
	spectrum [][][]complex128 // nChans x nFreqs x nTimes
	seen     []bool

	// Running statistics, never reset between segments.
	pow   [][][]accum.Real    // nChans x nFreqs x nTimes
	cross [][][]accum.Complex // nCombs x nFreqs x nTimes
}

// New constructs a TFR with the given geometry, generating the wavelet bank
// and FFT plans up front so that segment processing stays allocation-free.
func New(p Params, opts ...Option) (*TFR, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	t := &TFR{
		p:   p,
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	t.nChans = p.NGroup1 + p.NGroup2
	t.nCombs = p.NGroup1 * p.NGroup2
	t.nFreqs = int(math.Floor((p.FreqEnd - p.FreqStart) / p.FreqStep))

	t.segSamples = int(math.Round(p.SegmentSec * p.SampleRate))
	t.winSamples = int(math.Round(p.WindowSec * p.SampleRate))
	t.stepSamples = int(math.Round(p.StepSec * p.SampleRate))

	if t.winSamples < 2 || t.stepSamples < 1 || t.segSamples < 2 {
		return nil, fmt.Errorf("%w: degenerate sizes seg=%d win=%d step=%d",
			ErrBadParams, t.segSamples, t.winSamples, t.stepSamples)
	}
	if t.winSamples > t.segSamples {
		return nil, fmt.Errorf("%w: window %d samples, segment %d samples",
			ErrWindowTooLong, t.winSamples, t.segSamples)
	}

	t.trim = t.winSamples / 2
	t.center = (t.winSamples - 1) / 2
	t.nTimes = (t.segSamples-t.winSamples)/t.stepSamples + 1
	t.nfft = nextPowerOf2(p.InterpRatio * (t.segSamples + t.winSamples - 1))

	t.freqs = make([]float64, t.nFreqs)
	for k := range t.freqs {
		t.freqs[k] = p.FreqStart + float64(k)*p.FreqStep
	}

	plan, err := algofft.NewPlan64(t.nfft)
	if err != nil {
		return nil, fmt.Errorf("tfr: failed to create FFT plan: %w", err)
	}
	t.plan = plan

	// Wavelet bank: one unit-energy complex kernel per frequency,
	// transformed once into the frequency domain.
	t.waveletSpec = make([][]complex128, t.nFreqs)
	kernelPadded := make([]complex128, t.nfft)
	for k, f := range t.freqs {
		kernel := makeWavelet(f, p.SampleRate, t.winSamples)

		for i := range kernelPadded {
			kernelPadded[i] = 0
		}
		copy(kernelPadded, kernel)

		spec := make([]complex128, t.nfft)
		if err := t.plan.Forward(spec, kernelPadded); err != nil {
			return nil, fmt.Errorf("tfr: wavelet FFT failed at %.3f Hz: %w", f, err)
		}
		t.waveletSpec[k] = spec
	}

	t.segPadded = make([]complex128, t.nfft)
	t.segSpec = make([]complex128, t.nfft)
	t.prod = make([]complex128, t.nfft)
	t.convOut = make([]complex128, t.nfft)
	t.reBuf = make([]float64, t.nTimes)
	t.imBuf = make([]float64, t.nTimes)
	t.powBuf = make([]float64, t.nTimes)

	t.seen = make([]bool, t.nChans)
	t.spectrum = make([][][]complex128, t.nChans)
	t.pow = make([][][]accum.Real, t.nChans)
	for c := 0; c < t.nChans; c++ {
		t.spectrum[c] = make([][]complex128, t.nFreqs)
		t.pow[c] = make([][]accum.Real, t.nFreqs)
		for k := 0; k < t.nFreqs; k++ {
			t.spectrum[c][k] = make([]complex128, t.nTimes)
			row := make([]accum.Real, t.nTimes)
			for i := range row {
				row[i] = accum.NewReal(p.Alpha)
			}
			t.pow[c][k] = row
		}
	}

	t.cross = make([][][]accum.Complex, t.nCombs)
	for c := 0; c < t.nCombs; c++ {
		t.cross[c] = make([][]accum.Complex, t.nFreqs)
		for k := 0; k < t.nFreqs; k++ {
			row := make([]accum.Complex, t.nTimes)
			for i := range row {
				row[i] = accum.NewComplex(p.Alpha)
			}
			t.cross[c][k] = row
		}
	}

	return t, nil
}

func validate(p Params) error {
	switch {
	case p.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %v", ErrBadParams, p.SampleRate)
	case p.NGroup1 <= 0 || p.NGroup2 <= 0:
		return fmt.Errorf("%w: group sizes %d/%d", ErrBadParams, p.NGroup1, p.NGroup2)
	case p.FreqStep <= 0 || p.FreqEnd <= p.FreqStart:
		return fmt.Errorf("%w: frequency grid [%v, %v) step %v",
			ErrBadParams, p.FreqStart, p.FreqEnd, p.FreqStep)
	case int(math.Floor((p.FreqEnd-p.FreqStart)/p.FreqStep)) < 1:
		return fmt.Errorf("%w: empty frequency grid", ErrBadParams)
	case p.SegmentSec <= 0 || p.WindowSec <= 0 || p.StepSec <= 0:
		return fmt.Errorf("%w: seg=%vs win=%vs step=%vs",
			ErrBadParams, p.SegmentSec, p.WindowSec, p.StepSec)
	case p.InterpRatio < 1:
		return fmt.Errorf("%w: interpolation ratio %d", ErrBadParams, p.InterpRatio)
	case p.Alpha < 0 || p.Alpha > 1:
		return fmt.Errorf("%w: alpha %v", ErrBadParams, p.Alpha)
	}
	return nil
}

// NChannels returns the total channel count (group 1 followed by group 2).
func (t *TFR) NChannels() int { return t.nChans }

// NCombinations returns the number of (group 1, group 2) channel pairs.
func (t *TFR) NCombinations() int { return t.nCombs }

// NFreqs returns the number of frequency bins.
func (t *TFR) NFreqs() int { return t.nFreqs }

// NTimes returns the number of time bins per segment after edge trimming.
func (t *TFR) NTimes() int { return t.nTimes }

// SegmentSamples returns the per-channel segment length in samples.
func (t *TFR) SegmentSamples() int { return t.segSamples }

// Frequencies returns a copy of the frequency grid in Hz.
func (t *TFR) Frequencies() []float64 {
	out := make([]float64, len(t.freqs))
	copy(out, t.freqs)
	return out
}

// AddChannel decomposes one channel's segment with the wavelet bank and
// folds its instantaneous power into the running statistics. ch indexes the
// combined group layout: 0..NGroup1-1 for group 1, then group 2.
//
// All channels of a segment must be added before FinishSegment.
func (t *TFR) AddChannel(ch int, segment []float64) error {
	if ch < 0 || ch >= t.nChans {
		return fmt.Errorf("%w: %d of %d", ErrChannelRange, ch, t.nChans)
	}
	if len(segment) != t.segSamples {
		return fmt.Errorf("%w: got %d, want %d", ErrSegmentLength, len(segment), t.segSamples)
	}

	for i := range t.segPadded {
		t.segPadded[i] = 0
	}
	for i, v := range segment {
		t.segPadded[i] = complex(v, 0)
	}

	if err := t.plan.Forward(t.segSpec, t.segPadded); err != nil {
		return fmt.Errorf("tfr: forward FFT failed: %w", err)
	}

	for k := 0; k < t.nFreqs; k++ {
		spec := t.waveletSpec[k]
		for i := range t.prod {
			t.prod[i] = t.segSpec[i] * spec[i]
		}

		if err := t.plan.Inverse(t.convOut, t.prod); err != nil {
			return fmt.Errorf("tfr: inverse FFT failed: %w", err)
		}

		// Sample the analytic signal at the time bins, trimmed by half a
		// window at each edge; the kernel's group delay realigns the
		// convolution output with segment time.
		dst := t.spectrum[ch][k]
		for ti := 0; ti < t.nTimes; ti++ {
			x := t.convOut[t.trim+ti*t.stepSamples+t.center]
			dst[ti] = x
			t.reBuf[ti] = real(x)
			t.imBuf[ti] = imag(x)
		}

		vecmath.Power(t.powBuf, t.reBuf, t.imBuf)

		acc := t.pow[ch][k]
		for ti := range acc {
			acc[ti].Add(t.powBuf[ti])
		}
	}

	t.seen[ch] = true
	return nil
}

// FinishSegment folds the cross-spectra of the current segment into the
// running statistics for every (group 1, group 2) pair whose two channels
// were both added, then forgets the segment's spectra.
func (t *TFR) FinishSegment() {
	n1, n2 := t.p.NGroup1, t.p.NGroup2

	for i := 0; i < n1; i++ {
		if !t.seen[i] {
			continue
		}
		for j := 0; j < n2; j++ {
			if !t.seen[n1+j] {
				continue
			}

			comb := i*n2 + j
			for k := 0; k < t.nFreqs; k++ {
				x := t.spectrum[i][k]
				y := t.spectrum[n1+j][k]
				acc := t.cross[comb][k]
				for ti := range acc {
					acc[ti].Add(x[ti] * cmplx.Conj(y[ti]))
				}
			}
		}
	}

	for c := range t.seen {
		t.seen[c] = false
	}
}

// Coherence derives the magnitude-squared coherence per (pair, frequency)
// from the accumulated statistics, averaged over the trimmed time bins.
// It returns the mean and the standard deviation across time bins, both as
// nCombinations x nFreqs matrices with values in [0, 1].
//
// Bins without any measured power resolve to coherence 0. Estimates may
// exceed 1 slightly under exponential weighting (finite-sample artifact of
// the estimator); they are clamped.
func (t *TFR) Coherence() (mean, stddev [][]float64) {
	n1, n2 := t.p.NGroup1, t.p.NGroup2

	mean = make([][]float64, t.nCombs)
	stddev = make([][]float64, t.nCombs)

	zeroPower := 0
	for i := 0; i < n1; i++ {
		for j := 0; j < n2; j++ {
			comb := i*n2 + j
			mean[comb] = make([]float64, t.nFreqs)
			stddev[comb] = make([]float64, t.nFreqs)

			for k := 0; k < t.nFreqs; k++ {
				var sum, sumSq float64
				for ti := 0; ti < t.nTimes; ti++ {
					pxx := t.pow[i][k][ti].Average()
					pyy := t.pow[n1+j][k][ti].Average()
					pxy := t.cross[comb][k][ti].Average()

					c, ok := singleCoherence(pxx, pyy, pxy)
					if !ok {
						zeroPower++
					}
					sum += c
					sumSq += c * c
				}

				nt := float64(t.nTimes)
				m := sum / nt
				mean[comb][k] = m

				variance := sumSq/nt - m*m
				if variance > 0 {
					stddev[comb][k] = math.Sqrt(variance)
				}
			}
		}
	}

	if zeroPower > 0 {
		t.log.WithField("bins", zeroPower).
			Debug("coherence: zero-power bins resolved to 0")
	}

	return mean, stddev
}

// singleCoherence computes one magnitude-squared coherence value, clamped to
// [0, 1]. ok is false when the bin carried no power and the 0/0 ratio was
// resolved to 0.
func singleCoherence(pxx, pyy float64, pxy complex128) (c float64, ok bool) {
	denom := pxx * pyy
	if denom <= 0 {
		return 0, false
	}

	re := real(pxy)
	im := imag(pxy)
	return numeric.Clamp((re*re+im*im)/denom, 0, 1), true
}
