package tfr

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// hannAt evaluates the raised-cosine Hann window at normalized position
// x in [0, 1].
func hannAt(x float64) float64 {
	return 0.5 - 0.5*math.Cos(2*math.Pi*x)
}

// makeWavelet builds a complex Hann-windowed wavelet of winSamples samples at
// center frequency freqHz, scaled to unit energy so that every bank entry
// contributes equally to the accumulated power.
func makeWavelet(freqHz, sampleRate float64, winSamples int) []complex128 {
	re := make([]float64, winSamples)
	im := make([]float64, winSamples)
	win := make([]float64, winSamples)

	center := float64(winSamples-1) / 2
	omega := 2 * math.Pi * freqHz / sampleRate

	for n := 0; n < winSamples; n++ {
		phase := omega * (float64(n) - center)
		re[n] = math.Cos(phase)
		im[n] = math.Sin(phase)
		win[n] = hannAt(float64(n) / float64(winSamples-1))
	}

	vecmath.MulBlockInPlace(re, win)
	vecmath.MulBlockInPlace(im, win)

	energy := 0.0
	for n := 0; n < winSamples; n++ {
		energy += re[n]*re[n] + im[n]*im[n]
	}

	if energy > 0 {
		scale := 1 / math.Sqrt(energy)
		vecmath.ScaleBlockInPlace(re, scale)
		vecmath.ScaleBlockInPlace(im, scale)
	}

	out := make([]complex128, winSamples)
	for n := 0; n < winSamples; n++ {
		out[n] = complex(re[n], im[n])
	}
	return out
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
