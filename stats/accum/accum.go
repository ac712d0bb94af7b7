// Package accum provides running weighted averages for streaming spectral
// statistics.
//
// Both accumulator types support two weighting policies through a single
// decay parameter alpha. With alpha = 0 every observation counts equally and
// the average is the plain cumulative mean. With 0 < alpha <= 1 older
// observations decay exponentially:
//
//	sum   = x + (1-alpha)*sum
//	count = 1 + (1-alpha)*count
//
// so the average tracks a step change in the input within O(1/alpha)
// observations while remaining an unbiased mean for stationary input.
package accum

// Real accumulates a weighted running average of real observations, such as
// per-bin auto-power.
type Real struct {
	sum   float64
	count float64
	alpha float64
}

// NewReal returns a Real accumulator with the given decay. alpha = 0 yields
// cumulative averaging.
func NewReal(alpha float64) Real {
	return Real{alpha: alpha}
}

// Add folds one observation into the running statistic.
func (a *Real) Add(x float64) {
	k := 1 - a.alpha
	a.sum = x + k*a.sum
	a.count = 1 + k*a.count
}

// Average returns the current weighted mean, or 0 before any observation.
func (a *Real) Average() float64 {
	if a.count > 0 {
		return a.sum / a.count
	}
	return 0
}

// Count returns the effective observation count. Under exponential decay the
// count saturates near 1/alpha.
func (a *Real) Count() float64 { return a.count }

// Reset discards all accumulated state, keeping the decay parameter.
func (a *Real) Reset() {
	a.sum = 0
	a.count = 0
}

// Complex accumulates a weighted running average of complex observations,
// such as per-bin cross-spectra.
type Complex struct {
	sum   complex128
	count float64
	alpha float64
}

// NewComplex returns a Complex accumulator with the given decay. alpha = 0
// yields cumulative averaging.
func NewComplex(alpha float64) Complex {
	return Complex{alpha: alpha}
}

// Add folds one observation into the running statistic.
func (a *Complex) Add(x complex128) {
	k := complex(1-a.alpha, 0)
	a.sum = x + k*a.sum
	a.count = 1 + (1-a.alpha)*a.count
}

// Average returns the current weighted mean, or 0 before any observation.
func (a *Complex) Average() complex128 {
	if a.count > 0 {
		return a.sum / complex(a.count, 0)
	}
	return 0
}

// Count returns the effective observation count.
func (a *Complex) Count() float64 { return a.count }

// Reset discards all accumulated state, keeping the decay parameter.
func (a *Complex) Reset() {
	a.sum = 0
	a.count = 0
}
