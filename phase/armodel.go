package phase

import "fmt"

// Modeler estimates autoregressive coefficients with Burg's maximum-entropy
// recursion (Kay 1988, appendix 8D). Dimensions are fixed at construction so
// that repeated fits on a streaming signal allocate nothing. A Modeler is
// not safe for concurrent use.
type Modeler struct {
	order         int
	inputLength   int
	stride        int
	stridedLength int

	per []float64 // backward prediction error
	pef []float64 // forward prediction error
	h   []float64 // coefficient update scratch
}

// NewModeler builds a Modeler for an AR model of the given order over
// inputLength samples, reading every stride-th sample. The strided length
// must exceed the order.
func NewModeler(order, inputLength, stride int) (*Modeler, error) {
	m := &Modeler{}
	if err := m.SetParams(order, inputLength, stride); err != nil {
		return nil, err
	}
	return m, nil
}

// SetParams resizes the model. On error the previous dimensions remain in
// effect.
func (m *Modeler) SetParams(order, inputLength, stride int) error {
	if stride < 1 {
		return fmt.Errorf("%w: stride %d < 1", ErrBadParams, stride)
	}
	stridedLength := (inputLength + stride - 1) / stride
	if order < 1 {
		return fmt.Errorf("%w: order %d < 1", ErrBadParams, order)
	}
	if stridedLength < order+1 {
		return fmt.Errorf("%w: %d strided samples for order %d",
			ErrBadParams, stridedLength, order)
	}

	m.order = order
	m.inputLength = inputLength
	m.stride = stride
	m.stridedLength = stridedLength
	m.per = make([]float64, stridedLength)
	m.pef = make([]float64, stridedLength)
	m.h = make([]float64, order-1)
	return nil
}

// Order returns the model order.
func (m *Modeler) Order() int { return m.order }

// InputLength returns the expected fit window length in samples.
func (m *Modeler) InputLength() int { return m.inputLength }

// Fit estimates the AR coefficients of series and writes them to coef.
// series must have the configured input length and coef the model order.
// The sign convention matches Predict: x[t] ~ -sum(coef[k] * x[t-1-k]).
func (m *Modeler) Fit(series, coef []float64) error {
	if len(series) != m.inputLength {
		return fmt.Errorf("%w: series length %d, want %d",
			ErrBadInput, len(series), m.inputLength)
	}
	if len(coef) != m.order {
		return fmt.Errorf("%w: coef length %d, want order %d",
			ErrBadInput, len(coef), m.order)
	}

	for i := range m.per {
		m.per[i] = 0
		m.pef[i] = 0
	}

	for n := 1; n <= m.order; n++ {
		var sn, sd float64
		jj := m.stridedLength - n

		for j := 0; j < jj; j++ {
			t1 := series[m.stride*(j+n)] + m.pef[j]
			t2 := series[m.stride*j] + m.per[j]
			sn -= 2 * t1 * t2
			sd += t1*t1 + t2*t2
		}

		t1 := sn / sd
		coef[n-1] = t1
		if n != 1 {
			for j := 1; j < n; j++ {
				m.h[j-1] = coef[j-1] + t1*coef[n-j-1]
			}
			copy(coef[:n-1], m.h[:n-1])
			jj--
		}

		for j := 0; j < jj; j++ {
			m.per[j] += t1*m.pef[j] + t1*series[m.stride*(j+n)]
			m.pef[j] = m.pef[j+1] + t1*m.per[j+1] + t1*series[m.stride*(j+1)]
		}
	}
	return nil
}

// Predict extends a signal forward. history holds the most recent samples
// (oldest first) and must contain at least len(coef) samples; out receives
// the extrapolation, each sample computed from the fitted coefficients and
// the preceding order samples (fed back as they are produced).
func Predict(out, history, coef []float64) error {
	order := len(coef)
	if len(history) < order {
		return fmt.Errorf("%w: history length %d < order %d",
			ErrBadInput, len(history), order)
	}
	for s := range out {
		acc := 0.0
		for k := 0; k < order; k++ {
			i := s - 1 - k
			var prev float64
			if i < 0 {
				prev = history[len(history)+i]
			} else {
				prev = out[i]
			}
			acc -= coef[k] * prev
		}
		out[s] = acc
	}
	return nil
}
