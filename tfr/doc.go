// Package tfr implements a cumulative time-frequency representation for
// streaming coherence estimation between two channel groups.
//
// Each fixed-length segment of samples is convolved with a bank of complex
// Hann-windowed wavelets, one per frequency of interest, each scaled to unit
// energy. Instantaneous per-channel power and per-pair cross-spectra are
// folded into weighted running averages that persist across segments, and
// magnitude-squared coherence is derived from the accumulated statistics:
//
//	C_xy(f) = |E[X Y*]|^2 / (E[|X|^2] E[|Y|^2])
//
// Convolution runs through FFT plans created once at construction time, so
// processing a segment performs no allocation beyond the returned result
// slices.
package tfr
