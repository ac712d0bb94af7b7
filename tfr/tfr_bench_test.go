package tfr

import (
	"math/rand"
	"testing"
)

func BenchmarkAddSegment(b *testing.B) {
	t, err := New(testParams(0))
	if err != nil {
		b.Fatal(err)
	}

	rng := rand.New(rand.NewSource(1))
	seg := make([][]float64, t.NChannels())
	for ch := range seg {
		seg[ch] = make([]float64, t.SegmentSamples())
		for i := range seg[ch] {
			seg[ch][i] = rng.NormFloat64()
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for ch := range seg {
			if err := t.AddChannel(ch, seg[ch]); err != nil {
				b.Fatal(err)
			}
		}
		t.FinishSegment()
	}
}

func BenchmarkCoherence(b *testing.B) {
	t, err := New(testParams(0))
	if err != nil {
		b.Fatal(err)
	}

	rng := rand.New(rand.NewSource(2))
	seg := make([]float64, t.SegmentSamples())
	for ch := 0; ch < t.NChannels(); ch++ {
		for i := range seg {
			seg[i] = rng.NormFloat64()
		}
		if err := t.AddChannel(ch, seg); err != nil {
			b.Fatal(err)
		}
	}
	t.FinishSegment()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		t.Coherence()
	}
}
