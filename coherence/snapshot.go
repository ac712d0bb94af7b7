package coherence

import "github.com/google/uuid"

// Pair identifies one (group 1, group 2) channel combination by the external
// channel indices of its members.
type Pair struct {
	ChanX int // group 1 member
	ChanY int // group 2 member
}

// Snapshot is one published coherence estimate. Sinks receive it read-only
// through an atomicsync reader and must not retain the slices across pulls;
// the backing slot is recycled by later publishes.
type Snapshot struct {
	// ID changes on every publish, so a sink can detect "nothing new this
	// cycle" without comparing payloads.
	ID uuid.UUID

	// Generation counts publishes since the engine was (re)configured.
	Generation uint64

	// Segments is the number of segments folded into the statistics so
	// far.
	Segments uint64

	// Frequencies is the frequency grid in Hz; Mean[p][k] and Std[p][k]
	// are the coherence mean and across-time-bin standard deviation for
	// Pairs[p] at Frequencies[k], each in [0, 1].
	Frequencies []float64
	Pairs       []Pair
	Mean        [][]float64
	Std         [][]float64
}

// Clone returns a deep copy that remains valid after the sink's reader
// moves on.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		ID:          s.ID,
		Generation:  s.Generation,
		Segments:    s.Segments,
		Frequencies: append([]float64(nil), s.Frequencies...),
		Pairs:       append([]Pair(nil), s.Pairs...),
		Mean:        make([][]float64, len(s.Mean)),
		Std:         make([][]float64, len(s.Std)),
	}
	for i := range s.Mean {
		out.Mean[i] = append([]float64(nil), s.Mean[i]...)
	}
	for i := range s.Std {
		out.Std[i] = append([]float64(nil), s.Std[i]...)
	}
	return out
}

// newSnapshotSlot preallocates a snapshot of the given geometry so that
// publishing never allocates.
func newSnapshotSlot(freqs []float64, pairs []Pair) Snapshot {
	s := Snapshot{
		Frequencies: append([]float64(nil), freqs...),
		Pairs:       append([]Pair(nil), pairs...),
		Mean:        make([][]float64, len(pairs)),
		Std:         make([][]float64, len(pairs)),
	}
	for i := range pairs {
		s.Mean[i] = make([]float64, len(freqs))
		s.Std[i] = make([]float64, len(freqs))
	}
	return s
}
