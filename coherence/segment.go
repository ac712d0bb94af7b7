package coherence

import "github.com/cwbudde/algo-coherence/atomicsync"

// segment is the triple-buffered payload handed from the producer to the
// worker: one fixed-length sample array per active channel, in combined
// group order.
type segment struct {
	data [][]float64 // nChans x segSamples
}

func newSegmentSlot(nChans, segSamples int) func() segment {
	return func() segment {
		s := segment{data: make([][]float64, nChans)}
		for i := range s.data {
			s.data[i] = make([]float64, segSamples)
		}
		return s
	}
}

// Producer fills per-channel segments from the real-time callback and
// publishes each segment once every channel is full. All methods must be
// called from a single goroutine, and the hot path (Append) performs no
// allocation, locking or blocking.
type Producer struct {
	groups     *groups
	writer     *atomicsync.Writer[segment]
	segSamples int
	filled     []int // per combined channel, samples written this epoch
}

// Producer registers the real-time side of the engine and stages the first
// segment slot. Only one producer may exist at a time; a second call fails
// with atomicsync.ErrWriterRegistered until Release is called.
func (e *Engine) Producer() (*Producer, error) {
	w, err := e.segments.AcquireWriter()
	if err != nil {
		return nil, err
	}
	return &Producer{
		groups:     e.groups,
		writer:     w,
		segSamples: e.tf.SegmentSamples(),
		filled:     make([]int, e.groups.nChannels()),
	}, nil
}

// Append copies a block of samples for one external channel into the
// current segment at the channel's epoch offset. A block exceeding the
// remaining capacity is truncated and the excess dropped (drop-tail); a
// channel outside both groups is ignored.
//
// When every channel has accumulated a full segment the segment is
// published and the epoch restarts; Append reports whether this call
// published.
func (p *Producer) Append(channel int, block []float64) bool {
	idx, ok := p.groups.combinedIndex(channel)
	if !ok {
		return false
	}

	off := p.filled[idx]
	remain := p.segSamples - off
	if remain > 0 {
		n := len(block)
		if n > remain {
			n = remain
		}
		copy(p.writer.Get().data[idx][off:off+n], block[:n])
		p.filled[idx] = off + n
	}

	for _, f := range p.filled {
		if f < p.segSamples {
			return false
		}
	}

	p.writer.Publish()
	for i := range p.filled {
		p.filled[i] = 0
	}
	return true
}

// Filled returns how many samples the given external channel has
// accumulated in the current epoch.
func (p *Producer) Filled(channel int) int {
	idx, ok := p.groups.combinedIndex(channel)
	if !ok {
		return 0
	}
	return p.filled[idx]
}

// Release abandons the current epoch and clears the writer registration.
func (p *Producer) Release() {
	p.writer.Release()
}
