package atomicsync

import "sync/atomic"

// empty marks an index cell that currently holds no slot.
const empty = -1

// Synchronizer coordinates wait-free single-writer/single-reader handoff of
// three payload slots, identified by the indices 0, 1 and 2.
//
// The three slot indices are distributed over five cells: the shared atomic
// cells readyToRead, readyToWrite and readyToWrite2, plus the private
// writerIndex and readerIndex. Since only three slots exist, at most two of
// the five cells are empty at once; in particular writerIndex, readyToWrite
// and readyToWrite2 can never all be empty, which is what makes advanceWriter
// wait-free. Only the writer empties the two readyToWrite cells and only the
// reader empties readyToRead, so neither side can be starved by the other.
//
// Go's sync/atomic operations are sequentially consistent, so the index
// exchange also orders the payload writes of the publishing side before the
// payload reads of the pulling side.
type Synchronizer struct {
	readyToRead   atomic.Int32 // filled by the writer, emptied by the reader
	readyToWrite  atomic.Int32 // returned by the reader, taken by the writer
	readyToWrite2 atomic.Int32 // overflow cell for readyToWrite

	writerIndex int32 // owned by the registered writer
	readerIndex int32 // owned by the registered reader

	writers atomic.Int32
	readers atomic.Int32
}

// NewSynchronizer returns a Synchronizer in its initial state: no slot
// published, slot 2 staged for the writer, slots 0 and 1 parked as writable.
func NewSynchronizer() *Synchronizer {
	s := &Synchronizer{}
	s.resetIndices()
	return s
}

func (s *Synchronizer) resetIndices() {
	s.readyToRead.Store(empty)
	s.readyToWrite.Store(0)
	s.readyToWrite2.Store(1)
	s.writerIndex = 2
	s.readerIndex = empty
}

// Reset restores the initial index distribution, discarding any published but
// unread slot. It fails with ErrBusy if a writer or reader is registered; the
// caller must first make sure both roles have released.
func (s *Synchronizer) Reset() error {
	if !s.acquireWriter() {
		return ErrBusy
	}
	if !s.acquireReader() {
		s.releaseWriter()
		return ErrBusy
	}

	s.resetIndices()

	s.releaseReader()
	s.releaseWriter()
	return nil
}

// HasUpdate reports whether a published slot is waiting for the reader.
// Safe to call from any goroutine.
func (s *Synchronizer) HasUpdate() bool {
	return s.readyToRead.Load() != empty
}

// acquireWriter registers the calling goroutine as the writer. It fails if a
// writer is already registered; this guards against two concurrent producers,
// not against the reader.
func (s *Synchronizer) acquireWriter() bool {
	return s.writers.CompareAndSwap(0, 1)
}

func (s *Synchronizer) releaseWriter() {
	s.writers.Store(0)
}

func (s *Synchronizer) acquireReader() bool {
	return s.readers.CompareAndSwap(0, 1)
}

func (s *Synchronizer) releaseReader() {
	s.readers.Store(0)
}

// advanceWriter ensures the writer holds a slot, taking one from the
// readyToWrite cells if necessary. Must only be called by the registered
// writer.
func (s *Synchronizer) advanceWriter() {
	if s.writerIndex != empty {
		return
	}

	s.writerIndex = s.readyToWrite.Swap(empty)
	if s.writerIndex == empty {
		s.writerIndex = s.readyToWrite2.Swap(empty)
		if s.writerIndex == empty {
			// writerIndex, readyToWrite and readyToWrite2 cannot all be
			// empty: only three of the five cells can be occupied and only
			// the writer empties these three. Reaching this point means the
			// slot accounting is corrupt.
			panic("atomicsync: slot invariant violated (no writable slot)")
		}
	}
}

// publish hands the writer's current slot to the reader by exchanging it into
// readyToRead, then immediately stages a fresh writable slot. An unread
// previous publication is reclaimed as the next write target. Must only be
// called by the registered writer.
func (s *Synchronizer) publish() {
	if s.writerIndex == empty {
		// Invariant: writerIndex is non-empty except inside advanceWriter.
		panic("atomicsync: publish without a held slot")
	}

	s.writerIndex = s.readyToRead.Swap(s.writerIndex)
	s.advanceWriter()
}

// advanceReader takes a newly published slot if one is available, parking the
// previously held slot in whichever readyToWrite cell is free. It reports
// whether a new version was taken. Must only be called by the registered
// reader.
func (s *Synchronizer) advanceReader() bool {
	// readyToRead can be refilled by the writer after this check, but never
	// emptied: the writer only ever exchanges non-empty indices into it.
	if s.readyToRead.Load() == empty {
		return false
	}

	if s.readerIndex != empty {
		if !s.readyToWrite.CompareAndSwap(empty, s.readerIndex) {
			// readyToWrite is occupied, so readyToWrite2 must be free:
			// readerIndex, readyToRead and readyToWrite already account for
			// three slots.
			s.readyToWrite2.Store(s.readerIndex)
		}
	}

	s.readerIndex = s.readyToRead.Swap(empty)
	return true
}
