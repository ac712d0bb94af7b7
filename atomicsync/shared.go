package atomicsync

// Shared owns three instances of a payload type T plus the Synchronizer that
// exchanges them between one writer and one reader goroutine.
//
// The zero value is not usable; construct with New.
type Shared[T any] struct {
	slots [3]T
	sync  Synchronizer
}

// New returns a Shared whose three slots are produced by newSlot. All three
// instances should be structurally identical (same buffer sizes and so on),
// since the writer and reader cycle through them interchangeably.
func New[T any](newSlot func() T) *Shared[T] {
	s := &Shared[T]{}
	s.sync.resetIndices()
	for i := range s.slots {
		s.slots[i] = newSlot()
	}
	return s
}

// HasUpdate reports whether a published version is waiting to be pulled.
func (s *Shared[T]) HasUpdate() bool {
	return s.sync.HasUpdate()
}

// Reset restores the synchronizer's initial state. It fails with ErrBusy
// while a writer, reader or exclusive handle is held.
func (s *Shared[T]) Reset() error {
	return s.sync.Reset()
}

// Apply runs fn on each of the three slots under exclusive registration, for
// resizing or reconfiguring the payloads. It fails with ErrBusy while any
// handle is held.
func (s *Shared[T]) Apply(fn func(*T)) error {
	ex, err := s.AcquireExclusive()
	if err != nil {
		return err
	}
	defer ex.Release()

	for i := range s.slots {
		fn(&s.slots[i])
	}
	return nil
}

// Writer is a scoped handle granting mutable access to one slot at a time.
// It must only be used from a single goroutine.
type Writer[T any] struct {
	owner    *Shared[T]
	released bool
}

// AcquireWriter registers the calling goroutine as the writer and stages a
// writable slot. It fails with ErrWriterRegistered if a writer (or an
// exclusive handle) is already registered; concurrent re-acquisition of the
// role is a programming error, not a recoverable condition.
func (s *Shared[T]) AcquireWriter() (*Writer[T], error) {
	if !s.sync.acquireWriter() {
		return nil, ErrWriterRegistered
	}
	s.sync.advanceWriter()
	return &Writer[T]{owner: s}, nil
}

// Get returns the slot currently checked out for writing. The pointer is
// only valid until the next Publish call.
func (w *Writer[T]) Get() *T {
	if w.released {
		panic("atomicsync: Writer used after Release")
	}
	return &w.owner.slots[w.owner.sync.writerIndex]
}

// Publish makes the current slot available to the reader and checks out a
// fresh slot, without releasing the writer registration. The same goroutine
// can keep writing and publishing indefinitely.
func (w *Writer[T]) Publish() {
	if w.released {
		panic("atomicsync: Writer used after Release")
	}
	w.owner.sync.publish()
}

// Release clears the writer registration. The handle must not be used
// afterwards. Release does not publish pending writes.
func (w *Writer[T]) Release() {
	if w.released {
		return
	}
	w.released = true
	w.owner.sync.releaseWriter()
}

// Reader is a scoped handle granting read-only access to the most recently
// pulled slot. It must only be used from a single goroutine.
type Reader[T any] struct {
	owner    *Shared[T]
	released bool
}

// AcquireReader registers the calling goroutine as the reader. It fails with
// ErrReaderRegistered if a reader (or an exclusive handle) is already
// registered.
func (s *Shared[T]) AcquireReader() (*Reader[T], error) {
	if !s.sync.acquireReader() {
		return nil, ErrReaderRegistered
	}
	return &Reader[T]{owner: s}, nil
}

// Pull takes the latest published version if one is available, reporting
// whether the held slot changed. When it returns false the reader simply
// keeps whatever version it already had.
func (r *Reader[T]) Pull() bool {
	if r.released {
		panic("atomicsync: Reader used after Release")
	}
	return r.owner.sync.advanceReader()
}

// HasUpdate reports whether a Pull would take a new version.
func (r *Reader[T]) HasUpdate() bool {
	return r.owner.sync.HasUpdate()
}

// Ready reports whether the reader holds a version at all. Before the first
// successful Pull there is nothing to read.
func (r *Reader[T]) Ready() bool {
	return r.owner.sync.readerIndex != empty
}

// Get returns the slot the reader currently holds. It panics if no version
// has ever been pulled; check Ready (or the result of Pull) first.
func (r *Reader[T]) Get() *T {
	if r.released {
		panic("atomicsync: Reader used after Release")
	}
	idx := r.owner.sync.readerIndex
	if idx == empty {
		panic("atomicsync: Get before first successful Pull")
	}
	return &r.owner.slots[idx]
}

// Release clears the reader registration. The handle must not be used
// afterwards.
func (r *Reader[T]) Release() {
	if r.released {
		return
	}
	r.released = true
	r.owner.sync.releaseReader()
}

// Exclusive registers as both writer and reader at once, locking out
// ordinary traffic. Use it for reconfiguration that must not race with a
// concurrent producer or consumer.
type Exclusive[T any] struct {
	owner    *Shared[T]
	released bool
}

// AcquireExclusive registers both roles. It fails with ErrBusy if either
// role is currently held.
func (s *Shared[T]) AcquireExclusive() (*Exclusive[T], error) {
	if !s.sync.acquireWriter() {
		return nil, ErrBusy
	}
	if !s.sync.acquireReader() {
		s.sync.releaseWriter()
		return nil, ErrBusy
	}
	return &Exclusive[T]{owner: s}, nil
}

// Slot returns the i-th underlying slot (0..2).
func (e *Exclusive[T]) Slot(i int) *T {
	if e.released {
		panic("atomicsync: Exclusive used after Release")
	}
	return &e.owner.slots[i]
}

// Reset restores the synchronizer's initial index distribution while the
// exclusive registration is held.
func (e *Exclusive[T]) Reset() {
	if e.released {
		panic("atomicsync: Exclusive used after Release")
	}
	e.owner.sync.resetIndices()
}

// Release clears both registrations. The handle must not be used afterwards.
func (e *Exclusive[T]) Release() {
	if e.released {
		return
	}
	e.released = true
	e.owner.sync.releaseReader()
	e.owner.sync.releaseWriter()
}
