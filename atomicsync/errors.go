package atomicsync

import "errors"

var (
	// ErrWriterRegistered is returned when a second writer attempts to
	// register while one is already active.
	ErrWriterRegistered = errors.New("atomicsync: writer already registered")

	// ErrReaderRegistered is returned when a second reader attempts to
	// register while one is already active.
	ErrReaderRegistered = errors.New("atomicsync: reader already registered")

	// ErrBusy is returned by operations that require exclusive access while
	// a writer or reader is still registered.
	ErrBusy = errors.New("atomicsync: writer or reader still registered")
)
