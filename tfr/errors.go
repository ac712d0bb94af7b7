package tfr

import "errors"

var (
	// ErrBadParams indicates structurally invalid construction parameters.
	ErrBadParams = errors.New("tfr: invalid parameters")

	// ErrChannelRange indicates a channel index outside the configured
	// group layout.
	ErrChannelRange = errors.New("tfr: channel index out of range")

	// ErrSegmentLength indicates a segment whose length does not match the
	// configured segment size.
	ErrSegmentLength = errors.New("tfr: segment length mismatch")

	// ErrWindowTooLong indicates a window that does not fit inside the
	// configured segment at the given sample rate.
	ErrWindowTooLong = errors.New("tfr: window longer than segment")
)
