package coherence

import "errors"

var (
	// ErrBadSettings indicates an invalid configuration surface.
	ErrBadSettings = errors.New("coherence: invalid settings")

	// ErrGroupsOverlap indicates a channel assigned to both groups.
	ErrGroupsOverlap = errors.New("coherence: channel groups overlap")

	// ErrGroupEmpty indicates a group with no usable channels left.
	ErrGroupEmpty = errors.New("coherence: channel group is empty")

	// ErrRunning is returned when reconfiguration is attempted while the
	// worker is active.
	ErrRunning = errors.New("coherence: engine is running")
)
