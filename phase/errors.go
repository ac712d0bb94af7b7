package phase

import "errors"

var (
	// ErrBadParams indicates an invalid order, length or stride combination.
	ErrBadParams = errors.New("phase: invalid model parameters")

	// ErrBadInput indicates a fit or prediction call with mis-sized slices.
	ErrBadInput = errors.New("phase: input does not match model dimensions")
)
