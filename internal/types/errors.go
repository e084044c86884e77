package types

import "errors"

// Run failure kinds. Every one of them is fatal; callers wrap them with %w and
// context so errors.Is can classify the failure at the top of the pipeline.
var (
	// ErrMalformedInput is returned for an unparsable row, id, date or flag.
	ErrMalformedInput = errors.New("malformed input")

	// ErrIOFailure is returned when reading or writing any file fails.
	ErrIOFailure = errors.New("i/o failure")

	// ErrUnsupportedCombination is returned when a caller asks for a derived
	// series that is not defined for the requested bucket.
	ErrUnsupportedCombination = errors.New("unsupported combination")
)
