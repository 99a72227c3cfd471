package runner

import "errors"

// Sentinel errors for the runner package.
var (
	// ErrMaxFailures is returned when the max failure limit is reached.
	ErrMaxFailures = errors.New("runner: max failures reached")

	// ErrMalformedEvent is reported for input lines that are not test events.
	ErrMalformedEvent = errors.New("runner: malformed event")

	// ErrUnknownFormat is returned by NewFormatter for unknown names.
	ErrUnknownFormat = errors.New("runner: unknown format")

	// Test errors for use in unit tests.
	errTestStop = errors.New("test: stop")
)
