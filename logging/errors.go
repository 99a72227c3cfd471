package logging

import "errors"

// Sentinel errors for the logging package.
var (
	// ErrUnknownLevel is returned when a level name cannot be parsed.
	ErrUnknownLevel = errors.New("logging: unknown level")

	// ErrNotifierUnavailable is returned when a notification destination
	// cannot be used on this machine.
	ErrNotifierUnavailable = errors.New("logging: notifier unavailable")
)
