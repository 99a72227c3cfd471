package compatinfo

import "errors"

// Sentinel errors.
var (
	// ErrConfigNotFound is returned when no .compatinfo.yaml is found.
	ErrConfigNotFound = errors.New("compatinfo: no .compatinfo.yaml found")

	// ErrInvalidConfig is returned when a config file cannot be used.
	ErrInvalidConfig = errors.New("compatinfo: invalid config")
)
