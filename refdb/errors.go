package refdb

import "errors"

// Sentinel errors for the refdb package.
var (
	// ErrNotFound is returned when the version metadata (or the template
	// itself) is missing.
	ErrNotFound = errors.New("refdb: not found")

	// ErrUnsupportedPlatform is returned when the running platform cannot
	// host the reference database.
	ErrUnsupportedPlatform = errors.New("refdb: platform does not satisfy minimum requirements")
)
