package printer

import "errors"

// ErrInvalidColorMode is returned by ParseColorMode for unknown values.
var ErrInvalidColorMode = errors.New("printer: invalid color mode")
