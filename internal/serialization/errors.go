package serialization

import (
	"errors"
)

// Common errors.
var (
	ErrChecksumMismatch = errors.New("checksum mismatch: file may be corrupted")
	ErrMisaligned       = errors.New("view is not aligned for the requested element type")
)
