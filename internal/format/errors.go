package format

import (
	"errors"
	"fmt"
)

// Error classes. Concrete errors match them through errors.Is.
var (
	ErrFormat     = errors.New("malformed input")
	ErrBounds     = errors.New("insufficient capacity")
	ErrFileAccess = errors.New("file access failed")
)

// FormatError reports a malformed text line or binary header.
type FormatError struct {
	Line   int    // 1-based line number, 0 for binary payloads
	Field  string // Field involved (e.g. "row", "value", "header")
	Text   string // Offending text, if any
	Reason string // What is wrong with it
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	var msg string
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: ", e.Line)
	}
	if e.Field != "" {
		msg += e.Field + ": "
	}
	msg += e.Reason
	if e.Text != "" {
		msg += fmt.Sprintf(" (%q)", e.Text)
	}
	return msg
}

// Is makes errors.Is(err, ErrFormat) true.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// BoundsError reports declared dimensions or a destination that cannot hold the data.
type BoundsError struct {
	What string // What was being sized (e.g. "arena region", "row index")
	Need int64  // Required size or offending index
	Have int64  // Available size or limit
}

// Error implements the error interface.
func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s: need %d, have %d", e.What, e.Need, e.Have)
}

// Is makes errors.Is(err, ErrBounds) true.
func (e *BoundsError) Is(target error) bool { return target == ErrBounds }

// FileAccessError reports a missing, unreadable or unwritable file.
type FileAccessError struct {
	Op   string // "open", "read", "write", ...
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FileAccessError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFileAccess) true.
func (e *FileAccessError) Is(target error) bool { return target == ErrFileAccess }

// CheckBounds returns a BoundsError when need exceeds have.
func CheckBounds(what string, need, have int) error {
	if need > have {
		return &BoundsError{What: what, Need: int64(need), Have: int64(have)}
	}
	return nil
}
