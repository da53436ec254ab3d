package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// ErrMalformedLine marks a source line that lacks a required delimiter
	// or token.
	ErrMalformedLine = errors.New("malformed line")
	// ErrUnreadableSource marks a source file or directory that cannot be
	// opened or read.
	ErrUnreadableSource = errors.New("unreadable source")
	// ErrSerialization marks an output artifact that cannot be written.
	ErrSerialization = errors.New("serialization failure")
)

// LineError describes why a single source line was rejected.
type LineError struct {
	Path   string
	Line   int // 1-based
	Text   string
	Reason string
}

func (e *LineError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
}

func (e *LineError) Unwrap() error { return ErrMalformedLine }

// NewLineError creates a LineError with no position; the caller that knows
// the file and line number fills them in.
func NewLineError(text, reason string) *LineError {
	return &LineError{Text: text, Reason: reason}
}
