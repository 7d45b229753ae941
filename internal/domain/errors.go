package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected signals an operation attempted before a store was connected.
	ErrNotConnected = errors.New("not connected")
	// ErrRecordNotFound signals a missing restaurant record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateRecord signals a record whose id already exists in the store.
	ErrDuplicateRecord = errors.New("duplicate record")
	// ErrInvalidCoordinate signals a partial or out-of-range coordinate.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrGradeIndexOutOfRange signals a grade position outside the grades list.
	ErrGradeIndexOutOfRange = errors.New("grade index out of range")
	// ErrInvalidRecord signals an import record that cannot be inserted.
	ErrInvalidRecord = errors.New("invalid record")
)

// LineError attaches a 1-based source line number to an import failure.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err.Error())
}

func (e *LineError) Unwrap() error { return e.Err }

// NewLineError creates a LineError.
func NewLineError(line int, err error) error {
	return &LineError{Line: line, Err: err}
}
