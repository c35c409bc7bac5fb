package model

import (
	"errors"
	"fmt"
)

var (
	// ErrBadDate marks a history row whose date cannot be parsed.
	ErrBadDate = errors.New("unparsable date")
	// ErrBadPrice marks a price cell that is neither numeric nor a missing marker.
	ErrBadPrice = errors.New("non-numeric price")
	// ErrDuplicateDate marks a series with two readings for the same day.
	ErrDuplicateDate = errors.New("duplicate date")
	// ErrInsufficientHistory is reported as a status, never as a load failure.
	ErrInsufficientHistory = errors.New("insufficient history")
)

// MalformedRecordError describes a source record that aborts computation for a metal.
type MalformedRecordError struct {
	Metal  Metal
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if e.Metal == "" {
		return fmt.Sprintf("malformed record at line %d, column %q (%q): %v", e.Line, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("malformed %s record at line %d, column %q (%q): %v", e.Metal, e.Line, e.Column, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }
