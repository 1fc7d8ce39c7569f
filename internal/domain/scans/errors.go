package scans

import "errors"

var (
	// ErrNotFound is returned when no scan matches the given id.
	ErrNotFound = errors.New("scan not found")
)

// ValidationError reports invalid caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
