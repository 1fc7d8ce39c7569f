package prescription

import "errors"

var (
	// ErrNotFound is returned when no prescription matches the given id.
	ErrNotFound = errors.New("prescription not found")
)

// ValidationError reports invalid caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
