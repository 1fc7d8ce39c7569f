package patient

import "errors"

var (
	// ErrNotFound is returned when no patient matches the given id.
	ErrNotFound = errors.New("patient not found")
)

// ValidationError reports invalid caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
