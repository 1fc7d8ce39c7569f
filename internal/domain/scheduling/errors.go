package scheduling

import "errors"

var (
	// ErrNotFound is returned when no booking matches the given id.
	ErrNotFound = errors.New("booking not found")

	// ErrConflict is returned when a booking window collides with an
	// existing booking for the same patient or doctor.
	ErrConflict = errors.New("booking conflicts with an existing booking")
)

// ValidationError reports invalid caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
