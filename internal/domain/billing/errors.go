package billing

import "errors"

var (
	// ErrNotFound is returned when no bill matches the given id.
	ErrNotFound = errors.New("bill not found")
)

// ValidationError reports invalid caller input. When a payment is rejected
// for exceeding the balance, Due carries the outstanding amount so the
// caller can retry with a valid figure.
type ValidationError struct {
	Message string
	Due     *float64
}

func (e *ValidationError) Error() string { return e.Message }
