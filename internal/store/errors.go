package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a mutation targets a record that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable wraps every failure to reach or query the backing database,
	// including timeouts.
	ErrUnavailable = errors.New("storage unavailable")
)

// unavailable tags a driver error as ErrUnavailable while keeping the cause.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
