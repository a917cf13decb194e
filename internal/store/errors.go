package store

import "errors"

var (
	// ErrNotFound is returned when an update or delete targets an id the
	// mirror does not know.
	ErrNotFound = errors.New("not found")

	// ErrCapacityExceeded is returned when an insert would push a bounded
	// collection past its capacity.
	ErrCapacityExceeded = errors.New("capacity exceeded")
)
