package storage

import "errors"

// Storage errors shared by all implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrJobConflict is returned by Enqueue when a non-terminal job
	// already exists for the same (token, jobType) pair.
	ErrJobConflict = errors.New("job already in flight for token and job type")

	// ErrStateConflict is returned when a state transition is attempted
	// from a state that does not allow it.
	ErrStateConflict = errors.New("state conflict")
)
