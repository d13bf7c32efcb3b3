package repositories

import "errors"

var (
	// ErrNotFound is returned when no document matches the requested id or key
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique index rejects a write
	ErrDuplicate = errors.New("duplicate record")
)
