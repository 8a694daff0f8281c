package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrReferenceMissing is returned when a row points at a parent that
	// does not exist.
	ErrReferenceMissing = errors.New("referenced row does not exist")
)
