package storage

import (
	"errors"
)

var (
	// ErrNotFound is returned when a lookup by id or slug matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateIdentifier is returned when the unique constraint on an
	// identifier or slug column fires. With 128-bit random identifiers
	// this is practically unreachable; it is not retried.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
)
