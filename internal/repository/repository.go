// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, memory) inside this directory.
package repository

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("duplicate record")

	// ErrVersionConflict is returned when a version append lost a race with another
	// append on the same document.
	ErrVersionConflict = errors.New("version conflict")
)

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
