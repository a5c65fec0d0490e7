package store

import "errors"

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyName is returned when a version is created with an empty name.
	ErrEmptyName = errors.New("version name is empty")
)
