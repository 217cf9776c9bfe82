// Package repository holds the errors shared by the storage adapters.
package repository

import "errors"

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict indicates a conditional write lost against a
	// concurrent writer.
	ErrVersionConflict = errors.New("version conflict")

	// ErrDuplicate indicates a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
)
