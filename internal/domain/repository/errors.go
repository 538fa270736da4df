package repository

import "errors"

var (
	// ErrDefaultsNotFound is returned when no defaults record has been stored yet.
	ErrDefaultsNotFound = errors.New("defaults not found")

	// ErrObjectNotFound is returned when a stored object does not exist.
	ErrObjectNotFound = errors.New("object not found")

	// ErrBucketNotFound is returned when the configured bucket is missing.
	ErrBucketNotFound = errors.New("bucket not found")
)
