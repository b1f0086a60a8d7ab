package storage

import "fmt"

// StorageError is any database failure that is not an invariant
// violation: I/O, locking, schema, scan.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ReferentialError is a write aimed at a row that does not exist, such
// as entries for a deleted feed. It signals a caller bug rather than a
// database problem.
type ReferentialError struct {
	Op string
	ID int64
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("storage %s: referenced row %d does not exist", e.Op, e.ID)
}
