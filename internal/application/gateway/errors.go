package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no row matches an id or lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert or update breaks a unique column.
	ErrDuplicate = errors.New("duplicate record")
	// ErrUnknownColumn is returned for column names the table does not have.
	ErrUnknownColumn = errors.New("unknown column")
)

// Error carries the failing operation and table around the store's error.
type Error struct {
	Op    string
	Table string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
