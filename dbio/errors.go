package dbio

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when a closed Cursor, Writer or Statement is used.
	ErrClosed = errors.New("dbio: closed")
	// ErrNoRow is returned by Row getters before the first Next or after the last row.
	ErrNoRow = errors.New("dbio: no current row")
	// ErrReadOnly is returned when a writer is requested for a read-only source.
	ErrReadOnly = errors.New("dbio: source is read-only")
	// ErrUnknownColumn is returned for a label the result set does not have.
	ErrUnknownColumn = errors.New("dbio: unknown column")
	// ErrIndexOutOfRange is returned for a position outside the row or parameter list.
	ErrIndexOutOfRange = errors.New("dbio: index out of range")
	// ErrAutoCommit is returned by Commit and Rollback while auto-commit is on.
	ErrAutoCommit = errors.New("dbio: auto-commit is enabled")
	// ErrParameterNotSet is returned when a statement runs with a gap in its parameters.
	ErrParameterNotSet = errors.New("dbio: parameter not set")
)

// UnknownSchemeError is returned for a connection URL no opener is registered for.
type UnknownSchemeError struct {
	Scheme    string
	Available []string
}

func (e *UnknownSchemeError) Error() string {
	return fmt.Sprintf("dbio: unknown scheme %q (available: %v)", e.Scheme, e.Available)
}
