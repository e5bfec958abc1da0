package csvio

import "errors"

var (
	// ErrClosed is returned when a cursor or writer is used after Close.
	ErrClosed = errors.New("csvio: use of closed resource")

	// ErrNoMoreRows is returned by Next once every record has been read.
	ErrNoMoreRows = errors.New("csvio: no more rows")

	// ErrNoHeader is returned by label access on a cursor opened without a header.
	ErrNoHeader = errors.New("csvio: row has no header")

	// ErrUnknownColumn is returned for a label that is not in the header.
	ErrUnknownColumn = errors.New("csvio: unknown column")

	// ErrIndexOutOfRange is returned for a position outside the row.
	ErrIndexOutOfRange = errors.New("csvio: column index out of range")
)
