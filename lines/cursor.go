// Package lines reads a text file one line at a time in a named encoding.
package lines

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/go-data-exporter/factio/charset"
)

var (
	// ErrClosed is returned when a closed Cursor is read.
	ErrClosed = errors.New("lines: cursor is closed")
	// ErrNoLine is returned by Next when HasNext has not yielded a line.
	ErrNoLine = errors.New("lines: no current line")
)

const maxLineSize = 16 << 20

// Cursor walks the lines of a text stream.
//
// HasNext reads the next line and reports whether there was one; Line and
// Next return that line. Calling HasNext twice therefore skips a line.
type Cursor struct {
	closer  io.Closer
	scanner *bufio.Scanner
	logger  *slog.Logger
	line    string
	ok      bool
	err     error
	closed  bool
}

// Option configures a Cursor.
type Option func(*Cursor)

// WithLogger sets the logger used for open and close events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cursor) {
		c.logger = logger
	}
}

// Open opens the file at path and decodes it from encoding. An empty
// encoding means UTF-8.
func Open(path, encoding string, opts ...Option) (*Cursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	c, err := NewCursor(f, encoding, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	c.logger.Debug("opened text file", slog.String("path", path), slog.String("encoding", encoding))
	return c, nil
}

// NewCursor reads lines from r. If r is an io.Closer it is closed by Close.
func NewCursor(r io.Reader, encoding string, opts ...Option) (*Cursor, error) {
	in, err := charset.NewReader(r, encoding)
	if err != nil {
		return nil, err
	}
	c := &Cursor{scanner: bufio.NewScanner(in)}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if closer, ok := r.(io.Closer); ok {
		c.closer = closer
	}
	c.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	c.scanner.Split(scanLines)
	return c, nil
}

// scanLines splits on "\n", "\r\n" or a lone "\r" and drops the terminator.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// A trailing '\r' may be the first half of "\r\n".
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// HasNext consumes the next line and reports whether one was read.
func (c *Cursor) HasNext() bool {
	if c.closed || c.err != nil {
		c.ok = false
		return false
	}
	c.ok = c.scanner.Scan()
	if c.ok {
		c.line = c.scanner.Text()
		return true
	}
	c.line = ""
	c.err = c.scanner.Err()
	return false
}

// Line returns the line consumed by the last HasNext, or "" if it found none.
func (c *Cursor) Line() string {
	return c.line
}

// Next returns the line consumed by the last HasNext.
func (c *Cursor) Next() (string, error) {
	switch {
	case c.closed:
		return "", ErrClosed
	case c.err != nil:
		return "", c.err
	case !c.ok:
		return "", ErrNoLine
	}
	return c.line, nil
}

// Err returns the read error that ended iteration, if any.
func (c *Cursor) Err() error {
	return c.err
}

// Close releases the underlying stream. Calling Close again is a no-op.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.ok = false
	c.line = ""
	c.logger.Debug("closing line cursor")
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
