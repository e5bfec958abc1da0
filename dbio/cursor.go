package dbio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-data-exporter/factio/scanner"
)

type cursorState int

const (
	beforeFirst cursorState = iota
	onRow
	afterLast
)

// Cursor walks the result of one query.
//
// Next moves to the following row and reports whether there was one, so a
// loop reads:
//
//	for {
//		ok, err := c.Next()
//		if err != nil || !ok {
//			break
//		}
//		name, _ := c.Row().StringNamed("name")
//	}
type Cursor struct {
	rows    scanner.Rows
	closer  io.Closer
	logger  *slog.Logger
	columns []string
	index   map[string]int
	folded  map[string]int
	values  []any
	state   cursorState
	closed  bool
}

// OpenCursor opens the database named by url and runs query. Close releases
// both the result set and the connection.
func OpenCursor(ctx context.Context, url, query string, opts ...Option) (*Cursor, error) {
	o := newOptions(opts)
	src, err := Open(ctx, url, opts...)
	if err != nil {
		return nil, err
	}
	rows, err := src.Query(ctx, query)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	c, err := NewCursor(rows, src, opts...)
	if err != nil {
		_ = rows.Close()
		_ = src.Close()
		return nil, err
	}
	o.logger.Debug("query started", slog.String("scheme", src.Scheme()), slog.Int("columns", len(c.columns)))
	return c, nil
}

// NewCursor reads rows. closer, if not nil, is closed after rows by Close.
func NewCursor(rows scanner.Rows, closer io.Closer, opts ...Option) (*Cursor, error) {
	o := newOptions(opts)
	names, err := scanner.Names(rows)
	if err != nil {
		return nil, err
	}
	c := &Cursor{
		rows:    rows,
		closer:  closer,
		logger:  o.logger,
		columns: names,
		index:   make(map[string]int, len(names)),
		folded:  make(map[string]int, len(names)),
	}
	for i, name := range names {
		if _, ok := c.index[name]; !ok {
			c.index[name] = i
		}
		if _, ok := c.folded[strings.ToLower(name)]; !ok {
			c.folded[strings.ToLower(name)] = i
		}
	}
	return c, nil
}

// Columns returns the column labels of the result.
func (c *Cursor) Columns() []string {
	return append([]string(nil), c.columns...)
}

// Next advances to the next row and reports whether one is available.
func (c *Cursor) Next() (bool, error) {
	if c.closed {
		return false, ErrClosed
	}
	if c.state == afterLast {
		return false, nil
	}
	if !c.rows.Next() {
		c.state = afterLast
		c.values = nil
		return false, c.rows.Err()
	}
	values, err := c.rows.ScanRow()
	if err != nil {
		c.state = afterLast
		c.values = nil
		return false, err
	}
	c.values = append(c.values[:0], values...)
	c.state = onRow
	return true, nil
}

// GoNext is Next.
func (c *Cursor) GoNext() (bool, error) {
	return c.Next()
}

// Row returns a view of the current row. The view follows the cursor: after
// the next call to Next it shows the new row.
func (c *Cursor) Row() *Row {
	return &Row{c: c}
}

func (c *Cursor) position(label string) (int, error) {
	if ix, ok := c.index[label]; ok {
		return ix, nil
	}
	if ix, ok := c.folded[strings.ToLower(label)]; ok {
		return ix, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, label)
}

func (c *Cursor) value(ix int) (any, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if c.state != onRow {
		return nil, ErrNoRow
	}
	if ix < 0 || ix >= len(c.values) {
		return nil, fmt.Errorf("%w: %d (row has %d columns)", ErrIndexOutOfRange, ix, len(c.values))
	}
	return c.values[ix], nil
}

// Close releases the result set and, for cursors from OpenCursor, the
// connection. Calling Close again is a no-op.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.values = nil
	c.logger.Debug("closing cursor", slog.String("driver", c.rows.Driver()))
	err := c.rows.Close()
	if c.closer != nil {
		err = errors.Join(err, c.closer.Close())
	}
	return err
}
