// Package csvio exposes delimited files as forward-only cursors of rows and
// writes records to delimited files, one call per record.
package csvio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-data-exporter/factio/charset"
	"github.com/go-data-exporter/factio/csvfmt"
	"github.com/go-data-exporter/factio/dialect"
)

type options struct {
	header   bool
	encoding string
	sniffBOM bool
	stripBOM bool
	logger   *slog.Logger
}

// Option configures a Cursor.
type Option func(*options)

// WithHeader treats the first record as column labels when hasHeader is true.
func WithHeader(hasHeader bool) Option {
	return func(o *options) {
		o.header = hasHeader
	}
}

// WithEncoding decodes the input from the named character encoding.
func WithEncoding(name string) Option {
	return func(o *options) {
		o.encoding = name
	}
}

// WithBOMDetection picks the encoding from a leading byte-order mark,
// falling back to UTF-16. It overrides WithEncoding.
func WithBOMDetection() Option {
	return func(o *options) {
		o.sniffBOM = true
	}
}

// WithLogger sets the logger used for open and close events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func withStripBOM() Option {
	return func(o *options) {
		o.stripBOM = true
	}
}

// Cursor is a single-pass view over the records of a delimited file.
// It is not safe for concurrent use.
type Cursor struct {
	closer  io.Closer
	parser  *csvfmt.Parser
	dialect dialect.Dialect
	charset string
	header  []string
	index   map[string]int
	logger  *slog.Logger

	next   *csvfmt.Record
	line   int
	peeked bool
	err    error
	closed bool
}

// Open opens the file at path for reading with dialect d.
func Open(path string, d dialect.Dialect, opts ...Option) (*Cursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	c, err := NewCursor(f, d, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	c.logger.Debug("opened csv file",
		slog.String("path", path),
		slog.String("dialect", d.Name),
		slog.String("charset", c.charset),
		slog.Bool("header", c.header != nil))
	return c, nil
}

// OpenCode opens path with the dialect selected by a reader format code.
func OpenCode(path string, code int, hasHeader bool) (*Cursor, error) {
	return Open(path, dialect.ForReader(code), WithHeader(hasHeader))
}

// OpenEncoded opens path with dialect d, decoding from the named encoding.
func OpenEncoded(path string, d dialect.Dialect, encoding string, opts ...Option) (*Cursor, error) {
	return Open(path, d, append([]Option{WithEncoding(encoding)}, opts...)...)
}

// OpenBOM opens path with dialect d and picks the encoding from its
// byte-order mark. Files without a mark are read as UTF-16.
func OpenBOM(path string, d dialect.Dialect, opts ...Option) (*Cursor, error) {
	return Open(path, d, append(opts, WithBOMDetection())...)
}

// OpenExcel opens a file saved by a spreadsheet program: Excel dialect, a
// leading UTF-8 byte-order mark skipped, the rest decoded from encoding.
func OpenExcel(path string, encoding string, hasHeader bool) (*Cursor, error) {
	return Open(path, dialect.Excel, WithEncoding(encoding), WithHeader(hasHeader), withStripBOM())
}

// NewCursor reads records from r. If r is an io.Closer it is closed by Close.
func NewCursor(r io.Reader, d dialect.Dialect, opts ...Option) (*Cursor, error) {
	o := options{encoding: charset.UTF8}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	c := &Cursor{dialect: d, logger: o.logger, charset: o.encoding}
	if closer, ok := r.(io.Closer); ok {
		c.closer = closer
	}

	var (
		in  io.Reader
		err error
	)
	switch {
	case o.sniffBOM:
		in, c.charset, err = charset.SniffBOM(r)
	case o.stripBOM:
		in, err = charset.NewReader(charset.StripUTF8BOM(r), o.encoding)
	default:
		in, err = charset.NewReader(r, o.encoding)
	}
	if err != nil {
		return nil, err
	}
	c.parser = csvfmt.NewParser(in, d)

	if o.header {
		if err := c.readHeader(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Cursor) readHeader() error {
	rec, err := c.parser.ReadRecord()
	if errors.Is(err, io.EOF) {
		c.header = []string{}
		c.index = map[string]int{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	c.header = rec.Values
	c.index = make(map[string]int, len(rec.Values))
	for i, name := range rec.Values {
		if name == "" {
			continue
		}
		if _, dup := c.index[name]; !dup {
			c.index[name] = i
		}
	}
	return nil
}

// Header returns the column labels, or nil when the cursor has no header.
func (c *Cursor) Header() []string {
	if c.header == nil {
		return nil
	}
	return append([]string(nil), c.header...)
}

// Dialect returns the dialect the cursor parses with.
func (c *Cursor) Dialect() dialect.Dialect {
	return c.dialect
}

// Charset returns the encoding the input is decoded from.
func (c *Cursor) Charset() string {
	return c.charset
}

// HasNext reports whether another record is available. It reads ahead at most
// one record and may be called any number of times before Next.
func (c *Cursor) HasNext() bool {
	if c.closed {
		return false
	}
	if !c.peeked {
		c.peeked = true
		rec, err := c.parser.ReadRecord()
		switch {
		case err == nil:
			c.next = &rec
			c.line = c.parser.Line()
		case errors.Is(err, io.EOF):
			c.next = nil
		default:
			c.next = nil
			c.err = err
		}
	}
	return c.next != nil
}

// Next returns the next row. Once the input is exhausted it returns
// ErrNoMoreRows, or the error that stopped reading.
func (c *Cursor) Next() (*Row, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if !c.HasNext() {
		if c.err != nil {
			return nil, c.err
		}
		return nil, ErrNoMoreRows
	}
	row := &Row{
		values: c.next.Values,
		nulls:  c.next.Null,
		header: c.header,
		index:  c.index,
		line:   c.line,
	}
	c.next = nil
	c.peeked = false
	return row, nil
}

// Err returns the error, if any, that ended iteration early.
func (c *Cursor) Err() error {
	return c.err
}

// Close releases the underlying stream. Calling Close again is a no-op.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.next = nil
	c.logger.Debug("closing csv cursor", slog.String("dialect", c.dialect.Name))
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
