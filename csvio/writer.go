package csvio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-data-exporter/factio/charset"
	"github.com/go-data-exporter/factio/csvfmt"
	"github.com/go-data-exporter/factio/dialect"
)

// Delimiter separates cells when a row travels as a single string.
// Real data must not contain it.
const Delimiter = "⊶⊷"

// JoinRow flattens cells into one string separated by Delimiter.
func JoinRow(cells []string) string {
	return strings.Join(cells, Delimiter)
}

// SplitRow splits a string produced by JoinRow back into cells.
func SplitRow(row string) []string {
	return strings.Split(row, Delimiter)
}

type writerOptions struct {
	header   []string
	encoding string
	logger   *slog.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*writerOptions)

// WithHeaderRow writes header as the first record.
func WithHeaderRow(header []string) WriterOption {
	return func(o *writerOptions) {
		o.header = header
	}
}

// WithOutputEncoding encodes the output into the named character encoding.
func WithOutputEncoding(name string) WriterOption {
	return func(o *writerOptions) {
		o.encoding = name
	}
}

// WithWriterLogger sets the logger used for open and close events.
func WithWriterLogger(logger *slog.Logger) WriterOption {
	return func(o *writerOptions) {
		o.logger = logger
	}
}

// Writer appends one record per call to a delimited file.
// It is not safe for concurrent use.
type Writer struct {
	file    io.Closer
	enc     io.WriteCloser
	printer *csvfmt.Printer
	dialect dialect.Dialect
	logger  *slog.Logger
	rows    int
	closed  bool
}

// Create creates or truncates the file at path and writes records to it with dialect d.
func Create(path string, d dialect.Dialect, opts ...WriterOption) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f, d, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.file = f
	w.logger.Debug("created csv file", slog.String("path", path), slog.String("dialect", d.Name))
	return w, nil
}

// CreateCode creates path with the dialect selected by a writer format code.
// header holds the column labels joined with Delimiter; empty means no header.
func CreateCode(path string, code int, header string) (*Writer, error) {
	var opts []WriterOption
	if header != "" {
		opts = append(opts, WithHeaderRow(SplitRow(header)))
	}
	return Create(path, dialect.ForWriter(code), opts...)
}

// NewWriter writes records to w. Close flushes but does not close w.
func NewWriter(w io.Writer, d dialect.Dialect, opts ...WriterOption) (*Writer, error) {
	o := writerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	enc, err := charset.NewWriter(w, o.encoding)
	if err != nil {
		return nil, err
	}
	cw := &Writer{
		enc:     enc,
		printer: csvfmt.NewPrinter(enc, d),
		dialect: d,
		logger:  o.logger,
	}
	if o.header != nil {
		if err := cw.printer.PrintRecord(o.header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	return cw, nil
}

// WriteRow appends one record.
func (w *Writer) WriteRow(cells []string) error {
	return w.WriteNullable(cells, nil)
}

// WriteRowString appends the record held in row, split on Delimiter.
func (w *Writer) WriteRowString(row string) error {
	return w.WriteRow(SplitRow(row))
}

// WriteNullable appends one record; cells with nulls[i] set are written as NULL.
func (w *Writer) WriteNullable(cells []string, nulls []bool) error {
	if w.closed {
		return ErrClosed
	}
	if err := w.printer.PrintNullable(cells, nulls); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows returns the number of records written, not counting the header.
func (w *Writer) Rows() int {
	return w.rows
}

// Flush writes buffered records to the output.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}
	return w.printer.Flush()
}

// Close flushes buffered records and releases the file. Calling Close again
// is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.logger.Debug("closing csv writer", slog.String("dialect", w.dialect.Name), slog.Int("rows", w.rows))
	errs := []error{w.printer.Flush(), w.enc.Close()}
	if w.file != nil {
		errs = append(errs, w.file.Close())
	}
	return errors.Join(errs...)
}
