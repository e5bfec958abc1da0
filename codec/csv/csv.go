// Package csvcodec writes rows as delimited text in any dialect.Dialect.
package csvcodec

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/go-data-exporter/factio/csvfmt"
	"github.com/go-data-exporter/factio/dialect"
	"github.com/go-data-exporter/factio/scanner"
	"github.com/go-data-exporter/factio/tostring"
)

// ErrHeaderLength is returned when a custom header does not match the columns.
var ErrHeaderLength = errors.New("invalid header length")

type csvCodec struct {
	customMapper     map[reflect.Type]func(any, scanner.Metadata) tostring.String
	preProcessorFunc func(row []string) ([]string, bool)
	dialect          dialect.Dialect
	writeHeader      bool
	customHeader     []string
}

type Option func(*csvCodec)

// New returns a codec writing the default dialect with a header row.
func New(opts ...Option) *csvCodec {
	cw := &csvCodec{
		customMapper: make(map[reflect.Type]func(any, scanner.Metadata) tostring.String),
		dialect:      dialect.Default,
		writeHeader:  true,
	}
	for _, opt := range opts {
		opt(cw)
	}
	return cw
}

func WithCustomType[T any](fn func(v T, metadata scanner.Metadata) tostring.String) Option {
	return func(cw *csvCodec) {
		var zero T
		typ := reflect.TypeOf(zero)
		if cw.customMapper == nil {
			cw.customMapper = make(map[reflect.Type]func(any, scanner.Metadata) tostring.String)
		}
		cw.customMapper[typ] = func(v any, metadata scanner.Metadata) tostring.String {
			return fn(v.(T), metadata)
		}
	}
}

// WithDialect selects quoting, escaping, separators and NULL text.
func WithDialect(d dialect.Dialect) Option {
	return func(cw *csvCodec) {
		cw.dialect = d
	}
}

// WithPreProcessorFunc rewrites or drops rows before they are written.
// NULL cells reach fn as empty strings.
func WithPreProcessorFunc(fn func(row []string) ([]string, bool)) Option {
	return func(cw *csvCodec) {
		cw.preProcessorFunc = fn
	}
}

func WithCustomDelimiter(delimiter rune) Option {
	return func(cw *csvCodec) {
		cw.dialect = cw.dialect.WithDelimiter(delimiter)
	}
}

// WithCRLF ends records with "\r\n" when useCRLF is set and "\n" otherwise.
func WithCRLF(useCRLF bool) Option {
	return func(cw *csvCodec) {
		if useCRLF {
			cw.dialect = cw.dialect.WithRecordSeparator("\r\n")
		} else {
			cw.dialect = cw.dialect.WithRecordSeparator("\n")
		}
	}
}

func WithHeader(writeHeader bool) Option {
	return func(cw *csvCodec) {
		cw.writeHeader = writeHeader
	}
}

func WithCustomHeader(customHeader []string) Option {
	return func(cw *csvCodec) {
		cw.customHeader = customHeader
	}
}

// WithCustomNULL writes NULL cells as nullValue.
func WithCustomNULL(nullValue string) Option {
	return func(cw *csvCodec) {
		cw.dialect = cw.dialect.WithNullString(nullValue)
	}
}

func (cs *csvCodec) Write(rows scanner.Rows, writer io.Writer) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Name()
	}
	if cs.customHeader != nil {
		if len(cs.customHeader) != len(cols) {
			return fmt.Errorf("%w: %d labels for %d columns", ErrHeaderLength, len(cs.customHeader), len(cols))
		}
		header = cs.customHeader
	}

	p := csvfmt.NewPrinter(writer, cs.dialect)
	if cs.writeHeader {
		if err := p.PrintRecord(header); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for rowID := 1; rows.Next(); rowID++ {
		values, err := rows.ScanRow()
		if err != nil {
			return err
		}
		row := make([]string, len(cols))
		nulls := make([]bool, len(cols))
		for i := range cols {
			s := cs.toString(values[i], scanner.Metadata{RowID: rowID, Driver: rows.Driver(), Column: cols[i]})
			row[i], nulls[i] = s.String, s.IsNULL
		}
		if cs.preProcessorFunc != nil {
			var keep bool
			if row, keep = cs.preProcessorFunc(row); !keep {
				continue
			}
		}
		if err := p.PrintNullable(row, nulls); err != nil {
			return err
		}
	}
	if err := p.Flush(); err != nil {
		return err
	}
	return rows.Err()
}

func (cs *csvCodec) toString(v any, metadata scanner.Metadata) tostring.String {
	if v == nil {
		return tostring.String{IsNULL: true}
	}
	if fn, ok := cs.customMapper[reflect.TypeOf(v)]; ok {
		return fn(v, metadata)
	}
	return tostring.ToString(v)
}
