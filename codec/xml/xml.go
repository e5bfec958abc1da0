// Package xmlcodec writes rows as an XML document: one element per row and
// one child element per non-NULL cell, named after its column.
package xmlcodec

import (
	"encoding/xml"
	"io"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-data-exporter/factio/scanner"
	"github.com/go-data-exporter/factio/tostring"
)

type xmlCodec struct {
	customMapper     map[reflect.Type]func(any, scanner.Metadata) tostring.String
	preProcessorFunc func(rowID int, row []string) ([]string, bool)
	root             string
	rowName          string
	limit            int
}

type Option func(*xmlCodec)

// New returns a codec writing <data><row>...</row></data>.
func New(opts ...Option) *xmlCodec {
	c := &xmlCodec{
		customMapper: make(map[reflect.Type]func(any, scanner.Metadata) tostring.String),
		root:         "data",
		rowName:      "row",
		limit:        -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithCustomType[T any](fn func(v T, metadata scanner.Metadata) tostring.String) Option {
	return func(c *xmlCodec) {
		var zero T
		typ := reflect.TypeOf(zero)
		if c.customMapper == nil {
			c.customMapper = make(map[reflect.Type]func(any, scanner.Metadata) tostring.String)
		}
		c.customMapper[typ] = func(v any, metadata scanner.Metadata) tostring.String {
			return fn(v.(T), metadata)
		}
	}
}

// WithPreProcessorFunc rewrites or drops rows before they are written.
func WithPreProcessorFunc(fn func(rowID int, row []string) ([]string, bool)) Option {
	return func(c *xmlCodec) {
		c.preProcessorFunc = fn
	}
}

// WithElementNames renames the document and row elements.
func WithElementNames(root, row string) Option {
	return func(c *xmlCodec) {
		c.root = elementName(root)
		c.rowName = elementName(row)
	}
}

// WithLimit stops after limit rows. Negative means no limit.
func WithLimit(limit int) Option {
	return func(c *xmlCodec) {
		c.limit = limit
	}
}

// elementName turns a column label into a valid XML name.
func elementName(label string) string {
	var b strings.Builder
	for i, r := range label {
		switch {
		case unicode.IsLetter(r) || r == '_':
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
		default:
			r = '_'
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func (c *xmlCodec) Write(rows scanner.Rows, writer io.Writer) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	names := make([]xml.Name, len(cols))
	for i, col := range cols {
		names[i] = xml.Name{Local: elementName(col.Name())}
	}

	if _, err := io.WriteString(writer, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(writer)
	enc.Indent("", "  ")
	root := xml.StartElement{Name: xml.Name{Local: c.root}}
	rowElem := xml.StartElement{Name: xml.Name{Local: c.rowName}}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}

	written := 0
	for rowID := 1; c.limit < 0 || written < c.limit; rowID++ {
		if !rows.Next() {
			break
		}
		values, err := rows.ScanRow()
		if err != nil {
			return err
		}
		row := make([]string, len(cols))
		nulls := make([]bool, len(cols))
		for i := range cols {
			s := c.toString(values[i], scanner.Metadata{RowID: rowID, Driver: rows.Driver(), Column: cols[i]})
			row[i], nulls[i] = s.String, s.IsNULL
		}
		if c.preProcessorFunc != nil {
			var keep bool
			if row, keep = c.preProcessorFunc(rowID, row); !keep {
				continue
			}
		}
		if err := enc.EncodeToken(rowElem); err != nil {
			return err
		}
		for i := range row {
			if i >= len(names) || nulls[i] {
				continue
			}
			if err := enc.EncodeElement(row[i], xml.StartElement{Name: names[i]}); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(rowElem.End()); err != nil {
			return err
		}
		written++
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	if _, err := io.WriteString(writer, "\n"); err != nil {
		return err
	}
	return rows.Err()
}

func (c *xmlCodec) toString(v any, metadata scanner.Metadata) tostring.String {
	if v == nil {
		return tostring.String{IsNULL: true}
	}
	if fn, ok := c.customMapper[reflect.TypeOf(v)]; ok {
		return fn(v, metadata)
	}
	return tostring.ToString(v)
}
