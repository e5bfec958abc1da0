// Package jsoncodec writes rows as a JSON array of objects or as newline
// delimited JSON, one object per row keyed by column name.
package jsoncodec

import (
	"bufio"
	"io"
	"reflect"

	jsoniter "github.com/json-iterator/go"

	"github.com/go-data-exporter/factio/scanner"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Option func(*jsonCodec)

type jsonCodec struct {
	customMapper     map[reflect.Type]func(any, scanner.Metadata) any
	preProcessorFunc func(rowID int, row map[string]any) (map[string]any, bool)
	newlineDelimited bool
	limit            int
}

func New(opts ...Option) *jsonCodec {
	c := &jsonCodec{
		customMapper: make(map[reflect.Type]func(any, scanner.Metadata) any),
		limit:        -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithPreProcessorFunc(fn func(rowID int, row map[string]any) (map[string]any, bool)) Option {
	return func(c *jsonCodec) {
		c.preProcessorFunc = fn
	}
}

func WithNewlineDelimited(isNewlineDelimited bool) Option {
	return func(c *jsonCodec) {
		c.newlineDelimited = isNewlineDelimited
	}
}

func WithCustomType[T any](fn func(v T, metadata scanner.Metadata) any) Option {
	return func(c *jsonCodec) {
		var zero T
		typ := reflect.TypeOf(zero)
		if c.customMapper == nil {
			c.customMapper = make(map[reflect.Type]func(any, scanner.Metadata) any)
		}
		c.customMapper[typ] = func(v any, metadata scanner.Metadata) any {
			return fn(v.(T), metadata)
		}
	}
}

// WithLimit stops after limit rows have been written. Negative means no limit.
func WithLimit(limit int) Option {
	return func(c *jsonCodec) {
		c.limit = limit
	}
}

// Write encodes rows. Text columns that the driver hands over as []byte are
// written as strings. An empty result is written as "[]" in array mode and as
// nothing in newline delimited mode.
func (c *jsonCodec) Write(rows scanner.Rows, writer io.Writer) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	w := bufio.NewWriter(writer)
	written := 0
	if !c.newlineDelimited {
		w.WriteString("[")
	}
	for rowID := 1; c.limit < 0 || written < c.limit; rowID++ {
		if !rows.Next() {
			break
		}
		values, err := rows.ScanRow()
		if err != nil {
			return err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if fn, ok := c.customMapper[reflect.TypeOf(v)]; ok {
				v = fn(v, scanner.Metadata{RowID: rowID, Driver: rows.Driver(), Column: col})
			} else if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col.Name()] = v
		}
		if c.preProcessorFunc != nil {
			var keep bool
			if row, keep = c.preProcessorFunc(rowID, row); !keep {
				continue
			}
		}
		data, err := json.Marshal(row)
		if err != nil {
			return err
		}
		switch {
		case c.newlineDelimited:
			w.Write(data)
			w.WriteString("\n")
		case written == 0:
			w.WriteString("\n")
			w.Write(data)
		default:
			w.WriteString(",\n")
			w.Write(data)
		}
		written++
	}
	if !c.newlineDelimited {
		if written > 0 {
			w.WriteString("\n")
		}
		w.WriteString("]\n")
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return rows.Err()
}
