// Package parquetcodec writes rows to a Parquet file. Every column is stored
// as a nullable UTF-8 string, the way the values would read in a CSV file.
package parquetcodec

import (
	"fmt"
	"io"
	"reflect"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/go-data-exporter/factio/scanner"
	"github.com/go-data-exporter/factio/tostring"
)

const defaultBatchSize = 4096

type parquetCodec struct {
	customMapper map[reflect.Type]func(any, scanner.Metadata) tostring.String
	compression  compress.Compression
	batchSize    int
	allocator    memory.Allocator
}

type Option func(*parquetCodec)

// New returns a codec writing Snappy-compressed files.
func New(opts ...Option) *parquetCodec {
	c := &parquetCodec{
		customMapper: make(map[reflect.Type]func(any, scanner.Metadata) tostring.String),
		compression:  compress.Codecs.Snappy,
		batchSize:    defaultBatchSize,
		allocator:    memory.NewGoAllocator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithCompression(codec compress.Compression) Option {
	return func(c *parquetCodec) {
		c.compression = codec
	}
}

// WithBatchSize sets how many rows are buffered per record batch.
func WithBatchSize(n int) Option {
	return func(c *parquetCodec) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

func WithCustomType[T any](fn func(v T, metadata scanner.Metadata) tostring.String) Option {
	return func(c *parquetCodec) {
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

// sink hides Close from the parquet writer, which would otherwise close the
// caller's writer when it finishes the file.
type sink struct {
	io.Writer
}

func (c *parquetCodec) Write(rows scanner.Rows, writer io.Writer) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	fields := make([]arrow.Field, len(cols))
	for i, col := range cols {
		fields[i] = arrow.Field{Name: col.Name(), Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	props := parquet.NewWriterProperties(parquet.WithCompression(c.compression))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	fw, err := pqarrow.NewFileWriter(schema, sink{writer}, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	b := array.NewRecordBuilder(c.allocator, schema)
	defer b.Release()

	flush := func() error {
		rec := b.NewRecord()
		defer rec.Release()
		if rec.NumRows() == 0 {
			return nil
		}
		return fw.Write(rec)
	}

	pending := 0
	for rowID := 1; rows.Next(); rowID++ {
		values, err := rows.ScanRow()
		if err != nil {
			_ = fw.Close()
			return err
		}
		for i := range cols {
			s := c.toString(values[i], scanner.Metadata{RowID: rowID, Driver: rows.Driver(), Column: cols[i]})
			sb := b.Field(i).(*array.StringBuilder)
			if s.IsNULL {
				sb.AppendNull()
			} else {
				sb.Append(s.String)
			}
		}
		pending++
		if pending == c.batchSize {
			if err := flush(); err != nil {
				_ = fw.Close()
				return fmt.Errorf("failed to write parquet batch: %w", err)
			}
			pending = 0
		}
	}
	if err := flush(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to write parquet batch: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return rows.Err()
}

func (c *parquetCodec) toString(v any, metadata scanner.Metadata) tostring.String {
	if v == nil {
		return tostring.String{IsNULL: true}
	}
	if fn, ok := c.customMapper[reflect.TypeOf(v)]; ok {
		return fn(v, metadata)
	}
	return tostring.ToString(v)
}
