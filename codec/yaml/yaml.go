// Package yamlcodec writes rows as a YAML sequence of mappings. Keys keep
// the column order of the result.
package yamlcodec

import (
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-data-exporter/factio/scanner"
	"github.com/go-data-exporter/factio/tostring"
)

type yamlCodec struct {
	customMapper map[reflect.Type]func(any, scanner.Metadata) tostring.String
	indent       int
	limit        int
}

type Option func(*yamlCodec)

func New(opts ...Option) *yamlCodec {
	c := &yamlCodec{
		customMapper: make(map[reflect.Type]func(any, scanner.Metadata) tostring.String),
		indent:       2,
		limit:        -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithCustomType renders values of type T as strings produced by fn.
func WithCustomType[T any](fn func(v T, metadata scanner.Metadata) tostring.String) Option {
	return func(c *yamlCodec) {
		var zero T
		if c.customMapper == nil {
			c.customMapper = make(map[reflect.Type]func(any, scanner.Metadata) tostring.String)
		}
		c.customMapper[reflect.TypeOf(zero)] = func(v any, metadata scanner.Metadata) tostring.String {
			return fn(v.(T), metadata)
		}
	}
}

func WithIndent(spaces int) Option {
	return func(c *yamlCodec) {
		if spaces > 0 {
			c.indent = spaces
		}
	}
}

// WithLimit stops after limit rows. Negative means no limit.
func WithLimit(limit int) Option {
	return func(c *yamlCodec) {
		c.limit = limit
	}
}

func (c *yamlCodec) Write(rows scanner.Rows, writer io.Writer) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	doc := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for rowID := 1; c.limit < 0 || len(doc.Content) < c.limit; rowID++ {
		if !rows.Next() {
			break
		}
		values, err := rows.ScanRow()
		if err != nil {
			return err
		}
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for i, col := range cols {
			md := scanner.Metadata{RowID: rowID, Driver: rows.Driver(), Column: col}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: col.Name()},
				c.scalar(values[i], md))
		}
		doc.Content = append(doc.Content, m)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	enc := yaml.NewEncoder(writer)
	enc.SetIndent(c.indent)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func (c *yamlCodec) scalar(v any, md scanner.Metadata) *yaml.Node {
	null := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	if v == nil {
		return null
	}
	if fn, ok := c.customMapper[reflect.TypeOf(v)]; ok {
		s := fn(v, md)
		if s.IsNULL {
			return null
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s.String}
	}

	tag := "!!str"
	switch v := v.(type) {
	case bool:
		tag = "!!bool"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		tag = "!!int"
	case float32:
		return floatNode(float64(v), 32)
	case float64:
		return floatNode(v, 64)
	}
	s := tostring.ToString(v)
	if s.IsNULL {
		return null
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: s.String}
}

func floatNode(f float64, bits int) *yaml.Node {
	var s string
	switch {
	case math.IsNaN(f):
		s = ".nan"
	case math.IsInf(f, 1):
		s = ".inf"
	case math.IsInf(f, -1):
		s = "-.inf"
	default:
		s = strconv.FormatFloat(f, 'g', -1, bits)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
}
