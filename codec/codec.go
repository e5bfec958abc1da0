// Package codec names the output formats rows can be exported to.
package codec

import (
	"fmt"
	"io"
	"strings"

	csvcodec "github.com/go-data-exporter/factio/codec/csv"
	jsoncodec "github.com/go-data-exporter/factio/codec/json"
	parquetcodec "github.com/go-data-exporter/factio/codec/parquet"
	xmlcodec "github.com/go-data-exporter/factio/codec/xml"
	yamlcodec "github.com/go-data-exporter/factio/codec/yaml"
	"github.com/go-data-exporter/factio/scanner"
)

type Codec interface {
	Write(rows scanner.Rows, writer io.Writer) error
}

func JSON(opts ...jsoncodec.Option) Codec {
	return jsoncodec.New(opts...)
}

func CSV(opts ...csvcodec.Option) Codec {
	return csvcodec.New(opts...)
}

func Parquet(opts ...parquetcodec.Option) Codec {
	return parquetcodec.New(opts...)
}

func XML(opts ...xmlcodec.Option) Codec {
	return xmlcodec.New(opts...)
}

func YAML(opts ...yamlcodec.Option) Codec {
	return yamlcodec.New(opts...)
}

// Formats lists the names accepted by ByName.
var Formats = []string{"csv", "json", "ndjson", "parquet", "xml", "yaml"}

// ByName returns a codec with default options for a format name. CSV uses
// the default dialect; callers needing another build it with CSV.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "csv":
		return CSV(), nil
	case "json":
		return JSON(), nil
	case "ndjson", "jsonl":
		return JSON(jsoncodec.WithNewlineDelimited(true)), nil
	case "parquet":
		return Parquet(), nil
	case "xml":
		return XML(), nil
	case "yaml", "yml":
		return YAML(), nil
	}
	return nil, fmt.Errorf("unknown format %q (want one of %s)", name, strings.Join(Formats, ", "))
}
