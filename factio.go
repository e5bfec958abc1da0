// Package factio moves tabular facts between delimited files, text files and
// SQL databases. The Exporter in this package writes any scanner.Rows through
// a codec; the csvio, lines and dbio packages provide the row sources and sinks.
package factio

import (
	"errors"
	"io"
	"os"

	"github.com/go-data-exporter/factio/codec"
	"github.com/go-data-exporter/factio/scanner"
)

type Exporter struct {
	rows  scanner.Rows
	codec codec.Codec
}

func New(rows scanner.Rows, codec codec.Codec) *Exporter {
	return &Exporter{
		rows:  rows,
		codec: codec,
	}
}

func (e *Exporter) Write(writer io.Writer) error {
	return e.codec.Write(e.rows, writer)
}

// WriteFile writes to filename, replacing it. A partly written file is
// removed when encoding fails.
func (e *Exporter) WriteFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := e.Write(f); err != nil {
		return errors.Join(err, f.Close(), os.Remove(filename))
	}
	return f.Close()
}
