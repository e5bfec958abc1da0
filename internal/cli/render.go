package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/go-data-exporter/factio/codec"
	csvcodec "github.com/go-data-exporter/factio/codec/csv"
	"github.com/go-data-exporter/factio/config"
)

const nullText = "NULL"

func renderTable(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := newTable(w)
	if len(cols) > 0 {
		header := make(table.Row, len(cols))
		for i, col := range cols {
			header[i] = col
		}
		t.AppendHeader(header)
	}
	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		t.AppendRow(row)
	}

	render(t, w)
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// render draws box tables on a terminal and markdown tables everywhere else,
// so piped output stays easy to parse.
func render(t table.Writer, w io.Writer) {
	if isTerminal(w) {
		t.Render()
		return
	}
	t.RenderMarkdown()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// codecFor picks the export codec. CSV output follows the configured writer
// dialect and header setting; other formats use their defaults.
func codecFor(cfg *config.Config, format string) (codec.Codec, error) {
	if format == "" {
		format = cfg.Format
	}
	if !strings.EqualFold(format, "csv") {
		return codec.ByName(format)
	}
	d, err := cfg.WriterDialect()
	if err != nil {
		return nil, err
	}
	return codec.CSV(csvcodec.WithDialect(d), csvcodec.WithHeader(cfg.Header)), nil
}

func columnNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("column_%d", i)
	}
	return names
}
