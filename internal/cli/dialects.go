package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/go-data-exporter/factio/dialect"
)

func newDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the CSV dialects and their format codes",
		Long: `List every dialect preset with its delimiter, quote and escape characters
and the numeric codes that select it. Reader and writer codes differ from 10
upwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "Delimiter", "Quote", "Escape", "Null", "Reader codes", "Writer codes"})
			for _, row := range dialectRows() {
				t.AppendRow(row)
			}
			render(t, cmd.OutOrStdout())
			return nil
		},
	}
}

func dialectRows() []table.Row {
	readers := codesByName(dialect.MaxReaderCode, dialect.ForReader)
	writers := codesByName(dialect.MaxWriterCode, dialect.ForWriter)

	var rows []table.Row
	for _, name := range dialect.Names() {
		d, _ := dialect.ByName(name)
		null := ""
		if d.HasNullString {
			null = strconv.Quote(d.NullString)
		}
		rows = append(rows, table.Row{
			name,
			printable(d.Delimiter),
			printable(d.Quote),
			printable(d.Escape),
			null,
			strings.Join(readers[name], ", "),
			strings.Join(writers[name], ", "),
		})
	}
	return rows
}

func codesByName(maxCode int, byCode func(int) dialect.Dialect) map[string][]string {
	codes := make(map[string][]string)
	for code := 0; code <= maxCode; code++ {
		name := byCode(code).Name
		codes[name] = append(codes[name], strconv.Itoa(code))
	}
	return codes
}

func printable(r rune) string {
	if r == 0 {
		return "-"
	}
	return fmt.Sprintf("%q", r)
}
