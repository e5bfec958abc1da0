package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/go-data-exporter/factio"
	"github.com/go-data-exporter/factio/csvio"
	"github.com/go-data-exporter/factio/scanner"
)

func newCatCommand() *cobra.Command {
	var (
		out   string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "cat FILE",
		Short: "Print the records of a delimited file",
		Long: `Read a delimited file with the configured dialect and encoding and print
its records as a table, or convert it to another format with --out.`,
		Example: `  # Show a MySQL dump file
  factio cat --dialect mysql orders.txt

  # Convert an Excel CSV file to newline delimited JSON
  factio cat --dialect excel --out orders.ndjson --format ndjson orders.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return runCat(cmd, args[0], out, format, limit)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the records to this file instead of printing them")
	cmd.Flags().IntVar(&limit, "limit", -1, "Stop after this many records (-1 for all)")
	registerFormatFlag(cmd)
	return cmd
}

func runCat(cmd *cobra.Command, path, out, format string, limit int) error {
	ctx := cmd.Context()
	cfg := getConfig(ctx)
	logger := getLogger(ctx)

	d, err := cfg.ReaderDialect()
	if err != nil {
		return err
	}
	c, err := csvio.OpenEncoded(path, d, cfg.Encoding, csvio.WithHeader(cfg.Header), csvio.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	var (
		records [][]any
		width   int
	)
	for limit < 0 || len(records) < limit {
		if !c.HasNext() {
			break
		}
		row, err := c.Next()
		if err != nil {
			return err
		}
		values := make([]any, row.Len())
		for i, v := range row.Values() {
			if !row.IsNullAt(i) {
				values[i] = v
			}
		}
		records = append(records, values)
		width = max(width, len(values))
	}
	if err := c.Err(); err != nil {
		return err
	}

	// Short records are padded with NULL; cells past the header get
	// generated labels.
	header := c.Header()
	if len(header) < width {
		header = append(header, columnNames(width)[len(header):]...)
	}
	for i := range records {
		for len(records[i]) < len(header) {
			records[i] = append(records[i], nil)
		}
	}

	if out == "" {
		renderTable(cmd.OutOrStdout(), header, tableCells(records))
		return nil
	}

	enc, err := codecFor(cfg, format)
	if err != nil {
		return err
	}
	if err := factio.New(scanner.FromTextValues(header, records), enc).WriteFile(out); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	logger.Debug("converted file", slog.String("from", path), slog.String("to", out), slog.Int("rows", len(records)))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(records), out)
	return nil
}

func tableCells(records [][]any) [][]string {
	cells := make([][]string, len(records))
	for i, rec := range records {
		cells[i] = make([]string, len(rec))
		for j, v := range rec {
			if v == nil {
				cells[i][j] = nullText
				continue
			}
			cells[i][j] = v.(string)
		}
	}
	return cells
}
