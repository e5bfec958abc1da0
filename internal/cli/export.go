package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/go-data-exporter/factio"
	"github.com/go-data-exporter/factio/dbio"
)

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export URL SQL OUT",
		Short: "Write the result of a query to a file",
		Long: `Run a query and write every row to OUT. CSV output uses the configured
dialect, where a numeric --dialect is read as a writer format code.`,
		Example: `  factio export sqlite:facts.db "SELECT * FROM orders" orders.csv --dialect excel
  factio export duckdb:facts.duckdb "SELECT * FROM orders" orders.parquet --format parquet`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return runExport(cmd, args[0], args[1], args[2], format)
		},
	}
	registerFormatFlag(cmd)
	return cmd
}

func runExport(cmd *cobra.Command, url, query, out, format string) (err error) {
	ctx := cmd.Context()
	cfg := getConfig(ctx)
	logger := getLogger(ctx)

	enc, err := codecFor(cfg, format)
	if err != nil {
		return err
	}

	src, err := dbio.Open(ctx, url, dbio.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, src.Close()) }()

	rows, err := src.Query(ctx, query)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, rows.Close()) }()

	if err := factio.New(rows, enc).WriteFile(out); err != nil {
		return fmt.Errorf("failed to export to %s: %w", out, err)
	}
	logger.Debug("exported query", slog.String("scheme", src.Scheme()), slog.String("out", out))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	return nil
}
