package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-data-exporter/factio/csvio"
	"github.com/go-data-exporter/factio/dbio"
)

func newLoadCommand() *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "load FILE URL TABLE",
		Short: "Insert the records of a delimited file into a table",
		Long: `Read a delimited file whose first record names the columns and insert
every following record into TABLE. All rows go in one transaction: a failed
insert rolls the whole load back.`,
		Example: `  factio load --create orders.csv sqlite:facts.db orders
  factio load --dialect postgresql_csv orders.csv postgres://localhost/facts orders`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, args[0], args[1], args[2], create)
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "Create TABLE with a TEXT column per header label if it does not exist")
	return cmd
}

func runLoad(cmd *cobra.Command, path, url, table string, create bool) (err error) {
	ctx := cmd.Context()
	cfg := getConfig(ctx)
	logger := getLogger(ctx)

	scheme, _, err := dbio.ParseURL(url)
	if err != nil {
		return err
	}
	d, err := cfg.ReaderDialect()
	if err != nil {
		return err
	}

	c, err := csvio.OpenEncoded(path, d, cfg.Encoding, csvio.WithHeader(true), csvio.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	header := c.Header()
	if len(header) == 0 {
		return fmt.Errorf("%s: %w", path, csvio.ErrNoHeader)
	}

	w, err := dbio.OpenWriter(ctx, url, dbio.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, w.Close()) }()

	if err := w.SetAutoCommit(ctx, false); err != nil {
		return err
	}
	n, err := insertAll(ctx, w, c, scheme, table, header, create)
	if err != nil {
		return errors.Join(err, w.Rollback(ctx))
	}
	if err := w.Commit(ctx); err != nil {
		return err
	}

	logger.Debug("loaded file", slog.String("path", path), slog.String("table", table), slog.Int("rows", n))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "loaded %d rows into %s\n", n, table)
	return nil
}

func insertAll(ctx context.Context, w *dbio.Writer, c *csvio.Cursor, scheme, table string, header []string, create bool) (int, error) {
	cols := make([]string, len(header))
	marks := make([]string, len(header))
	for i, name := range header {
		cols[i] = quoteIdent(name)
		marks[i] = placeholder(scheme, i)
	}

	if create {
		defs := make([]string, len(cols))
		for i, col := range cols {
			defs[i] = col + " TEXT"
		}
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
		if err := w.Execute(ctx, ddl); err != nil {
			return 0, err
		}
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(cols, ", "), strings.Join(marks, ", "))
	stmt, err := w.Prepare(ctx, insert)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	n := 0
	for c.HasNext() {
		row, err := c.Next()
		if err != nil {
			return n, err
		}
		if row.Len() != len(header) {
			return n, fmt.Errorf("line %d: %d values for %d columns", row.Line(), row.Len(), len(header))
		}
		stmt.ClearParameters()
		for i, v := range row.Values() {
			if row.IsNullAt(i) {
				err = stmt.SetNull(i)
			} else {
				err = stmt.SetString(i, v)
			}
			if err != nil {
				return n, err
			}
		}
		if _, err := stmt.ExecuteUpdate(ctx); err != nil {
			return n, fmt.Errorf("line %d: %w", row.Line(), err)
		}
		n++
	}
	return n, c.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func placeholder(scheme string, ix int) string {
	switch scheme {
	case "postgres", "postgresql":
		return fmt.Sprintf("$%d", ix+1)
	}
	return "?"
}
