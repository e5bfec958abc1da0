package cli

import (
	"github.com/spf13/cobra"

	"github.com/go-data-exporter/factio/dbio"
)

func newQueryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "query URL SQL",
		Short: "Run a query and print the result",
		Example: `  factio query sqlite:facts.db "SELECT * FROM orders"
  factio query postgres://localhost/facts "SELECT id, total FROM orders" --limit 20`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], args[1], limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", -1, "Stop after this many rows (-1 for all)")
	return cmd
}

func runQuery(cmd *cobra.Command, url, query string, limit int) error {
	ctx := cmd.Context()

	c, err := dbio.OpenCursor(ctx, url, query, dbio.WithLogger(getLogger(ctx)))
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	cols := c.Columns()
	var rows [][]string
	for limit < 0 || len(rows) < limit {
		ok, err := c.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		row := c.Row()
		values := make([]string, row.Len())
		for i := range values {
			if null, _ := row.IsNullAt(i); null {
				values[i] = nullText
				continue
			}
			if values[i], err = row.StringAt(i); err != nil {
				return err
			}
		}
		rows = append(rows, values)
	}

	renderTable(cmd.OutOrStdout(), cols, rows)
	return c.Close()
}
