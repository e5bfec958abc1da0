// Package duckdb registers the "duckdb" scheme with dbio. Import it for its
// side effect:
//
//	import _ "github.com/go-data-exporter/factio/dbio/duckdb"
//
// URLs look like jdbc:duckdb:/path/to/file.duckdb; an empty path opens an
// in-memory database.
package duckdb

import (
	"context"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/go-data-exporter/factio/dbio"
)

func init() {
	dbio.Register("duckdb", Open)
}

// Open opens the DuckDB database at path.
func Open(ctx context.Context, path string, logger *slog.Logger) (dbio.Source, error) {
	if path == ":memory:" {
		path = ""
	}
	return dbio.OpenSQL(ctx, "duckdb", "duckdb", path, logger)
}
