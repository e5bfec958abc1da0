package dbio

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver

	"github.com/go-data-exporter/factio/scanner"
)

func init() {
	Register("sqlite", openSQLite)
	Register("postgres", openPostgres)
	Register("postgresql", openPostgres)
}

// SQLSource is a Source over a database/sql handle.
type SQLSource struct {
	db     *sql.DB
	scheme string
	driver string
	owned  bool
}

// NewSQLSource wraps db, opened with the named driver. Close does not close db.
func NewSQLSource(db *sql.DB, scheme, driver string) *SQLSource {
	return &SQLSource{db: db, scheme: scheme, driver: driver}
}

// OpenSQL opens a database/sql handle and checks that it answers. The
// returned source owns the handle.
func OpenSQL(ctx context.Context, scheme, driver, dsn string, logger *slog.Logger) (*SQLSource, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}
	logger.Debug("connected", slog.String("driver", driver))
	return &SQLSource{db: db, scheme: scheme, driver: driver, owned: true}, nil
}

// DB returns the underlying handle.
func (s *SQLSource) DB() *sql.DB {
	return s.db
}

func (s *SQLSource) Scheme() string {
	return s.scheme
}

func (s *SQLSource) Query(ctx context.Context, query string) (scanner.Rows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanner.FromSQL(rows, s.driver), nil
}

func (s *SQLSource) Conn(ctx context.Context) (*sql.Conn, error) {
	return s.db.Conn(ctx)
}

func (s *SQLSource) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// openSQLite accepts a file path, ":memory:" or a "file:" URI.
func openSQLite(ctx context.Context, dsn string, logger *slog.Logger) (Source, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	return OpenSQL(ctx, "sqlite", "sqlite", dsn, logger)
}

// openPostgres accepts the JDBC form "//host:port/db?user=u&password=p" or
// a libpq keyword string.
func openPostgres(ctx context.Context, dsn string, logger *slog.Logger) (Source, error) {
	if strings.HasPrefix(dsn, "//") {
		dsn = "postgres:" + dsn
	}
	return OpenSQL(ctx, "postgres", "pgx", dsn, logger)
}
