package dbio

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/beltran/gohive"

	"github.com/go-data-exporter/factio/scanner"
)

func init() {
	Register("hive", openHive)
	Register("hive2", openHive)
}

const defaultHivePort = 10000

type hiveSource struct {
	conn   *gohive.Connection
	logger *slog.Logger
}

// hiveConfig is a parsed hive URL: //host:port/database;key=value?auth=NONE&user=u
type hiveConfig struct {
	host     string
	port     int
	auth     string
	database string
	username string
	password string
	session  map[string]string
}

func parseHiveDSN(dsn string) (hiveConfig, error) {
	cfg := hiveConfig{port: defaultHivePort, auth: "NONE", session: map[string]string{}}
	if !strings.HasPrefix(dsn, "//") {
		return cfg, fmt.Errorf("hive url must start with //host, got %q", dsn)
	}
	// Session variables follow the path, separated by semicolons.
	path, query, _ := strings.Cut(dsn, "?")
	parts := strings.Split(path, ";")
	for _, kv := range parts[1:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return cfg, fmt.Errorf("hive session variable %q is not key=value", kv)
		}
		cfg.session[k] = v
	}
	u, err := url.Parse("hive:" + parts[0])
	if err != nil {
		return cfg, err
	}
	cfg.host = u.Hostname()
	if p := u.Port(); p != "" {
		if cfg.port, err = strconv.Atoi(p); err != nil {
			return cfg, fmt.Errorf("hive port %q: %w", p, err)
		}
	}
	cfg.database = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		cfg.username = u.User.Username()
		cfg.password, _ = u.User.Password()
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return cfg, err
	}
	if v := values.Get("auth"); v != "" {
		cfg.auth = v
	}
	if v := values.Get("user"); v != "" {
		cfg.username = v
	}
	if v := values.Get("password"); v != "" {
		cfg.password = v
	}
	return cfg, nil
}

func openHive(ctx context.Context, dsn string, logger *slog.Logger) (Source, error) {
	cfg, err := parseHiveDSN(dsn)
	if err != nil {
		return nil, err
	}
	conf := gohive.NewConnectConfiguration()
	conf.Database = cfg.database
	conf.Username = cfg.username
	conf.Password = cfg.password
	conf.HiveConfiguration = cfg.session

	logger.Debug("connecting to hive", slog.String("host", cfg.host), slog.Int("port", cfg.port), slog.String("database", cfg.database))
	conn, err := gohive.Connect(cfg.host, cfg.port, cfg.auth, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to hive: %w", err)
	}
	return &hiveSource{conn: conn, logger: logger}, nil
}

func (h *hiveSource) Scheme() string {
	return "hive"
}

func (h *hiveSource) Query(ctx context.Context, query string) (scanner.Rows, error) {
	cursor := h.conn.Cursor()
	cursor.Exec(ctx, query)
	if cursor.Err != nil {
		err := cursor.Err
		cursor.Close()
		return nil, err
	}
	return scanner.FromHiveCursor(ctx, cursor), nil
}

func (h *hiveSource) Conn(context.Context) (*sql.Conn, error) {
	return nil, ErrReadOnly
}

func (h *hiveSource) Close() error {
	return h.conn.Close()
}
