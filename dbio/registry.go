// Package dbio runs queries through pull-based cursors and writes through
// transactions and prepared statements, for any database reachable by a
// JDBC-style connection URL such as "jdbc:sqlite:/tmp/facts.db".
package dbio

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/go-data-exporter/factio/scanner"
)

// Source is an open database.
type Source interface {
	// Query runs query and returns its result set.
	Query(ctx context.Context, query string) (scanner.Rows, error)
	// Conn reserves one connection for writing. Read-only sources return ErrReadOnly.
	Conn(ctx context.Context) (*sql.Conn, error)
	// Scheme names the registered opener that produced the source.
	Scheme() string
	Close() error
}

// Opener opens a source from the driver-specific part of a URL.
type Opener func(ctx context.Context, dsn string, logger *slog.Logger) (Source, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Opener)
)

// Register makes open available for URLs with the given scheme. Registering
// a scheme twice replaces the earlier opener.
func Register(scheme string, open Opener) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(scheme)] = open
}

// Schemes returns the registered schemes, sorted.
func Schemes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(scheme string) (Opener, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	open, ok := registry[scheme]
	return open, ok
}

// ParseURL splits a connection URL into its scheme and the remainder handed
// to the opener. A leading "jdbc:" is dropped:
//
//	jdbc:sqlite:/tmp/a.db              -> sqlite, /tmp/a.db
//	jdbc:postgresql://h:5432/db?user=u -> postgresql, //h:5432/db?user=u
func ParseURL(url string) (scheme, dsn string, err error) {
	rest := url
	if len(rest) >= 5 && strings.EqualFold(rest[:5], "jdbc:") {
		rest = rest[5:]
	}
	scheme, dsn, ok := strings.Cut(rest, ":")
	if !ok || scheme == "" {
		return "", "", fmt.Errorf("dbio: malformed connection url %q", url)
	}
	return strings.ToLower(scheme), dsn, nil
}

// Open opens the database named by url.
func Open(ctx context.Context, url string, opts ...Option) (Source, error) {
	o := newOptions(opts)
	scheme, dsn, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	open, ok := lookup(scheme)
	if !ok {
		return nil, &UnknownSchemeError{Scheme: scheme, Available: Schemes()}
	}
	o.logger.Debug("opening database", slog.String("scheme", scheme))
	src, err := open(ctx, dsn, o.logger)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", scheme, err)
	}
	return src, nil
}

type options struct {
	logger *slog.Logger
}

// Option configures Open, OpenCursor and OpenWriter.
type Option func(*options)

// WithLogger sets the logger. Nil discards log output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}
