package dbio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// Writer runs statements on one reserved connection.
//
// With auto-commit on (the default) every statement commits by itself. With
// it off, the first statement opens a transaction that lasts until Commit or
// Rollback.
type Writer struct {
	src        Source
	conn       *sql.Conn
	tx         *sql.Tx
	logger     *slog.Logger
	autoCommit bool
	stmts      map[*Statement]struct{}
	closed     bool
}

// OpenWriter opens the database named by url for writing. Close releases
// the connection and the database.
func OpenWriter(ctx context.Context, url string, opts ...Option) (*Writer, error) {
	src, err := Open(ctx, url, opts...)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(ctx, src, opts...)
	if err != nil {
		return nil, errors.Join(err, src.Close())
	}
	return w, nil
}

// NewWriter reserves a connection of src. Close closes src too.
func NewWriter(ctx context.Context, src Source, opts ...Option) (*Writer, error) {
	o := newOptions(opts)
	conn, err := src.Conn(ctx)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("writer connected", slog.String("scheme", src.Scheme()))
	return &Writer{
		src:        src,
		conn:       conn,
		logger:     o.logger,
		autoCommit: true,
		stmts:      make(map[*Statement]struct{}),
	}, nil
}

// AutoCommit reports whether each statement commits by itself.
func (w *Writer) AutoCommit() bool {
	return w.autoCommit
}

// SetAutoCommit switches auto-commit. Turning it on commits an open
// transaction.
func (w *Writer) SetAutoCommit(ctx context.Context, on bool) error {
	if w.closed {
		return ErrClosed
	}
	if on && w.tx != nil {
		if err := w.commit(); err != nil {
			return err
		}
	}
	w.autoCommit = on
	return nil
}

// Commit makes the open transaction's changes permanent. It is a no-op when
// no statement ran since the last Commit or Rollback.
func (w *Writer) Commit(ctx context.Context) error {
	if err := w.checkManual(); err != nil {
		return err
	}
	if w.tx == nil {
		return nil
	}
	return w.commit()
}

// Rollback discards the open transaction's changes.
func (w *Writer) Rollback(ctx context.Context) error {
	if err := w.checkManual(); err != nil {
		return err
	}
	if w.tx == nil {
		return nil
	}
	err := w.tx.Rollback()
	w.tx = nil
	w.logger.Debug("rolled back")
	return err
}

func (w *Writer) checkManual() error {
	if w.closed {
		return ErrClosed
	}
	if w.autoCommit {
		return ErrAutoCommit
	}
	return nil
}

func (w *Writer) commit() error {
	err := w.tx.Commit()
	w.tx = nil
	w.logger.Debug("committed")
	return err
}

// begin returns the open transaction, starting one if needed.
func (w *Writer) begin(ctx context.Context) (*sql.Tx, error) {
	if w.tx != nil {
		return w.tx, nil
	}
	tx, err := w.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	w.tx = tx
	return tx, nil
}

// Execute runs query without parameters, typically DDL.
func (w *Writer) Execute(ctx context.Context, query string) error {
	if w.closed {
		return ErrClosed
	}
	if w.autoCommit {
		_, err := w.conn.ExecContext(ctx, query)
		return err
	}
	tx, err := w.begin(ctx)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query)
	return err
}

// Prepare compiles query for repeated execution with positional parameters.
func (w *Writer) Prepare(ctx context.Context, query string) (*Statement, error) {
	if w.closed {
		return nil, ErrClosed
	}
	stmt, err := w.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	s := &Statement{w: w, stmt: stmt, query: query}
	w.stmts[s] = struct{}{}
	return s, nil
}

// Close rolls back an open transaction, closes open statements and releases
// the connection. Calling Close again is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	var errs []error
	if w.tx != nil {
		w.logger.Debug("rolling back unfinished transaction")
		errs = append(errs, w.tx.Rollback())
		w.tx = nil
	}
	for s := range w.stmts {
		errs = append(errs, s.Close())
	}
	w.closed = true
	errs = append(errs, w.conn.Close(), w.src.Close())
	return errors.Join(errs...)
}
