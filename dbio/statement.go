package dbio

import (
	"context"
	"database/sql"
	"fmt"
)

// Statement is a prepared statement with zero-based positional parameters.
// Parameters keep their values across executions until cleared.
type Statement struct {
	w      *Writer
	stmt   *sql.Stmt
	query  string
	params []any
	set    []bool

	// the statement rebound to the writer's transaction
	txStmt *sql.Stmt
	tx     *sql.Tx

	closed bool
}

// SetValue binds any driver-supported value to parameter ix.
func (s *Statement) SetValue(ix int, v any) error {
	if s.closed {
		return ErrClosed
	}
	if ix < 0 {
		return fmt.Errorf("%w: parameter %d", ErrIndexOutOfRange, ix)
	}
	for len(s.params) <= ix {
		s.params = append(s.params, nil)
		s.set = append(s.set, false)
	}
	s.params[ix] = v
	s.set[ix] = true
	return nil
}

// SetString binds a string to parameter ix.
func (s *Statement) SetString(ix int, v string) error {
	return s.SetValue(ix, v)
}

// SetInt64 binds an integer to parameter ix.
func (s *Statement) SetInt64(ix int, v int64) error {
	return s.SetValue(ix, v)
}

// SetFloat64 binds a float to parameter ix.
func (s *Statement) SetFloat64(ix int, v float64) error {
	return s.SetValue(ix, v)
}

// SetBool binds a boolean to parameter ix.
func (s *Statement) SetBool(ix int, v bool) error {
	return s.SetValue(ix, v)
}

// SetNull binds SQL NULL to parameter ix.
func (s *Statement) SetNull(ix int) error {
	return s.SetValue(ix, nil)
}

// ClearParameters unbinds every parameter.
func (s *Statement) ClearParameters() {
	s.params = s.params[:0]
	s.set = s.set[:0]
}

// ExecuteUpdate runs the statement with the bound parameters and returns the
// number of rows affected.
func (s *Statement) ExecuteUpdate(ctx context.Context) (int64, error) {
	if s.closed || s.w.closed {
		return 0, ErrClosed
	}
	for i, ok := range s.set {
		if !ok {
			return 0, fmt.Errorf("%w: %d", ErrParameterNotSet, i)
		}
	}
	stmt, err := s.bound(ctx)
	if err != nil {
		return 0, err
	}
	res, err := stmt.ExecContext(ctx, s.params...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// bound returns the statement to execute: the prepared one under
// auto-commit, otherwise a copy tied to the open transaction.
func (s *Statement) bound(ctx context.Context) (*sql.Stmt, error) {
	if s.w.autoCommit {
		return s.stmt, nil
	}
	tx, err := s.w.begin(ctx)
	if err != nil {
		return nil, err
	}
	if s.tx != tx {
		s.txStmt = tx.StmtContext(ctx, s.stmt)
		s.tx = tx
	}
	return s.txStmt, nil
}

// Close releases the prepared statement. Calling Close again is a no-op.
func (s *Statement) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	delete(s.w.stmts, s)
	return s.stmt.Close()
}
