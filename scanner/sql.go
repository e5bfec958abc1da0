package scanner

import (
	"database/sql"
	"errors"
	"io"
)

// sqlRows adapts *sql.Rows. Next, Err and Close come from the embedded value.
type sqlRows struct {
	*sql.Rows

	driver string
	closer io.Closer
	cols   []Column
	values []any
	ptrs   []any
}

// FromSQL wraps rows produced by the named driver.
func FromSQL(rows *sql.Rows, driver string) Rows {
	return &sqlRows{Rows: rows, driver: driver}
}

// FromSQLOwned is FromSQL for rows whose statement or connection belongs to
// the caller's Rows: closer is closed after rows.
func FromSQLOwned(rows *sql.Rows, driver string, closer io.Closer) Rows {
	return &sqlRows{Rows: rows, driver: driver, closer: closer}
}

type sqlColumn struct {
	*sql.ColumnType
	index int
}

func (c *sqlColumn) Index() int {
	return c.index
}

func (s *sqlRows) Columns() ([]Column, error) {
	if s.cols != nil {
		return s.cols, nil
	}
	types, err := s.Rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	cols := make([]Column, len(types))
	for i, t := range types {
		cols[i] = &sqlColumn{ColumnType: t, index: i}
	}
	s.cols = cols
	return s.cols, nil
}

// ScanRow scans the current row into a reused []any.
func (s *sqlRows) ScanRow() ([]any, error) {
	if s.cols == nil {
		if _, err := s.Columns(); err != nil {
			return nil, err
		}
	}
	if s.values == nil {
		s.values = make([]any, len(s.cols))
		s.ptrs = make([]any, len(s.cols))
		for i := range s.values {
			s.ptrs[i] = &s.values[i]
		}
	}
	if err := s.Rows.Scan(s.ptrs...); err != nil {
		return nil, err
	}
	return s.values, nil
}

func (s *sqlRows) Driver() string {
	return s.driver
}

func (s *sqlRows) Close() error {
	err := s.Rows.Close()
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
		s.closer = nil
	}
	return err
}
