package scanner

import (
	"errors"
	"fmt"
	"reflect"
)

var errScanBeforeNext = errors.New("scanner: ScanRow called without a successful Next")

// sliceRows serves rows held in memory.
type sliceRows struct {
	rows    [][]any
	columns []Column
	driver  string
	pos     int
	err     error
	closed  bool
}

// FromData returns Rows over rows. Columns are named column_0, column_1 and
// so on; their types are taken from the first row. Every row must have as
// many values as the first.
func FromData(rows [][]any) Rows {
	s := &sliceRows{rows: rows, driver: "go-slice", pos: -1}
	if len(rows) != 0 {
		for i, v := range rows[0] {
			c := &staticColumn{index: i, name: fmt.Sprintf("column_%d", i), typeName: "nil", nullable: true}
			if v != nil {
				c.scanType = reflect.TypeOf(v)
				c.typeName = c.scanType.String()
			}
			s.columns = append(s.columns, c)
		}
	}
	return s
}

// FromRecords returns Rows over text records labelled by header. Every
// record must have one value per label.
func FromRecords(header []string, records [][]string) Rows {
	s := &sliceRows{driver: "records", pos: -1}
	for i, name := range header {
		s.columns = append(s.columns, &staticColumn{
			index:    i,
			name:     name,
			typeName: "TEXT",
			scanType: reflect.TypeOf(""),
		})
	}
	s.rows = make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		s.rows[i] = row
	}
	return s
}

// FromTextValues returns Rows over text records labelled by header, where a
// nil value is NULL. Every row must have one value per label.
func FromTextValues(header []string, rows [][]any) Rows {
	s := &sliceRows{rows: rows, driver: "records", pos: -1}
	for i, name := range header {
		s.columns = append(s.columns, &staticColumn{
			index:    i,
			name:     name,
			typeName: "TEXT",
			scanType: reflect.TypeOf(""),
			nullable: true,
		})
	}
	return s
}

func (s *sliceRows) Driver() string {
	return s.driver
}

func (s *sliceRows) Err() error {
	return s.err
}

func (s *sliceRows) Next() bool {
	if s.closed || s.err != nil || s.pos+1 >= len(s.rows) {
		s.pos = len(s.rows)
		return false
	}
	s.pos++
	if len(s.rows[s.pos]) != len(s.columns) {
		s.err = fmt.Errorf("row %d has %d values, want %d", s.pos+1, len(s.rows[s.pos]), len(s.columns))
		return false
	}
	return true
}

func (s *sliceRows) ScanRow() ([]any, error) {
	if s.pos < 0 || s.pos >= len(s.rows) {
		return nil, errScanBeforeNext
	}
	return s.rows[s.pos], nil
}

func (s *sliceRows) Columns() ([]Column, error) {
	return s.columns, nil
}

func (s *sliceRows) Close() error {
	s.closed = true
	return nil
}
