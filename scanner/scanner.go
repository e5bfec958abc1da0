// Package scanner exposes tabular sources behind one pull-based interface so
// cursors and codecs can read database results and in-memory data alike.
package scanner

// Rows is a forward-only source of rows.
//
// Next advances to the next row and reports whether there is one. ScanRow
// returns the values of that row; the returned slice may be reused by the
// following call.
type Rows interface {
	Next() bool
	ScanRow() ([]any, error)
	Columns() ([]Column, error)
	Driver() string
	Err() error
	Close() error
}

// Metadata describes where a value came from. It is passed to the custom
// type mappers of the codecs.
type Metadata struct {
	RowID  int
	Driver string
	Column Column
}

// Names returns the column names of rows.
func Names(rows Rows) ([]string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name()
	}
	return names, nil
}
