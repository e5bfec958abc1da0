package csvio

import "fmt"

// Output builds records cell by cell. The number of cells is fixed when the
// Output is created; cells keep their value across WriteRow until cleared.
type Output struct {
	w   *Writer
	row []string
}

// NewOutput returns an Output writing rows of columns cells to w.
func NewOutput(w *Writer, columns int) *Output {
	return &Output{w: w, row: make([]string, columns)}
}

// Columns returns the fixed number of cells per row.
func (o *Output) Columns() int {
	return len(o.row)
}

// SetCell sets cell ix of the pending row.
func (o *Output) SetCell(ix int, value string) error {
	if ix < 0 || ix >= len(o.row) {
		return fmt.Errorf("%w: %d (row has %d cells)", ErrIndexOutOfRange, ix, len(o.row))
	}
	o.row[ix] = value
	return nil
}

// ClearCells resets every cell of the pending row to the empty string.
func (o *Output) ClearCells() {
	for i := range o.row {
		o.row[i] = ""
	}
}

// WriteRow writes the pending row.
func (o *Output) WriteRow() error {
	return o.w.WriteRow(o.row)
}

// Close closes the underlying Writer.
func (o *Output) Close() error {
	return o.w.Close()
}
