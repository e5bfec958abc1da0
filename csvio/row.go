package csvio

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Row is one record read by a Cursor. Cells are addressed by zero-based
// position or, when the cursor has a header, by column label.
//
// Typed accessors trim the cell and parse it; malformed text is reported at
// access time, not when the row is read.
type Row struct {
	values []string
	nulls  []bool
	header []string
	index  map[string]int
	line   int
}

// Len returns the number of cells.
func (r *Row) Len() int {
	return len(r.values)
}

// Line returns the line of the input the row started on.
func (r *Row) Line() int {
	return r.line
}

// Values returns a copy of the cells.
func (r *Row) Values() []string {
	return append([]string(nil), r.values...)
}

// IsEmpty reports whether every cell is the empty string.
func (r *Row) IsEmpty() bool {
	for _, v := range r.values {
		if v != "" {
			return false
		}
	}
	return true
}

// IsNullAt reports whether cell ix matched the dialect's NULL string.
func (r *Row) IsNullAt(ix int) bool {
	return ix >= 0 && ix < len(r.nulls) && r.nulls[ix]
}

func (r *Row) position(label string) (int, error) {
	if r.index == nil {
		return 0, ErrNoHeader
	}
	ix, ok := r.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, label)
	}
	return ix, nil
}

// StringAt returns cell ix unchanged.
func (r *Row) StringAt(ix int) (string, error) {
	if ix < 0 || ix >= len(r.values) {
		return "", fmt.Errorf("%w: %d (row has %d cells)", ErrIndexOutOfRange, ix, len(r.values))
	}
	return r.values[ix], nil
}

// StringNamed returns the cell under label unchanged.
func (r *Row) StringNamed(label string) (string, error) {
	ix, err := r.position(label)
	if err != nil {
		return "", err
	}
	return r.StringAt(ix)
}

func (r *Row) trimmedAt(ix int) (string, error) {
	s, err := r.StringAt(ix)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func (r *Row) trimmedNamed(label string) (string, error) {
	ix, err := r.position(label)
	if err != nil {
		return "", err
	}
	return r.trimmedAt(ix)
}

func parseInt(s string, bits int) (int64, error) {
	return strconv.ParseInt(s, 10, bits)
}

// Int8At parses cell ix as a signed 8-bit integer.
func (r *Row) Int8At(ix int) (int8, error) {
	s, err := r.trimmedAt(ix)
	if err != nil {
		return 0, err
	}
	v, err := parseInt(s, 8)
	return int8(v), err
}

// Int8Named parses the cell under label as a signed 8-bit integer.
func (r *Row) Int8Named(label string) (int8, error) {
	s, err := r.trimmedNamed(label)
	if err != nil {
		return 0, err
	}
	v, err := parseInt(s, 8)
	return int8(v), err
}

// Int16At parses cell ix as a 16-bit integer.
func (r *Row) Int16At(ix int) (int16, error) {
	s, err := r.trimmedAt(ix)
	if err != nil {
		return 0, err
	}
	v, err := parseInt(s, 16)
	return int16(v), err
}

// Int16Named parses the cell under label as a 16-bit integer.
func (r *Row) Int16Named(label string) (int16, error) {
	s, err := r.trimmedNamed(label)
	if err != nil {
		return 0, err
	}
	v, err := parseInt(s, 16)
	return int16(v), err
}

// Int32At parses cell ix as a 32-bit integer.
func (r *Row) Int32At(ix int) (int32, error) {
	s, err := r.trimmedAt(ix)
	if err != nil {
		return 0, err
	}
	v, err := parseInt(s, 32)
	return int32(v), err
}

// Int32Named parses the cell under label as a 32-bit integer.
func (r *Row) Int32Named(label string) (int32, error) {
	s, err := r.trimmedNamed(label)
	if err != nil {
		return 0, err
	}
	v, err := parseInt(s, 32)
	return int32(v), err
}

// Int64At parses cell ix as a 64-bit integer.
func (r *Row) Int64At(ix int) (int64, error) {
	s, err := r.trimmedAt(ix)
	if err != nil {
		return 0, err
	}
	return parseInt(s, 64)
}

// Int64Named parses the cell under label as a 64-bit integer.
func (r *Row) Int64Named(label string) (int64, error) {
	s, err := r.trimmedNamed(label)
	if err != nil {
		return 0, err
	}
	return parseInt(s, 64)
}

// Float32At parses cell ix as a 32-bit float.
func (r *Row) Float32At(ix int) (float32, error) {
	s, err := r.trimmedAt(ix)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}

// Float32Named parses the cell under label as a 32-bit float.
func (r *Row) Float32Named(label string) (float32, error) {
	s, err := r.trimmedNamed(label)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}

// Float64At parses cell ix as a 64-bit float.
func (r *Row) Float64At(ix int) (float64, error) {
	s, err := r.trimmedAt(ix)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

// Float64Named parses the cell under label as a 64-bit float.
func (r *Row) Float64Named(label string) (float64, error) {
	s, err := r.trimmedNamed(label)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

func parseBigInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, &strconv.NumError{Func: "BigInt", Num: s, Err: strconv.ErrSyntax}
	}
	return v, nil
}

// BigIntAt parses cell ix as an arbitrary precision integer.
func (r *Row) BigIntAt(ix int) (*big.Int, error) {
	s, err := r.trimmedAt(ix)
	if err != nil {
		return nil, err
	}
	return parseBigInt(s)
}

// BigIntNamed parses the cell under label as an arbitrary precision integer.
func (r *Row) BigIntNamed(label string) (*big.Int, error) {
	s, err := r.trimmedNamed(label)
	if err != nil {
		return nil, err
	}
	return parseBigInt(s)
}

// Map returns the row keyed by header label. Cells without a label are left out.
func (r *Row) Map() (map[string]string, error) {
	if r.index == nil {
		return nil, ErrNoHeader
	}
	m := make(map[string]string, len(r.index))
	for label, ix := range r.index {
		if ix < len(r.values) {
			m[label] = r.values[ix]
		}
	}
	return m, nil
}

// Decode copies the row into the struct or map pointed to by v, matching
// header labels to `mapstructure` tags. Text is converted to the field types.
func (r *Row) Decode(v any) error {
	m, err := r.Map()
	if err != nil {
		return err
	}
	trimmed := make(map[string]any, len(m))
	for k, s := range m {
		trimmed[k] = strings.TrimSpace(s)
	}
	return mapstructure.WeakDecode(trimmed, v)
}
