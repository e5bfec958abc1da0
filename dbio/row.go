package dbio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-data-exporter/factio/tostring"
)

// Row is a view of the cursor's current row. Positions are zero-based and
// labels match exactly first, then case-insensitively.
//
// Getters convert the driver value the way a result-set getter would: SQL
// NULL gives the zero value, text is trimmed and parsed, and numbers that do
// not fit the requested type fail with strconv.ErrRange.
type Row struct {
	c *Cursor
}

func (r *Row) named(label string) (any, error) {
	ix, err := r.c.position(label)
	if err != nil {
		return nil, err
	}
	return r.c.value(ix)
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return len(r.c.columns)
}

// ValueAt returns the raw driver value of column ix.
func (r *Row) ValueAt(ix int) (any, error) {
	return r.c.value(ix)
}

// ValueNamed returns the raw driver value under label.
func (r *Row) ValueNamed(label string) (any, error) {
	return r.named(label)
}

// IsNullAt reports whether column ix is SQL NULL.
func (r *Row) IsNullAt(ix int) (bool, error) {
	v, err := r.c.value(ix)
	return v == nil, err
}

// IsNullNamed reports whether the column under label is SQL NULL.
func (r *Row) IsNullNamed(label string) (bool, error) {
	v, err := r.named(label)
	return v == nil, err
}

// StringAt returns column ix as text. NULL is "".
func (r *Row) StringAt(ix int) (string, error) {
	v, err := r.c.value(ix)
	if err != nil {
		return "", err
	}
	return asString(v), nil
}

// StringNamed returns the column under label as text. NULL is "".
func (r *Row) StringNamed(label string) (string, error) {
	v, err := r.named(label)
	if err != nil {
		return "", err
	}
	return asString(v), nil
}

// Int8At returns column ix as a signed 8-bit integer.
func (r *Row) Int8At(ix int) (int8, error) {
	v, err := r.c.value(ix)
	if err != nil {
		return 0, err
	}
	n, err := asInt(v, 8)
	return int8(n), err
}

// Int8Named returns the column under label as a signed 8-bit integer.
func (r *Row) Int8Named(label string) (int8, error) {
	v, err := r.named(label)
	if err != nil {
		return 0, err
	}
	n, err := asInt(v, 8)
	return int8(n), err
}

// Int16At returns column ix as a 16-bit integer.
func (r *Row) Int16At(ix int) (int16, error) {
	v, err := r.c.value(ix)
	if err != nil {
		return 0, err
	}
	n, err := asInt(v, 16)
	return int16(n), err
}

// Int16Named returns the column under label as a 16-bit integer.
func (r *Row) Int16Named(label string) (int16, error) {
	v, err := r.named(label)
	if err != nil {
		return 0, err
	}
	n, err := asInt(v, 16)
	return int16(n), err
}

// Int32At returns column ix as a 32-bit integer.
func (r *Row) Int32At(ix int) (int32, error) {
	v, err := r.c.value(ix)
	if err != nil {
		return 0, err
	}
	n, err := asInt(v, 32)
	return int32(n), err
}

// Int32Named returns the column under label as a 32-bit integer.
func (r *Row) Int32Named(label string) (int32, error) {
	v, err := r.named(label)
	if err != nil {
		return 0, err
	}
	n, err := asInt(v, 32)
	return int32(n), err
}

// Int64At returns column ix as a 64-bit integer.
func (r *Row) Int64At(ix int) (int64, error) {
	v, err := r.c.value(ix)
	if err != nil {
		return 0, err
	}
	return asInt(v, 64)
}

// Int64Named returns the column under label as a 64-bit integer.
func (r *Row) Int64Named(label string) (int64, error) {
	v, err := r.named(label)
	if err != nil {
		return 0, err
	}
	return asInt(v, 64)
}

// Float32At returns column ix as a 32-bit float.
func (r *Row) Float32At(ix int) (float32, error) {
	v, err := r.c.value(ix)
	if err != nil {
		return 0, err
	}
	f, err := asFloat(v, 32)
	return float32(f), err
}

// Float32Named returns the column under label as a 32-bit float.
func (r *Row) Float32Named(label string) (float32, error) {
	v, err := r.named(label)
	if err != nil {
		return 0, err
	}
	f, err := asFloat(v, 32)
	return float32(f), err
}

// Float64At returns column ix as a 64-bit float.
func (r *Row) Float64At(ix int) (float64, error) {
	v, err := r.c.value(ix)
	if err != nil {
		return 0, err
	}
	return asFloat(v, 64)
}

// Float64Named returns the column under label as a 64-bit float.
func (r *Row) Float64Named(label string) (float64, error) {
	v, err := r.named(label)
	if err != nil {
		return 0, err
	}
	return asFloat(v, 64)
}

// BoolAt returns column ix as a boolean. Numbers are true when non-zero.
func (r *Row) BoolAt(ix int) (bool, error) {
	v, err := r.c.value(ix)
	if err != nil {
		return false, err
	}
	return asBool(v)
}

// BoolNamed returns the column under label as a boolean.
func (r *Row) BoolNamed(label string) (bool, error) {
	v, err := r.named(label)
	if err != nil {
		return false, err
	}
	return asBool(v)
}

// TimeAt returns column ix as a time. Text is parsed as RFC 3339 or as an
// SQL date or timestamp; integers are Unix seconds.
func (r *Row) TimeAt(ix int) (time.Time, error) {
	v, err := r.c.value(ix)
	if err != nil {
		return time.Time{}, err
	}
	return asTime(v)
}

// TimeNamed returns the column under label as a time.
func (r *Row) TimeNamed(label string) (time.Time, error) {
	v, err := r.named(label)
	if err != nil {
		return time.Time{}, err
	}
	return asTime(v)
}

var text = tostring.Converter{TimeLayout: sqlTimestamp}

func asString(v any) string {
	return text.ToString(v).String
}

func rangeError(fn string, v any) error {
	return &strconv.NumError{Func: fn, Num: fmt.Sprint(v), Err: strconv.ErrRange}
}

func asInt(v any, bits int) (int64, error) {
	var n int64
	switch v := v.(type) {
	case nil:
		return 0, nil
	case int64:
		n = v
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int16:
		n = int64(v)
	case int8:
		n = int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return 0, rangeError("Int", v)
		}
		n = int64(v)
	case uint32:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint8:
		n = int64(v)
	case float64:
		if math.IsNaN(v) || v >= math.MaxInt64 || v < math.MinInt64 {
			return 0, rangeError("Int", v)
		}
		n = int64(v)
	case float32:
		return asInt(float64(v), bits)
	case bool:
		if v {
			n = 1
		}
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, bits)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(v)), 10, bits)
	default:
		return 0, fmt.Errorf("dbio: cannot convert %T to an integer", v)
	}
	if bits < 64 {
		limit := int64(1) << (bits - 1)
		if n < -limit || n >= limit {
			return 0, rangeError("Int"+strconv.Itoa(bits), n)
		}
	}
	return n, nil
}

func asFloat(v any, bits int) (float64, error) {
	var f float64
	switch v := v.(type) {
	case nil:
		return 0, nil
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int64:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int16:
		f = float64(v)
	case int8:
		f = float64(v)
	case uint64:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint8:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), bits)
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(v)), bits)
	default:
		return 0, fmt.Errorf("dbio: cannot convert %T to a float", v)
	}
	if bits == 32 && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
		return 0, rangeError("Float32", f)
	}
	return f, nil
}

func asBool(v any) (bool, error) {
	switch v := v.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	case []byte:
		return strconv.ParseBool(strings.TrimSpace(string(v)))
	}
	n, err := asInt(v, 64)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

const sqlTimestamp = "2006-01-02 15:04:05.999999999"

var timeLayouts = []string{
	time.RFC3339Nano,
	sqlTimestamp,
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

func asTime(v any) (time.Time, error) {
	switch v := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	}
	return time.Time{}, fmt.Errorf("dbio: cannot convert %T to a time", v)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
