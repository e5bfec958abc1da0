// Package tostring renders driver values as cell text and tells NULL apart
// from the empty string. Codecs and row getters share it so a value reads the
// same in every output.
package tostring

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var jsonStd = jsoniter.ConfigCompatibleWithStandardLibrary

// String is cell text plus whether the value was NULL.
type String struct {
	String string
	IsNULL bool
}

// Converter turns values into text.
type Converter struct {
	// TimeLayout formats time.Time values. Empty means time.RFC3339Nano.
	TimeLayout string
	// ZeroTimeIsNULL reports the zero time.Time as NULL.
	ZeroTimeIsNULL bool
}

// Default is the converter used by ToString.
var Default = Converter{TimeLayout: time.RFC3339Nano, ZeroTimeIsNULL: true}

// ToString converts v with Default.
func ToString(v any) String {
	return Default.ToString(v)
}

// ToString converts v. nil, invalid sql.Null* values, nil pointers and
// values that encode to JSON null, [] or {} are NULL.
//
// Numbers are formatted without exponent. Types implementing
// driver.Valuer are converted through their Value; other types go through
// json.Marshaler, fmt.Stringer and finally JSON encoding.
func (c Converter) ToString(v any) String {
	if v == nil {
		return String{"", true}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return String{"", true}
	}
	switch v := v.(type) {
	case string:
		return String{v, false}
	case []byte:
		return String{string(v), false}
	case bool:
		return String{strconv.FormatBool(v), false}
	case int:
		return String{strconv.Itoa(v), false}
	case int8:
		return String{strconv.FormatInt(int64(v), 10), false}
	case int16:
		return String{strconv.FormatInt(int64(v), 10), false}
	case int32:
		return String{strconv.FormatInt(int64(v), 10), false}
	case int64:
		return String{strconv.FormatInt(v, 10), false}
	case uint:
		return String{strconv.FormatUint(uint64(v), 10), false}
	case uint8:
		return String{strconv.FormatUint(uint64(v), 10), false}
	case uint16:
		return String{strconv.FormatUint(uint64(v), 10), false}
	case uint32:
		return String{strconv.FormatUint(uint64(v), 10), false}
	case uint64:
		return String{strconv.FormatUint(v, 10), false}
	case time.Time:
		if c.ZeroTimeIsNULL && v.IsZero() {
			return String{"", true}
		}
		layout := c.TimeLayout
		if layout == "" {
			layout = time.RFC3339Nano
		}
		return String{v.Format(layout), false}
	case float32:
		return String{strconv.FormatFloat(float64(v), 'f', -1, 32), false}
	case float64:
		return String{strconv.FormatFloat(v, 'f', -1, 64), false}
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil {
			return String{fmt.Sprintf("%v", v), false}
		}
		return c.ToString(dv)
	}

	if rv.Kind() == reflect.Pointer {
		if _, ok := v.(json.Marshaler); !ok {
			if _, ok := v.(fmt.Stringer); !ok {
				return c.ToString(rv.Elem().Interface())
			}
		}
	}

	if m, ok := v.(json.Marshaler); ok {
		if data, err := m.MarshalJSON(); err == nil {
			return fromJSON(data)
		}
	}
	if s, ok := v.(fmt.Stringer); ok {
		return String{s.String(), false}
	}
	if data, err := jsonStd.Marshal(v); err == nil {
		return fromJSON(data)
	}
	return String{fmt.Sprintf("%v", v), false}
}

func fromJSON(data []byte) String {
	s := strings.Trim(string(data), `"`)
	if s == "[]" || s == "{}" || s == "null" {
		return String{"", true}
	}
	return String{s, false}
}
