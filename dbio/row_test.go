package dbio

import (
	"database/sql"
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-data-exporter/factio/scanner"
)

func TestAsInt(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		bits    int
		want    int64
		wantErr error
	}{
		{name: "null", in: nil, bits: 32, want: 0},
		{name: "int64", in: int64(7), bits: 64, want: 7},
		{name: "trimmed text", in: " 42 ", bits: 32, want: 42},
		{name: "bytes", in: []byte("-5"), bits: 8, want: -5},
		{name: "float truncates", in: 3.9, bits: 32, want: 3},
		{name: "bool", in: true, bits: 8, want: 1},
		{name: "int8 overflow", in: int64(128), bits: 8, wantErr: strconv.ErrRange},
		{name: "int16 underflow", in: int64(-32769), bits: 16, wantErr: strconv.ErrRange},
		{name: "text overflow", in: "300", bits: 8, wantErr: strconv.ErrRange},
		{name: "uint64 overflow", in: uint64(math.MaxUint64), bits: 64, wantErr: strconv.ErrRange},
		{name: "nan", in: math.NaN(), bits: 64, wantErr: strconv.ErrRange},
		{name: "not a number", in: "abc", bits: 32, wantErr: strconv.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := asInt(tt.in, tt.bits)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := asInt(time.Now(), 64)
	assert.Error(t, err)
}

func TestAsFloat(t *testing.T) {
	f, err := asFloat(" 2.5 ", 64)
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)

	f, err = asFloat(int64(3), 32)
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	_, err = asFloat(1e300, 32)
	assert.ErrorIs(t, err, strconv.ErrRange)

	_, err = asFloat("x", 64)
	assert.ErrorIs(t, err, strconv.ErrSyntax)

	for _, v := range []any{int8(7), int16(7), uint8(7), uint16(7), uint32(7)} {
		f, err := asFloat(v, 64)
		require.NoError(t, err, "%T", v)
		assert.Equal(t, 7.0, f, "%T", v)
	}
}

func TestRow_SmallIntegers(t *testing.T) {
	c, err := NewCursor(scanner.FromData([][]any{{int16(7), uint8(3)}}), nil)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	ok, err := c.Next()
	require.NoError(t, err)
	require.True(t, ok)

	n, err := c.Row().Int64At(0)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	f, err := c.Row().Float64At(0)
	require.NoError(t, err)
	assert.Equal(t, 7.0, f)
	g, err := c.Row().Float32At(1)
	require.NoError(t, err)
	assert.Equal(t, float32(3), g)
}

func TestAsBool(t *testing.T) {
	for in, want := range map[any]bool{"true": true, " f ": false, "1": true, int64(0): false, int64(9): true} {
		got, err := asBool(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := asBool("maybe")
	assert.Error(t, err)
}

func TestAsTime(t *testing.T) {
	want := time.Date(2024, 2, 29, 13, 14, 15, 0, time.UTC)
	for _, in := range []any{"2024-02-29T13:14:15Z", "2024-02-29 13:14:15", []byte("2024-02-29T13:14:15"), want, want.Unix()} {
		got, err := asTime(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%v: got %v", in, got)
	}

	day, err := asTime("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 29, day.Day())

	_, err = asTime("yesterday")
	assert.Error(t, err)
}

func TestAsString(t *testing.T) {
	assert.Equal(t, "", asString(nil))
	assert.Equal(t, "12", asString(int64(12)))
	assert.Equal(t, "0.25", asString(0.25))
	assert.Equal(t, "raw", asString([]byte("raw")))
	assert.Equal(t, "2024-02-29 13:14:15", asString(time.Date(2024, 2, 29, 13, 14, 15, 0, time.UTC)))
	assert.Equal(t, "0001-01-01 00:00:00", asString(time.Time{}))
	assert.Equal(t, "", asString(sql.NullString{}))
	assert.Equal(t, "7", asString(sql.NullInt64{Int64: 7, Valid: true}))
}

type recordingCloser struct{ calls int }

func (c *recordingCloser) Close() error {
	c.calls++
	return errors.New("closer failed")
}

func TestNewCursor_InMemory(t *testing.T) {
	closer := &recordingCloser{}
	c, err := NewCursor(scanner.FromData([][]any{{int64(1), "x"}}), closer)
	require.NoError(t, err)
	assert.Equal(t, []string{"column_0", "column_1"}, c.Columns())

	ok, err := c.Next()
	require.NoError(t, err)
	require.True(t, ok)

	v, err := c.Row().ValueAt(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	v, err = c.Row().ValueNamed("COLUMN_1")
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	assert.Error(t, c.Close())
	assert.NoError(t, c.Close())
	assert.Equal(t, 1, closer.calls)

	_, err = c.Row().StringAt(0)
	assert.ErrorIs(t, err, ErrClosed)
}
