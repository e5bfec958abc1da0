package csvio

import (
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/go-data-exporter/factio/dialect"
	"github.com/go-data-exporter/factio/internal/testutil"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readRows(t *testing.T, c *Cursor) [][]string {
	t.Helper()
	var rows [][]string
	for c.HasNext() {
		row, err := c.Next()
		require.NoError(t, err)
		rows = append(rows, row.Values())
	}
	require.NoError(t, c.Err())
	return rows
}

func TestWriteThenRead_Default(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := Create(path, dialect.Default)
	require.NoError(t, err)
	require.NoError(t, w.WriteRow([]string{"a", "1"}))
	require.NoError(t, w.WriteRow([]string{"b", "2"}))
	assert.Equal(t, 2, w.Rows())
	require.NoError(t, w.Close())

	c, err := Open(path, dialect.Default)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	assert.Equal(t, [][]string{{"a", "1"}, {"b", "2"}}, readRows(t, c))
}

func TestWriteThenRead_EveryWriterCode(t *testing.T) {
	rows := [][]string{{"a", "1"}, {"b c", "x,y"}, {"q\"uote", "new\nline"}}

	for code := 0; code <= dialect.MaxWriterCode; code++ {
		t.Run(strconv.Itoa(code), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.csv")
			w, err := CreateCode(path, code, "")
			require.NoError(t, err)
			for _, row := range rows {
				require.NoError(t, w.WriteRow(row))
			}
			require.NoError(t, w.Close())

			c, err := Open(path, dialect.ForWriter(code))
			require.NoError(t, err)
			defer func() { _ = c.Close() }()
			assert.Equal(t, rows, readRows(t, c))
		})
	}
}

func TestCursor_HasNextIsRepeatable(t *testing.T) {
	path := writeFile(t, "in.csv", "a,1\nb,2\n")

	c, err := OpenCode(path, 0, false)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	assert.True(t, c.HasNext())
	assert.True(t, c.HasNext())
	row, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "1"}, row.Values())
	assert.Equal(t, 1, row.Line())

	row, err = c.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "2"}, row.Values())

	assert.False(t, c.HasNext())
	_, err = c.Next()
	assert.ErrorIs(t, err, ErrNoMoreRows)
}

func TestCursor_Close(t *testing.T) {
	path := writeFile(t, "in.csv", "a\nb\n")

	c, err := Open(path, dialect.Default, WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.False(t, c.HasNext())
	_, err = c.Next()
	assert.ErrorIs(t, err, ErrClosed)

	fresh, err := Open(path, dialect.Default)
	require.NoError(t, err)
	defer func() { _ = fresh.Close() }()
	assert.Equal(t, [][]string{{"a"}, {"b"}}, readRows(t, fresh))
}

func TestCursor_OpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.csv"), dialect.Default)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCursor_ParseErrorStopsIteration(t *testing.T) {
	path := writeFile(t, "bad.csv", "a,b\n\"open,c\n")

	c, err := Open(path, dialect.Default)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	_, err = c.Next()
	require.NoError(t, err)
	assert.False(t, c.HasNext())
	_, err = c.Next()
	require.Error(t, err)
	assert.Equal(t, err, c.Err())
}

func TestRow_TypedAccessors(t *testing.T) {
	path := writeFile(t, "people.csv", "name,age,score,small,big\nann, 42 ,3.5,-7,123456789012345678901234567890\nbob,forty,x,300,1.5\n")

	c, err := Open(path, dialect.Default, WithHeader(true))
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	assert.Equal(t, []string{"name", "age", "score", "small", "big"}, c.Header())

	ann, err := c.Next()
	require.NoError(t, err)
	bob, err := c.Next()
	require.NoError(t, err)

	t.Run("whitespace padded numbers parse", func(t *testing.T) {
		age, err := ann.Int32At(1)
		require.NoError(t, err)
		assert.Equal(t, int32(42), age)

		age64, err := ann.Int64Named("age")
		require.NoError(t, err)
		assert.Equal(t, int64(42), age64)

		raw, err := ann.StringNamed("age")
		require.NoError(t, err)
		assert.Equal(t, " 42 ", raw)
	})

	t.Run("floats and small ints", func(t *testing.T) {
		score, err := ann.Float64Named("score")
		require.NoError(t, err)
		assert.Equal(t, 3.5, score)

		score32, err := ann.Float32At(2)
		require.NoError(t, err)
		assert.Equal(t, float32(3.5), score32)

		small, err := ann.Int8Named("small")
		require.NoError(t, err)
		assert.Equal(t, int8(-7), small)

		small16, err := ann.Int16At(3)
		require.NoError(t, err)
		assert.Equal(t, int16(-7), small16)
	})

	t.Run("big integers", func(t *testing.T) {
		want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
		got, err := ann.BigIntNamed("big")
		require.NoError(t, err)
		assert.Equal(t, 0, want.Cmp(got))

		_, err = bob.BigIntAt(4)
		assert.ErrorIs(t, err, strconv.ErrSyntax)
	})

	t.Run("malformed text fails at access", func(t *testing.T) {
		_, err := bob.Int32Named("age")
		assert.ErrorIs(t, err, strconv.ErrSyntax)

		_, err = bob.Float64At(2)
		assert.ErrorIs(t, err, strconv.ErrSyntax)

		_, err = bob.Int8Named("small")
		assert.ErrorIs(t, err, strconv.ErrRange)
	})

	t.Run("unknown columns", func(t *testing.T) {
		_, err := ann.StringNamed("missing")
		assert.ErrorIs(t, err, ErrUnknownColumn)

		_, err = ann.StringAt(5)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)

		_, err = ann.StringAt(-1)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})
}

func TestRow_NamedWithoutHeader(t *testing.T) {
	path := writeFile(t, "in.csv", "a,1\n")

	c, err := Open(path, dialect.Default)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	row, err := c.Next()
	require.NoError(t, err)
	_, err = row.StringNamed("a")
	assert.ErrorIs(t, err, ErrNoHeader)
	assert.Nil(t, c.Header())
}

func TestRow_IsEmpty(t *testing.T) {
	path := writeFile(t, "in.csv", "a,\n\n,\n")

	c, err := Open(path, dialect.Excel)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	var empty []bool
	for c.HasNext() {
		row, err := c.Next()
		require.NoError(t, err)
		empty = append(empty, row.IsEmpty())
	}
	assert.Equal(t, []bool{false, true, true}, empty)
}

func TestRow_IsNullAt(t *testing.T) {
	path := writeFile(t, "in.tsv", "a\t\\N\t\n")

	c, err := OpenCode(path, 6, false)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	row, err := c.Next()
	require.NoError(t, err)
	assert.False(t, row.IsNullAt(0))
	assert.True(t, row.IsNullAt(1))
	assert.False(t, row.IsNullAt(2))
}

func TestRow_Decode(t *testing.T) {
	path := writeFile(t, "in.csv", "name,age,active\nann, 42 ,true\n")

	c, err := Open(path, dialect.Default, WithHeader(true))
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	row, err := c.Next()
	require.NoError(t, err)

	var person struct {
		Name   string `mapstructure:"name"`
		Age    int    `mapstructure:"age"`
		Active bool   `mapstructure:"active"`
	}
	require.NoError(t, row.Decode(&person))
	assert.Equal(t, "ann", person.Name)
	assert.Equal(t, 42, person.Age)
	assert.True(t, person.Active)
}

func TestOpenBOM(t *testing.T) {
	t.Run("utf-16 without mark", func(t *testing.T) {
		data, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte("x,y\n1,2\n"))
		require.NoError(t, err)
		path := writeFile(t, "in.csv", string(data))

		c, err := OpenBOM(path, dialect.Default)
		require.NoError(t, err)
		defer func() { _ = c.Close() }()
		assert.Equal(t, "UTF-16", c.Charset())
		assert.Equal(t, [][]string{{"x", "y"}, {"1", "2"}}, readRows(t, c))
	})

	t.Run("utf-8 mark", func(t *testing.T) {
		path := writeFile(t, "in.csv", "\ufeffx,y\n")

		c, err := OpenBOM(path, dialect.Default)
		require.NoError(t, err)
		defer func() { _ = c.Close() }()
		assert.Equal(t, "UTF-8", c.Charset())
		assert.Equal(t, [][]string{{"x", "y"}}, readRows(t, c))
	})
}

func TestOpenExcel(t *testing.T) {
	path := writeFile(t, "sheet.csv", "\ufeffname,qty\r\nwidget,3\r\n")

	c, err := OpenExcel(path, "UTF-8", true)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	assert.Equal(t, []string{"name", "qty"}, c.Header())
	row, err := c.Next()
	require.NoError(t, err)
	qty, err := row.Int32Named("qty")
	require.NoError(t, err)
	assert.Equal(t, int32(3), qty)
}

func TestOpenEncoded_Latin1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin1.csv")

	w, err := Create(path, dialect.Default, WithOutputEncoding("ISO-8859-1"))
	require.NoError(t, err)
	require.NoError(t, w.WriteRow([]string{"café", "crème"}))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("caf\xe9,cr\xe8me\r\n"), raw)

	c, err := OpenEncoded(path, dialect.Default, "ISO-8859-1")
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	assert.Equal(t, [][]string{{"café", "crème"}}, readRows(t, c))
}

func TestWriter_HeaderAndRowString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := CreateCode(path, 7, JoinRow([]string{"name", "qty"}))
	require.NoError(t, err)
	require.NoError(t, w.WriteRowString(JoinRow([]string{"a,b", "1"})))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.WriteRow([]string{"late"}), ErrClosed)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,qty\r\n\"a,b\",1\r\n", string(raw))
}

func TestSplitRow(t *testing.T) {
	cells := []string{"a", "", "c,d"}
	assert.Equal(t, cells, SplitRow(JoinRow(cells)))
}

func TestOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := Create(path, dialect.Default.WithRecordSeparator("\n"))
	require.NoError(t, err)
	out := NewOutput(w, 3)
	assert.Equal(t, 3, out.Columns())

	require.NoError(t, out.SetCell(0, "a"))
	require.NoError(t, out.SetCell(2, "c"))
	assert.ErrorIs(t, out.SetCell(3, "d"), ErrIndexOutOfRange)
	require.NoError(t, out.WriteRow())

	out.ClearCells()
	require.NoError(t, out.SetCell(1, "b"))
	require.NoError(t, out.WriteRow())
	require.NoError(t, out.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,,c\n\"\",b,\n", string(raw))
}
