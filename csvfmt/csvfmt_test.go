package csvfmt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-data-exporter/factio/dialect"
)

var allPresets = []dialect.Dialect{
	dialect.Default, dialect.Excel, dialect.InformixUnload, dialect.InformixUnloadCSV,
	dialect.MongoDBCSV, dialect.MongoDBTSV, dialect.MySQL, dialect.RFC4180, dialect.Oracle,
	dialect.PostgreSQLCSV, dialect.PostgreSQLText, dialect.TDF,
}

func readAll(t *testing.T, input string, d dialect.Dialect) [][]string {
	t.Helper()
	p := NewParser(strings.NewReader(input), d)
	var out [][]string
	for {
		rec, err := p.Read()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestParser_Read(t *testing.T) {
	tests := []struct {
		name    string
		dialect dialect.Dialect
		input   string
		want    [][]string
	}{
		{
			name:    "default quoting and empty lines",
			dialect: dialect.Default,
			input:   "a,\"b,c\",\"d\"\"e\"\r\n\r\nx,y\n",
			want:    [][]string{{"a", "b,c", `d"e`}, {"x", "y"}},
		},
		{
			name:    "no trailing newline",
			dialect: dialect.Default,
			input:   "a,b",
			want:    [][]string{{"a", "b"}},
		},
		{
			name:    "excel keeps blank lines",
			dialect: dialect.Excel,
			input:   "a\n\nb\n",
			want:    [][]string{{"a"}, {""}, {"b"}},
		},
		{
			name:    "mysql escapes",
			dialect: dialect.MySQL,
			input:   "a\\tb\t\\N\tc\\\\d\n",
			want:    [][]string{{"a\tb", "", `c\d`}},
		},
		{
			name:    "unknown escape keeps both characters",
			dialect: dialect.PostgreSQLText,
			input:   "a\\qb\n",
			want:    [][]string{{`a\qb`}},
		},
		{
			name:    "tdf ignores surrounding spaces",
			dialect: dialect.TDF,
			input:   "  a  \t b\n",
			want:    [][]string{{"a", "b"}},
		},
		{
			name:    "oracle trims",
			dialect: dialect.Oracle,
			input:   " a , b \n",
			want:    [][]string{{"a", "b"}},
		},
		{
			name:    "quoted newline",
			dialect: dialect.RFC4180,
			input:   "\"one\ntwo\",3\r\n",
			want:    [][]string{{"one\ntwo", "3"}},
		},
		{
			name:    "informix pipe with escaped delimiter",
			dialect: dialect.InformixUnload,
			input:   "a\\|b|c\n",
			want:    [][]string{{"a|b", "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readAll(t, tt.input, tt.dialect))
		})
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		dialect dialect.Dialect
		input   string
		want    error
	}{
		{"unterminated quote", dialect.Default, "a,\"bc", ErrUnterminatedQuote},
		{"data after closing quote", dialect.Default, "\"a\"b,c\n", ErrTrailingQuote},
		{"escape at end of input", dialect.MySQL, "a\\", ErrEscapeAtEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(strings.NewReader(tt.input), tt.dialect)
			_, err := p.Read()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, 1, perr.Line)
		})
	}
}

func TestParser_Line(t *testing.T) {
	p := NewParser(strings.NewReader("a\n\"b\nc\"\nd\n"), dialect.Default)

	_, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, 1, p.Line())

	_, err = p.Read()
	require.NoError(t, err)
	assert.Equal(t, 2, p.Line())

	_, err = p.Read()
	require.NoError(t, err)
	assert.Equal(t, 4, p.Line())
}

func TestRoundTrip(t *testing.T) {
	rows := [][]string{
		{"a", "1"},
		{"b", "2"},
		{"x y", "with,comma", `with"quote`},
		{"multi\nline", `back\slash`, "tab\there"},
		{"", "mid", ""},
		{`\N`, "NULL", "|pipe|"},
	}

	for _, d := range allPresets {
		t.Run(d.Name, func(t *testing.T) {
			var buf bytes.Buffer
			pr := NewPrinter(&buf, d)
			for _, row := range rows {
				require.NoError(t, pr.PrintRecord(row))
			}
			require.NoError(t, pr.Flush())

			got := readAll(t, buf.String(), d)
			assert.Equal(t, rows, got, "printed:\n%s", buf.String())
		})
	}
}

func TestRoundTrip_Nulls(t *testing.T) {
	for _, d := range allPresets {
		if !d.HasNullString {
			continue
		}
		t.Run(d.Name, func(t *testing.T) {
			var buf bytes.Buffer
			pr := NewPrinter(&buf, d)
			require.NoError(t, pr.PrintNullable([]string{"x", "", ""}, []bool{false, true, false}))
			require.NoError(t, pr.Flush())

			p := NewParser(&buf, d)
			rec, err := p.ReadRecord()
			require.NoError(t, err)
			assert.Equal(t, []string{"x", "", ""}, rec.Values)
			assert.False(t, rec.IsNull(0))
			assert.True(t, rec.IsNull(1))
			assert.False(t, rec.IsNull(2))
		})
	}
}

func TestPrinter_QuoteModes(t *testing.T) {
	tests := []struct {
		name string
		mode dialect.QuoteMode
		want string
	}{
		{"minimal", dialect.QuoteMinimal, "a,1.5,\"b,c\"\n"},
		{"all", dialect.QuoteAll, "\"a\",\"1.5\",\"b,c\"\n"},
		{"non numeric", dialect.QuoteNonNumeric, "\"a\",1.5,\"b,c\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dialect.RFC4180.WithRecordSeparator("\n")
			d.QuoteMode = tt.mode

			var buf bytes.Buffer
			pr := NewPrinter(&buf, d)
			require.NoError(t, pr.PrintRecord([]string{"a", "1.5", "b,c"}))
			require.NoError(t, pr.Flush())
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
