// Package dialect holds the CSV dialect presets understood by the csvfmt parser
// and printer, and the small integer codes callers use to pick one.
package dialect

import (
	"fmt"
	"sort"
	"strings"
)

// QuoteMode controls when the printer encloses a cell in quotes.
type QuoteMode int

const (
	// QuoteMinimal quotes only cells that would otherwise be misread.
	QuoteMinimal QuoteMode = iota
	// QuoteAll quotes every cell.
	QuoteAll
	// QuoteAllNonNull quotes every cell that is not NULL.
	QuoteAllNonNull
	// QuoteNonNumeric quotes every cell that does not parse as a number.
	QuoteNonNumeric
	// QuoteNone never quotes; special characters are escaped instead.
	QuoteNone
)

func (m QuoteMode) String() string {
	switch m {
	case QuoteMinimal:
		return "minimal"
	case QuoteAll:
		return "all"
	case QuoteAllNonNull:
		return "all_non_null"
	case QuoteNonNumeric:
		return "non_numeric"
	case QuoteNone:
		return "none"
	}
	return fmt.Sprintf("QuoteMode(%d)", int(m))
}

// Dialect is a named set of delimited-text rules.
// A zero Quote or Escape rune means the dialect has none.
type Dialect struct {
	Name                    string
	Delimiter               rune
	Quote                   rune
	Escape                  rune
	RecordSeparator         string
	NullString              string
	HasNullString           bool
	QuoteMode               QuoteMode
	IgnoreEmptyLines        bool
	IgnoreSurroundingSpaces bool
	Trim                    bool
	AllowMissingColumnNames bool
}

// WithDelimiter returns a copy of d using delimiter.
func (d Dialect) WithDelimiter(delimiter rune) Dialect {
	d.Delimiter = delimiter
	return d
}

// WithNullString returns a copy of d that reads and writes s for NULL cells.
func (d Dialect) WithNullString(s string) Dialect {
	d.NullString = s
	d.HasNullString = true
	return d
}

// WithRecordSeparator returns a copy of d ending records with sep.
func (d Dialect) WithRecordSeparator(sep string) Dialect {
	d.RecordSeparator = sep
	return d
}

func (d Dialect) String() string {
	return d.Name
}

// Presets, with the values Apache Commons CSV gives its predefined formats.
var (
	Default = Dialect{
		Name:             "default",
		Delimiter:        ',',
		Quote:            '"',
		RecordSeparator:  "\r\n",
		IgnoreEmptyLines: true,
	}

	Excel = Dialect{
		Name:                    "excel",
		Delimiter:               ',',
		Quote:                   '"',
		RecordSeparator:         "\r\n",
		AllowMissingColumnNames: true,
	}

	InformixUnload = Dialect{
		Name:             "informix_unload",
		Delimiter:        '|',
		Quote:            '"',
		Escape:           '\\',
		RecordSeparator:  "\n",
		IgnoreEmptyLines: true,
	}

	InformixUnloadCSV = Dialect{
		Name:             "informix_unload_csv",
		Delimiter:        ',',
		Quote:            '"',
		RecordSeparator:  "\n",
		IgnoreEmptyLines: true,
	}

	MongoDBCSV = Dialect{
		Name:             "mongodb_csv",
		Delimiter:        ',',
		Quote:            '"',
		Escape:           '"',
		RecordSeparator:  "\r\n",
		IgnoreEmptyLines: true,
	}

	MongoDBTSV = Dialect{
		Name:             "mongodb_tsv",
		Delimiter:        '\t',
		Quote:            '"',
		Escape:           '"',
		RecordSeparator:  "\r\n",
		IgnoreEmptyLines: true,
	}

	MySQL = Dialect{
		Name:            "mysql",
		Delimiter:       '\t',
		Escape:          '\\',
		RecordSeparator: "\n",
		NullString:      `\N`,
		HasNullString:   true,
		QuoteMode:       QuoteAllNonNull,
	}

	RFC4180 = Dialect{
		Name:            "rfc4180",
		Delimiter:       ',',
		Quote:           '"',
		RecordSeparator: "\r\n",
	}

	Oracle = Dialect{
		Name:            "oracle",
		Delimiter:       ',',
		Quote:           '"',
		Escape:          '\\',
		RecordSeparator: "\n",
		NullString:      `\N`,
		HasNullString:   true,
		Trim:            true,
	}

	PostgreSQLCSV = Dialect{
		Name:            "postgresql_csv",
		Delimiter:       ',',
		Quote:           '"',
		RecordSeparator: "\n",
		NullString:      "",
		HasNullString:   true,
		QuoteMode:       QuoteAllNonNull,
	}

	PostgreSQLText = Dialect{
		Name:            "postgresql_text",
		Delimiter:       '\t',
		Escape:          '\\',
		RecordSeparator: "\n",
		NullString:      `\N`,
		HasNullString:   true,
		QuoteMode:       QuoteAllNonNull,
	}

	TDF = Dialect{
		Name:                    "tdf",
		Delimiter:               '\t',
		Quote:                   '"',
		RecordSeparator:         "\r\n",
		IgnoreEmptyLines:        true,
		IgnoreSurroundingSpaces: true,
	}
)

var presets = map[string]Dialect{}

func init() {
	for _, d := range []Dialect{
		Default, Excel, InformixUnload, InformixUnloadCSV, MongoDBCSV, MongoDBTSV,
		MySQL, RFC4180, Oracle, PostgreSQLCSV, PostgreSQLText, TDF,
	} {
		presets[d.Name] = d
	}
}

// UnknownDialectError is returned by ByName for a name with no preset.
type UnknownDialectError struct {
	Name      string
	Available []string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("unknown dialect %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// ByName looks a preset up by name. Matching ignores case and treats '-' as '_'.
func ByName(name string) (Dialect, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	if d, ok := presets[key]; ok {
		return d, nil
	}
	return Dialect{}, &UnknownDialectError{Name: name, Available: Names()}
}

// Names returns every preset name, sorted.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
