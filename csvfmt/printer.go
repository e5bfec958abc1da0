package csvfmt

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/go-data-exporter/factio/dialect"
)

// Printer writes records to an output stream.
type Printer struct {
	w      *bufio.Writer
	d      dialect.Dialect
	escape rune
	err    error
}

// NewPrinter returns a Printer writing to w with dialect d.
func NewPrinter(w io.Writer, d dialect.Dialect) *Printer {
	p := &Printer{w: bufio.NewWriter(w), d: d}
	if d.Escape != d.Quote {
		p.escape = d.Escape
	}
	if p.d.RecordSeparator == "" {
		p.d.RecordSeparator = "\r\n"
	}
	return p
}

// PrintRecord writes one record with no NULL cells.
func (p *Printer) PrintRecord(cells []string) error {
	return p.PrintNullable(cells, nil)
}

// PrintNullable writes one record. A true nulls[i] writes cell i as the
// dialect's NULL string, or as an empty unquoted cell when it has none.
func (p *Printer) PrintNullable(cells []string, nulls []bool) error {
	if p.err != nil {
		return p.err
	}
	for i, cell := range cells {
		if i > 0 {
			p.w.WriteRune(p.d.Delimiter)
		}
		if i < len(nulls) && nulls[i] {
			if p.d.HasNullString {
				p.w.WriteString(p.d.NullString)
			}
			continue
		}
		p.printCell(cell, i == 0)
	}
	_, p.err = p.w.WriteString(p.d.RecordSeparator)
	return p.err
}

// Flush writes buffered data to the underlying writer.
func (p *Printer) Flush() error {
	if p.err != nil {
		return p.err
	}
	p.err = p.w.Flush()
	return p.err
}

func (p *Printer) printCell(value string, first bool) {
	if p.d.Trim {
		value = strings.TrimSpace(value)
	}
	if p.d.Quote != 0 && p.d.QuoteMode != dialect.QuoteNone && p.shouldQuote(value, first) {
		p.printQuoted(value)
		return
	}
	if p.escape != 0 {
		p.printEscaped(value)
		return
	}
	p.w.WriteString(value)
}

func (p *Printer) shouldQuote(value string, first bool) bool {
	switch p.d.QuoteMode {
	case dialect.QuoteAll, dialect.QuoteAllNonNull:
		return true
	case dialect.QuoteNonNumeric:
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			return false
		}
		return true
	}
	if value == "" {
		// An empty first cell would otherwise print as a blank line.
		return first || p.d.HasNullString && p.d.NullString == ""
	}
	if p.d.HasNullString && value == p.d.NullString {
		return true
	}
	switch value[0] {
	case ' ', '\t':
		return true
	}
	switch value[len(value)-1] {
	case ' ', '\t':
		return true
	}
	for _, r := range value {
		if r == p.d.Delimiter || r == p.d.Quote || r == '\r' || r == '\n' || (p.escape != 0 && r == p.escape) {
			return true
		}
	}
	return false
}

func (p *Printer) printQuoted(value string) {
	p.w.WriteRune(p.d.Quote)
	for _, r := range value {
		switch {
		case r == p.d.Quote:
			p.w.WriteRune(r)
			p.w.WriteRune(r)
		case p.escape != 0 && r == p.escape:
			p.w.WriteRune(r)
			p.w.WriteRune(r)
		default:
			p.w.WriteRune(r)
		}
	}
	p.w.WriteRune(p.d.Quote)
}

func (p *Printer) printEscaped(value string) {
	for _, r := range value {
		switch {
		case r == '\r':
			p.w.WriteRune(p.escape)
			p.w.WriteByte('r')
		case r == '\n':
			p.w.WriteRune(p.escape)
			p.w.WriteByte('n')
		case r == p.d.Delimiter || r == p.escape || (p.d.Quote != 0 && r == p.d.Quote):
			p.w.WriteRune(p.escape)
			p.w.WriteRune(r)
		default:
			p.w.WriteRune(r)
		}
	}
}
