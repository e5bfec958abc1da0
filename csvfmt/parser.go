// Package csvfmt reads and writes delimited records following a dialect.Dialect.
//
// encoding/csv only knows a comma and doubled quotes; the dialects used here
// also need escape characters, NULL markers, optional quoting and trimming, so
// both directions are implemented in this package.
package csvfmt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-data-exporter/factio/dialect"
)

var (
	// ErrUnterminatedQuote is reported when input ends inside a quoted cell.
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	// ErrTrailingQuote is reported when a closing quote is followed by data.
	ErrTrailingQuote = errors.New("invalid character between closing quote and delimiter")
	// ErrEscapeAtEOF is reported when input ends right after an escape character.
	ErrEscapeAtEOF = errors.New("end of input after escape character")
)

// ParseError records where a record could not be read.
type ParseError struct {
	Line  int // line the record starts on, 1-based
	Field int // field within the record, 0-based
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record on line %d, field %d: %v", e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Record is one parsed record. Null[i] is true when cell i matched the
// dialect's NULL string without being quoted.
type Record struct {
	Values []string
	Null   []bool
}

// IsNull reports whether cell i was NULL.
func (r Record) IsNull(i int) bool {
	return i >= 0 && i < len(r.Null) && r.Null[i]
}

// Parser reads records from an input stream.
type Parser struct {
	r       *bufio.Reader
	d       dialect.Dialect
	escape  rune
	line    int
	recLine int
	field   strings.Builder
	raw     strings.Builder
}

// NewParser returns a Parser reading r with dialect d.
func NewParser(r io.Reader, d dialect.Dialect) *Parser {
	p := &Parser{
		r:    bufio.NewReader(r),
		d:    d,
		line: 1,
	}
	// A quote that doubles as the escape is handled by quote doubling alone.
	if d.Escape != d.Quote {
		p.escape = d.Escape
	}
	return p
}

// Line returns the line the most recently read record started on.
func (p *Parser) Line() int {
	return p.recLine
}

// Read returns the cells of the next record, or io.EOF when input is exhausted.
// NULL cells are returned as empty strings; use ReadRecord to tell them apart.
func (p *Parser) Read() ([]string, error) {
	rec, err := p.ReadRecord()
	if err != nil {
		return nil, err
	}
	return rec.Values, nil
}

// ReadRecord returns the next record with its NULL mask.
func (p *Parser) ReadRecord() (Record, error) {
	if p.d.IgnoreEmptyLines {
		if err := p.skipEmptyLines(); err != nil {
			return Record{}, err
		}
	}
	if _, err := p.r.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, err
	}
	p.recLine = p.line

	var rec Record
	for {
		value, null, end, err := p.readField()
		if err != nil {
			return Record{}, &ParseError{Line: p.recLine, Field: len(rec.Values), Err: err}
		}
		rec.Values = append(rec.Values, value)
		rec.Null = append(rec.Null, null)
		if end {
			return rec, nil
		}
	}
}

func (p *Parser) skipEmptyLines() error {
	for {
		b, err := p.r.Peek(1)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if b[0] != '\n' && b[0] != '\r' {
			return nil
		}
		if _, err := p.read(); err != nil {
			return err
		}
	}
}

// read returns the next rune and keeps the line count current.
func (p *Parser) read() (rune, error) {
	r, _, err := p.r.ReadRune()
	if err != nil {
		return 0, err
	}
	switch r {
	case '\n':
		p.line++
	case '\r':
		if b, err := p.r.Peek(1); err != nil || b[0] != '\n' {
			p.line++
		}
	}
	return r, nil
}

func (p *Parser) peekRune() (rune, error) {
	r, _, err := p.r.ReadRune()
	if err != nil {
		return 0, err
	}
	return r, p.r.UnreadRune()
}

func (p *Parser) isSpace(r rune) bool {
	return (r == ' ' || r == '\t') && r != p.d.Delimiter
}

// endOfLine consumes the rest of a CRLF pair after r == '\r'.
func (p *Parser) endOfLine(r rune) error {
	if r != '\r' {
		return nil
	}
	b, err := p.r.Peek(1)
	if err == nil && b[0] == '\n' {
		_, err = p.read()
		return err
	}
	return nil
}

// readField reads one cell. end reports that the record finished with it.
func (p *Parser) readField() (value string, null, end bool, err error) {
	p.field.Reset()
	p.raw.Reset()

	if p.d.IgnoreSurroundingSpaces {
		for {
			r, err := p.peekRune()
			if err != nil || !p.isSpace(r) {
				break
			}
			_, _ = p.read()
		}
	}

	if p.d.Quote != 0 {
		if r, err := p.peekRune(); err == nil && r == p.d.Quote {
			_, _ = p.read()
			end, err := p.readQuoted()
			if err != nil {
				return "", false, false, err
			}
			value = p.field.String()
			if p.d.Trim {
				value = strings.TrimSpace(value)
			}
			return value, false, end, nil
		}
	}

	end, err = p.readSimple()
	if err != nil {
		return "", false, false, err
	}
	value = p.field.String()
	if p.d.IgnoreSurroundingSpaces {
		value = strings.TrimRight(value, " \t")
	}
	if p.d.Trim {
		value = strings.TrimSpace(value)
	}
	raw := p.raw.String()
	if p.d.Trim || p.d.IgnoreSurroundingSpaces {
		raw = strings.TrimSpace(raw)
	}
	if p.d.HasNullString && raw == p.d.NullString {
		return "", true, end, nil
	}
	return value, false, end, nil
}

func (p *Parser) readSimple() (end bool, err error) {
	for {
		r, err := p.read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return true, nil
			}
			return false, err
		}
		switch {
		case r == p.d.Delimiter:
			return false, nil
		case r == '\n' || r == '\r':
			return true, p.endOfLine(r)
		case p.escape != 0 && r == p.escape:
			p.raw.WriteRune(r)
			if err := p.readEscape(); err != nil {
				return false, err
			}
		default:
			p.raw.WriteRune(r)
			p.field.WriteRune(r)
		}
	}
}

func (p *Parser) readQuoted() (end bool, err error) {
	for {
		r, err := p.read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, ErrUnterminatedQuote
			}
			return false, err
		}
		switch {
		case p.escape != 0 && r == p.escape:
			if err := p.readEscape(); err != nil {
				return false, err
			}
		case r == p.d.Quote:
			next, err := p.peekRune()
			if err == nil && next == p.d.Quote {
				_, _ = p.read()
				p.field.WriteRune(r)
				continue
			}
			return p.afterQuoted()
		default:
			p.field.WriteRune(r)
		}
	}
}

// afterQuoted consumes what follows a closing quote up to the field end.
func (p *Parser) afterQuoted() (end bool, err error) {
	for {
		r, err := p.read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return true, nil
			}
			return false, err
		}
		switch {
		case r == p.d.Delimiter:
			return false, nil
		case r == '\n' || r == '\r':
			return true, p.endOfLine(r)
		case p.isSpace(r):
		default:
			return false, ErrTrailingQuote
		}
	}
}

// readEscape handles the character after an escape. Unknown sequences keep
// both characters.
func (p *Parser) readEscape() error {
	r, err := p.read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEscapeAtEOF
		}
		return err
	}
	p.raw.WriteRune(r)
	switch r {
	case 'n':
		p.field.WriteByte('\n')
	case 'r':
		p.field.WriteByte('\r')
	case 't':
		p.field.WriteByte('\t')
	case 'b':
		p.field.WriteByte('\b')
	case 'f':
		p.field.WriteByte('\f')
	case '\n', '\r', '\t', '\b', '\f':
		p.field.WriteRune(r)
	default:
		if r == p.d.Delimiter || r == p.escape || (p.d.Quote != 0 && r == p.d.Quote) {
			p.field.WriteRune(r)
			return nil
		}
		p.field.WriteRune(p.escape)
		p.field.WriteRune(r)
	}
	return nil
}
