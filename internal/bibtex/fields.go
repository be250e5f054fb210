// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"strings"

	"github.com/pdiddy/bibcite/pkg/types"
)

// fieldState is the line classifier's state.
type fieldState int

const (
	awaitingField   fieldState = iota // no field in progress
	continuingValue                   // lines extend the current field
)

// fieldParser folds the lines of a field block into a Fields mapping.
// While a value has an unclosed brace, or is quote-delimited and not yet
// closed, every line continues it, even one that contains "=".
type fieldParser struct {
	fields  types.Fields
	dropped int

	state   fieldState
	name    string
	value   strings.Builder
	depth   int
	quoted  bool
	inQuote bool
}

// ParseFields splits a raw field block into cleaned (name, value) pairs.
// It never fails: assignments with an empty name or value are dropped and
// counted in the second return value.
func ParseFields(block string) (types.Fields, int) {
	p := &fieldParser{}
	for _, line := range strings.Split(block, "\n") {
		p.consume(strings.TrimSpace(line))
	}
	p.flush()
	return p.fields, p.dropped
}

// ParseEntry parses a raw entry's field block into a Record.
func ParseEntry(raw types.RawEntry) (types.Record, int) {
	fields, dropped := ParseFields(raw.FieldBlock)
	return types.Record{
		EntryType: raw.EntryType,
		Key:       strings.TrimSpace(raw.Key),
		Fields:    fields,
	}, dropped
}

func (p *fieldParser) consume(line string) {
	if line == "" {
		return
	}
	if p.state == continuingValue && (p.open() || (p.value.Len() == 0 && !isAssignment(line))) {
		p.appendValue(line)
		return
	}
	if strings.HasPrefix(line, "%") {
		return
	}
	if eq := indexAssign(line); eq >= 0 {
		p.start(line[:eq])
		p.appendValue(strings.TrimSpace(line[eq+1:]))
		return
	}
	if p.state == continuingValue {
		p.appendValue(line)
	}
}

// open reports whether the current value has an unclosed brace, or is
// quote-delimited and its closing quote has not been seen.
func (p *fieldParser) open() bool {
	return p.depth > 0 || p.inQuote
}

// start flushes the field in progress and begins an empty one named name.
func (p *fieldParser) start(name string) {
	p.flush()
	p.state = continuingValue
	p.name = name
	p.value.Reset()
	p.depth = 0
	p.quoted = false
	p.inQuote = false
}

// appendValue adds text to the current value, separated by one space. A
// top-level comma followed by another assignment ends the value there and
// starts the next field, so several fields may share a line.
func (p *fieldParser) appendValue(text string) {
	for text != "" {
		if p.value.Len() == 0 && p.depth == 0 && text[0] == '"' {
			p.quoted = true
		}
		cut, name, value := p.scan(text)
		if cut < 0 {
			p.write(text)
			return
		}
		p.write(text[:cut+1])
		p.start(name)
		text = strings.TrimSpace(value)
	}
}

// scan tracks brace depth and quoting over text. It stops at the first
// top-level comma that is followed by "name =" and returns the comma's index
// with the next field's name and value text. cut is -1 when there is none.
// Quotes only count in quote-delimited values; elsewhere they are text.
func (p *fieldParser) scan(text string) (cut int, name, value string) {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '{':
			p.depth++
		case '}':
			if p.depth > 0 {
				p.depth--
			}
		case '"':
			if p.quoted && p.depth == 0 {
				p.inQuote = !p.inQuote
			}
		case ',':
			if p.open() {
				continue
			}
			if start, eq, ok := assignmentAt(text, i+1); ok {
				return i, text[start:eq], text[eq+1:]
			}
		}
	}
	return -1, "", ""
}

func (p *fieldParser) write(text string) {
	if p.value.Len() > 0 {
		p.value.WriteByte(' ')
	}
	p.value.WriteString(text)
}

// flush records the field in progress if its cleaned name and value are
// both non-empty.
func (p *fieldParser) flush() {
	if p.state != continuingValue {
		return
	}
	p.state = awaitingField

	name := strings.ToLower(strings.TrimSpace(p.name))
	value := cleanValue(p.value.String())
	if name == "" || value == "" {
		p.dropped++
		return
	}
	p.fields.Set(name, value)
}

var braceStripper = strings.NewReplacer("{", "", "}", "")

// cleanValue removes brace delimiters, one trailing comma, and surrounding
// whitespace. A value that was written quote-delimited also loses its
// enclosing pair of double quotes.
func cleanValue(raw string) string {
	v := strings.TrimSpace(raw)
	quoted := strings.HasPrefix(v, `"`)
	v = strings.TrimSpace(braceStripper.Replace(v))
	v = strings.TrimSpace(strings.TrimSuffix(v, ","))
	if quoted && len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	return v
}

// indexAssign returns the index of the first "=" not escaped with a
// backslash, or -1.
func indexAssign(line string) int {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '=':
			return i
		}
	}
	return -1
}

// isAssignment reports whether s begins with a bare field name followed
// by "=".
func isAssignment(s string) bool {
	_, _, ok := assignmentAt(s, 0)
	return ok
}

// assignmentAt reports whether s[i:] holds optional whitespace, a bare field
// name, optional whitespace and "=". It reads no further than that "=", so
// checking every comma of a line stays linear.
func assignmentAt(s string, i int) (nameStart, eq int, ok bool) {
	i = skipSpace(s, i)
	nameStart = i
	for i < len(s) && isNameByte(s[i]) {
		i++
	}
	if i == nameStart {
		return 0, 0, false
	}
	i = skipSpace(s, i)
	if i >= len(s) || s[i] != '=' {
		return 0, 0, false
	}
	return nameStart, i, true
}

func isNameByte(c byte) bool {
	return isWordByte(c) || c == '-' || c == '.' || c == ':'
}
