// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibtex locates records in BibTeX source text and parses their
// field blocks into ordered field mappings.
// extract.go finds record boundaries; fields.go parses field blocks.
// See docs/ARCHITECTURE § Entry Extractor, § Field Parser.
package bibtex

import (
	"iter"
	"strings"

	"github.com/pdiddy/bibcite/pkg/types"
)

// nonRecordTypes are @-blocks that carry no citation record. Their bodies
// are skipped whole so braces inside them cannot open a false record.
var nonRecordTypes = map[string]bool{
	"comment":  true,
	"preamble": true,
	"string":   true,
}

type scanStatus int

const (
	scanRecord       scanStatus = iota // a complete record
	scanNotHeader                      // the @ does not open a block
	scanNonRecord                      // a comment/preamble/string block
	scanUnterminated                   // header matched, no terminator
)

// Scanner yields the records of a source text in order. It is lazy and
// cannot be restarted: each call to Next resumes where the last one stopped.
type Scanner struct {
	src     string
	pos     int
	skipped int
}

// NewScanner returns a Scanner positioned at the start of src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

// Entries returns a single-use sequence over the records of src.
func Entries(src string) iter.Seq[types.RawEntry] {
	return NewScanner(src).All()
}

// Skipped returns the number of blocks dropped so far because no
// terminator closed them. Unterminated @comment, @preamble and @string
// blocks count too.
func (s *Scanner) Skipped() int {
	return s.skipped
}

// Next returns the next record. The boolean is false once the source is
// exhausted.
func (s *Scanner) Next() (types.RawEntry, bool) {
	for s.pos < len(s.src) {
		at := strings.IndexByte(s.src[s.pos:], '@')
		if at < 0 {
			s.pos = len(s.src)
			break
		}
		start := s.pos + at

		entry, next, status := s.scanAt(start)
		switch status {
		case scanRecord:
			s.pos = next
			return entry, true
		case scanUnterminated:
			s.skipped++
			s.pos = next
		case scanNonRecord:
			s.pos = next
		default:
			s.pos = start + 1
		}
	}
	return types.RawEntry{}, false
}

// All yields the remaining records.
func (s *Scanner) All() iter.Seq[types.RawEntry] {
	return func(yield func(types.RawEntry) bool) {
		for {
			entry, ok := s.Next()
			if !ok || !yield(entry) {
				return
			}
		}
	}
}

// scanAt matches "@type{key," at start and finds the record terminator.
// next is where scanning resumes; it is always past start.
func (s *Scanner) scanAt(start int) (types.RawEntry, int, scanStatus) {
	src := s.src
	i := start + 1

	tagEnd := scanWord(src, i)
	if tagEnd == i {
		return types.RawEntry{}, start + 1, scanNotHeader
	}
	entryType := strings.ToLower(src[i:tagEnd])

	i = skipSpace(src, tagEnd)
	if i >= len(src) || (src[i] != '{' && src[i] != '(') {
		return types.RawEntry{}, start + 1, scanNotHeader
	}
	closer := byte('}')
	if src[i] == '(' {
		closer = ')'
	}
	bodyStart := i + 1

	if nonRecordTypes[entryType] {
		end, resume, ok := findTerminator(src, bodyStart, closer)
		if !ok {
			return types.RawEntry{}, resume, scanUnterminated
		}
		return types.RawEntry{}, end + 1, scanNonRecord
	}

	i = skipSpace(src, bodyStart)
	keyStart := i
	for i < len(src) && !isKeyStop(src[i]) {
		i++
	}
	if i == keyStart {
		return types.RawEntry{}, start + 1, scanNotHeader
	}
	key := src[keyStart:i]

	i = skipSpace(src, i)
	if i >= len(src) {
		return types.RawEntry{}, len(src), scanUnterminated
	}

	entry := types.RawEntry{EntryType: entryType, Key: key, Offset: start}
	switch src[i] {
	case closer:
		return entry, i + 1, scanRecord
	case ',':
	default:
		return types.RawEntry{}, start + 1, scanNotHeader
	}

	blockStart := i + 1
	end, resume, ok := findTerminator(src, blockStart, closer)
	if !ok {
		return types.RawEntry{}, resume, scanUnterminated
	}
	entry.FieldBlock = src[blockStart:end]
	return entry, end + 1, scanRecord
}

// findTerminator returns the index of the closer that ends the block
// starting at from, counting nested braces. Escaped braces do not count.
// When no terminator exists, resume is the start of the next line that
// opens a new record header, or len(src), so a broken record cannot
// swallow the records after it.
func findTerminator(src string, from int, closer byte) (end, resume int, ok bool) {
	depth := 0
	lineStart := false
	for i := from; i < len(src); i++ {
		c := src[i]
		switch c {
		case '\\':
			if i+1 < len(src) && (src[i+1] == '{' || src[i+1] == '}') {
				i++
			}
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			} else if closer == '}' {
				return i, 0, true
			}
		case ')':
			if closer == ')' && depth == 0 {
				return i, 0, true
			}
		case '\n':
			lineStart = true
			continue
		case '@':
			if lineStart && looksLikeHeader(src, i) {
				return 0, i, false
			}
		}
		if c != ' ' && c != '\t' && c != '\r' {
			lineStart = false
		}
	}
	return 0, len(src), false
}

// looksLikeHeader reports whether src[at:] starts with "@word{" or "@word(".
func looksLikeHeader(src string, at int) bool {
	end := scanWord(src, at+1)
	if end == at+1 {
		return false
	}
	i := skipSpace(src, end)
	return i < len(src) && (src[i] == '{' || src[i] == '(')
}

func scanWord(src string, i int) int {
	for i < len(src) && isWordByte(src[i]) {
		i++
	}
	return i
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isWordByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isKeyStop(c byte) bool {
	return isSpace(c) || c == ',' || c == '{' || c == '}' || c == '(' || c == ')'
}
