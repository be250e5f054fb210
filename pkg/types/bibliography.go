// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the bibcite pipeline:
// raw entries from the extractor, parsed records, and rendered citations.
// See docs/ARCHITECTURE.md § Data Model.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// RawEntry is one top-level record located in the source text, before its
// field block is parsed. It is produced by the entry extractor and consumed
// once by the field parser.
type RawEntry struct {
	// EntryType is the lowercased tag after the @ (e.g. "article").
	EntryType string

	// Key is the citation key as written in the source.
	Key string

	// FieldBlock is the unparsed text between the key's comma and the
	// record's closing delimiter.
	FieldBlock string

	// Offset is the byte offset of the @ in the source text.
	Offset int
}

// Fields is an ordered mapping from lowercased field name to cleaned value.
// Names keep the position of their first assignment; a later assignment of
// the same name overwrites the value.
type Fields struct {
	names  []string
	values map[string]string
}

// Set assigns value to name.
func (f *Fields) Set(name, value string) {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = value
}

// Get returns the value for name and whether it is present.
func (f Fields) Get(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Has reports whether name is present.
func (f Fields) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

// Len returns the number of fields.
func (f Fields) Len() int {
	return len(f.names)
}

// Names returns field names in first-assignment order.
func (f Fields) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Map returns a copy of the fields as a plain map.
func (f Fields) Map() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// MarshalYAML encodes the fields as a mapping that keeps name order.
func (f Fields) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range f.names {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.values[name]},
		)
	}
	return node, nil
}

// UnmarshalYAML decodes a mapping node, keeping document order.
func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return &yaml.TypeError{Errors: []string{"fields: expected a mapping"}}
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		f.Set(node.Content[i].Value, node.Content[i+1].Value)
	}
	return nil
}

// MarshalJSON encodes the fields as a JSON object in name order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range f.names {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.values[name])
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// UnmarshalJSON decodes a JSON object, keeping document order.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("fields: expected an object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("fields: expected a string key")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("fields: value of %q: %w", name, err)
		}
		f.Set(name, value)
	}
	_, err = dec.Token()
	return err
}

// Record is one parsed bibliographic entry. No field in a Record has an
// empty name or an empty value.
type Record struct {
	EntryType string `json:"type" yaml:"type"`
	Key       string `json:"key" yaml:"key"`
	Fields    Fields `json:"fields" yaml:"fields"`
}

// Field returns the named field's value, or "" when absent.
func (r Record) Field(name string) string {
	v, _ := r.Fields.Get(name)
	return v
}

// CitationStyle groups entry types that share a venue rule.
type CitationStyle int

const (
	StyleOther CitationStyle = iota
	StyleArticle
	StyleProceedings
	StyleThesis
)

func (s CitationStyle) String() string {
	switch s {
	case StyleArticle:
		return "article"
	case StyleProceedings:
		return "proceedings"
	case StyleThesis:
		return "thesis"
	default:
		return "other"
	}
}

// StyleFor maps a lowercased entry type to its citation style.
func StyleFor(entryType string) CitationStyle {
	switch entryType {
	case "article", "journal":
		return StyleArticle
	case "inproceedings", "conference":
		return StyleProceedings
	case "thesis", "mastersthesis", "phdthesis":
		return StyleThesis
	default:
		return StyleOther
	}
}

// Link is a labelled hyperlink in a rendered citation.
type Link struct {
	Label string `json:"label" yaml:"label"`
	Href  string `json:"href" yaml:"href"`
}

// RenderedCitation is the formatted form of one Record. Title carries strong
// emphasis and Authors italic emphasis in sinks that support it. Empty parts
// are omitted by every sink.
type RenderedCitation struct {
	Key       string `json:"key" yaml:"key"`
	EntryType string `json:"type" yaml:"type"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	Authors   string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Details   string `json:"details,omitempty" yaml:"details,omitempty"`
	Links     []Link `json:"links,omitempty" yaml:"links,omitempty"`
}

// LinkSeparator joins links in a citation's link row.
const LinkSeparator = " | "

// Text returns the citation as plain lines: title, authors, details, and a
// link row of "Label: href" pairs.
func (c RenderedCitation) Text() string {
	var lines []string
	for _, s := range []string{c.Title, c.Authors, c.Details} {
		if s != "" {
			lines = append(lines, s)
		}
	}
	if len(c.Links) > 0 {
		parts := make([]string, len(c.Links))
		for i, l := range c.Links {
			parts[i] = l.Label + ": " + l.Href
		}
		lines = append(lines, strings.Join(parts, LinkSeparator))
	}
	return strings.Join(lines, "\n")
}

// ParseStats reports what a parse pass recovered from silently.
type ParseStats struct {
	// Entries is the number of records emitted.
	Entries int `json:"entries" yaml:"entries"`

	// Skipped counts records with no matching terminator.
	Skipped int `json:"skipped" yaml:"skipped"`

	// DroppedFields counts assignments dropped for an empty name or value.
	DroppedFields int `json:"dropped_fields" yaml:"dropped_fields"`
}
