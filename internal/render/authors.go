// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"regexp"
	"strings"
)

// authorSeparator matches the BibTeX name separator: "and" surrounded by
// whitespace. The match is case-sensitive.
var authorSeparator = regexp.MustCompile(`\s+and\s+`)

// SplitAuthors splits a BibTeX author field into trimmed names, dropping
// empty ones.
func SplitAuthors(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	var names []string
	for _, name := range authorSeparator.Split(field, -1) {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// FormatAuthors joins the names of an author field for display:
// "A", "A and B", or "A, B, and C" for three or more.
func FormatAuthors(field string) string {
	names := SplitAuthors(field)
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
