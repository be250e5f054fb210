// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns parsed records into citations and encodes citations
// for display surfaces (HTML, Markdown, terminal, plain text, CSL-YAML).
// See docs/ARCHITECTURE § Renderer, § Sinks.
package render

import (
	"strings"

	"github.com/pdiddy/bibcite/pkg/types"
)

// DefaultDOIBase is the resolver that DOI links are built on.
const DefaultDOIBase = "https://doi.org/"

// Options adjusts rendering. The zero value renders with DefaultDOIBase.
type Options struct {
	// DOIBase is prefixed to a record's doi field to build its link.
	DOIBase string
}

func (o Options) doiBase() string {
	if o.DOIBase == "" {
		return DefaultDOIBase
	}
	return o.DOIBase
}

// Thesis qualifiers appended to the institution, by exact entry type.
var thesisQualifiers = map[string]string{
	"mastersthesis": "(Master's Thesis)",
	"phdthesis":     "(PhD Thesis)",
}

// Render formats one record. It is a pure function of its arguments.
func Render(rec types.Record, opts Options) types.RenderedCitation {
	return types.RenderedCitation{
		Key:       rec.Key,
		EntryType: rec.EntryType,
		Title:     rec.Field("title"),
		Authors:   FormatAuthors(rec.Field("author")),
		Details:   Details(rec),
		Links:     Links(rec, opts),
	}
}

// RenderAll formats records in order.
func RenderAll(recs []types.Record, opts Options) []types.RenderedCitation {
	out := make([]types.RenderedCitation, len(recs))
	for i, rec := range recs {
		out[i] = Render(rec, opts)
	}
	return out
}

// Venue returns the style-dependent publication context: booktitle for
// proceedings, journal for articles, and school (or institution) for
// theses. Other styles have no venue.
func Venue(rec types.Record) string {
	switch types.StyleFor(rec.EntryType) {
	case types.StyleProceedings:
		return rec.Field("booktitle")
	case types.StyleArticle:
		return rec.Field("journal")
	case types.StyleThesis:
		venue := rec.Field("school")
		if venue == "" {
			venue = rec.Field("institution")
		}
		qualifier := thesisQualifiers[rec.EntryType]
		switch {
		case qualifier == "":
			return venue
		case venue == "":
			return qualifier
		default:
			return venue + " " + qualifier
		}
	default:
		return ""
	}
}

// Details returns the venue followed by volume, number, pages, and year,
// joined with ", ". Missing parts are left out.
func Details(rec types.Record) string {
	var parts []string
	if v := Venue(rec); v != "" {
		parts = append(parts, v)
	}
	if v, ok := rec.Fields.Get("volume"); ok {
		parts = append(parts, "vol. "+v)
	}
	if v, ok := rec.Fields.Get("number"); ok {
		parts = append(parts, "no. "+v)
	}
	if v, ok := rec.Fields.Get("pages"); ok {
		parts = append(parts, "pp. "+v)
	}
	if v, ok := rec.Fields.Get("year"); ok {
		parts = append(parts, v)
	}
	return strings.Join(parts, ", ")
}

// Links returns the DOI link (if any) followed by the URL link (if any).
// A doi field that already holds an http(s) URL is linked as written, so
// Options.DOIBase does not apply to it.
func Links(rec types.Record, opts Options) []types.Link {
	var links []types.Link
	if doi, ok := rec.Fields.Get("doi"); ok {
		links = append(links, types.Link{Label: "DOI", Href: doiHref(doi, opts.doiBase())})
	}
	if u, ok := rec.Fields.Get("url"); ok {
		links = append(links, types.Link{Label: "Link", Href: u})
	}
	return links
}

// doiHref prefixes a bare DOI with base and drops a "doi:" prefix. An
// http:// or https:// value is returned unchanged, whatever its host.
func doiHref(doi, base string) string {
	if strings.HasPrefix(doi, "https://") || strings.HasPrefix(doi, "http://") {
		return doi
	}
	doi = strings.TrimSpace(strings.TrimPrefix(doi, "doi:"))
	return base + doi
}
