// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline composes the entry extractor, field parser, and renderer
// into one pure function from source text to rendered citations. It performs
// no I/O and never fails: malformed input only shortens the output.
// See docs/ARCHITECTURE § Pipeline Interface.
package pipeline

import (
	"github.com/pdiddy/bibcite/internal/bibtex"
	"github.com/pdiddy/bibcite/internal/render"
	"github.com/pdiddy/bibcite/pkg/types"
)

// Parse extracts and parses every record in source, in source order, and
// reports what was skipped or dropped along the way.
func Parse(source string) ([]types.Record, types.ParseStats) {
	var (
		records []types.Record
		stats   types.ParseStats
	)
	sc := bibtex.NewScanner(source)
	for raw := range sc.All() {
		rec, dropped := bibtex.ParseEntry(raw)
		records = append(records, rec)
		stats.DroppedFields += dropped
	}
	stats.Entries = len(records)
	stats.Skipped = sc.Skipped()
	return records, stats
}

// ParseAndRender returns one rendered citation per well-formed record in
// source, in source order, using default render options.
func ParseAndRender(source string) []types.RenderedCitation {
	cites, _ := Run(source, render.Options{})
	return cites
}

// Run parses source and renders each record with opts.
func Run(source string, opts render.Options) ([]types.RenderedCitation, types.ParseStats) {
	records, stats := Parse(source)
	return render.RenderAll(records, opts), stats
}
