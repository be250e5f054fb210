// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bibcite/internal/render"
	"github.com/pdiddy/bibcite/pkg/types"
)

const sample = `% Publications
@comment{ exported by a reference manager }

@article{smith2020,
  title = {Efficient Attention},
  author = {Jane Smith and Bob Doe and Ann Lee},
  journal = {Nature},
  volume = {5},
  pages = {1--10},
  year = 2020,
  doi = {10.1000/xyz}
}

@phdthesis{lee2019,
  title = {Learning to Learn},
  author = {Kim Lee},
  school = {MIT},
  year = 2019,
  url = {https://example.com/thesis.pdf}
}

@inproceedings{doe2021, title = {Sparse Transformers}, booktitle = {NeurIPS}, year = 2021, note = {}}
`

func TestParseAndRender(t *testing.T) {
	cites := ParseAndRender(sample)
	require.Len(t, cites, 3)

	assert.Equal(t, types.RenderedCitation{
		Key:       "smith2020",
		EntryType: "article",
		Title:     "Efficient Attention",
		Authors:   "Jane Smith, Bob Doe, and Ann Lee",
		Details:   "Nature, vol. 5, pp. 1--10, 2020",
		Links:     []types.Link{{Label: "DOI", Href: "https://doi.org/10.1000/xyz"}},
	}, cites[0])

	assert.Equal(t, "MIT (PhD Thesis), 2019", cites[1].Details)
	assert.Equal(t, []types.Link{{Label: "Link", Href: "https://example.com/thesis.pdf"}}, cites[1].Links)

	assert.Equal(t, "doe2021", cites[2].Key)
	assert.Equal(t, "NeurIPS, 2021", cites[2].Details)
}

func TestParseStats(t *testing.T) {
	src := sample + "\n@article{broken,\n  title = {never closed\n"
	records, stats := Parse(src)
	assert.Len(t, records, 3)
	assert.Equal(t, types.ParseStats{Entries: 3, Skipped: 1, DroppedFields: 1}, stats)
}

func TestParseAndRenderEmptyInputs(t *testing.T) {
	for _, src := range []string{"", "   \n\t", "% only a comment\n", "@comment{nothing}"} {
		assert.Empty(t, ParseAndRender(src), "source %q", src)
	}
}

func TestParseAndRenderPreservesOrder(t *testing.T) {
	var b strings.Builder
	want := []string{"zeta", "alpha", "mid", "beta"}
	for _, k := range want {
		b.WriteString("@misc{" + k + ",\n  title = {" + k + "}\n}\n")
	}
	var got []string
	for _, c := range ParseAndRender(b.String()) {
		got = append(got, c.Key)
	}
	assert.Equal(t, want, got)
}

func TestRunWithOptions(t *testing.T) {
	cites, stats := Run("@misc{k, doi = {10.1/a}}", render.Options{DOIBase: "https://dx.doi.org/"})
	require.Len(t, cites, 1)
	assert.Equal(t, "https://dx.doi.org/10.1/a", cites[0].Links[0].Href)
	assert.Equal(t, 1, stats.Entries)
}

func TestParseAndRenderNeverPanics(t *testing.T) {
	inputs := []string{
		"@",
		"@article{",
		"@article{k,",
		"@article{k, title = {",
		"}}}}@{{{{",
		"@article{k, = }",
		"@article{k, title = \"unterminated}",
		strings.Repeat("@misc{a, title = {x}}\n", 200),
		strings.Repeat("{", 1000),
	}
	for _, src := range inputs {
		assert.NotPanics(t, func() { ParseAndRender(src) })
	}
}
