// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibcite/pkg/types"
)

var fullCitation = types.RenderedCitation{
	Key:       "smith2020",
	EntryType: "article",
	Title:     "Efficient Attention",
	Authors:   "Jane Smith and Bob Doe",
	Details:   "Nature, 2020",
	Links: []types.Link{
		{Label: "DOI", Href: "https://doi.org/10.1/x"},
		{Label: "Link", Href: "https://example.com/p"},
	},
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, []types.RenderedCitation{fullCitation}))

	want := `<li class="pub-entry"><strong>Efficient Attention</strong><br/>` +
		`<em>Jane Smith and Bob Doe</em><br/>Nature, 2020<br/>` +
		`<a href="https://doi.org/10.1/x" target="_blank">DOI</a> | ` +
		`<a href="https://example.com/p" target="_blank">Link</a></li>` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteHTMLOmitsEmptyParts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, []types.RenderedCitation{
		{Key: "a", Title: "Only Title"},
		{Key: "b"},
	}))
	assert.Equal(t,
		`<li class="pub-entry"><strong>Only Title</strong><br/></li>`+"\n"+
			`<li class="pub-entry"></li>`+"\n",
		buf.String())
}

func TestWriteHTMLEscapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, []types.RenderedCitation{{
		Key:     "x",
		Title:   `<script>alert("x")</script> & Co`,
		Details: "Master's Thesis",
		Links:   []types.Link{{Label: "Link", Href: `https://x.org/?a=1&b="2"`}},
	}}))

	out := buf.String()
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt; &amp; Co")
	assert.Contains(t, out, "Master&#39;s Thesis")
	assert.Contains(t, out, `href="https://x.org/?a=1&amp;b=&#34;2&#34;"`)
}

func TestHTMLList(t *testing.T) {
	list, err := HTMLList([]types.RenderedCitation{{Key: "a", Title: "A"}, {Key: "b", Title: "B"}})
	require.NoError(t, err)
	assert.Equal(t,
		`<ul><li class="pub-entry"><strong>A</strong><br/></li><li class="pub-entry"><strong>B</strong><br/></li></ul>`,
		list)

	empty, err := HTMLList(nil)
	require.NoError(t, err)
	assert.Equal(t, "<ul></ul>", empty)
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown([]types.RenderedCitation{fullCitation})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "- "), "want a bullet list, got %q", md)
	assert.Contains(t, md, "**Efficient Attention**")
	assert.Contains(t, md, "Jane Smith and Bob Doe")
	assert.Contains(t, md, "[DOI](https://doi.org/10.1/x)")
	assert.Contains(t, md, "[Link](https://example.com/p)")
	assert.True(t, strings.HasSuffix(md, "\n"))

	empty, err := Markdown(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWriteTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTerminal(&buf, []types.RenderedCitation{{Key: "k", Title: "Attention", Details: "Nature"}}, 0))
	assert.Contains(t, buf.String(), "Attention")
	assert.Contains(t, buf.String(), "Nature")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, []types.RenderedCitation{
		fullCitation,
		{Key: "b", Title: "Second"},
	}))
	want := "Efficient Attention\nJane Smith and Bob Doe\nNature, 2020\n" +
		"DOI: https://doi.org/10.1/x | Link: https://example.com/p\n" +
		"\nSecond\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON([]types.RenderedCitation{fullCitation, {Key: "b", EntryType: "misc"}}, &buf))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "smith2020", got[0]["key"])
	assert.Equal(t, "Nature, 2020", got[0]["details"])
	assert.NotContains(t, got[1], "title")
	assert.NotContains(t, got[1], "links")
}

func TestToCSLItem(t *testing.T) {
	tests := []struct {
		name string
		rec  types.Record
		want CSLItem
	}{
		{
			name: "article",
			rec: record("article", "smith2020",
				"title", "Efficient Attention",
				"author", "Smith, Jane and Bob Doe and Plato",
				"journal", "Nature",
				"volume", "5",
				"number", "2",
				"pages", "1--10",
				"year", "2020",
				"month", "mar",
				"doi", "10.1/x",
			),
			want: CSLItem{
				ID:    "smith2020",
				Type:  "article-journal",
				Title: "Efficient Attention",
				Author: []CSLName{
					{Family: "Smith", Given: "Jane"},
					{Family: "Doe", Given: "Bob"},
					{Literal: "Plato"},
				},
				ContainerTitle: "Nature",
				Volume:         "5",
				Issue:          "2",
				Page:           "1--10",
				Issued:         &CSLDate{DateParts: [][]int{{2020, 3}}},
				DOI:            "10.1/x",
			},
		},
		{
			name: "phd thesis",
			rec:  record("phdthesis", "lee2019", "title", "T", "institution", "MIT", "year", "2019", "month", "13"),
			want: CSLItem{
				ID:        "lee2019",
				Type:      "thesis",
				Title:     "T",
				Publisher: "MIT",
				Genre:     "PhD thesis",
				Issued:    &CSLDate{DateParts: [][]int{{2019}}},
			},
		},
		{
			name: "unknown type and non-numeric year",
			rec:  record("patent", "p1", "year", "in press", "publisher", "ACME"),
			want: CSLItem{ID: "p1", Type: "document", Publisher: "ACME"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ToCSLItem(tt.rec)); diff != "" {
				t.Errorf("ToCSLItem mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatCSL(t *testing.T) {
	var buf bytes.Buffer
	recs := []types.Record{
		record("inproceedings", "doe2021", "title", "Sparse", "booktitle", "NeurIPS", "year", "2021"),
	}
	require.NoError(t, FormatCSL(recs, &buf))

	var items []CSLItem
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &items))
	want := []CSLItem{{
		ID:             "doe2021",
		Type:           "paper-conference",
		Title:          "Sparse",
		ContainerTitle: "NeurIPS",
		Issued:         &CSLDate{DateParts: [][]int{{2021}}},
	}}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("CSL round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, buf.String(), "container-title: NeurIPS")
}

func TestParseMonth(t *testing.T) {
	for in, want := range map[string]int{"3": 3, "03": 3, "mar": 3, "March": 3, " dec ": 12, "0": 0, "13": 0, "xx": 0, "": 0} {
		assert.Equal(t, want, parseMonth(in), "parseMonth(%q)", in)
	}
}
