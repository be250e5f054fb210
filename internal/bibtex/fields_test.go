// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/bibcite/pkg/types"
)

type pair struct{ name, value string }

func pairs(f types.Fields) []pair {
	var out []pair
	for _, n := range f.Names() {
		v, _ := f.Get(n)
		out = append(out, pair{n, v})
	}
	return out
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		name    string
		block   string
		want    []pair
		dropped int
	}{
		{
			name:  "one field per line",
			block: "\n  Title = {Efficient Attention},\n  AUTHOR = {Jane Smith and Bob Doe},\n  year = 2020\n",
			want:  []pair{{"title", "Efficient Attention"}, {"author", "Jane Smith and Bob Doe"}, {"year", "2020"}},
		},
		{
			name:  "multi-line value joined with spaces",
			block: "\n  abstract = {We study attention\n    at scale\n    and depth.},\n  year = 2021\n",
			want:  []pair{{"abstract", "We study attention at scale and depth."}, {"year", "2021"}},
		},
		{
			name:  "equals inside an open brace",
			block: "\n  title = {When a = b\n    and c = d},\n  year = 2022\n",
			want:  []pair{{"title", "When a = b and c = d"}, {"year", "2022"}},
		},
		{
			name:  "nested braces stripped",
			block: "title = {The {DNA} of {{Deep}} Nets},",
			want:  []pair{{"title", "The DNA of Deep Nets"}},
		},
		{
			name:  "quoted value",
			block: "\n  title = \"Hello, World\",\n  journal = \"Nature\"\n",
			want:  []pair{{"title", "Hello, World"}, {"journal", "Nature"}},
		},
		{
			name:  "quoted value over two lines",
			block: "\n  title = \"A long\n    title = still title\",\n  year = 1999\n",
			want:  []pair{{"title", "A long title = still title"}, {"year", "1999"}},
		},
		{
			name:  "several fields on one line",
			block: " title = {A, B}, year = 2020, pages = {1--2}",
			want:  []pair{{"title", "A, B"}, {"year", "2020"}, {"pages", "1--2"}},
		},
		{
			name:  "value on the line after the name",
			block: "\n  note =\n    {Hello},\n  year = 2001\n",
			want:  []pair{{"note", "Hello"}, {"year", "2001"}},
		},
		{
			name:  "comment lines ignored",
			block: "\n  % title = {Commented out},\n  title = {Kept},\n  % trailing note\n",
			want:  []pair{{"title", "Kept"}},
		},
		{
			name:    "empty value dropped",
			block:   "\n  note = {},\n  title = {T}\n",
			want:    []pair{{"title", "T"}},
			dropped: 1,
		},
		{
			name:    "empty name dropped",
			block:   "\n  = orphan,\n  title = {T}\n",
			want:    []pair{{"title", "T"}},
			dropped: 1,
		},
		{
			name:  "duplicate name keeps last value at first position",
			block: "\n  title = {First},\n  year = 2020,\n  title = {Second}\n",
			want:  []pair{{"title", "Second"}, {"year", "2020"}},
		},
		{
			name:  "escaped equals is not an assignment",
			block: "\n  title = {x}\n  \\= y\n",
			want:  []pair{{"title", `x \= y`}},
		},
		{
			name:  "quote inside a bare value stays on its line",
			block: "\n  title = {T},\n  note = 12\" vinyl,\n  year = 2020\n",
			want:  []pair{{"title", "T"}, {"note", `12" vinyl`}, {"year", "2020"}},
		},
		{
			name:  "quote inside a bare value before another field",
			block: ` note = 12" vinyl, year = 2020`,
			want:  []pair{{"note", `12" vinyl`}, {"year", "2020"}},
		},
		{
			name:  "quotes inside a braced value are kept",
			block: "title = {\"a\" and \"b\"},",
			want:  []pair{{"title", `"a" and "b"`}},
		},
		{
			name:  "commas without assignments stay in the value",
			block: "note = a, b,c d = e,",
			want:  []pair{{"note", "a, b,c d = e"}},
		},
		{
			name:  "empty block",
			block: "",
		},
		{
			name:  "whitespace only",
			block: "\n   \n\t\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, dropped := ParseFields(tt.block)
			assert.Equal(t, tt.want, pairs(fields))
			assert.Equal(t, tt.dropped, dropped)
		})
	}
}

func TestParseFieldsNoEmptyNamesOrValues(t *testing.T) {
	blocks := []string{
		"=",
		"= = =",
		"a =\n= b\n,",
		"title = {\n}\n",
		"title = \"\"",
		"{{{{",
		"}}}} = {",
		"\"",
		"x = {unclosed\ny = 2",
	}
	for _, block := range blocks {
		t.Run(block, func(t *testing.T) {
			assert.NotPanics(t, func() {
				fields, _ := ParseFields(block)
				for _, n := range fields.Names() {
					v, _ := fields.Get(n)
					assert.NotEmpty(t, n)
					assert.NotEmpty(t, v)
				}
			})
		})
	}
}

func TestParseEntry(t *testing.T) {
	rec, dropped := ParseEntry(types.RawEntry{
		EntryType:  "article",
		Key:        " smith2020 ",
		FieldBlock: "\n  title = {T},\n  journal = {J},\n  url = {}\n",
	})
	assert.Equal(t, "article", rec.EntryType)
	assert.Equal(t, "smith2020", rec.Key)
	assert.Equal(t, "T", rec.Field("title"))
	assert.Equal(t, "J", rec.Field("journal"))
	assert.False(t, rec.Fields.Has("url"))
	assert.Equal(t, 1, dropped)
}

func TestCleanValue(t *testing.T) {
	tests := []struct{ in, want string }{
		{"{Nature},", "Nature"},
		{"  2020 , ", "2020"},
		{`"Quoted"`, "Quoted"},
		{`{"Braced quote"}`, `"Braced quote"`},
		{`{"a" and "b"},`, `"a" and "b"`},
		{`"a" and "b"`, `a" and "b`},
		{`"{Braced} inside quotes",`, "Braced inside quotes"},
		{",,", ","},
		{"{}", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanValue(tt.in), "cleanValue(%q)", tt.in)
	}
}
