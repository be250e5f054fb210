package render

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibcite/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title,omitempty"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Publisher      string    `yaml:"publisher,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	Genre          string    `yaml:"genre,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// cslTypes maps BibTeX entry types to CSL item types.
var cslTypes = map[string]string{
	"article":       "article-journal",
	"journal":       "article-journal",
	"inproceedings": "paper-conference",
	"conference":    "paper-conference",
	"proceedings":   "book",
	"book":          "book",
	"inbook":        "chapter",
	"incollection":  "chapter",
	"thesis":        "thesis",
	"mastersthesis": "thesis",
	"phdthesis":     "thesis",
	"techreport":    "report",
	"manual":        "report",
	"unpublished":   "manuscript",
	"online":        "webpage",
}

var cslGenres = map[string]string{
	"mastersthesis": "Master's thesis",
	"phdthesis":     "PhD thesis",
}

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// FormatCSL writes records as a CSL-YAML list to w.
func FormatCSL(recs []types.Record, w io.Writer) error {
	items := make([]CSLItem, len(recs))
	for i, r := range recs {
		items[i] = ToCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// FormatJSON writes rendered citations as indented JSON to w.
func FormatJSON(cites []types.RenderedCitation, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cites)
}

// ToCSLItem converts a Record to a CSLItem.
func ToCSLItem(r types.Record) CSLItem {
	item := CSLItem{
		ID:       r.Key,
		Type:     cslType(r.EntryType),
		Title:    r.Field("title"),
		Volume:   r.Field("volume"),
		Issue:    r.Field("number"),
		Page:     r.Field("pages"),
		Genre:    cslGenres[r.EntryType],
		Abstract: r.Field("abstract"),
		DOI:      r.Field("doi"),
		URL:      r.Field("url"),
	}

	for _, a := range SplitAuthors(r.Field("author")) {
		item.Author = append(item.Author, parseAuthorName(a))
	}

	switch types.StyleFor(r.EntryType) {
	case types.StyleArticle:
		item.ContainerTitle = r.Field("journal")
	case types.StyleProceedings:
		item.ContainerTitle = r.Field("booktitle")
	case types.StyleThesis:
		item.Publisher = r.Field("school")
		if item.Publisher == "" {
			item.Publisher = r.Field("institution")
		}
	default:
		item.ContainerTitle = r.Field("booktitle")
		item.Publisher = r.Field("publisher")
	}

	if year, err := strconv.Atoi(r.Field("year")); err == nil {
		parts := []int{year}
		if m := parseMonth(r.Field("month")); m > 0 {
			parts = append(parts, m)
		}
		item.Issued = &CSLDate{DateParts: [][]int{parts}}
	}

	return item
}

func cslType(entryType string) string {
	if t, ok := cslTypes[entryType]; ok {
		return t
	}
	return "document"
}

// parseMonth accepts "3", "03", "mar", or "March". Anything else is 0.
func parseMonth(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
		return n
	}
	if len(s) >= 3 {
		return monthNumbers[s[:3]]
	}
	return 0
}

// parseAuthorName splits a name into CSL family/given parts. BibTeX's
// "Family, Given" form splits on the first comma; otherwise the last token
// is family and everything before it is given. Single-token names use the
// literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return CSLName{
			Family: strings.TrimSpace(family),
			Given:  strings.TrimSpace(given),
		}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  strings.TrimSpace(name[:idx]),
		Family: name[idx+1:],
	}
}
