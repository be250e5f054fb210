// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pdiddy/bibcite/pkg/types"
)

// EntryClass is the class attribute set on every citation list item.
const EntryClass = "pub-entry"

// ListItem builds the <li> node for one citation:
//
//	<li class="pub-entry"><strong>Title</strong><br><em>Authors</em><br>
//	Details<br><a href="..." target="_blank">DOI</a> | <a ...>Link</a></li>
//
// Text is carried in text nodes, so rendering escapes it.
func ListItem(c types.RenderedCitation) *html.Node {
	li := element(atom.Li, html.Attribute{Key: "class", Val: EntryClass})

	if c.Title != "" {
		strong := element(atom.Strong)
		strong.AppendChild(textNode(c.Title))
		li.AppendChild(strong)
		li.AppendChild(element(atom.Br))
	}
	if c.Authors != "" {
		em := element(atom.Em)
		em.AppendChild(textNode(c.Authors))
		li.AppendChild(em)
		li.AppendChild(element(atom.Br))
	}
	if c.Details != "" {
		li.AppendChild(textNode(c.Details))
		li.AppendChild(element(atom.Br))
	}
	for i, l := range c.Links {
		if i > 0 {
			li.AppendChild(textNode(types.LinkSeparator))
		}
		a := element(atom.A,
			html.Attribute{Key: "href", Val: l.Href},
			html.Attribute{Key: "target", Val: "_blank"},
		)
		a.AppendChild(textNode(l.Label))
		li.AppendChild(a)
	}
	return li
}

// WriteHTML writes one <li> per citation, each on its own line.
func WriteHTML(w io.Writer, cites []types.RenderedCitation) error {
	for _, c := range cites {
		if err := html.Render(w, ListItem(c)); err != nil {
			return fmt.Errorf("rendering %s: %w", c.Key, err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// HTMLList returns the citations wrapped in a <ul> element as a string.
func HTMLList(cites []types.RenderedCitation) (string, error) {
	ul := element(atom.Ul)
	for _, c := range cites {
		ul.AppendChild(ListItem(c))
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, ul); err != nil {
		return "", fmt.Errorf("rendering list: %w", err)
	}
	return buf.String(), nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
