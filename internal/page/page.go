// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package page inserts rendered citations into an HTML page, replacing the
// children of the element with a given id.
package page

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pdiddy/bibcite/internal/render"
	"github.com/pdiddy/bibcite/internal/source"
	"github.com/pdiddy/bibcite/pkg/types"
)

// DefaultTargetID is the element id citations are inserted into.
const DefaultTargetID = "bib-list"

// ErrTargetNotFound is returned when the page has no element with the
// requested id.
var ErrTargetNotFound = errors.New("target element not found")

// Inject parses the page from r, replaces the children of the element whose
// id is id with one <li> per citation, and writes the page to w.
func Inject(r io.Reader, id string, cites []types.RenderedCitation, w io.Writer) error {
	return rewrite(r, id, w, func(target *html.Node) {
		for _, c := range cites {
			target.AppendChild(render.ListItem(c))
		}
	})
}

// InjectFallback replaces the target's children with a paragraph holding
// source.Fallback, for pages whose bibliography could not be loaded.
func InjectFallback(r io.Reader, id string, w io.Writer) error {
	return rewrite(r, id, w, func(target *html.Node) {
		p := &html.Node{Type: html.ElementNode, DataAtom: atom.P, Data: "p"}
		p.AppendChild(&html.Node{Type: html.TextNode, Data: source.Fallback})
		target.AppendChild(p)
	})
}

func rewrite(r io.Reader, id string, w io.Writer, fill func(*html.Node)) error {
	if id == "" {
		id = DefaultTargetID
	}
	doc, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("parsing page: %w", err)
	}
	target := FindByID(doc, id)
	if target == nil {
		return fmt.Errorf("%w: #%s", ErrTargetNotFound, id)
	}
	for c := target.FirstChild; c != nil; c = target.FirstChild {
		target.RemoveChild(c)
	}
	fill(target)
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}

// FindByID returns the first element under n whose id attribute is id.
func FindByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindByID(c, id); found != nil {
			return found
		}
	}
	return nil
}
