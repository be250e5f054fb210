// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"io"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/charmbracelet/glamour"

	"github.com/pdiddy/bibcite/pkg/types"
)

// DefaultWordWrap is the terminal sink's wrap width when none is set.
const DefaultWordWrap = 80

// Markdown converts the HTML list form of the citations to Markdown, so
// both sinks share one layout.
func Markdown(cites []types.RenderedCitation) (string, error) {
	if len(cites) == 0 {
		return "", nil
	}
	list, err := HTMLList(cites)
	if err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(list)
	if err != nil {
		return "", fmt.Errorf("converting to markdown: %w", err)
	}
	return strings.TrimSpace(md) + "\n", nil
}

// WriteMarkdown writes the Markdown form of the citations to w.
func WriteMarkdown(w io.Writer, cites []types.RenderedCitation) error {
	md, err := Markdown(cites)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, md)
	return err
}

// WriteTerminal renders the Markdown form with glamour for a terminal.
// wrap <= 0 uses DefaultWordWrap.
func WriteTerminal(w io.Writer, cites []types.RenderedCitation, wrap int) error {
	if wrap <= 0 {
		wrap = DefaultWordWrap
	}
	md, err := Markdown(cites)
	if err != nil {
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return fmt.Errorf("creating terminal renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering for terminal: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// WriteText writes each citation's plain form, separated by blank lines.
func WriteText(w io.Writer, cites []types.RenderedCitation) error {
	for i, c := range cites {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, c.Text()); err != nil {
			return err
		}
	}
	return nil
}
