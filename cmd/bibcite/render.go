// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/pdiddy/bibcite/internal/pipeline"
	"github.com/pdiddy/bibcite/internal/render"
	"github.com/pdiddy/bibcite/internal/source"
	"github.com/pdiddy/bibcite/pkg/types"
)

var renderCmd = &cobra.Command{
	Use:   "render [source]",
	Short: "Render a BibTeX file or URL as formatted citations",
	Long: `Render loads a bibliography from a local file or an http(s) URL, parses
every record, and writes one citation per record in source order.

Malformed records are skipped and counted; use --verbose to see the counts.
If the source cannot be loaded, the fallback message "Error loading
publications." is written in place of the citations and the command fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	location, err := sourceArg(args)
	if err != nil {
		return err
	}
	cfg := renderConfig()

	text, loadErr := loadSource(cmd.Context(), location, cfg.HTTPConfig)
	if loadErr != nil {
		logger.Error("loading bibliography failed", zap.String("source", location), zap.Error(loadErr))
		if err := writeOutput(cfg.Output, func(w io.Writer) error {
			return writeFallback(w, cfg.Format)
		}); err != nil {
			return err
		}
		return loadErr
	}

	return writeOutput(cfg.Output, func(w io.Writer) error {
		return renderText(w, location, text, cfg)
	})
}

// renderText runs the pipeline over text and writes it in cfg.Format.
func renderText(w io.Writer, location, text string, cfg types.RenderConfig) error {
	records, stats := pipeline.Parse(text)
	logStats(location, stats)

	opts := render.Options{DOIBase: cfg.DOIBase}
	cites := render.RenderAll(records, opts)

	switch cfg.Format {
	case types.FormatHTML, "":
		return render.WriteHTML(w, cites)
	case types.FormatMarkdown:
		return render.WriteMarkdown(w, cites)
	case types.FormatTerminal:
		return render.WriteTerminal(w, cites, cfg.WordWrap)
	case types.FormatText:
		return render.WriteText(w, cites)
	case types.FormatCSL:
		return render.FormatCSL(records, w)
	case types.FormatJSON:
		return render.FormatJSON(cites, w)
	default:
		return fmt.Errorf("unsupported format %q: use html, markdown, terminal, text, csl, or json", cfg.Format)
	}
}

// writeFallback writes the load-failure message in a form that suits the
// output format.
func writeFallback(w io.Writer, format types.OutputFormat) error {
	var err error
	switch format {
	case types.FormatHTML, "":
		_, err = fmt.Fprintf(w, "<p>%s</p>\n", html.EscapeString(source.Fallback))
	case types.FormatCSL, types.FormatJSON:
		// Structured formats get an empty list.
		_, err = fmt.Fprintln(w, "[]")
	default:
		_, err = fmt.Fprintln(w, source.Fallback)
	}
	return err
}

func logStats(location string, stats types.ParseStats) {
	fields := []zap.Field{
		zap.String("source", location),
		zap.Int("entries", stats.Entries),
		zap.Int("skipped", stats.Skipped),
		zap.Int("dropped_fields", stats.DroppedFields),
	}
	if stats.Skipped > 0 {
		logger.Warn("skipped malformed records", fields...)
		return
	}
	logger.Debug("parsed bibliography", fields...)
}

func init() {
	addRenderFlags(renderCmd)
	rootCmd.AddCommand(renderCmd)
}
