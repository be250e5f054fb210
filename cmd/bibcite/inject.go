// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/bibcite/internal/page"
	"github.com/pdiddy/bibcite/internal/pipeline"
	"github.com/pdiddy/bibcite/internal/render"
	"github.com/pdiddy/bibcite/pkg/types"
)

var injectCmd = &cobra.Command{
	Use:   "inject [source]",
	Short: "Insert rendered citations into an HTML page",
	Long: `Inject renders a bibliography as <li class="pub-entry"> items and replaces
the children of the element with the given id (default "bib-list") in an
existing HTML page.

The page is written to --output, or to stdout. Pass the page path as
--output to update it in place. If the source cannot be loaded, the target
receives the fallback paragraph instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInject,
}

func runInject(cmd *cobra.Command, args []string) error {
	location, err := sourceArg(args)
	if err != nil {
		return err
	}
	cfg := renderConfig()
	if cfg.PagePath == "" {
		return fmt.Errorf("--page is required")
	}
	return injectPage(cmd.Context(), location, cfg)
}

// injectPage loads location and rewrites cfg.PagePath into cfg.Output.
func injectPage(ctx context.Context, location string, cfg types.RenderConfig) error {
	pageHTML, err := os.ReadFile(cfg.PagePath)
	if err != nil {
		return fmt.Errorf("reading page %s: %w", cfg.PagePath, err)
	}

	text, loadErr := loadSource(ctx, location, cfg.HTTPConfig)
	if loadErr != nil {
		logger.Error("loading bibliography failed", zap.String("source", location), zap.Error(loadErr))
		if err := writeOutput(cfg.Output, func(w io.Writer) error {
			return page.InjectFallback(bytes.NewReader(pageHTML), cfg.TargetID, w)
		}); err != nil {
			return err
		}
		return loadErr
	}

	cites, stats := pipeline.Run(text, render.Options{DOIBase: cfg.DOIBase})
	logStats(location, stats)

	return writeOutput(cfg.Output, func(w io.Writer) error {
		return page.Inject(bytes.NewReader(pageHTML), cfg.TargetID, cites, w)
	})
}

func init() {
	addFetchFlags(injectCmd)
	addPageFlags(injectCmd)
	injectCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	injectCmd.Flags().String("doi-base", render.DefaultDOIBase, "resolver prefix for DOI links")

	rootCmd.AddCommand(injectCmd)
}
