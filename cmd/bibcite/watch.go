// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibcite/internal/source"
	"github.com/pdiddy/bibcite/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [source]",
	Short: "Re-render a local BibTeX file whenever it changes",
	Long: `Watch renders the bibliography once, then again each time the file is
saved. With --page the citations are injected into the page; otherwise they
are rendered in --format. Output goes to --output, or to stdout.

Watch runs until interrupted. A failed render is logged and watching
continues.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	location, err := sourceArg(args)
	if err != nil {
		return err
	}
	if source.IsURL(location) {
		return fmt.Errorf("watch needs a local file, got URL %s", location)
	}
	cfg := renderConfig()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fn := func(ctx context.Context) error {
		if cfg.PagePath != "" {
			return injectPage(ctx, location, cfg)
		}
		text, err := loadSource(ctx, location, cfg.HTTPConfig)
		if err != nil {
			return err
		}
		return writeOutput(cfg.Output, func(w io.Writer) error {
			return renderText(w, location, text, cfg)
		})
	}

	w := watch.New(location, viper.GetDuration("debounce"), fn, logger)
	return w.Run(ctx)
}

func init() {
	addRenderFlags(watchCmd)
	addPageFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period after a change before re-rendering")

	rootCmd.AddCommand(watchCmd)
}
