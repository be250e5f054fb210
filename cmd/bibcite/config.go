// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibcite/internal/page"
	"github.com/pdiddy/bibcite/internal/render"
	"github.com/pdiddy/bibcite/internal/source"
	"github.com/pdiddy/bibcite/pkg/types"
)

// addFetchFlags registers the flags used to load a bibliography source.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("timeout", 30*time.Second, "HTTP request timeout for URL sources")
	cmd.Flags().String("user-agent", "bibcite/"+version, "User-Agent header for URL sources")
	cmd.Flags().Int("max-retries", 5, "retries on HTTP 429/503 for URL sources")
}

// addRenderFlags registers the flags that shape rendered output.
func addRenderFlags(cmd *cobra.Command) {
	addFetchFlags(cmd)
	cmd.Flags().StringP("format", "f", string(types.FormatHTML), "output format: html, markdown, terminal, text, csl, json")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().String("doi-base", render.DefaultDOIBase, "resolver prefix for DOI links")
	cmd.Flags().Int("word-wrap", render.DefaultWordWrap, "wrap width for terminal output")
}

// addPageFlags registers the flags used to inject into an HTML page.
func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().String("page", "", "HTML page whose target element receives the citations")
	cmd.Flags().String("id", page.DefaultTargetID, "id of the element whose children are replaced")
}

func httpConfig() types.HTTPConfig {
	return types.HTTPConfig{
		Timeout:    viper.GetDuration("timeout"),
		UserAgent:  viper.GetString("user-agent"),
		MaxRetries: viper.GetInt("max-retries"),
		Token:      bearerToken,
	}
}

func renderConfig() types.RenderConfig {
	return types.RenderConfig{
		HTTPConfig: httpConfig(),
		Format:     types.OutputFormat(viper.GetString("format")),
		DOIBase:    viper.GetString("doi-base"),
		Output:     viper.GetString("output"),
		PagePath:   viper.GetString("page"),
		TargetID:   viper.GetString("id"),
		WordWrap:   viper.GetInt("word-wrap"),
	}
}

// sourceArg returns the bibliography location from args or the "source"
// config key.
func sourceArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if s := viper.GetString("source"); s != "" {
		return s, nil
	}
	return "", fmt.Errorf("source required: pass a file or URL, or set source in bibcite.yaml")
}

func loadSource(ctx context.Context, location string, cfg types.HTTPConfig) (string, error) {
	return source.Load(ctx, nil, location, cfg, logger)
}

// writeOutput calls write with stdout or the named file. The file is only
// replaced when write succeeds.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".bibcite-*")
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("creating output: %w", err)
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
