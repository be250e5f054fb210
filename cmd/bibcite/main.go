// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bibcite CLI.
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/bibcite/internal/logging"
	"github.com/pdiddy/bibcite/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built in PersistentPreRunE; it is a no-op until then.
var logger = zap.NewNop()

// bearerToken holds the token loaded from the environment or .secrets/.
var bearerToken string

// rootCmd is the base command for the bibcite CLI.
var rootCmd = &cobra.Command{
	Use:   "bibcite",
	Short: "Parse BibTeX bibliographies and render them as citations",
	Long: `bibcite reads a BibTeX bibliography from a file or URL, parses it
tolerantly (nested braces, quoted values, multi-line fields), and renders
each record as a formatted citation.

Citations can be written as HTML list items, injected into an existing page,
or rendered as Markdown, terminal text, plain text, CSL-YAML, or JSON. The
library subcommands keep parsed records in a local SQLite database for search
and export.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.LoadDotenv(".env"); err != nil {
			return err
		}
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("binding flags: %w", err)
		}

		l, err := logging.New(viper.GetBool("verbose"))
		if err != nil {
			return err
		}
		logger = l
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", zap.String("path", f))
		}

		bearerToken, err = secrets.Token(".secrets/", logger)
		if err != nil {
			return err
		}
		if bearerToken != "" {
			logger.Debug("loaded bearer token")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bibcite.yaml or ~/.config/bibcite/bibcite.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug detail to stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bibcite")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bibcite"))
		}
	}

	viper.SetEnvPrefix("BIBCITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
