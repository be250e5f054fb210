// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibcite/internal/library"
	"github.com/pdiddy/bibcite/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the record library (ingest, search, export)",
	Long: `Library keeps parsed records from one or more bibliographies in a local
SQLite database. Use subcommands to ingest sources, search records, list
sources, or export records.`,
}

// --- ingest subcommand ---

var libraryIngestCmd = &cobra.Command{
	Use:   "ingest [source...]",
	Short: "Parse bibliographies and store their records",
	Long: `Ingest loads each source (file or URL), parses it, and replaces that
source's records in the library. Sources whose text is unchanged since the
last ingest are skipped. Without arguments, the "sources" list from
bibcite.yaml is used.`,
	RunE: runLibraryIngest,
}

func runLibraryIngest(cmd *cobra.Command, args []string) error {
	locations := args
	if len(locations) == 0 {
		locations = viper.GetStringSlice("sources")
	}
	if len(locations) == 0 {
		return fmt.Errorf("no sources: pass files or URLs, or set sources in bibcite.yaml")
	}

	store, err := library.Open(libraryConfig(), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := httpConfig()
	load := func(ctx context.Context, loc string) (string, error) {
		return loadSource(ctx, loc, cfg)
	}
	if failed := store.IngestAll(cmd.Context(), locations, load, os.Stdout); failed > 0 {
		return fmt.Errorf("%d source(s) failed ingest", failed)
	}
	return nil
}

// --- search subcommand ---

var librarySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored records by text and filters",
	Long: `Search matches the query as a substring of each record's title, authors,
key, or abstract, optionally filtered by entry type, year, or source. Results
keep source order.`,
	RunE: runLibrarySearch,
}

func runLibrarySearch(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --type, --year, or --source")
	}

	store, err := library.Open(libraryConfig(), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []library.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-20s  %-14s  %-50s  %-4s  %s\n",
		"Rank", "Key", "Type", "Title", "Year", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%-4d  %-20s  %-14s  %-50s  %-4s  %s\n",
			i+1, truncate(r.Key, 20), truncate(r.EntryType, 14),
			truncate(r.Field("title"), 50), r.Field("year"), r.Source)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- sources subcommand ---

var librarySourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List ingested sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := library.Open(libraryConfig(), logger)
		if err != nil {
			return err
		}
		defer store.Close()

		sources, err := store.Sources(cmd.Context())
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			fmt.Println("No sources ingested.")
			return nil
		}
		for _, s := range sources {
			fmt.Fprintf(os.Stdout, "%-40s  %4d entries  %3d malformed  %s\n", s.Name, s.Entries, s.Skipped, s.IngestedAt)
		}
		return nil
	},
}

// --- export subcommand ---

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library to YAML or JSON",
	Long: `Export writes the full library (or a filtered subset) to export.yaml or
export.json in the library directory. Supports the same filter flags as
search for partial exports.`,
	RunE: runLibraryExport,
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := library.Open(libraryConfig(), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = store.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

func libraryConfig() types.LibraryConfig {
	return types.LibraryConfig{
		Dir:        viper.GetString("library-dir"),
		MaxResults: viper.GetInt("max-results"),
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) library.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	entryType, _ := cmd.Flags().GetString("type")
	year, _ := cmd.Flags().GetString("year")
	src, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	return library.QueryOptions{
		Query:      queryText,
		Type:       entryType,
		Year:       year,
		Source:     src,
		MaxResults: limit,
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "substring of title, authors, key, or abstract")
	cmd.Flags().String("type", "", "filter by entry type (e.g. article, phdthesis)")
	cmd.Flags().String("year", "", "filter by year")
	cmd.Flags().String("source", "", "filter by source name")
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	libraryCmd.PersistentFlags().String("library-dir", "library", "directory holding library.db and exports")
	libraryCmd.PersistentFlags().Int("max-results", 20, "default maximum number of search results")

	addFetchFlags(libraryIngestCmd)

	addFilterFlags(librarySearchCmd)
	librarySearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	librarySearchCmd.Flags().Bool("json", false, "output results as JSON")

	addFilterFlags(libraryExportCmd)
	libraryExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	libraryCmd.AddCommand(libraryIngestCmd)
	libraryCmd.AddCommand(librarySearchCmd)
	libraryCmd.AddCommand(librarySourcesCmd)
	libraryCmd.AddCommand(libraryExportCmd)
	rootCmd.AddCommand(libraryCmd)
}
