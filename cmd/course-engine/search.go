// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-engine/internal/hierarchy"
	"github.com/pdiddy/course-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find nodes by title, content, or path prefix",
	Long: `Search matches the query against node titles and the latest content of
each node, case-insensitively; title matches rank first. With --prefix,
nodes whose hierarchical path starts with the prefix are listed instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("prefix", "", "list nodes under this path prefix (e.g. course-1/lecture-2)")
	searchCmd.Flags().Int("limit", 20, "maximum results for a text query")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	prefix, _ := cmd.Flags().GetString("prefix")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if prefix == "" && len(args) == 0 {
		return fmt.Errorf("query or --prefix required")
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var results []types.Node
	err = store.View(cmd.Context(), func(tx *hierarchy.Tx) error {
		var err error
		if prefix != "" {
			results, err = tx.PathPrefixSearch(prefix)
		} else {
			results, err = tx.Search(args[0], limit)
		}
		return err
	})
	if err != nil {
		return err
	}
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []types.Node, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-8s  %-40s  %-30s  %s\n", "Rank", "Type", "Title", "Path", "ID")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))
	for i, n := range results {
		title := n.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		path := n.Path
		if len(path) > 30 {
			path = "..." + path[len(path)-27:]
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-8s  %-40s  %-30s  %s\n", i+1, n.Type, title, path, n.ID)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}
