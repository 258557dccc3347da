// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-engine/internal/hierarchy"
	"github.com/pdiddy/course-engine/internal/writeback"
)

var syncCmd = &cobra.Command{
	Use:   "sync <node-id-or-path...>",
	Short: "Write nodes back into their Markdown files",
	Long: `Sync renders each node with its latest content and replaces its block in
the Markdown file it was imported from, or the file its title classifies
into. Missing headings for ancestors are inserted. Containers are written
before their descendants.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ids := make([]string, 0, len(args))
	err = store.View(cmd.Context(), func(tx *hierarchy.Tx) error {
		for _, ref := range args {
			n, err := resolveNode(tx, ref)
			if err != nil {
				return err
			}
			ids = append(ids, n.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	syncer := writeback.NewDefaultSyncer(store, cfg.Content.Root, cfg.Writeback, logger)
	report, err := syncer.SyncAll(cmd.Context(), ids)
	if err != nil {
		return err
	}
	printSyncReport(os.Stdout, report)
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d node(s) failed to sync", len(report.Failed))
	}
	return nil
}

func printSyncReport(w io.Writer, r writeback.Report) {
	for _, f := range r.Files {
		fmt.Fprintf(w, "wrote:   %s\n", f)
	}
	for _, e := range r.Failed {
		fmt.Fprintf(w, "failed:  %v\n", e)
	}
	for _, id := range r.Skipped {
		fmt.Fprintf(w, "skipped: %s (not found)\n", id)
	}
	fmt.Fprintf(w, "Sync summary: %d synced, %d files changed, %d failed\n",
		len(r.Synced), len(r.Files), len(r.Failed))
}
