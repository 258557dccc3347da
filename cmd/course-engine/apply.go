// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-engine/internal/hierarchy"
	"github.com/pdiddy/course-engine/internal/proposal"
	"github.com/pdiddy/course-engine/internal/publish"
	"github.com/pdiddy/course-engine/internal/writeback"
)

var applyCmd = &cobra.Command{
	Use:   "apply [proposals-file]",
	Short: "Apply a batch of ADD, UPDATE, and DELETE proposals",
	Long: `Apply reads a batch of change proposals from a YAML or JSON file, or from
the JSON output of --generator, and applies them to the hierarchy as one
transaction. If any proposal fails, nothing is changed.

After a successful batch, every touched node is written back to its Markdown
file. When publish.enabled is set and files changed, the changes are
committed to a content-derived branch, pushed, and a pull request is opened.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().String("generator", "", "shell command that prints proposals as JSON")
	applyCmd.Flags().Bool("dry-run", false, "validate and apply inside a rolled-back transaction")
	applyCmd.Flags().Bool("no-sync", false, "skip writing touched nodes back to Markdown")
	applyCmd.Flags().Bool("no-publish", false, "skip commit, push, and pull request")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	generator, _ := cmd.Flags().GetString("generator")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noSync, _ := cmd.Flags().GetBool("no-sync")
	noPublish, _ := cmd.Flags().GetBool("no-publish")

	var src proposal.Source
	switch {
	case generator != "" && len(args) > 0:
		return fmt.Errorf("give a proposals file or --generator, not both")
	case generator != "":
		src = proposal.CommandSource{Command: generator}
	case len(args) == 1:
		src = proposal.FileSource{Path: args[0]}
	default:
		return fmt.Errorf("proposals file or --generator required")
	}

	proposals, err := src.Proposals(cmd.Context())
	if err != nil {
		return err
	}
	if len(proposals) == 0 {
		fmt.Println("No proposals.")
		return nil
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	engine := newEngine(store, noPublish || dryRun)
	result, err := engine.Apply(cmd.Context(), proposals, proposal.Options{
		DryRun:    dryRun,
		NoSync:    noSync,
		NoPublish: noPublish,
	})
	if result != nil {
		printApplyResult(os.Stdout, result)
	}
	return err
}

// newEngine wires the write-back syncer and, when configured and available,
// the git publisher.
func newEngine(store *hierarchy.Store, skipPublish bool) *proposal.Engine {
	syncer := writeback.NewDefaultSyncer(store, cfg.Content.Root, cfg.Writeback, logger)

	var pub proposal.Publisher
	if cfg.Publish.Enabled && !skipPublish {
		gp := publish.NewGitPublisher(cfg.Publish, loadedSecrets.GitHubToken(), logger)
		if err := gp.Available(); err != nil {
			logger.Warn().Err(err).Msg("publishing disabled")
		} else {
			pub = gp
		}
	}
	return proposal.NewEngine(store, syncer, pub, cfg.Publish.BranchPrefix, logger)
}

func printApplyResult(w io.Writer, r *proposal.Result) {
	if r.DryRun {
		fmt.Fprintln(w, "Dry run: no changes were committed.")
	}
	for _, id := range r.Created {
		fmt.Fprintf(w, "created: %s\n", id)
	}
	for _, id := range r.Updated {
		fmt.Fprintf(w, "updated: %s\n", id)
	}
	for _, id := range r.Deleted {
		fmt.Fprintf(w, "deleted: %s\n", id)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	if r.Sync != nil {
		printSyncReport(w, *r.Sync)
	}
	if r.Branch != "" {
		fmt.Fprintf(w, "branch:  %s\n", r.Branch)
	}
	if r.PullRequest != "" {
		fmt.Fprintf(w, "pull request: %s\n", r.PullRequest)
	}
	fmt.Fprintf(w, "\nApply summary: %d created, %d updated, %d deleted\n",
		len(r.Created), len(r.Updated), len(r.Deleted))
}
