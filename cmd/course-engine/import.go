// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-engine/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import [file-or-dir...]",
	Short: "Parse course Markdown files into the hierarchy",
	Long: `Import parses each Markdown file into a course tree (course, lectures,
sections, topics, slides, and slide components) and stores it with version 1
of every node's content. Directories are searched for .md files. With no
arguments, content.root is imported.

A file that is unchanged since its last import is skipped. A changed file
fails unless --replace is given, which deletes the old course first. Files
that fail to parse are reported and do not stop the run.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().Bool("replace", false, "re-import files that changed since their last import")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	replace, _ := cmd.Flags().GetBool("replace")

	if len(args) == 0 {
		args = []string{cfg.Content.Root}
	}
	paths, err := collectMarkdown(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Println("No Markdown files found.")
		return nil
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	im := importer.New(store, cfg.Import, logger)
	result, err := im.ImportFiles(cmd.Context(), paths, importer.Options{Replace: replace}, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed to import", result.Failed)
	}
	return nil
}

// collectMarkdown expands directories into their .md files. Explicit file
// arguments are kept as given.
func collectMarkdown(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".md") {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}
