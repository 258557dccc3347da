// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-engine/internal/hierarchy"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the hierarchy to YAML or JSON",
	Long: `Export writes every course, or the subtree under --root, with each
node's latest content and slide components. Output goes to stdout unless
--out names a file.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "output format: yaml or json")
	exportCmd.Flags().String("root", "", "export only the subtree under this node id or path")
	exportCmd.Flags().String("out", "", "write to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	rootRef, _ := cmd.Flags().GetString("root")
	outPath, _ := cmd.Flags().GetString("out")

	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var rootID string
	if rootRef != "" {
		err := store.View(cmd.Context(), func(tx *hierarchy.Tx) error {
			n, err := resolveNode(tx, rootRef)
			rootID = n.ID
			return err
		})
		if err != nil {
			return err
		}
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(outPath), err)
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}

	if format == "json" {
		err = store.ExportJSON(cmd.Context(), w, rootID)
	} else {
		err = store.ExportYAML(cmd.Context(), w, rootID)
	}
	if err != nil {
		return err
	}
	if outPath != "" {
		fmt.Printf("Exported to %s\n", outPath)
	}
	return nil
}
