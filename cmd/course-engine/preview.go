// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-engine/internal/hierarchy"
	"github.com/pdiddy/course-engine/internal/markdown"
)

var previewCmd = &cobra.Command{
	Use:   "preview <node-id-or-path>",
	Short: "Render a node's latest content as HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var content string
	err = store.View(cmd.Context(), func(tx *hierarchy.Tx) error {
		n, err := resolveNode(tx, args[0])
		if err != nil {
			return err
		}
		content, err = tx.LatestContent(n.ID)
		return err
	})
	if err != nil {
		return err
	}

	html, err := markdown.Preview(content)
	if err != nil {
		return err
	}
	fmt.Print(html)
	return nil
}
