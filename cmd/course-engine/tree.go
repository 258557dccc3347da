// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/course-engine/internal/hierarchy"
	"github.com/pdiddy/course-engine/pkg/types"
)

// --- tree ---

var treeCmd = &cobra.Command{
	Use:   "tree [node-id-or-path]",
	Short: "Print the hierarchy as an indented tree",
	Long: `Tree prints every course, or the subtree under one node, one node per
line with its number, type, title, and id. Nodes are addressed by id or by
hierarchical path such as course-1/lecture-2.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func runTree(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	return store.View(cmd.Context(), func(tx *hierarchy.Tx) error {
		var roots []types.Node
		if len(args) == 1 {
			n, err := resolveNode(tx, args[0])
			if err != nil {
				return err
			}
			roots = []types.Node{n}
		} else {
			if roots, err = tx.Roots(); err != nil {
				return err
			}
		}
		if len(roots) == 0 {
			fmt.Println("No courses imported.")
			return nil
		}
		for _, n := range roots {
			if err := printTree(tx, os.Stdout, n, 0); err != nil {
				return err
			}
		}
		return nil
	})
}

func printTree(tx *hierarchy.Tx, w io.Writer, n types.Node, depth int) error {
	label := n.NodeNumber
	if label == "" {
		label = "-"
	}
	fmt.Fprintf(w, "%s%-8s %-8s %s  (%s)\n", strings.Repeat("  ", depth), label, n.Type, n.Title, n.ID)
	children, err := tx.ChildrenOf(n.ID)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := printTree(tx, w, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// --- show ---

var showCmd = &cobra.Command{
	Use:   "show <node-id-or-path>",
	Short: "Print a node, its ancestry, and its latest content",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	return store.View(cmd.Context(), func(tx *hierarchy.Tx) error {
		n, err := resolveNode(tx, args[0])
		if err != nil {
			return err
		}
		ancestors, err := tx.Ancestors(n.ID)
		if err != nil {
			return err
		}
		content, err := tx.LatestContent(n.ID)
		if err != nil {
			return err
		}

		crumbs := make([]string, 0, len(ancestors)+1)
		for _, a := range ancestors {
			crumbs = append(crumbs, a.Title)
		}
		crumbs = append(crumbs, n.Title)

		fmt.Printf("ID:       %s\n", n.ID)
		fmt.Printf("Type:     %s\n", n.Type)
		fmt.Printf("Path:     %s\n", n.Path)
		fmt.Printf("Number:   %s\n", n.NodeNumber)
		fmt.Printf("Order:    %d\n", n.DisplayOrder)
		fmt.Printf("Location: %s\n", strings.Join(crumbs, " > "))
		if f := sourceFile(n, ancestors); f != "" {
			fmt.Printf("File:     %s\n", f)
		}
		if n.Description != "" {
			fmt.Printf("About:    %s\n", n.Description)
		}
		fmt.Printf("Updated:  %s\n", n.UpdatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
		fmt.Println(strings.TrimRight(content, "\n"))

		if n.Type != types.NodeSlide {
			return nil
		}
		comps, err := tx.Components(n.ID)
		if err != nil {
			return err
		}
		for _, c := range comps {
			fmt.Printf("\n--- %s ---\n%s\n", c.ComponentType, strings.TrimRight(c.Content, "\n"))
		}
		return nil
	})
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history <node-id-or-path>",
	Short: "List the content versions of a node",
	Long: `History lists every stored version of a node's content, oldest first.
Use --version to print the full text of one version.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	want, _ := cmd.Flags().GetInt("version")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	return store.View(cmd.Context(), func(tx *hierarchy.Tx) error {
		n, err := resolveNode(tx, args[0])
		if err != nil {
			return err
		}
		versions, err := tx.Versions(n.ID)
		if err != nil {
			return err
		}

		if want > 0 {
			for _, v := range versions {
				if v.VersionNumber == want {
					fmt.Println(strings.TrimRight(v.Content, "\n"))
					return nil
				}
			}
			return &types.NotFoundError{Kind: "version", ID: n.ID + "@" + strconv.Itoa(want)}
		}

		if len(versions) == 0 {
			fmt.Println("No versions.")
			return nil
		}
		fmt.Fprintf(os.Stdout, "%-7s  %-19s  %-8s  %s\n", "Version", "Created", "Bytes", "First line")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
		for _, v := range versions {
			first := strings.TrimSpace(strings.SplitN(strings.TrimSpace(v.Content), "\n", 2)[0])
			if len(first) > 40 {
				first = first[:37] + "..."
			}
			fmt.Fprintf(os.Stdout, "%-7d  %-19s  %-8d  %s\n",
				v.VersionNumber, v.CreatedAt.Format("2006-01-02 15:04:05"), len(v.Content), first)
		}
		return nil
	})
}

// --- shared helpers ---

// resolveNode looks ref up as an id, then as a hierarchical path.
func resolveNode(tx *hierarchy.Tx, ref string) (types.Node, error) {
	n, err := tx.Node(ref)
	if err == nil || !types.IsNotFound(err) {
		return n, err
	}
	return tx.NodeByPath(strings.Trim(ref, "/"))
}

func sourceFile(n types.Node, ancestors []types.Node) string {
	if f := n.Meta(types.MetaSourceFile); f != "" {
		return f
	}
	for i := len(ancestors) - 1; i >= 0; i-- {
		if f := ancestors[i].Meta(types.MetaSourceFile); f != "" {
			return f
		}
	}
	return ""
}

func init() {
	historyCmd.Flags().Int("version", 0, "print the content of this version number")

	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(historyCmd)
}
