// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hierarchy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/course-engine/pkg/types"
)

// ExportNode is one node of an exported tree with its latest content.
type ExportNode struct {
	ID           string            `json:"id" yaml:"id"`
	Type         types.NodeType    `json:"type" yaml:"type"`
	Title        string            `json:"title" yaml:"title"`
	NodeNumber   string            `json:"node_number,omitempty" yaml:"node_number,omitempty"`
	DisplayOrder int               `json:"display_order" yaml:"display_order"`
	Path         string            `json:"path" yaml:"path"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	Version      int               `json:"version,omitempty" yaml:"version,omitempty"`
	Content      string            `json:"content,omitempty" yaml:"content,omitempty"`
	Components   []ExportComponent `json:"components,omitempty" yaml:"components,omitempty"`
	Children     []*ExportNode     `json:"children,omitempty" yaml:"children,omitempty"`
}

// ExportComponent is a slide component in an exported tree.
type ExportComponent struct {
	Type    types.ComponentType `json:"type" yaml:"type"`
	Content string              `json:"content" yaml:"content"`
}

// ExportYAML writes the tree under rootID, or every course when rootID is
// empty, to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, rootID string) error {
	trees, err := s.exportTrees(ctx, rootID)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(trees); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the tree under rootID, or every course when rootID is
// empty, to w as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, rootID string) error {
	trees, err := s.exportTrees(ctx, rootID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(trees); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (s *Store) exportTrees(ctx context.Context, rootID string) ([]*ExportNode, error) {
	var trees []*ExportNode
	err := s.View(ctx, func(tx *Tx) error {
		var roots []types.Node
		if rootID != "" {
			n, err := tx.Node(rootID)
			if err != nil {
				return err
			}
			roots = []types.Node{n}
		} else {
			var err error
			if roots, err = tx.Roots(); err != nil {
				return err
			}
		}
		for _, r := range roots {
			tree, err := tx.exportNode(r)
			if err != nil {
				return err
			}
			trees = append(trees, tree)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return trees, nil
}

func (tx *Tx) exportNode(n types.Node) (*ExportNode, error) {
	out := &ExportNode{
		ID:           n.ID,
		Type:         n.Type,
		Title:        n.Title,
		NodeNumber:   n.NodeNumber,
		DisplayOrder: n.DisplayOrder,
		Path:         n.Path,
		Description:  n.Description,
	}

	v, err := tx.LatestVersion(n.ID)
	switch {
	case err == nil:
		out.Version = v.VersionNumber
		out.Content = v.Content
	case !types.IsNotFound(err):
		return nil, err
	}

	if n.Type == types.NodeSlide {
		comps, err := tx.Components(n.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range comps {
			out.Components = append(out.Components, ExportComponent{Type: c.ComponentType, Content: c.Content})
		}
	}

	children, err := tx.ChildrenOf(n.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		child, err := tx.exportNode(c)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}
