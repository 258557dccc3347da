// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package writeback re-renders stored nodes into their Markdown source
// files. A node's block is located with the same heading scanner the parser
// uses, replaced in place when it exists, and inserted among its siblings
// otherwise. Containers write only their introduction; their children are
// written as nodes of their own.
package writeback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/course-engine/internal/hierarchy"
	"github.com/pdiddy/course-engine/internal/markdown"
	"github.com/pdiddy/course-engine/pkg/types"
)

// ErrUnclassified is returned when no classifier could place a node.
var ErrUnclassified = errors.New("no file for node")

// Syncer writes nodes from the store back into Markdown files.
type Syncer struct {
	store      *hierarchy.Store
	classifier Classifier
	log        zerolog.Logger
}

// NewSyncer returns a Syncer reading from store and placing nodes with
// classifier.
func NewSyncer(store *hierarchy.Store, classifier Classifier, logger zerolog.Logger) *Syncer {
	return &Syncer{
		store:      store,
		classifier: classifier,
		log:        logger.With().Str("component", "writeback").Logger(),
	}
}

// NewDefaultSyncer chains the import-recorded source file with keyword
// buckets resolved against root.
func NewDefaultSyncer(store *hierarchy.Store, root string, cfg types.WritebackConfig, logger zerolog.Logger) *Syncer {
	chain := ChainClassifier{SourceFileClassifier{}, NewKeywordClassifier(root, cfg)}
	return NewSyncer(store, chain, logger)
}

// snapshot is everything read from the store to write one node.
type snapshot struct {
	node       types.Node
	ancestors  []types.Node
	siblings   []types.Node
	content    string
	components []types.Component
}

// SyncNode writes the latest state of node id into its file. It returns the
// file and whether its bytes changed. Failures are *types.SyncError.
func (s *Syncer) SyncNode(ctx context.Context, id string) (file string, changed bool, err error) {
	snap, err := s.load(ctx, id)
	if err != nil {
		return "", false, &types.SyncError{NodeID: id, Err: err}
	}

	file, ok := s.classifier.Classify(snap.node, snap.ancestors)
	if !ok {
		return "", false, &types.SyncError{NodeID: id, Err: ErrUnclassified}
	}

	content := snap.content
	if snap.node.Type != types.NodeSlide {
		content = strings.TrimSpace(content)
		content = content[:markdown.IntroEnd(content, snap.node.Type.Rank(), 0, len(content))]
	}
	block, err := markdown.Render(markdown.RenderInput{
		Type:         snap.node.Type,
		Title:        snap.node.Title,
		DisplayOrder: snap.node.DisplayOrder,
		Content:      content,
		Components:   snap.components,
	})
	if err != nil {
		return file, false, &types.SyncError{NodeID: id, File: file, Err: err}
	}

	src, err := os.ReadFile(file)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return file, false, &types.SyncError{NodeID: id, File: file, Err: err}
	}

	start := markdown.FrontMatterLen(src)
	updated, err := place(string(src), start, target{
		node:      snap.node,
		ancestors: snap.ancestors,
		siblings:  snap.siblings,
	}, block)
	if err != nil {
		return file, false, &types.SyncError{NodeID: id, File: file, Err: err}
	}
	if updated != string(src) {
		if err := writeFile(file, []byte(updated)); err != nil {
			return file, false, &types.SyncError{NodeID: id, File: file, Err: err}
		}
		changed = true
	}

	meta := map[string]string{types.MetaHeading: strings.SplitN(block, "\n", 2)[0]}
	if snap.node.Type == types.NodeSlide {
		meta[types.MetaSequence] = fmt.Sprintf("%03d", snap.node.DisplayOrder)
	}
	err = s.store.Update(ctx, func(tx *hierarchy.Tx) error {
		return tx.SetMetadata(id, meta)
	})
	if err != nil {
		return file, changed, &types.SyncError{NodeID: id, File: file, Err: err}
	}

	s.log.Debug().Str("node", id).Str("file", file).Bool("changed", changed).Msg("node synced")
	return file, changed, nil
}

// Report summarizes a SyncAll run.
type Report struct {
	Synced  []string           // node ids written
	Files   []string           // files whose bytes changed, in first-change order
	Failed  []*types.SyncError // per-node failures
	Skipped []string           // ids no longer in the store
}

// SyncAll writes ids back shallowest rank first, keeping the given order
// within a rank, so a renamed ancestor's heading is in the file before its
// descendants are located under it.
// A failing node is logged and recorded; the rest continue.
func (s *Syncer) SyncAll(ctx context.Context, ids []string) (Report, error) {
	var report Report

	type entry struct {
		id   string
		rank int
	}
	entries := make([]entry, 0, len(ids))
	err := s.store.View(ctx, func(tx *hierarchy.Tx) error {
		for _, id := range ids {
			n, err := tx.Node(id)
			if types.IsNotFound(err) {
				report.Skipped = append(report.Skipped, id)
				continue
			}
			if err != nil {
				return err
			}
			entries = append(entries, entry{id: id, rank: n.Type.Rank()})
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].rank < entries[j].rank })

	seen := make(map[string]bool)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		file, changed, err := s.SyncNode(ctx, e.id)
		if err != nil {
			var se *types.SyncError
			if !errors.As(err, &se) {
				se = &types.SyncError{NodeID: e.id, File: file, Err: err}
			}
			s.log.Warn().Err(se.Err).Str("node", e.id).Str("file", se.File).Msg("write-back failed")
			report.Failed = append(report.Failed, se)
			continue
		}
		report.Synced = append(report.Synced, e.id)
		if changed && !seen[file] {
			seen[file] = true
			report.Files = append(report.Files, file)
		}
	}
	return report, nil
}

func (s *Syncer) load(ctx context.Context, id string) (snapshot, error) {
	var snap snapshot
	err := s.store.View(ctx, func(tx *hierarchy.Tx) error {
		var err error
		if snap.node, err = tx.Node(id); err != nil {
			return err
		}
		if snap.ancestors, err = tx.Ancestors(id); err != nil {
			return err
		}
		if snap.node.ParentID != "" {
			if snap.siblings, err = tx.ChildrenOf(snap.node.ParentID); err != nil {
				return err
			}
		}
		if snap.content, err = tx.LatestContent(id); err != nil {
			return err
		}
		if snap.node.Type == types.NodeSlide {
			if snap.components, err = tx.Components(id); err != nil {
				return err
			}
		}
		return nil
	})
	return snap, err
}

// writeFile replaces path through a temporary file in the same directory.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".writeback-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
