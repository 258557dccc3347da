// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package importer loads course Markdown files into the hierarchy store.
// Files are parsed concurrently and persisted one at a time, each in its own
// unit of work, so a bad file never leaves partial nodes behind and never
// stops the rest of the batch.
package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/course-engine/internal/hierarchy"
	"github.com/pdiddy/course-engine/internal/markdown"
	"github.com/pdiddy/course-engine/pkg/types"
)

const defaultWorkers = 4

// ErrChanged is returned for a file whose content differs from its last
// import when Replace is not set.
var ErrChanged = errors.New("file changed since last import (use --replace)")

// Options tune one import run.
type Options struct {
	// Replace deletes the course imported from a changed file and imports
	// it again.
	Replace bool
}

// BatchResult holds the outcome of an import run.
type BatchResult struct {
	Imported int
	Skipped  int
	Failed   int
	Courses  []string
	Warnings int
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Imported + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Importer parses files and persists their block trees.
type Importer struct {
	store  *hierarchy.Store
	parser *markdown.Parser
	cfg    types.ImportConfig
	log    zerolog.Logger
}

// New returns an Importer writing to store.
func New(store *hierarchy.Store, cfg types.ImportConfig, logger zerolog.Logger) *Importer {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &Importer{
		store:  store,
		parser: markdown.NewParser(logger),
		cfg:    cfg,
		log:    logger.With().Str("component", "importer").Logger(),
	}
}

// parsed is the read-and-parse outcome for one file.
type parsed struct {
	path string
	hash string
	doc  *markdown.Document
	err  error
}

// ImportFiles imports paths in order, printing one status line per file to
// w. A file that fails to read, parse, or persist is reported and skipped.
// The returned error is non-nil only when the whole run could not start.
func (im *Importer) ImportFiles(ctx context.Context, paths []string, opts Options, w io.Writer) (BatchResult, error) {
	var result BatchResult
	if !im.cfg.Enabled {
		return result, types.ErrImportDisabled
	}

	docs := make([]parsed, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.cfg.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs[i] = im.parseFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	for _, p := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if p.err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", p.path, p.err)
			result.Failed++
			continue
		}

		courseID, skipped, err := im.persist(ctx, p, opts)
		switch {
		case err != nil:
			fmt.Fprintf(w, "failed:  %s (%v)\n", p.path, err)
			result.Failed++
		case skipped:
			fmt.Fprintf(w, "skipped: %s (unchanged)\n", p.path)
			result.Skipped++
		default:
			counts := p.doc.Counts()
			fmt.Fprintf(w, "imported: %s (%d slides, %d components, %d warnings)\n",
				p.path, counts[string(types.NodeSlide)], counts["COMPONENT"], len(p.doc.Warnings))
			result.Imported++
			result.Warnings += len(p.doc.Warnings)
			result.Courses = append(result.Courses, courseID)
		}
	}

	fmt.Fprintf(w, "\nImport summary: %d imported, %d skipped, %d failed (total: %d)\n",
		result.Imported, result.Skipped, result.Failed, result.Total())
	return result, nil
}

func (im *Importer) parseFile(path string) parsed {
	src, err := os.ReadFile(path)
	if err != nil {
		return parsed{path: path, err: fmt.Errorf("reading file: %w", err)}
	}
	sum := sha256.Sum256(src)
	doc, err := im.parser.Parse(path, src)
	return parsed{path: path, hash: hex.EncodeToString(sum[:]), doc: doc, err: err}
}

// persist stores one parsed document. It reports skipped when the file is
// unchanged since its last import.
func (im *Importer) persist(ctx context.Context, p parsed, opts Options) (courseID string, skipped bool, err error) {
	err = im.store.Update(ctx, func(tx *hierarchy.Tx) error {
		rec, err := tx.ImportStatus(p.path)
		if err != nil {
			return err
		}
		if rec != nil {
			if rec.ContentHash == p.hash {
				skipped = true
				courseID = rec.CourseID
				return nil
			}
			if !opts.Replace {
				return ErrChanged
			}
			if _, err := tx.DeleteNode(rec.CourseID); err != nil && !types.IsNotFound(err) {
				return fmt.Errorf("removing previous import: %w", err)
			}
			im.log.Info().Str("file", p.path).Str("course", rec.CourseID).Msg("replacing previous import")
		}

		courseID, err = storeDocument(tx, p.path, p.doc)
		if err != nil {
			return err
		}
		return tx.RecordImport(p.path, p.hash, courseID)
	})
	return courseID, skipped, err
}

// storeDocument creates every block of doc, parents first, and returns the
// course id.
func storeDocument(tx *hierarchy.Tx, file string, doc *markdown.Document) (string, error) {
	ids := make(map[*markdown.Block]string)
	err := doc.Walk(func(b, parent *markdown.Block) error {
		node := types.Node{
			Type:         b.Type,
			Title:        b.Title,
			Description:  b.Description,
			NodeNumber:   b.NodeNumber,
			DisplayOrder: b.DisplayOrder,
			Metadata:     map[string]string{types.MetaHeading: b.Heading},
		}
		if parent != nil {
			node.ParentID = ids[parent]
		} else {
			for k, v := range doc.Meta {
				node.Metadata[k] = v
			}
			node.Metadata[types.MetaSourceFile] = file
		}
		if b.Sequence != "" {
			node.Metadata[types.MetaSequence] = b.Sequence
		}

		created, err := tx.CreateNode(node, b.Content)
		if err != nil {
			return fmt.Errorf("line %d: %w", b.Line, err)
		}
		ids[b] = created.ID

		for _, c := range b.Components {
			if _, err := tx.SetComponentContent(created.ID, c.Type, c.Content); err != nil {
				return fmt.Errorf("line %d: %w", c.Line, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return ids[doc.Course], nil
}
