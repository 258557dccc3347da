// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package writeback

import (
	"path/filepath"
	"strings"

	"github.com/pdiddy/course-engine/pkg/types"
)

// Classifier picks the Markdown file a node is written back to. ancestors
// run from the root down to the node's parent. ok is false when the
// classifier has no opinion.
type Classifier interface {
	Classify(n types.Node, ancestors []types.Node) (file string, ok bool)
}

// SourceFileClassifier sends a node to the file recorded at import on the
// node itself or on its nearest ancestor.
type SourceFileClassifier struct{}

// Classify implements Classifier.
func (SourceFileClassifier) Classify(n types.Node, ancestors []types.Node) (string, bool) {
	if f := n.Meta(types.MetaSourceFile); f != "" {
		return f, true
	}
	for i := len(ancestors) - 1; i >= 0; i-- {
		if f := ancestors[i].Meta(types.MetaSourceFile); f != "" {
			return f, true
		}
	}
	return "", false
}

// DefaultBuckets are used when configuration names none.
var DefaultBuckets = []types.Bucket{
	{Name: "fundamentals", File: "fundamentals.md", Keywords: []string{"intro", "basic", "fundamental", "getting started", "overview"}},
	{Name: "advanced", File: "advanced.md", Keywords: []string{"advanced", "deep dive", "internals", "optimiz", "performance"}},
	{Name: "practice", File: "practice.md", Keywords: []string{"exercise", "practice", "lab", "project", "quiz"}},
}

const defaultFile = "general.md"

// KeywordClassifier matches the titles of a node and its ancestors, nearest
// first, against keyword buckets. Files are resolved against Root. Nodes
// matching no bucket go to DefaultFile.
type KeywordClassifier struct {
	Root        string
	Buckets     []types.Bucket
	DefaultFile string
}

// NewKeywordClassifier builds a KeywordClassifier from configuration,
// falling back to DefaultBuckets and general.md.
func NewKeywordClassifier(root string, cfg types.WritebackConfig) KeywordClassifier {
	k := KeywordClassifier{Root: root, Buckets: cfg.Buckets, DefaultFile: cfg.DefaultFile}
	if len(k.Buckets) == 0 {
		k.Buckets = DefaultBuckets
	}
	if k.DefaultFile == "" {
		k.DefaultFile = defaultFile
	}
	return k
}

// Classify implements Classifier.
func (k KeywordClassifier) Classify(n types.Node, ancestors []types.Node) (string, bool) {
	titles := []string{n.Title}
	for i := len(ancestors) - 1; i >= 0; i-- {
		titles = append(titles, ancestors[i].Title)
	}
	for _, title := range titles {
		title = strings.ToLower(title)
		for _, b := range k.Buckets {
			for _, kw := range b.Keywords {
				if kw != "" && strings.Contains(title, strings.ToLower(kw)) {
					return k.resolve(b.File), true
				}
			}
		}
	}
	if k.DefaultFile == "" {
		return "", false
	}
	return k.resolve(k.DefaultFile), true
}

func (k KeywordClassifier) resolve(file string) string {
	if filepath.IsAbs(file) || k.Root == "" {
		return file
	}
	return filepath.Join(k.Root, file)
}

// ChainClassifier asks each classifier in turn and returns the first answer.
type ChainClassifier []Classifier

// Classify implements Classifier.
func (c ChainClassifier) Classify(n types.Node, ancestors []types.Node) (string, bool) {
	for _, cl := range c {
		if f, ok := cl.Classify(n, ancestors); ok {
			return f, true
		}
	}
	return "", false
}
