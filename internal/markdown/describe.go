// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// descriptionLimit caps generated descriptions, in bytes.
const descriptionLimit = 280

// FirstParagraph returns the first top-level paragraph of content that
// appears before any heading, as single-line Markdown source. It returns ""
// when the content opens with a heading or holds no paragraph.
func FirstParagraph(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	source := []byte(content)
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch n.Kind() {
		case ast.KindHeading:
			return ""
		case ast.KindParagraph:
			return clip(paragraphSource(n, source), descriptionLimit)
		}
	}
	return ""
}

func paragraphSource(n ast.Node, source []byte) string {
	lines := n.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, strings.TrimSpace(string(seg.Value(source))))
	}
	return strings.Join(parts, " ")
}

// clip shortens s to at most limit bytes on a word boundary.
func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := strings.LastIndexByte(s[:limit-3], ' ')
	if cut <= 0 {
		cut = limit - 3
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
	}
	return s[:cut] + "..."
}

// previewEngine renders node content to HTML for the preview command. GFM
// covers the tables and task lists course material uses.
var previewEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Preview renders Markdown content to HTML.
func Preview(content string) (string, error) {
	var buf bytes.Buffer
	if err := previewEngine.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("rendering preview: %w", err)
	}
	return buf.String(), nil
}
