// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package writeback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/course-engine/internal/markdown"
	"github.com/pdiddy/course-engine/pkg/types"
)

// ErrHeadingLost is returned when a heading written for a missing ancestor
// cannot be found again, so placing the node would never settle.
var ErrHeadingLost = errors.New("inserted heading not found in file")

// target is the node being written plus what the file search needs about
// its neighbours.
type target struct {
	node      types.Node
	ancestors []types.Node // root first
	siblings  []types.Node // other children of the same parent
}

// place writes block, the rendered form of t.node, into doc and returns the
// new document. Only doc[start:] is searched, which keeps front matter
// intact. The ancestors' blocks narrow the search; ancestors missing from
// the file are written as bare headings first so the result parses back
// into the same hierarchy. A container's block replaces only its
// introduction, so child blocks already in the file stay in place.
func place(doc string, start int, t target, block string) (string, error) {
	var scopeStart, scopeEnd, parentRank int
	inserted := make(map[string]bool)
	for {
		var missing *types.Node
		var at int
		scopeStart, scopeEnd, parentRank, missing, at = narrow(doc, start, t.ancestors)
		if missing == nil {
			break
		}
		if inserted[missing.ID] {
			return doc, fmt.Errorf("%w: %s %q", ErrHeadingLost, missing.Type, missing.Title)
		}
		inserted[missing.ID] = true
		heading := markdown.HeadingLine(missing.Type, missing.Title, missing.DisplayOrder) + "\n"
		doc = splice(doc, at, at, heading)
	}

	n := t.node
	rank := n.Type.Rank()
	h, ok := findBlock(doc, scopeStart, scopeEnd, parentRank, n, t.siblings)
	if !ok && rank == 1 {
		h, ok = firstOfRank(doc, scopeStart, scopeEnd, 1)
	}
	if !ok {
		at := insertionPoint(doc, scopeStart, scopeEnd, parentRank, rank)
		return splice(doc, at, at, block), nil
	}

	end := min(markdown.ScopeEnd(doc, rank, h.End), scopeEnd)
	if n.Type != types.NodeSlide {
		end = markdown.IntroEnd(doc, rank, h.End, end)
	}
	return splice(doc, h.Start, end, block), nil
}

// narrow walks the ancestor chain down from the root, shrinking the scope to
// each ancestor's block. When an ancestor is not in the file it returns that
// ancestor and where its heading belongs.
func narrow(doc string, start int, ancestors []types.Node) (scopeStart, scopeEnd, parentRank int, missing *types.Node, at int) {
	scopeStart, scopeEnd = start, len(doc)
	for i := range ancestors {
		a := &ancestors[i]
		rank := a.Type.Rank()
		h, ok := findBlock(doc, scopeStart, scopeEnd, parentRank, *a, nil)
		if !ok && rank == 1 {
			// One course per file: any course heading is this course.
			h, ok = firstOfRank(doc, scopeStart, scopeEnd, 1)
		}
		if !ok {
			return scopeStart, scopeEnd, parentRank, a, insertionPoint(doc, scopeStart, scopeEnd, parentRank, rank)
		}
		scopeStart = h.End
		scopeEnd = min(markdown.ScopeEnd(doc, rank, h.End), scopeEnd)
		parentRank = rank
	}
	return scopeStart, scopeEnd, parentRank, nil, 0
}

// findBlock locates the heading of n among the direct children of the
// scope doc[start:end] opened at parentRank. The heading recorded at the
// last import or sync wins; then the heading n renders to; slides then fall
// back to their recorded sequence number. Headings that belong to a sibling
// are never taken.
func findBlock(doc string, start, end, parentRank int, n types.Node, siblings []types.Node) (markdown.Heading, bool) {
	rank := n.Type.Rank()
	want := markdown.HeadingLine(n.Type, n.Title, n.DisplayOrder)
	recorded := n.Meta(types.MetaHeading)

	claimed := make(map[string]bool, 2*len(siblings))
	for _, s := range siblings {
		if s.ID == n.ID {
			continue
		}
		claimed[markdown.HeadingLine(s.Type, s.Title, s.DisplayOrder)] = true
		if r := s.Meta(types.MetaHeading); r != "" {
			claimed[r] = true
		}
	}

	var candidates []markdown.Heading
	for _, h := range markdown.ChildHeadings(doc, parentRank, start, end) {
		if h.Rank != rank {
			continue
		}
		line := strings.TrimRight(doc[h.Start:h.End], "\r\n")
		if recorded != "" && line == recorded {
			return h, true
		}
		if !claimed[line] {
			candidates = append(candidates, h)
		}
	}
	for _, h := range candidates {
		if strings.TrimRight(doc[h.Start:h.End], "\r\n") == want {
			return h, true
		}
	}

	if n.Type != types.NodeSlide {
		return markdown.Heading{}, false
	}
	seq, err := strconv.Atoi(n.Meta(types.MetaSequence))
	if err != nil {
		return markdown.Heading{}, false
	}
	for _, h := range candidates {
		if got, ok := markdown.SlideSequence(h.Text); ok && got == seq {
			return h, true
		}
	}
	return markdown.Heading{}, false
}

func firstOfRank(doc string, start, end, rank int) (markdown.Heading, bool) {
	for _, h := range markdown.Headings(doc, start, end) {
		if h.Rank == rank {
			return h, true
		}
	}
	return markdown.Heading{}, false
}

// insertionPoint returns where a new child block of the given rank goes in
// the scope doc[start:end] opened at parentRank: after the last direct child
// of the same or deeper rank, else ahead of the first child. Direct child
// ranks never increase, so the new heading neither falls inside the block
// before it nor swallows the block after it.
func insertionPoint(doc string, start, end, parentRank, rank int) int {
	children := markdown.ChildHeadings(doc, parentRank, start, end)
	at := end
	if len(children) > 0 {
		at = children[0].Start
	}
	for _, h := range children {
		if h.Rank < rank {
			break
		}
		at = min(markdown.ScopeEnd(doc, h.Rank, h.End), end)
	}
	return at
}

// splice replaces doc[start:end] with block, leaving exactly one blank line
// between the block and its neighbours and a single trailing newline.
func splice(doc string, start, end int, block string) string {
	before := strings.TrimRight(doc[:start], "\r\n")
	after := strings.TrimLeft(doc[end:], "\r\n")
	block = strings.Trim(block, "\r\n")

	var b strings.Builder
	if before != "" {
		b.WriteString(before)
		b.WriteString("\n\n")
	}
	b.WriteString(block)
	b.WriteString("\n")
	if after = strings.TrimRight(after, "\r\n"); after != "" {
		b.WriteString("\n")
		b.WriteString(after)
		b.WriteString("\n")
	}
	return b.String()
}
