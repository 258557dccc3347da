// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/course-engine/pkg/types"
)

// ErrUnrenderable marks content that would not survive a parse round trip
// at the rank it is written at.
var ErrUnrenderable = errors.New("content cannot be rendered at this rank")

// RenderInput is everything needed to write one node as Markdown.
type RenderInput struct {
	Type         types.NodeType
	Title        string
	DisplayOrder int
	Content      string
	Components   []types.Component
}

// HeadingLine returns the heading a node of type t is written under.
// Slides carry their display order as a zero-padded [seq:NNN] tag.
func HeadingLine(t types.NodeType, title string, order int) string {
	rank := t.Rank()
	if rank == 0 {
		rank = slideRank
	}
	marker := strings.Repeat("#", rank)
	if t == types.NodeSlide {
		return fmt.Sprintf("%s [seq:%03d] %s", marker, order, title)
	}
	return marker + " " + title
}

// ComponentHeading returns the rank-6 heading for a component type.
func ComponentHeading(ct types.ComponentType) string {
	return strings.Repeat("#", componentRank) + " " + string(ct)
}

// Render writes a node block: its heading, its content, and for slides its
// components as rank-6 sub-blocks in display order. The result ends with a
// single newline. Content holding a heading that would end the block early,
// or slide text holding a component heading, is rejected with
// ErrUnrenderable.
func Render(in RenderInput) (string, error) {
	if !in.Type.Valid() {
		return "", fmt.Errorf("%w: unknown node type %q", ErrUnrenderable, in.Type)
	}
	if strings.ContainsAny(in.Title, "\r\n") {
		return "", fmt.Errorf("%w: title spans lines", ErrUnrenderable)
	}
	content := strings.TrimSpace(in.Content)
	if err := checkNested(content, in.Type.Rank(), in.Type == types.NodeSlide); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(HeadingLine(in.Type, in.Title, in.DisplayOrder))
	b.WriteString("\n")
	if content != "" {
		b.WriteString("\n")
		b.WriteString(content)
		b.WriteString("\n")
	}

	if in.Type == types.NodeSlide {
		comps := append([]types.Component(nil), in.Components...)
		sort.SliceStable(comps, func(i, j int) bool {
			return comps[i].DisplayOrder < comps[j].DisplayOrder
		})
		for _, c := range comps {
			body := strings.TrimSpace(c.Content)
			if len(Headings(body, 0, len(body))) > 0 {
				return "", fmt.Errorf("%w: %s component holds a heading", ErrUnrenderable, c.ComponentType)
			}
			b.WriteString("\n")
			b.WriteString(ComponentHeading(c.ComponentType))
			b.WriteString("\n")
			if body != "" {
				b.WriteString("\n")
				b.WriteString(body)
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}

// checkNested rejects content whose headings would be read back as the end
// of the block or, for slides, as components.
func checkNested(content string, rank int, slide bool) error {
	for _, h := range Headings(content, 0, len(content)) {
		if h.Rank <= rank {
			return fmt.Errorf("%w: line %d is a rank-%d heading", ErrUnrenderable, h.Line, h.Rank)
		}
		if slide && h.Rank == componentRank {
			if _, ok := types.ParseComponentType(h.Text); ok {
				return fmt.Errorf("%w: slide text holds a %s component heading", ErrUnrenderable, h.Text)
			}
		}
	}
	return nil
}
