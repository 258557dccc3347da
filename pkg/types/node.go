// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the records shared across the course-engine stages:
// hierarchy nodes, versions, slide components, change proposals, and
// configuration.
package types

import (
	"fmt"
	"strings"
	"time"
)

// NodeType discriminates the levels of the content hierarchy.
type NodeType string

const (
	NodeCourse  NodeType = "COURSE"
	NodeModule  NodeType = "MODULE"
	NodeLecture NodeType = "LECTURE"
	NodeSection NodeType = "SECTION"
	NodeTopic   NodeType = "TOPIC"
	NodeSlide   NodeType = "SLIDE"
)

// headingRanks maps each node type to the Markdown heading rank it is
// written at. MODULE has no heading of its own and shares the lecture rank.
var headingRanks = map[NodeType]int{
	NodeCourse:  1,
	NodeModule:  2,
	NodeLecture: 2,
	NodeSection: 3,
	NodeTopic:   4,
	NodeSlide:   5,
}

// ParseNodeType normalizes s (case-insensitive) into a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := headingRanks[t]; !ok {
		return "", fmt.Errorf("unknown node type %q", s)
	}
	return t, nil
}

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	_, ok := headingRanks[t]
	return ok
}

// Rank returns the heading rank (1-5) for t, or 0 for unknown types.
func (t NodeType) Rank() int {
	return headingRanks[t]
}

// Segment is the lowercase label used for t inside a node path.
func (t NodeType) Segment() string {
	return strings.ToLower(string(t))
}

// CanParent reports whether a node of type t may hold a child of type child.
// Children always sit at a strictly deeper heading rank than their parent,
// and a course is always a root.
func (t NodeType) CanParent(child NodeType) bool {
	if !t.Valid() || !child.Valid() || child == NodeCourse {
		return false
	}
	return child.Rank() > t.Rank()
}

// TypeForRank returns the node type written at heading rank r. Rank 2
// resolves to LECTURE.
func TypeForRank(r int) (NodeType, bool) {
	switch r {
	case 1:
		return NodeCourse, true
	case 2:
		return NodeLecture, true
	case 3:
		return NodeSection, true
	case 4:
		return NodeTopic, true
	case 5:
		return NodeSlide, true
	}
	return "", false
}

// Metadata keys written by the importer, write-back, and proposal engine.
const (
	MetaSourceFile = "source_file"
	MetaHeading    = "heading"
	MetaSequence   = "seq"
	MetaRationale  = "rationale"
)

// Node is one element of the content hierarchy. Versions and components
// belong to a node but are fetched from the store by query.
type Node struct {
	ID           string            `json:"id" yaml:"id"`
	Type         NodeType          `json:"type" yaml:"type"`
	ParentID     string            `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Title        string            `json:"title" yaml:"title"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	NodeNumber   string            `json:"node_number,omitempty" yaml:"node_number,omitempty"`
	DisplayOrder int               `json:"display_order" yaml:"display_order"`
	Path         string            `json:"path" yaml:"path"`
	Metadata     map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" yaml:"updated_at"`
}

// IsRoot reports whether n has no parent.
func (n Node) IsRoot() bool {
	return n.ParentID == ""
}

// Meta returns the metadata value for key, or "" when unset.
func (n Node) Meta(key string) string {
	if n.Metadata == nil {
		return ""
	}
	return n.Metadata[key]
}

// ContentFormat names the markup of a version's content.
type ContentFormat string

const FormatMarkdown ContentFormat = "MARKDOWN"

// Version is one immutable snapshot of a node's content.
type Version struct {
	ID            string        `json:"id" yaml:"id"`
	NodeID        string        `json:"node_id" yaml:"node_id"`
	Content       string        `json:"content" yaml:"content"`
	Format        ContentFormat `json:"format" yaml:"format"`
	VersionNumber int           `json:"version_number" yaml:"version_number"`
	CreatedAt     time.Time     `json:"created_at" yaml:"created_at"`
}

// ComponentType labels a typed sub-block of a slide.
type ComponentType string

const (
	ComponentScript        ComponentType = "SCRIPT"
	ComponentVisual        ComponentType = "VISUAL"
	ComponentNotes         ComponentType = "NOTES"
	ComponentDemonstration ComponentType = "DEMONSTRATION"
)

// ComponentTypes lists the accepted component types in canonical order.
var ComponentTypes = []ComponentType{
	ComponentScript,
	ComponentVisual,
	ComponentNotes,
	ComponentDemonstration,
}

// ParseComponentType matches label case-insensitively against the known
// component types.
func ParseComponentType(label string) (ComponentType, bool) {
	want := strings.ToUpper(strings.TrimSpace(label))
	for _, ct := range ComponentTypes {
		if string(ct) == want {
			return ct, true
		}
	}
	return "", false
}

// ComponentOrderStep is the gap between consecutive component display
// orders, leaving room for later insertions.
const ComponentOrderStep = 10

// Component is a typed sub-block attached to a slide.
type Component struct {
	ID            string        `json:"id" yaml:"id"`
	SlideNodeID   string        `json:"slide_node_id" yaml:"slide_node_id"`
	ComponentType ComponentType `json:"component_type" yaml:"component_type"`
	Content       string        `json:"content" yaml:"content"`
	DisplayOrder  int           `json:"display_order" yaml:"display_order"`
	CreatedAt     time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" yaml:"updated_at"`
}
