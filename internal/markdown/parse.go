// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/course-engine/pkg/types"
)

// SentinelOrder is the display order given to slides whose sequence number
// is missing or malformed, so they sort after every numbered slide.
const SentinelOrder = math.MaxInt32

// slideRank and componentRank are the heading ranks of slides and slide
// components.
const (
	slideRank     = 5
	componentRank = 6
)

// slideTitlePattern matches the text of a slide heading: [seq:NNN] Title.
var slideTitlePattern = regexp.MustCompile(`^\[seq:\s*([^\]]*)\]\s*(.*)$`)

// Block is one parsed hierarchy node. Offsets refer to Document.Body.
type Block struct {
	Type         types.NodeType
	Title        string
	Heading      string // heading line as written, without the newline
	Rank         int
	Ordinal      int // 1-based position among siblings
	NodeNumber   string
	DisplayOrder int
	Sequence     string // raw NNN of a slide heading
	// Content is the text after the heading line up to the end of the
	// scope, trimmed. The heading line itself is not part of it. Containers
	// include their child blocks; slides exclude component sub-blocks.
	Content      string
	Description  string
	Start        int // start of the heading line
	BodyStart    int // first byte after the heading line
	End          int // exclusive end of the scope
	Line         int
	Children     []*Block
	Components   []ComponentBlock
}

// ComponentBlock is one typed sub-block of a slide.
type ComponentBlock struct {
	Type         types.ComponentType
	Content      string
	DisplayOrder int
	Line         int
}

// Document is the parse result for one Markdown file.
type Document struct {
	Name      string
	Body      string            // Markdown after any front matter
	PrefixLen int               // bytes of front matter preceding Body
	Meta      map[string]string // front matter values
	Course    *Block
	Warnings  []types.Warning
}

// Walk visits every block depth-first, parents before children. parent is
// nil for the course.
func (d *Document) Walk(fn func(b, parent *Block) error) error {
	if d.Course == nil {
		return nil
	}
	return walkBlock(d.Course, nil, fn)
}

func walkBlock(b, parent *Block, fn func(b, parent *Block) error) error {
	if err := fn(b, parent); err != nil {
		return err
	}
	for _, c := range b.Children {
		if err := walkBlock(c, b, fn); err != nil {
			return err
		}
	}
	return nil
}

// Counts returns how many blocks of each node type the document holds, plus
// the number of slide components under the "COMPONENT" key.
func (d *Document) Counts() map[string]int {
	counts := make(map[string]int)
	d.Walk(func(b, _ *Block) error {
		counts[string(b.Type)]++
		counts["COMPONENT"] += len(b.Components)
		return nil
	})
	return counts
}

// Parser builds block trees from course Markdown.
type Parser struct {
	log zerolog.Logger
}

// NewParser returns a Parser that reports recoverable issues to logger.
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{log: logger.With().Str("component", "parser").Logger()}
}

// Parse reads one document. name identifies the file in errors and logs.
// A document must hold exactly one rank-1 heading; everything else that
// does not fit the grammar is reported as a warning and skipped or
// defaulted.
func (p *Parser) Parse(name string, src []byte) (*Document, error) {
	meta, body, prefix, err := splitFrontMatter(src)
	if err != nil {
		p.log.Debug().Err(err).Str("file", name).Msg("front matter rejected")
		return nil, &types.ParseError{File: name, Reason: types.MalformedFrontMatter}
	}

	doc := &Document{
		Name:      name,
		Body:      string(body),
		PrefixLen: prefix,
		Meta:      meta,
	}

	var courses []Heading
	for _, h := range Headings(doc.Body, 0, len(doc.Body)) {
		if h.Rank == 1 {
			courses = append(courses, h)
		}
	}
	switch len(courses) {
	case 0:
		return nil, &types.ParseError{File: name, Reason: types.NoCourseHeading}
	case 1:
	default:
		return nil, &types.ParseError{File: name, Reason: types.MultipleCourseHeadings, Line: courses[1].Line}
	}

	h := courses[0]
	course := &Block{
		Type:      types.NodeCourse,
		Title:     h.Text,
		Heading:   headingText(doc.Body, h),
		Rank:      1,
		Ordinal:   1,
		Start:     h.Start,
		BodyStart: h.End,
		End:       ScopeEnd(doc.Body, 1, h.End),
		Line:      h.Line,
	}
	course.Content = strings.TrimSpace(doc.Body[course.BodyStart:course.End])
	course.Description = meta["description"]
	if course.Description == "" {
		course.Description = FirstParagraph(course.Content)
	}
	doc.Course = course

	p.descend(doc, course)
	return doc, nil
}

// descend finds the children of parent: every heading of rank 2-5 in its
// scope that does not sit inside an earlier child's scope. Children keep
// their own rank, so a slide written directly under a lecture ahead of the
// lecture's first section is still a child of the lecture. Slides are
// ordered by sequence within the positions slides occupy.
func (p *Parser) descend(doc *Document, parent *Block) {
	if parent.Rank >= slideRank {
		return
	}

	for _, h := range ChildHeadings(doc.Body, parent.Rank, parent.BodyStart, parent.End) {
		childType, _ := types.TypeForRank(h.Rank)
		child := &Block{
			Type:      childType,
			Title:     h.Text,
			Heading:   headingText(doc.Body, h),
			Rank:      h.Rank,
			Start:     h.Start,
			BodyStart: h.End,
			End:       ScopeEnd(doc.Body, h.Rank, h.End),
			Line:      h.Line,
		}
		body := doc.Body[child.BodyStart:child.End]

		if childType == types.NodeSlide {
			p.slideHeading(doc, child, h)
			content, comps, warnings := splitSlideBody(body, h.Line+1)
			child.Content = content
			child.Components = comps
			for _, w := range warnings {
				p.warn(doc, w)
			}
		} else {
			child.Content = strings.TrimSpace(body)
		}
		child.Description = FirstParagraph(child.Content)
		parent.Children = append(parent.Children, child)
	}

	sortSlides(parent.Children)

	for i, child := range parent.Children {
		child.Ordinal = i + 1
		child.NodeNumber = JoinNumber(parent.NodeNumber, child.Ordinal)
		if child.Type != types.NodeSlide {
			child.DisplayOrder = child.Ordinal
		}
		p.descend(doc, child)
	}
}

// sortSlides orders the slides among children by display order, leaving
// containers where they are.
func sortSlides(children []*Block) {
	var at []int
	var slides []*Block
	for i, c := range children {
		if c.Type == types.NodeSlide {
			at = append(at, i)
			slides = append(slides, c)
		}
	}
	sort.SliceStable(slides, func(i, j int) bool {
		return slides[i].DisplayOrder < slides[j].DisplayOrder
	})
	for k, i := range at {
		children[i] = slides[k]
	}
}

// slideHeading fills the title and display order of a slide from its
// heading text.
func (p *Parser) slideHeading(doc *Document, b *Block, h Heading) {
	m := slideTitlePattern.FindStringSubmatch(h.Text)
	if m == nil {
		b.Title = h.Text
		b.DisplayOrder = SentinelOrder
		p.warn(doc, types.Warning{
			Kind:    types.InvalidSequenceNumber,
			Line:    h.Line,
			Message: fmt.Sprintf("slide %q has no [seq:NNN] tag", h.Text),
		})
		return
	}

	b.Sequence = strings.TrimSpace(m[1])
	b.Title = strings.TrimSpace(m[2])
	seq, err := strconv.Atoi(b.Sequence)
	if err != nil || seq < 0 {
		b.DisplayOrder = SentinelOrder
		p.warn(doc, types.Warning{
			Kind:    types.InvalidSequenceNumber,
			Line:    h.Line,
			Message: fmt.Sprintf("slide %q has sequence %q", b.Title, b.Sequence),
		})
		return
	}
	b.DisplayOrder = seq
}

// SlideSequence extracts the numeric NNN from slide heading text of the
// form "[seq:NNN] Title".
func SlideSequence(text string) (int, bool) {
	m := slideTitlePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	seq, err := strconv.Atoi(strings.TrimSpace(m[1]))
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

func (p *Parser) warn(doc *Document, w types.Warning) {
	doc.Warnings = append(doc.Warnings, w)
	p.log.Warn().
		Str("file", doc.Name).
		Int("line", w.Line).
		Str("kind", string(w.Kind)).
		Msg(w.Message)
}

// SplitSlideBody separates the known component sub-blocks from a slide body
// (the text after the slide heading). It returns the remaining slide text
// and the components in document order. Unknown rank-6 labels stay in the
// slide text.
func SplitSlideBody(body string) (string, []ComponentBlock, []types.Warning) {
	return splitSlideBody(body, 1)
}

// splitSlideBody is SplitSlideBody with line numbers offset so warnings
// point into the enclosing file.
func splitSlideBody(body string, firstLine int) (string, []ComponentBlock, []types.Warning) {
	var (
		comps    []ComponentBlock
		warnings []types.Warning
		pieces   []string
		byType   = make(map[types.ComponentType]int)
		cursor   = 0
	)

	for _, h := range Headings(body, 0, len(body)) {
		if h.Rank != componentRank || h.Start < cursor {
			continue
		}
		line := firstLine + h.Line - 1
		ct, ok := types.ParseComponentType(h.Text)
		if !ok {
			warnings = append(warnings, types.Warning{
				Kind:    types.UnknownComponentType,
				Line:    line,
				Message: fmt.Sprintf("unknown component label %q kept in slide text", h.Text),
			})
			continue
		}

		end := ScopeEnd(body, componentRank, h.End)
		content := strings.TrimSpace(body[h.End:end])
		pieces = append(pieces, body[cursor:h.Start])
		cursor = end

		if i, dup := byType[ct]; dup {
			warnings = append(warnings, types.Warning{
				Kind:    types.DuplicateComponent,
				Line:    line,
				Message: fmt.Sprintf("second %s block appended to the first", ct),
			})
			comps[i].Content = joinBlocks(comps[i].Content, content)
			continue
		}
		byType[ct] = len(comps)
		comps = append(comps, ComponentBlock{
			Type:         ct,
			Content:      content,
			DisplayOrder: (len(comps) + 1) * types.ComponentOrderStep,
			Line:         line,
		})
	}
	pieces = append(pieces, body[cursor:])

	var text string
	for _, piece := range pieces {
		text = joinBlocks(text, strings.TrimSpace(piece))
	}
	return text, comps, warnings
}

// JoinNumber appends ordinal to a dotted node number.
func JoinNumber(parent string, ordinal int) string {
	if parent == "" {
		return strconv.Itoa(ordinal)
	}
	return parent + "." + strconv.Itoa(ordinal)
}

// joinBlocks concatenates two Markdown fragments with one blank line between
// them, skipping empty ones.
func joinBlocks(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "\n\n" + b
}

func headingText(doc string, h Heading) string {
	return strings.TrimRight(doc[h.Start:h.End], "\r\n")
}
