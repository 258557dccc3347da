// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markdown turns course Markdown into a typed block tree and renders
// single nodes back into Markdown. Parsing and write-back share the heading
// scanner in this file: a scope boundary computed while parsing is the same
// boundary write-back splices at.
package markdown

import (
	"regexp"
	"strings"
)

// MaxRank is the deepest heading rank the scanner recognizes.
const MaxRank = 6

// headingPattern matches an ATX heading at line start: 1-6 hashes followed by
// whitespace and text, or by nothing.
var headingPattern = regexp.MustCompile(`^(#{1,6})(?:[ \t]+(.*))?$`)

// Heading is one heading line located in a document.
type Heading struct {
	Rank  int    // number of leading hashes, 1-6
	Text  string // heading text with hashes and surrounding space removed
	Start int    // offset of the first byte of the line
	End   int    // offset just past the line, including its newline
	Line  int    // 1-based line number
}

// ScopeEnd returns the offset where the scope of a heading of the given rank
// ends: the start of the next line at or after start that is a heading of
// rank <= rank, or len(doc) when there is none. start should be a line start,
// normally the End of the heading that opens the scope.
func ScopeEnd(doc string, rank, start int) int {
	end := len(doc)
	scanHeadings(doc, start, len(doc), func(h Heading) bool {
		if h.Rank <= rank {
			end = h.Start
			return false
		}
		return true
	})
	return end
}

// Headings lists every heading whose line starts within doc[start:end].
func Headings(doc string, start, end int) []Heading {
	var out []Heading
	scanHeadings(doc, start, end, func(h Heading) bool {
		out = append(out, h)
		return true
	})
	return out
}

// ChildHeadings lists the headings that open the direct children of a scope
// of the given rank spanning doc[start:end]: every heading of rank rank+1
// through 5 that does not sit inside an earlier child's scope. Rank 0 stands
// for the whole document. Child ranks never increase along the result.
func ChildHeadings(doc string, rank, start, end int) []Heading {
	var out []Heading
	cursor := start
	for _, h := range Headings(doc, start, end) {
		if h.Start < cursor || h.Rank <= rank || h.Rank > slideRank {
			continue
		}
		out = append(out, h)
		cursor = min(ScopeEnd(doc, h.Rank, h.End), end)
	}
	return out
}

// IntroEnd returns where the introduction of a scope of the given rank ends:
// the start of its first child heading, or end when it has none. start is
// normally the End of the heading that opens the scope.
func IntroEnd(doc string, rank, start, end int) int {
	if children := ChildHeadings(doc, rank, start, end); len(children) > 0 {
		return children[0].Start
	}
	return end
}

// scanHeadings walks the lines of doc[start:end] and calls fn for each
// heading line until fn returns false. Lines inside fenced code blocks are
// never headings.
func scanHeadings(doc string, start, end int, fn func(Heading) bool) {
	if start < 0 {
		start = 0
	}
	if end > len(doc) {
		end = len(doc)
	}
	line := 1 + strings.Count(doc[:start], "\n")

	var fence fenceState
	for pos := start; pos < end; line++ {
		next := strings.IndexByte(doc[pos:], '\n')
		lineEnd := len(doc)
		if next >= 0 {
			lineEnd = pos + next + 1
		}
		text := strings.TrimRight(doc[pos:lineEnd], "\r\n")

		if fence.update(text) {
			pos = lineEnd
			continue
		}

		if m := headingPattern.FindStringSubmatch(text); m != nil {
			h := Heading{
				Rank:  len(m[1]),
				Text:  strings.TrimSpace(m[2]),
				Start: pos,
				End:   lineEnd,
				Line:  line,
			}
			if !fn(h) {
				return
			}
		}
		pos = lineEnd
	}
}

// fenceState tracks whether the scanner is inside a fenced code block.
type fenceState struct {
	marker byte
	width  int
}

// update consumes one line and reports whether it belongs to a fence (the
// opening line, the body, or the closing line).
func (f *fenceState) update(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return f.marker != 0
	}

	if f.marker != 0 {
		if n := runLength(trimmed, f.marker); n >= f.width && strings.TrimSpace(trimmed[n:]) == "" {
			f.marker, f.width = 0, 0
		}
		return true
	}

	for _, c := range []byte{'`', '~'} {
		if n := runLength(trimmed, c); n >= 3 {
			f.marker, f.width = c, n
			return true
		}
	}
	return false
}

func runLength(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}
