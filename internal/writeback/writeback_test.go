// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package writeback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
	"testing/quick"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/course-engine/internal/hierarchy"
	"github.com/pdiddy/course-engine/internal/importer"
	"github.com/pdiddy/course-engine/internal/markdown"
	"github.com/pdiddy/course-engine/pkg/types"
)

const exampleCourse = `---
description: Systems programming
---
# Intro to Go

A first course.

## Lecture 1: Basics

Welcome.

##### [seq:001] Hello World

Our first program.

###### SCRIPT

Say hello.

##### [seq:002] Variables

###### SCRIPT

Explain var.

## Lecture 2: Advanced

Later.
`

// --- helpers ---

type fixture struct {
	store *hierarchy.Store
	sync  *Syncer
	dir   string
	file  string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := hierarchy.Open(types.StoreConfig{Path: filepath.Join(dir, "course.db")}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	file := filepath.Join(dir, "intro.md")
	require.NoError(t, os.WriteFile(file, []byte(exampleCourse), 0o644))

	im := importer.New(store, types.ImportConfig{Enabled: true}, zerolog.Nop())
	result, err := im.ImportFiles(context.Background(), []string{file}, importer.Options{}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)

	return &fixture{
		store: store,
		sync:  NewDefaultSyncer(store, dir, types.WritebackConfig{}, zerolog.Nop()),
		dir:   dir,
		file:  file,
	}
}

// child returns the child of parentPath whose title is title.
func (f *fixture) child(t *testing.T, parentPath, title string) types.Node {
	t.Helper()
	var found types.Node
	err := f.store.View(context.Background(), func(tx *hierarchy.Tx) error {
		parent, err := tx.NodeByPath(parentPath)
		if err != nil {
			return err
		}
		children, err := tx.ChildrenOf(parent.ID)
		if err != nil {
			return err
		}
		for _, c := range children {
			if c.Title == title {
				found = c
				return nil
			}
		}
		return fmt.Errorf("no child %q under %s", title, parentPath)
	})
	require.NoError(t, err)
	return found
}

func (f *fixture) update(t *testing.T, fn func(tx *hierarchy.Tx) error) {
	t.Helper()
	require.NoError(t, f.store.Update(context.Background(), fn))
}

func parseFile(t *testing.T, path string) *markdown.Document {
	t.Helper()
	src, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := markdown.NewParser(zerolog.Nop()).Parse(path, src)
	require.NoError(t, err)
	return doc
}

// fileMatchesStore reports the first difference between the nodes parsed
// from the fixture file and the course subtree in the store: the same nodes
// by type and title, and the same slide text.
func (f *fixture) fileMatchesStore(t *testing.T) error {
	t.Helper()
	doc := parseFile(t, f.file)
	var got []string
	parsedText := make(map[string]string)
	doc.Walk(func(b, _ *markdown.Block) error {
		key := string(b.Type) + " " + b.Title
		got = append(got, key)
		if b.Type == types.NodeSlide {
			parsedText[key] = b.Content
		}
		return nil
	})

	var want []string
	storedText := make(map[string]string)
	err := f.store.View(context.Background(), func(tx *hierarchy.Tx) error {
		course, err := tx.NodeByPath("course-1")
		if err != nil {
			return err
		}
		ids, err := tx.Subtree(course.ID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			n, err := tx.Node(id)
			if err != nil {
				return err
			}
			key := string(n.Type) + " " + n.Title
			want = append(want, key)
			if n.Type == types.NodeSlide {
				text, err := tx.LatestContent(id)
				if err != nil {
					return err
				}
				storedText[key] = strings.TrimSpace(text)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	sort.Strings(got)
	sort.Strings(want)
	if !reflect.DeepEqual(got, want) {
		return fmt.Errorf("file nodes %q, store nodes %q", got, want)
	}
	for key, text := range storedText {
		if parsedText[key] != text {
			return fmt.Errorf("%s: file text %q, stored %q", key, parsedText[key], text)
		}
	}
	return nil
}

// --- classification ---

func TestClassifiers(t *testing.T) {
	course := types.Node{Title: "Go", Metadata: map[string]string{types.MetaSourceFile: "go.md"}}
	lecture := types.Node{Title: "Advanced generics"}
	slide := types.Node{Title: "Constraints"}

	f, ok := SourceFileClassifier{}.Classify(slide, []types.Node{course, lecture})
	assert.True(t, ok)
	assert.Equal(t, "go.md", f)

	_, ok = SourceFileClassifier{}.Classify(slide, []types.Node{lecture})
	assert.False(t, ok)

	k := NewKeywordClassifier("courses", types.WritebackConfig{})
	f, ok = k.Classify(slide, []types.Node{lecture})
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("courses", "advanced.md"), f)

	f, _ = k.Classify(types.Node{Title: "Weekly lab"}, nil)
	assert.Equal(t, filepath.Join("courses", "practice.md"), f)

	f, _ = k.Classify(types.Node{Title: "Misc"}, nil)
	assert.Equal(t, filepath.Join("courses", "general.md"), f)

	custom := NewKeywordClassifier("", types.WritebackConfig{
		DefaultFile: "rest.md",
		Buckets:     []types.Bucket{{Name: "web", File: "/abs/web.md", Keywords: []string{"HTTP"}}},
	})
	f, _ = custom.Classify(types.Node{Title: "http servers"}, nil)
	assert.Equal(t, "/abs/web.md", f)

	chain := ChainClassifier{SourceFileClassifier{}, k}
	f, _ = chain.Classify(slide, []types.Node{course, lecture})
	assert.Equal(t, "go.md", f)
	f, _ = chain.Classify(slide, []types.Node{lecture})
	assert.Equal(t, filepath.Join("courses", "advanced.md"), f)
}

// --- splicing ---

func TestSpliceNormalizesBlankLines(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		start, end int
		block      string
		want       string
	}{
		{"empty document", "", 0, 0, "# C\n", "# C\n"},
		{"append", "# C\n\n\n", 6, 6, "## L\n", "# C\n\n## L\n"},
		{"replace middle", "a\n## X\nold\n## Y\n", 2, 11, "## X\n\nnew\n\n\n", "a\n\n## X\n\nnew\n\n## Y\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splice(tt.doc, tt.start, tt.end, tt.block))
		})
	}
}

func TestPlaceWritesMissingAncestors(t *testing.T) {
	course := types.Node{ID: "c", Type: types.NodeCourse, Title: "Go"}
	lecture := types.Node{ID: "l", Type: types.NodeLecture, Title: "Basics", DisplayOrder: 1}
	slide := types.Node{ID: "s", Type: types.NodeSlide, Title: "Hi", DisplayOrder: 3}

	got, err := place("", 0, target{node: slide, ancestors: []types.Node{course, lecture}}, "##### [seq:003] Hi\n\ntext\n")
	require.NoError(t, err)
	assert.Equal(t, "# Go\n\n## Basics\n\n##### [seq:003] Hi\n\ntext\n", got)

	// Another course heading in the file stands in for the course.
	got, err = place("# Other\n", 0, target{node: lecture, ancestors: []types.Node{course}}, "## Basics\n")
	require.NoError(t, err)
	assert.Equal(t, "# Other\n\n## Basics\n", got)
}

func TestPlaceFailsWhenInsertedHeadingIsLost(t *testing.T) {
	course := types.Node{ID: "c", Type: types.NodeCourse, Title: "Go"}
	section := types.Node{ID: "s", Type: types.NodeSection, Title: "Part\nTwo"}
	topic := types.Node{ID: "t", Type: types.NodeTopic, Title: "T"}

	_, err := place("# Go\n", 0, target{node: topic, ancestors: []types.Node{course, section}}, "#### T\n")
	assert.ErrorIs(t, err, ErrHeadingLost)
}

func TestPlaceMatchesSlideBySequence(t *testing.T) {
	doc := "# C\n\n## L\n\n##### [seq:001] Old title\n\nold\n\n##### [seq:002] Next\n"
	course := types.Node{ID: "c", Type: types.NodeCourse, Title: "C"}
	lecture := types.Node{ID: "l", Type: types.NodeLecture, Title: "L"}
	slide := types.Node{ID: "s", Type: types.NodeSlide, Title: "New title", DisplayOrder: 1,
		Metadata: map[string]string{types.MetaSequence: "001"}}

	got, err := place(doc, 0, target{node: slide, ancestors: []types.Node{course, lecture}}, "##### [seq:001] New title\n\nnew\n")
	require.NoError(t, err)
	assert.Equal(t, "# C\n\n## L\n\n##### [seq:001] New title\n\nnew\n\n##### [seq:002] Next\n", got)
}

func TestPlaceNeverTakesSiblingBlock(t *testing.T) {
	doc := "# C\n\n## L\n\n##### [seq:001] A\n\na\n\n##### [seq:002] B\n\nb\n"
	ancestors := []types.Node{
		{ID: "c", Type: types.NodeCourse, Title: "C"},
		{ID: "l", Type: types.NodeLecture, Title: "L"},
	}
	b := types.Node{ID: "b", Type: types.NodeSlide, Title: "B", DisplayOrder: 2,
		Metadata: map[string]string{types.MetaHeading: "##### [seq:002] B", types.MetaSequence: "002"}}

	tests := []struct {
		name  string
		node  types.Node
		block string
	}{
		{"new slide with a taken display order", types.Node{ID: "n", Type: types.NodeSlide, Title: "Fresh", DisplayOrder: 2},
			"##### [seq:002] Fresh\n\nf\n"},
		{"new slide with a taken heading", types.Node{ID: "n", Type: types.NodeSlide, Title: "B", DisplayOrder: 2},
			"##### [seq:002] B\n\nduplicate\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := place(doc, 0, target{node: tt.node, ancestors: ancestors, siblings: []types.Node{b, tt.node}}, tt.block)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(got, doc), "existing blocks untouched:\n%s", got)
			assert.True(t, strings.HasSuffix(got, tt.block))
		})
	}
}

func TestPlaceContainerKeepsChildren(t *testing.T) {
	doc := "# C\n\nIntro.\n\n## L\n\nOld intro.\n\n##### [seq:001] A\n\na\n\n### S\n\n##### [seq:001] Inner\n"
	course := types.Node{ID: "c", Type: types.NodeCourse, Title: "C"}
	lecture := types.Node{ID: "l", Type: types.NodeLecture, Title: "L2", Metadata: map[string]string{types.MetaHeading: "## L"}}

	got, err := place(doc, 0, target{node: lecture, ancestors: []types.Node{course}}, "## L2\n\nNew intro.\n")
	require.NoError(t, err)
	assert.Equal(t, "# C\n\nIntro.\n\n## L2\n\nNew intro.\n\n##### [seq:001] A\n\na\n\n### S\n\n##### [seq:001] Inner\n", got)
}

func TestPlaceInsertsAmongDirectChildren(t *testing.T) {
	doc := "# C\n\n## L\n\n##### [seq:001] A\n\n### S\n\n##### [seq:001] Inner\n"
	ancestors := []types.Node{
		{ID: "c", Type: types.NodeCourse, Title: "C"},
		{ID: "l", Type: types.NodeLecture, Title: "L"},
	}

	slide := types.Node{ID: "n", Type: types.NodeSlide, Title: "B", DisplayOrder: 2}
	got, err := place(doc, 0, target{node: slide, ancestors: ancestors}, "##### [seq:002] B\n")
	require.NoError(t, err)
	assert.Equal(t, "# C\n\n## L\n\n##### [seq:001] A\n\n##### [seq:002] B\n\n### S\n\n##### [seq:001] Inner\n", got,
		"a slide under the lecture goes ahead of its sections")

	topic := types.Node{ID: "t", Type: types.NodeTopic, Title: "T"}
	got, err = place(doc, 0, target{node: topic, ancestors: ancestors}, "#### T\n")
	require.NoError(t, err)
	assert.Equal(t, "# C\n\n## L\n\n##### [seq:001] A\n\n#### T\n\n### S\n\n##### [seq:001] Inner\n", got)

	section := types.Node{ID: "s2", Type: types.NodeSection, Title: "S2"}
	got, err = place(doc, 0, target{node: section, ancestors: ancestors}, "### S2\n")
	require.NoError(t, err)
	assert.Equal(t, doc+"\n### S2\n", got)
}

// --- syncing ---

func TestSyncUpdatedSlide(t *testing.T) {
	f := setup(t)
	lecture := f.child(t, "course-1", "Lecture 1: Basics")
	slide := f.child(t, lecture.Path, "Hello World")

	f.update(t, func(tx *hierarchy.Tx) error {
		if _, err := tx.UpdateNode(slide.ID, "Our **first** program, revised."); err != nil {
			return err
		}
		_, err := tx.SetComponentContent(slide.ID, types.ComponentVisual, "Editor screenshot.")
		return err
	})

	file, changed, err := f.sync.SyncNode(context.Background(), slide.ID)
	require.NoError(t, err)
	assert.Equal(t, f.file, file)
	assert.True(t, changed)

	data, err := os.ReadFile(f.file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "---\ndescription: Systems programming\n---\n"), "front matter kept")

	doc := parseFile(t, f.file)
	require.Len(t, doc.Course.Children, 2)
	slides := doc.Course.Children[0].Children
	require.Len(t, slides, 2)
	assert.Equal(t, "Our **first** program, revised.", slides[0].Content)
	require.Len(t, slides[0].Components, 2)
	assert.Equal(t, types.ComponentVisual, slides[0].Components[1].Type)
	assert.Equal(t, "Explain var.", slides[1].Components[0].Content)
	assert.Equal(t, "Later.", doc.Course.Children[1].Content)

	_, changed, err = f.sync.SyncNode(context.Background(), slide.ID)
	require.NoError(t, err)
	assert.False(t, changed, "second sync is a no-op")
}

func TestSyncInsertsNewNodes(t *testing.T) {
	f := setup(t)
	lecture := f.child(t, "course-1", "Lecture 1: Basics")

	var slideID, lectureID string
	f.update(t, func(tx *hierarchy.Tx) error {
		s, err := tx.CreateNode(types.Node{Type: types.NodeSlide, ParentID: lecture.ID, Title: "Constants", DisplayOrder: 3}, "const x = 1")
		if err != nil {
			return err
		}
		slideID = s.ID
		l, err := tx.CreateNode(types.Node{Type: types.NodeLecture, ParentID: lecture.ParentID, Title: "Lecture 3: Wrap-up", DisplayOrder: 3}, "Bye.")
		lectureID = l.ID
		return err
	})

	report, err := f.sync.SyncAll(context.Background(), []string{slideID, lectureID, "gone"})
	require.NoError(t, err)
	assert.Equal(t, []string{lectureID, slideID}, report.Synced, "shallower nodes sync first")
	assert.Equal(t, []string{"gone"}, report.Skipped)
	assert.Equal(t, []string{f.file}, report.Files)
	assert.Empty(t, report.Failed)

	doc := parseFile(t, f.file)
	require.Len(t, doc.Course.Children, 3)
	assert.Equal(t, "Lecture 3: Wrap-up", doc.Course.Children[2].Title)
	slides := doc.Course.Children[0].Children
	require.Len(t, slides, 3)
	assert.Equal(t, "Constants", slides[2].Title)
	assert.Equal(t, "const x = 1", slides[2].Content)
}

func TestSyncAllRecordsRenderFailures(t *testing.T) {
	f := setup(t)
	lecture := f.child(t, "course-1", "Lecture 1: Basics")
	slide := f.child(t, lecture.Path, "Variables")

	f.update(t, func(tx *hierarchy.Tx) error {
		_, err := tx.UpdateNode(slide.ID, "text\n## A lecture heading")
		return err
	})

	report, err := f.sync.SyncAll(context.Background(), []string{slide.ID, lecture.ID})
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, slide.ID, report.Failed[0].NodeID)
	assert.True(t, errors.Is(report.Failed[0], markdown.ErrUnrenderable))
	assert.Equal(t, []string{lecture.ID}, report.Synced)
}

func TestSyncUnclassifiedNode(t *testing.T) {
	f := setup(t)
	s := NewSyncer(f.store, SourceFileClassifier{}, zerolog.Nop())

	var courseID string
	f.update(t, func(tx *hierarchy.Tx) error {
		c, err := tx.CreateNode(types.Node{Type: types.NodeCourse, Title: "Loose"}, "")
		courseID = c.ID
		return err
	})

	_, _, err := s.SyncNode(context.Background(), courseID)
	var se *types.SyncError
	require.True(t, errors.As(err, &se))
	assert.ErrorIs(t, err, ErrUnclassified)
}

func TestSyncContainerKeepsInsertedChildren(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	lecture := f.child(t, "course-1", "Lecture 1: Basics")

	var slideID string
	f.update(t, func(tx *hierarchy.Tx) error {
		s, err := tx.CreateNode(types.Node{Type: types.NodeSlide, ParentID: lecture.ID, Title: "Constants", DisplayOrder: 3}, "const x = 1")
		slideID = s.ID
		return err
	})
	_, _, err := f.sync.SyncNode(ctx, slideID)
	require.NoError(t, err)

	// A title-only change carries the stale container text into a new version.
	f.update(t, func(tx *hierarchy.Tx) error {
		title := "Lecture 1: Basics, revised"
		if _, err := tx.UpdateNodeFields(lecture.ID, hierarchy.NodeFields{Title: &title}); err != nil {
			return err
		}
		latest, err := tx.LatestContent(lecture.ID)
		if err != nil {
			return err
		}
		_, err = tx.UpdateNode(lecture.ID, latest)
		return err
	})
	report, err := f.sync.SyncAll(ctx, []string{lecture.ID})
	require.NoError(t, err)
	require.Empty(t, report.Failed)

	doc := parseFile(t, f.file)
	parsed := doc.Course.Children[0]
	assert.Equal(t, "Lecture 1: Basics, revised", parsed.Title)
	assert.True(t, strings.HasPrefix(parsed.Content, "Welcome."))
	var titles []string
	for _, c := range parsed.Children {
		titles = append(titles, c.Title)
	}
	assert.Equal(t, []string{"Hello World", "Variables", "Constants"}, titles)
	assert.NoError(t, f.fileMatchesStore(t))
}

func TestSyncNewSlideSharingSequence(t *testing.T) {
	f := setup(t)
	lecture := f.child(t, "course-1", "Lecture 1: Basics")

	var slideID string
	f.update(t, func(tx *hierarchy.Tx) error {
		s, err := tx.CreateNode(types.Node{Type: types.NodeSlide, ParentID: lecture.ID, Title: "Brand new", DisplayOrder: 2}, "fresh")
		slideID = s.ID
		return err
	})
	_, changed, err := f.sync.SyncNode(context.Background(), slideID)
	require.NoError(t, err)
	assert.True(t, changed)

	doc := parseFile(t, f.file)
	slides := doc.Course.Children[0].Children
	require.Len(t, slides, 3)
	assert.Equal(t, "Variables", slides[1].Title)
	require.Len(t, slides[1].Components, 1)
	assert.Equal(t, "Explain var.", slides[1].Components[0].Content)
	assert.Equal(t, "Brand new", slides[2].Title)
	assert.NoError(t, f.fileMatchesStore(t))
}

// slideEdit is a random new state for the first slide of the example course.
// The lecture holding the slide may be renamed and given a new
// introduction in the same step.
type slideEdit struct {
	Title        string
	Order        int
	Content      string
	Components   map[types.ComponentType]string
	LectureTitle string
	LectureIntro string
}

var vocabulary = []string{"go", "chan", "select", "`ctx`", "**bold**", "- bullet", "> quote", "x := 1"}

func randomParagraphs(r *rand.Rand, max int) string {
	paras := make([]string, r.Intn(max+1))
	for i := range paras {
		ws := make([]string, 1+r.Intn(5))
		for j := range ws {
			ws[j] = vocabulary[r.Intn(len(vocabulary))]
		}
		paras[i] = strings.Join(ws, " ")
	}
	return strings.Join(paras, "\n\n")
}

func (slideEdit) Generate(r *rand.Rand, size int) reflect.Value {
	e := slideEdit{
		Title:      fmt.Sprintf("Slide %s %d", vocabulary[r.Intn(3)], r.Intn(50)),
		Order:      1,
		Content:    randomParagraphs(r, 3),
		Components: make(map[types.ComponentType]string),
	}
	if r.Intn(2) == 0 {
		e.LectureTitle = fmt.Sprintf("Lecture %s %d", vocabulary[r.Intn(3)], r.Intn(50))
		e.LectureIntro = randomParagraphs(r, 2)
	}
	for _, ct := range types.ComponentTypes {
		if r.Intn(2) == 0 {
			e.Components[ct] = randomParagraphs(r, 2)
		}
	}
	return reflect.ValueOf(e)
}

func TestSyncRoundTrip(t *testing.T) {
	f := setup(t)
	lecture := f.child(t, "course-1", "Lecture 1: Basics")
	slide := f.child(t, lecture.Path, "Hello World")
	ctx := context.Background()

	prop := func(e slideEdit) bool {
		err := f.store.Update(ctx, func(tx *hierarchy.Tx) error {
			if e.LectureTitle != "" {
				title := e.LectureTitle
				if _, err := tx.UpdateNodeFields(lecture.ID, hierarchy.NodeFields{Title: &title}); err != nil {
					return err
				}
				if _, err := tx.UpdateNode(lecture.ID, e.LectureIntro); err != nil {
					return err
				}
			}
			title := e.Title
			if _, err := tx.UpdateNodeFields(slide.ID, hierarchy.NodeFields{Title: &title, DisplayOrder: &e.Order}); err != nil {
				return err
			}
			if _, err := tx.UpdateNode(slide.ID, e.Content); err != nil {
				return err
			}
			for _, ct := range types.ComponentTypes {
				if body, ok := e.Components[ct]; ok {
					if _, err := tx.SetComponentContent(slide.ID, ct, body); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			t.Logf("update: %v", err)
			return false
		}

		report, err := f.sync.SyncAll(ctx, []string{slide.ID, lecture.ID})
		if err != nil || len(report.Failed) > 0 {
			t.Logf("sync: %v %v", err, report.Failed)
			return false
		}
		if err := f.fileMatchesStore(t); err != nil {
			t.Logf("file and store differ: %v", err)
			return false
		}

		var stored []types.Component
		err = f.store.View(ctx, func(tx *hierarchy.Tx) error {
			var err error
			stored, err = tx.Components(slide.ID)
			return err
		})
		if err != nil {
			return false
		}

		doc := parseFile(t, f.file)
		if e.LectureTitle != "" && !strings.HasPrefix(doc.Course.Children[0].Content, strings.TrimSpace(e.LectureIntro)) {
			t.Logf("lecture intro lost: %q", doc.Course.Children[0].Content)
			return false
		}
		slides := doc.Course.Children[0].Children
		if len(slides) != 2 {
			t.Logf("got %d slides", len(slides))
			return false
		}
		got := slides[0]
		if got.Title != e.Title || got.Content != strings.TrimSpace(e.Content) {
			t.Logf("slide mismatch: %q %q", got.Title, got.Content)
			return false
		}
		if len(got.Components) != len(stored) {
			return false
		}
		for i, c := range stored {
			if got.Components[i].Type != c.ComponentType || got.Components[i].Content != strings.TrimSpace(c.Content) {
				return false
			}
		}
		return slides[1].Title == "Variables"
	}
	if err := quick.Check(prop, &quick.Config{MaxCount: 50}); err != nil {
		t.Error(err)
	}
}
