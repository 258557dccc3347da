// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/course-engine/internal/hierarchy"
	"github.com/pdiddy/course-engine/pkg/types"
)

const exampleCourse = `# Intro to Go

A first course.

## Lecture 1: Basics

Welcome.

##### [seq:001] Hello World

Our first program.

###### SCRIPT

Say hello.

###### VISUAL

Terminal screenshot.

##### [seq:002] Variables

###### SCRIPT

Explain var.

###### VISUAL

Diagram of memory.
`

func setup(t *testing.T) (*Importer, *hierarchy.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := hierarchy.Open(types.StoreConfig{Path: filepath.Join(dir, "course.db")}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, types.ImportConfig{Enabled: true, Workers: 2}, zerolog.Nop()), store, dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func countRows(t *testing.T, store *hierarchy.Store) map[types.NodeType]int {
	t.Helper()
	counts := make(map[types.NodeType]int)
	err := store.View(context.Background(), func(tx *hierarchy.Tx) error {
		roots, err := tx.Roots()
		if err != nil {
			return err
		}
		for _, r := range roots {
			ids, err := tx.Subtree(r.ID)
			if err != nil {
				return err
			}
			for _, id := range ids {
				n, err := tx.Node(id)
				if err != nil {
					return err
				}
				counts[n.Type]++
				if n.Type == types.NodeSlide {
					comps, err := tx.Components(id)
					if err != nil {
						return err
					}
					counts["COMPONENT"] += len(comps)
				}
			}
		}
		return nil
	})
	require.NoError(t, err)
	return counts
}

func TestImportExampleCourse(t *testing.T) {
	im, store, dir := setup(t)
	path := writeFile(t, dir, "intro.md", exampleCourse)

	var out bytes.Buffer
	result, err := im.ImportFiles(context.Background(), []string{path}, Options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Contains(t, out.String(), "imported: "+path)

	counts := countRows(t, store)
	assert.Equal(t, 1, counts[types.NodeCourse])
	assert.Equal(t, 1, counts[types.NodeLecture])
	assert.Equal(t, 2, counts[types.NodeSlide])
	assert.Equal(t, 4, counts["COMPONENT"])

	err = store.View(context.Background(), func(tx *hierarchy.Tx) error {
		course, err := tx.Node(result.Courses[0])
		require.NoError(t, err)
		assert.Equal(t, path, course.Meta(types.MetaSourceFile))
		assert.Equal(t, "A first course.", course.Description)

		lectures, err := tx.ChildrenOf(course.ID)
		require.NoError(t, err)
		require.Len(t, lectures, 1)
		assert.Equal(t, "## Lecture 1: Basics", lectures[0].Meta(types.MetaHeading))

		slides, err := tx.ChildrenOf(lectures[0].ID)
		require.NoError(t, err)
		require.Len(t, slides, 2)
		assert.Equal(t, "001", slides[0].Meta(types.MetaSequence))

		content, err := tx.LatestContent(slides[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "Our first program.", content)

		comps, err := tx.Components(slides[0].ID)
		require.NoError(t, err)
		require.Len(t, comps, 2)
		assert.Equal(t, types.ComponentScript, comps[0].ComponentType)
		assert.Equal(t, 10, comps[0].DisplayOrder)
		assert.Equal(t, "Terminal screenshot.", comps[1].Content)
		return nil
	})
	require.NoError(t, err)
}

func TestImportIsolatesBadFiles(t *testing.T) {
	im, store, dir := setup(t)
	good := writeFile(t, dir, "good.md", exampleCourse)
	bad := writeFile(t, dir, "bad.md", "## no course heading\n")
	missing := filepath.Join(dir, "missing.md")

	var out bytes.Buffer
	result, err := im.ImportFiles(context.Background(), []string{bad, good, missing}, Options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Failed)
	assert.True(t, result.HasFailures())
	assert.Contains(t, out.String(), "failed:  "+bad)
	assert.Contains(t, out.String(), "NoCourseHeading")

	assert.Equal(t, 1, countRows(t, store)[types.NodeCourse])
}

func TestImportSkipsUnchangedAndReplacesChanged(t *testing.T) {
	im, store, dir := setup(t)
	path := writeFile(t, dir, "intro.md", exampleCourse)
	ctx := context.Background()
	var out bytes.Buffer

	_, err := im.ImportFiles(ctx, []string{path}, Options{}, &out)
	require.NoError(t, err)

	result, err := im.ImportFiles(ctx, []string{path}, Options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)

	writeFile(t, dir, "intro.md", strings.Replace(exampleCourse, "Say hello.", "Say hi.", 1))
	result, err = im.ImportFiles(ctx, []string{path}, Options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, out.String(), ErrChanged.Error())

	result, err = im.ImportFiles(ctx, []string{path}, Options{Replace: true}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	counts := countRows(t, store)
	assert.Equal(t, 1, counts[types.NodeCourse], "replace removes the previous course")
	assert.Equal(t, 4, counts["COMPONENT"])
}

func TestImportDisabled(t *testing.T) {
	_, store, _ := setup(t)
	im := New(store, types.ImportConfig{Enabled: false}, zerolog.Nop())

	_, err := im.ImportFiles(context.Background(), []string{"x.md"}, Options{}, &bytes.Buffer{})
	assert.True(t, errors.Is(err, types.ErrImportDisabled))
}
