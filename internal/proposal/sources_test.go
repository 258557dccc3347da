// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package proposal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/course-engine/pkg/types"
)

func TestFileSource(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml list", "batch.yaml", `
- action: ADD
  parentNodeId: p1
  nodeType: SLIDE
  title: New slide
  displayOrder: 4
  content: |
    Body.
- action: delete
  targetNodeId: n9
`},
		{"yaml object", "batch.yml", `
proposals:
  - action: ADD
    parentNodeId: p1
    nodeType: SLIDE
    title: New slide
    displayOrder: 4
    content: "Body.\n"
  - action: delete
    targetNodeId: n9
`},
		{"json list", "batch.json", `[
  {"action": "ADD", "parentNodeId": "p1", "nodeType": "SLIDE", "title": "New slide", "displayOrder": 4, "content": "Body.\n"},
  {"action": "delete", "targetNodeId": "n9"}
]`},
		{"json object", "batch.JSON", `{"proposals": [
  {"action": "ADD", "parentNodeId": "p1", "nodeType": "SLIDE", "title": "New slide", "displayOrder": 4, "content": "Body.\n"},
  {"action": "delete", "targetNodeId": "n9"}
]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			ps, err := FileSource{Path: path}.Proposals(context.Background())
			require.NoError(t, err)
			require.Len(t, ps, 2)

			assert.Equal(t, types.ActionAdd, ps[0].Action)
			assert.Equal(t, "p1", ps[0].ParentNodeID)
			assert.Equal(t, types.NodeSlide, ps[0].NodeType)
			assert.Equal(t, "Body.\n", ps[0].Content)
			require.NotNil(t, ps[0].DisplayOrder)
			assert.Equal(t, 4, *ps[0].DisplayOrder)

			assert.Equal(t, "n9", ps[1].TargetNodeID)
			assert.Nil(t, ps[1].DisplayOrder)
		})
	}
}

func TestFileSourceErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- action: [unclosed\n"), 0o644))

	_, err := FileSource{Path: bad}.Proposals(context.Background())
	assert.ErrorContains(t, err, "decoding")

	_, err = FileSource{Path: filepath.Join(dir, "missing.yaml")}.Proposals(context.Background())
	assert.ErrorContains(t, err, "reading proposals")
}

func TestCommandSource(t *testing.T) {
	src := CommandSource{Command: `printf '[{"action":"UPDATE","targetNodeId":"n1","content":"%s"}]' "$BODY"`, Env: []string{"BODY=hello"}}
	ps, err := src.Proposals(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "n1", ps[0].TargetNodeID)
	assert.Equal(t, "hello", ps[0].Content)

	_, err = CommandSource{Command: "echo boom >&2; exit 3"}.Proposals(context.Background())
	assert.ErrorContains(t, err, "boom")

	_, err = CommandSource{Command: "echo not json"}.Proposals(context.Background())
	assert.ErrorContains(t, err, "decoding generator output")

	_, err = CommandSource{}.Proposals(context.Background())
	assert.Error(t, err)
}
