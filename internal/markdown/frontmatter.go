// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// splitFrontMatter separates optional YAML front matter from the Markdown
// body. It returns the metadata flattened to strings, the body, and the
// number of bytes the front matter occupied in src.
func splitFrontMatter(src []byte) (map[string]string, []byte, int, error) {
	var raw map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &raw)
	if err != nil {
		return nil, nil, 0, err
	}

	// Offsets must stay aligned with the file, so the body has to be a
	// suffix of src.
	if !bytes.HasSuffix(src, body) {
		return nil, src, 0, nil
	}
	return flattenMeta(raw), body, len(src) - len(body), nil
}

// flattenMeta converts front matter values into the string bag nodes carry.
// Lists are joined with ", "; nested maps are skipped.
func flattenMeta(raw map[string]any) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
		case map[string]any:
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			out[key] = strings.Join(parts, ", ")
		default:
			out[key] = fmt.Sprint(v)
		}
	}
	return out
}

// FrontMatterLen returns how many leading bytes of src are front matter.
// Malformed front matter counts as none.
func FrontMatterLen(src []byte) int {
	_, _, n, err := splitFrontMatter(src)
	if err != nil {
		return 0
	}
	return n
}
