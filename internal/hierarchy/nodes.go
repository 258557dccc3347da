// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hierarchy

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/course-engine/pkg/types"
)

const nodeColumns = `id, type, parent_id, title, description, node_number,
	display_order, path, metadata, created_at, updated_at`

// NodeFields carries the in-place editable fields of a node. Nil fields are
// left unchanged.
type NodeFields struct {
	Title        *string
	Description  *string
	NodeNumber   *string
	DisplayOrder *int
}

// IsEmpty reports whether no field is set.
func (f NodeFields) IsEmpty() bool {
	return f.Title == nil && f.Description == nil && f.NodeNumber == nil && f.DisplayOrder == nil
}

// CreateNode persists n under its parent (or as a root) and writes version 1
// when content is not blank. The store assigns ID, Path, and timestamps; an
// empty NodeNumber is derived from the parent's. A ParentID that does not
// resolve fails with a NotFoundError of kind "parent".
func (tx *Tx) CreateNode(n types.Node, content string) (types.Node, error) {
	if !n.Type.Valid() {
		return types.Node{}, fmt.Errorf("%w: unknown node type %q", types.ErrInvalidHierarchy, n.Type)
	}
	if err := types.CheckTitle(n.Title); err != nil {
		return types.Node{}, err
	}

	var parent *types.Node
	if n.ParentID != "" {
		p, err := tx.Node(n.ParentID)
		if err != nil {
			if types.IsNotFound(err) {
				return types.Node{}, &types.NotFoundError{Kind: "parent", ID: n.ParentID}
			}
			return types.Node{}, err
		}
		if !p.Type.CanParent(n.Type) {
			return types.Node{}, fmt.Errorf("%w: %s cannot hold %s", types.ErrInvalidHierarchy, p.Type, n.Type)
		}
		parent = &p
	} else if n.Type != types.NodeCourse {
		return types.Node{}, fmt.Errorf("%w: %s needs a parent", types.ErrInvalidHierarchy, n.Type)
	}

	ordinal, err := tx.nextOrdinal(n.ParentID, n.Type)
	if err != nil {
		return types.Node{}, err
	}

	segment := n.Type.Segment() + "-" + strconv.Itoa(ordinal)
	n.Path = segment
	if parent != nil {
		n.Path = parent.Path + "/" + segment
		if n.NodeNumber == "" {
			n.NodeNumber = joinNumber(parent.NodeNumber, ordinal)
		}
	}

	now := tx.now()
	n.ID = tx.newID()
	n.CreatedAt = now
	n.UpdatedAt = now

	meta, err := encodeMeta(n.Metadata)
	if err != nil {
		return types.Node{}, err
	}

	_, err = tx.q.ExecContext(tx.ctx,
		`INSERT INTO nodes (`+nodeColumns+`, ordinal)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Type), nullable(n.ParentID), n.Title, n.Description, n.NodeNumber,
		n.DisplayOrder, n.Path, meta, formatTime(now), formatTime(now), ordinal,
	)
	if err != nil {
		return types.Node{}, fmt.Errorf("inserting node %q: %w", n.Title, err)
	}

	if strings.TrimSpace(content) != "" {
		if _, err := tx.appendVersion(n.ID, content); err != nil {
			return types.Node{}, err
		}
	}

	tx.log.Debug().Str("node", n.ID).Str("path", n.Path).Msg("node created")
	return n, nil
}

// UpdateNode records content as the node's next version and bumps its
// UpdatedAt. A missing node fails with a NotFoundError.
func (tx *Tx) UpdateNode(id, content string) (types.Node, error) {
	n, err := tx.Node(id)
	if err != nil {
		return types.Node{}, err
	}

	v, err := tx.appendVersion(id, content)
	if err != nil {
		return types.Node{}, err
	}
	if err := tx.touch(id); err != nil {
		return types.Node{}, err
	}

	tx.log.Debug().Str("node", id).Int("version", v.VersionNumber).Msg("node updated")
	n.UpdatedAt = v.CreatedAt
	return n, nil
}

// UpdateNodeFields overwrites the set fields of a node in place. Path and
// type never change.
func (tx *Tx) UpdateNodeFields(id string, f NodeFields) (types.Node, error) {
	n, err := tx.Node(id)
	if err != nil {
		return types.Node{}, err
	}
	if f.IsEmpty() {
		return n, nil
	}

	if f.Title != nil {
		if err := types.CheckTitle(*f.Title); err != nil {
			return types.Node{}, err
		}
		n.Title = *f.Title
	}
	if f.Description != nil {
		n.Description = *f.Description
	}
	if f.NodeNumber != nil {
		n.NodeNumber = *f.NodeNumber
	}
	if f.DisplayOrder != nil {
		n.DisplayOrder = *f.DisplayOrder
	}
	n.UpdatedAt = tx.now()

	_, err = tx.q.ExecContext(tx.ctx,
		`UPDATE nodes SET title = ?, description = ?, node_number = ?, display_order = ?, updated_at = ?
		 WHERE id = ?`,
		n.Title, n.Description, n.NodeNumber, n.DisplayOrder, formatTime(n.UpdatedAt), id,
	)
	if err != nil {
		return types.Node{}, fmt.Errorf("updating node %s: %w", id, err)
	}
	return n, nil
}

// SetMetadata merges values into the node's metadata bag.
func (tx *Tx) SetMetadata(id string, values map[string]string) error {
	n, err := tx.Node(id)
	if err != nil {
		return err
	}
	if n.Metadata == nil {
		n.Metadata = make(map[string]string, len(values))
	}
	for k, v := range values {
		n.Metadata[k] = v
	}
	meta, err := encodeMeta(n.Metadata)
	if err != nil {
		return err
	}
	if _, err := tx.q.ExecContext(tx.ctx,
		`UPDATE nodes SET metadata = ? WHERE id = ?`, meta, id,
	); err != nil {
		return fmt.Errorf("updating metadata of %s: %w", id, err)
	}
	return nil
}

// DeleteNode removes a node with its whole subtree, their versions, and
// their components. It returns the ids of every removed node, the target
// first.
func (tx *Tx) DeleteNode(id string) ([]string, error) {
	removed, err := tx.Subtree(id)
	if err != nil {
		return nil, err
	}
	if _, err := tx.q.ExecContext(tx.ctx, `DELETE FROM nodes WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("deleting node %s: %w", id, err)
	}
	tx.log.Debug().Str("node", id).Int("removed", len(removed)).Msg("node deleted")
	return removed, nil
}

// Node returns the node with id, or a NotFoundError.
func (tx *Tx) Node(id string) (types.Node, error) {
	row := tx.q.QueryRowContext(tx.ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Node{}, &types.NotFoundError{Kind: "node", ID: id}
	}
	if err != nil {
		return types.Node{}, fmt.Errorf("loading node %s: %w", id, err)
	}
	return n, nil
}

// NodeByPath returns the node at path, or a NotFoundError.
func (tx *Tx) NodeByPath(path string) (types.Node, error) {
	row := tx.q.QueryRowContext(tx.ctx, `SELECT `+nodeColumns+` FROM nodes WHERE path = ?`, path)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Node{}, &types.NotFoundError{Kind: "node", ID: path}
	}
	if err != nil {
		return types.Node{}, fmt.Errorf("loading node at %s: %w", path, err)
	}
	return n, nil
}

// ChildrenOf returns the direct children of id ordered by display order,
// then by creation.
func (tx *Tx) ChildrenOf(id string) ([]types.Node, error) {
	if _, err := tx.Node(id); err != nil {
		return nil, err
	}
	return tx.queryNodes(
		`SELECT `+nodeColumns+` FROM nodes WHERE parent_id = ?
		 ORDER BY display_order, rowid`, id)
}

// Roots returns every course in creation order.
func (tx *Tx) Roots() ([]types.Node, error) {
	return tx.queryNodes(
		`SELECT ` + nodeColumns + ` FROM nodes WHERE parent_id IS NULL ORDER BY rowid`)
}

// PathPrefixSearch returns the nodes under prefix, ordered by path. The
// match is case-sensitive and on whole segments: "course-1/lecture-1"
// matches that lecture and its descendants but not "course-1/lecture-10".
// A prefix ending in "/" matches descendants only; an empty prefix matches
// every node.
func (tx *Tx) PathPrefixSearch(prefix string) ([]types.Node, error) {
	const q = `SELECT ` + nodeColumns + ` FROM nodes WHERE `
	switch {
	case prefix == "":
		return tx.queryNodes(q + `1 ORDER BY path`)
	case strings.HasSuffix(prefix, "/"):
		return tx.queryNodes(q+`substr(path, 1, length(?)) = ? ORDER BY path`, prefix, prefix)
	}
	under := prefix + "/"
	return tx.queryNodes(q+`path = ? OR substr(path, 1, length(?)) = ? ORDER BY path`, prefix, under, under)
}

// Ancestors returns the chain from the root down to the parent of id.
func (tx *Tx) Ancestors(id string) ([]types.Node, error) {
	n, err := tx.Node(id)
	if err != nil {
		return nil, err
	}
	var chain []types.Node
	for n.ParentID != "" {
		n, err = tx.Node(n.ParentID)
		if err != nil {
			return nil, err
		}
		chain = append([]types.Node{n}, chain...)
	}
	return chain, nil
}

// Subtree returns the ids of id and all its descendants, parents before
// children.
func (tx *Tx) Subtree(id string) ([]string, error) {
	if _, err := tx.Node(id); err != nil {
		return nil, err
	}
	rows, err := tx.q.QueryContext(tx.ctx,
		`WITH RECURSIVE sub(id, depth) AS (
			SELECT id, 0 FROM nodes WHERE id = ?
			UNION ALL
			SELECT n.id, sub.depth + 1 FROM nodes n JOIN sub ON n.parent_id = sub.id
		)
		SELECT id FROM sub ORDER BY depth`, id)
	if err != nil {
		return nil, fmt.Errorf("walking subtree of %s: %w", id, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var child string
		if err := rows.Scan(&child); err != nil {
			return nil, fmt.Errorf("scanning subtree row: %w", err)
		}
		ids = append(ids, child)
	}
	return ids, rows.Err()
}

// NextDisplayOrder returns one more than the largest display order among
// the children of parentID.
func (tx *Tx) NextDisplayOrder(parentID string) (int, error) {
	var max sql.NullInt64
	err := tx.q.QueryRowContext(tx.ctx,
		`SELECT MAX(display_order) FROM nodes WHERE parent_id = ?`, parentID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("reading display order under %s: %w", parentID, err)
	}
	return int(max.Int64) + 1, nil
}

// nextOrdinal returns the path ordinal for a new node of type t under
// parentID. Ordinals only grow while siblings exist, so a new path never
// equals a living sibling's.
func (tx *Tx) nextOrdinal(parentID string, t types.NodeType) (int, error) {
	var max sql.NullInt64
	err := tx.q.QueryRowContext(tx.ctx,
		`SELECT MAX(ordinal) FROM nodes WHERE parent_id IS ? AND type = ?`,
		nullable(parentID), string(t),
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("reading sibling ordinals: %w", err)
	}
	return int(max.Int64) + 1, nil
}

func (tx *Tx) touch(id string) error {
	if _, err := tx.q.ExecContext(tx.ctx,
		`UPDATE nodes SET updated_at = ? WHERE id = ?`, formatTime(tx.now()), id,
	); err != nil {
		return fmt.Errorf("touching node %s: %w", id, err)
	}
	return nil
}

func (tx *Tx) queryNodes(query string, args ...any) ([]types.Node, error) {
	rows, err := tx.q.QueryContext(tx.ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	var nodes []types.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (types.Node, error) {
	var (
		n         types.Node
		nodeType  string
		parentID  sql.NullString
		metaJSON  string
		createdAt string
		updatedAt string
	)
	if err := row.Scan(
		&n.ID, &nodeType, &parentID, &n.Title, &n.Description, &n.NodeNumber,
		&n.DisplayOrder, &n.Path, &metaJSON, &createdAt, &updatedAt,
	); err != nil {
		return types.Node{}, err
	}
	n.Type = types.NodeType(nodeType)
	n.ParentID = parentID.String
	n.CreatedAt = parseTime(createdAt)
	n.UpdatedAt = parseTime(updatedAt)
	if metaJSON != "" && metaJSON != "{}" {
		if err := json.Unmarshal([]byte(metaJSON), &n.Metadata); err != nil {
			return types.Node{}, fmt.Errorf("decoding metadata of %s: %w", n.ID, err)
		}
	}
	return n, nil
}

func encodeMeta(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}
	return string(data), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func joinNumber(parent string, ordinal int) string {
	if parent == "" {
		return strconv.Itoa(ordinal)
	}
	return parent + "." + strconv.Itoa(ordinal)
}
