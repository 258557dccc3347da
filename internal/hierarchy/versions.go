// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hierarchy

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pdiddy/course-engine/pkg/types"
)

// appendVersion writes content as version max+1 of nodeID. The UNIQUE
// (node_id, version_number) constraint turns a racing writer into an error
// rather than a duplicate number.
func (tx *Tx) appendVersion(nodeID, content string) (types.Version, error) {
	var max sql.NullInt64
	if err := tx.q.QueryRowContext(tx.ctx,
		`SELECT MAX(version_number) FROM versions WHERE node_id = ?`, nodeID,
	).Scan(&max); err != nil {
		return types.Version{}, fmt.Errorf("reading versions of %s: %w", nodeID, err)
	}

	v := types.Version{
		ID:            tx.newID(),
		NodeID:        nodeID,
		Content:       content,
		Format:        types.FormatMarkdown,
		VersionNumber: int(max.Int64) + 1,
		CreatedAt:     tx.now(),
	}
	if _, err := tx.q.ExecContext(tx.ctx,
		`INSERT INTO versions (id, node_id, content, format, version_number, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.NodeID, v.Content, v.Format, v.VersionNumber, formatTime(v.CreatedAt),
	); err != nil {
		return types.Version{}, fmt.Errorf("writing version %d of %s: %w", v.VersionNumber, nodeID, err)
	}
	return v, nil
}

// LatestVersion returns the highest-numbered version of nodeID. A node
// without versions yields a NotFoundError of kind "version".
func (tx *Tx) LatestVersion(nodeID string) (types.Version, error) {
	if _, err := tx.Node(nodeID); err != nil {
		return types.Version{}, err
	}
	row := tx.q.QueryRowContext(tx.ctx,
		`SELECT id, node_id, content, format, version_number, created_at
		 FROM versions WHERE node_id = ? ORDER BY version_number DESC LIMIT 1`, nodeID)
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Version{}, &types.NotFoundError{Kind: "version", ID: nodeID}
	}
	if err != nil {
		return types.Version{}, fmt.Errorf("loading latest version of %s: %w", nodeID, err)
	}
	return v, nil
}

// LatestContent returns the content of the node's latest version, or ""
// when the node has never been given content.
func (tx *Tx) LatestContent(nodeID string) (string, error) {
	v, err := tx.LatestVersion(nodeID)
	if err != nil {
		var nf *types.NotFoundError
		if errors.As(err, &nf) && nf.Kind == "version" {
			return "", nil
		}
		return "", err
	}
	return v.Content, nil
}

// Versions returns the full history of nodeID, oldest first.
func (tx *Tx) Versions(nodeID string) ([]types.Version, error) {
	if _, err := tx.Node(nodeID); err != nil {
		return nil, err
	}
	rows, err := tx.q.QueryContext(tx.ctx,
		`SELECT id, node_id, content, format, version_number, created_at
		 FROM versions WHERE node_id = ? ORDER BY version_number`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("querying versions of %s: %w", nodeID, err)
	}
	defer rows.Close()

	var versions []types.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func scanVersion(row scanner) (types.Version, error) {
	var (
		v         types.Version
		createdAt string
	)
	if err := row.Scan(&v.ID, &v.NodeID, &v.Content, &v.Format, &v.VersionNumber, &createdAt); err != nil {
		return types.Version{}, err
	}
	v.CreatedAt = parseTime(createdAt)
	return v, nil
}
