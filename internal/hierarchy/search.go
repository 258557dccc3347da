// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hierarchy

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/course-engine/pkg/types"
)

const defaultSearchLimit = 20

// Search returns nodes whose title or latest content contains query,
// case-insensitively. Title matches rank first.
func (tx *Tx) Search(query string, limit int) ([]types.Node, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	return tx.queryNodes(
		`SELECT `+prefixed("n", nodeColumns)+` FROM nodes n
		 LEFT JOIN versions v ON v.node_id = n.id AND v.version_number =
			(SELECT MAX(version_number) FROM versions WHERE node_id = n.id)
		 WHERE lower(n.title) LIKE ? ESCAPE '\' OR lower(COALESCE(v.content, '')) LIKE ? ESCAPE '\'
		 ORDER BY CASE WHEN lower(n.title) LIKE ? ESCAPE '\' THEN 0 ELSE 1 END, n.path
		 LIMIT ?`,
		pattern, pattern, pattern, limit)
}

// ImportRecord is the bookkeeping kept for an imported source file.
type ImportRecord struct {
	SourceFile  string
	ContentHash string
	CourseID    string
	ImportedAt  time.Time
}

// ImportStatus returns the record for file, or nil when file was never
// imported.
func (tx *Tx) ImportStatus(file string) (*ImportRecord, error) {
	var (
		rec        ImportRecord
		importedAt string
	)
	err := tx.q.QueryRowContext(tx.ctx,
		`SELECT source_file, content_hash, course_id, imported_at FROM import_status WHERE source_file = ?`,
		file,
	).Scan(&rec.SourceFile, &rec.ContentHash, &rec.CourseID, &importedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading import status of %s: %w", file, err)
	}
	rec.ImportedAt = parseTime(importedAt)
	return &rec, nil
}

// RecordImport stores or replaces the import record for file.
func (tx *Tx) RecordImport(file, hash, courseID string) error {
	_, err := tx.q.ExecContext(tx.ctx,
		`INSERT INTO import_status (source_file, content_hash, course_id, imported_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(source_file) DO UPDATE SET
			content_hash = excluded.content_hash,
			course_id = excluded.course_id,
			imported_at = excluded.imported_at`,
		file, hash, courseID, formatTime(tx.now()),
	)
	if err != nil {
		return fmt.Errorf("recording import of %s: %w", file, err)
	}
	return nil
}

// prefixed qualifies each column in a comma-separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
