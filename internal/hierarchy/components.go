// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hierarchy

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pdiddy/course-engine/pkg/types"
)

const componentColumns = `id, slide_node_id, component_type, content, display_order, created_at, updated_at`

// Components returns the components of a slide ordered by display order.
func (tx *Tx) Components(slideID string) ([]types.Component, error) {
	if _, err := tx.slide(slideID); err != nil {
		return nil, err
	}
	rows, err := tx.q.QueryContext(tx.ctx,
		`SELECT `+componentColumns+` FROM components WHERE slide_node_id = ?
		 ORDER BY display_order, rowid`, slideID)
	if err != nil {
		return nil, fmt.Errorf("querying components of %s: %w", slideID, err)
	}
	defer rows.Close()

	var comps []types.Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning component: %w", err)
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// GetOrCreateComponent returns the slide's component of type ct, creating
// an empty one after the existing components when none exists.
func (tx *Tx) GetOrCreateComponent(slideID string, ct types.ComponentType) (types.Component, error) {
	if _, err := tx.slide(slideID); err != nil {
		return types.Component{}, err
	}

	row := tx.q.QueryRowContext(tx.ctx,
		`SELECT `+componentColumns+` FROM components
		 WHERE slide_node_id = ? AND component_type = ? ORDER BY rowid LIMIT 1`,
		slideID, string(ct))
	c, err := scanComponent(row)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return types.Component{}, fmt.Errorf("loading %s component of %s: %w", ct, slideID, err)
	}

	var max sql.NullInt64
	if err := tx.q.QueryRowContext(tx.ctx,
		`SELECT MAX(display_order) FROM components WHERE slide_node_id = ?`, slideID,
	).Scan(&max); err != nil {
		return types.Component{}, fmt.Errorf("reading component order of %s: %w", slideID, err)
	}

	now := tx.now()
	c = types.Component{
		ID:            tx.newID(),
		SlideNodeID:   slideID,
		ComponentType: ct,
		DisplayOrder:  int(max.Int64) + types.ComponentOrderStep,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := tx.q.ExecContext(tx.ctx,
		`INSERT INTO components (`+componentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SlideNodeID, string(c.ComponentType), c.Content, c.DisplayOrder,
		formatTime(now), formatTime(now),
	); err != nil {
		return types.Component{}, fmt.Errorf("creating %s component of %s: %w", ct, slideID, err)
	}
	return c, nil
}

// SetComponentContent replaces the slide's component of type ct with
// content, creating the component if needed.
func (tx *Tx) SetComponentContent(slideID string, ct types.ComponentType, content string) (types.Component, error) {
	c, err := tx.GetOrCreateComponent(slideID, ct)
	if err != nil {
		return types.Component{}, err
	}
	c.Content = content
	c.UpdatedAt = tx.now()
	if _, err := tx.q.ExecContext(tx.ctx,
		`UPDATE components SET content = ?, updated_at = ? WHERE id = ?`,
		c.Content, formatTime(c.UpdatedAt), c.ID,
	); err != nil {
		return types.Component{}, fmt.Errorf("updating %s component of %s: %w", ct, slideID, err)
	}
	return c, nil
}

func (tx *Tx) slide(id string) (types.Node, error) {
	n, err := tx.Node(id)
	if err != nil {
		return types.Node{}, err
	}
	if n.Type != types.NodeSlide {
		return types.Node{}, fmt.Errorf("%w: %s is a %s, not a slide", types.ErrInvalidHierarchy, id, n.Type)
	}
	return n, nil
}

func scanComponent(row scanner) (types.Component, error) {
	var (
		c         types.Component
		ct        string
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&c.ID, &c.SlideNodeID, &ct, &c.Content, &c.DisplayOrder, &createdAt, &updatedAt); err != nil {
		return types.Component{}, err
	}
	c.ComponentType = types.ComponentType(ct)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}
