// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// ProposalAction is the kind of change a proposal requests.
type ProposalAction string

const (
	ActionAdd    ProposalAction = "ADD"
	ActionUpdate ProposalAction = "UPDATE"
	ActionDelete ProposalAction = "DELETE"
)

// Proposal is an externally supplied change instruction. Field names follow
// the collaborator shape {targetNodeId?, parentNodeId, nodeType, action,
// title, nodeNumber?, content, rationale, displayOrder?}.
type Proposal struct {
	TargetNodeID string         `json:"targetNodeId,omitempty" yaml:"targetNodeId,omitempty"`
	ParentNodeID string         `json:"parentNodeId,omitempty" yaml:"parentNodeId,omitempty"`
	NodeType     NodeType       `json:"nodeType" yaml:"nodeType"`
	Action       ProposalAction `json:"action" yaml:"action"`
	Title        string         `json:"title" yaml:"title"`
	NodeNumber   string         `json:"nodeNumber,omitempty" yaml:"nodeNumber,omitempty"`
	Content      string         `json:"content" yaml:"content"`
	Rationale    string         `json:"rationale" yaml:"rationale"`
	DisplayOrder *int           `json:"displayOrder,omitempty" yaml:"displayOrder,omitempty"`
}

// Normalize upper-cases the action and node type so collaborators may send
// either case.
func (p *Proposal) Normalize() {
	p.Action = ProposalAction(strings.ToUpper(strings.TrimSpace(string(p.Action))))
	p.NodeType = NodeType(strings.ToUpper(strings.TrimSpace(string(p.NodeType))))
	p.TargetNodeID = strings.TrimSpace(p.TargetNodeID)
	p.ParentNodeID = strings.TrimSpace(p.ParentNodeID)
}

// Validate checks the fields each action requires. It does not consult the
// store.
func (p Proposal) Validate() error {
	switch p.Action {
	case ActionAdd:
		if p.ParentNodeID == "" {
			return fmt.Errorf("%w: ADD requires parentNodeId", ErrInvalidProposal)
		}
		if !p.NodeType.Valid() {
			return fmt.Errorf("%w: unknown nodeType %q", ErrInvalidProposal, p.NodeType)
		}
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("%w: ADD requires a title", ErrInvalidProposal)
		}
		if err := CheckTitle(p.Title); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidProposal, err)
		}
	case ActionUpdate:
		if p.TargetNodeID == "" {
			return fmt.Errorf("%w: UPDATE requires targetNodeId", ErrInvalidProposal)
		}
		if err := CheckTitle(p.Title); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidProposal, err)
		}
	case ActionDelete:
		if p.TargetNodeID == "" {
			return fmt.Errorf("%w: DELETE requires targetNodeId", ErrInvalidProposal)
		}
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidProposal, p.Action)
	}
	return nil
}

// CheckTitle rejects titles that would not fit on one heading line.
func CheckTitle(title string) error {
	if strings.ContainsAny(title, "\r\n") {
		return fmt.Errorf("%w: %q spans lines", ErrInvalidTitle, title)
	}
	return nil
}
