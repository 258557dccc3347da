// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProposal marks a proposal that is missing required fields.
	ErrInvalidProposal = errors.New("invalid proposal")

	// ErrInvalidHierarchy marks a parent/child type combination the
	// hierarchy does not allow.
	ErrInvalidHierarchy = errors.New("invalid hierarchy")

	// ErrVersionConflict is reserved for optimistic version checks on
	// UPDATE. Nothing returns it yet; batches are last-writer-wins.
	ErrVersionConflict = errors.New("version conflict")

	// ErrInvalidTitle marks a title that cannot be written as one heading
	// line.
	ErrInvalidTitle = errors.New("invalid title")

	// ErrImportDisabled is returned when import.enabled is false.
	ErrImportDisabled = errors.New("import is disabled by configuration")
)

// ParseReason classifies a structural parse failure.
type ParseReason string

const (
	NoCourseHeading        ParseReason = "NoCourseHeading"
	MultipleCourseHeadings ParseReason = "MultipleCourseHeadings"
	MalformedFrontMatter   ParseReason = "MalformedFrontMatter"
)

// ParseError reports a document whose heading structure cannot be parsed.
// It is scoped to one file.
type ParseError struct {
	File   string
	Reason ParseReason
	Line   int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: %s at line %d", e.File, e.Reason, e.Line)
	}
	return fmt.Sprintf("parse %s: %s", e.File, e.Reason)
}

// NotFoundError reports a node that does not exist. Kind is "parent" when a
// parent reference failed to resolve and "node" otherwise.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "node"
	}
	return fmt.Sprintf("%s %s not found", kind, e.ID)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// BatchError names the proposal that aborted a batch.
type BatchError struct {
	Index  int
	Action ProposalAction
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("proposal %d (%s): %v", e.Index, e.Action, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// PublishError wraps a failed commit or pull-request call. The store commit
// that preceded it is not rolled back.
type PublishError struct {
	Op  string
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.Op, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// SyncError reports a node that could not be written back to its file.
type SyncError struct {
	NodeID string
	File   string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync node %s to %s: %v", e.NodeID, e.File, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// WarningKind classifies a recoverable parse issue.
type WarningKind string

const (
	UnknownComponentType  WarningKind = "UnknownComponentType"
	InvalidSequenceNumber WarningKind = "InvalidSequenceNumber"
	DuplicateComponent    WarningKind = "DuplicateComponent"
)

// Warning is a recoverable issue found while parsing. The parser logs it and
// carries on with a default or a skip.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Line    int         `json:"line" yaml:"line"`
	Message string      `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s: %s", w.Line, w.Kind, w.Message)
}
