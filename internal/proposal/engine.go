// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package proposal applies batches of ADD, UPDATE, and DELETE proposals to
// the hierarchy store as one unit of work, then writes the touched nodes
// back to Markdown and publishes the result.
package proposal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/course-engine/internal/hierarchy"
	"github.com/pdiddy/course-engine/internal/markdown"
	"github.com/pdiddy/course-engine/internal/writeback"
	"github.com/pdiddy/course-engine/pkg/types"
)

const defaultBranchPrefix = "content-sync"

// Syncer writes touched nodes back to their Markdown files.
type Syncer interface {
	SyncAll(ctx context.Context, ids []string) (writeback.Report, error)
}

// Publisher commits synced files and opens a pull request.
type Publisher interface {
	CommitAndPush(ctx context.Context, branch, message string) error
	CreatePR(ctx context.Context, branch, title, body string) (string, error)
}

// Options tune one Apply call.
type Options struct {
	DryRun    bool // apply inside the transaction, then roll back
	NoSync    bool
	NoPublish bool
}

// Result describes what a batch did.
type Result struct {
	DryRun      bool
	Created     []string
	Updated     []string
	Deleted     []string
	Touched     []string // surviving nodes to write back, in first-touch order
	Warnings    []types.Warning
	Sync        *writeback.Report
	Branch      string
	PullRequest string
}

// Engine applies proposal batches.
type Engine struct {
	store        *hierarchy.Store
	syncer       Syncer
	publisher    Publisher
	branchPrefix string
	log          zerolog.Logger
}

// NewEngine returns an Engine. syncer and publisher may be nil, which skips
// write-back and publishing.
func NewEngine(store *hierarchy.Store, syncer Syncer, publisher Publisher, branchPrefix string, logger zerolog.Logger) *Engine {
	if branchPrefix == "" {
		branchPrefix = defaultBranchPrefix
	}
	return &Engine{
		store:        store,
		syncer:       syncer,
		publisher:    publisher,
		branchPrefix: branchPrefix,
		log:          logger.With().Str("component", "proposal").Logger(),
	}
}

var errDryRun = errors.New("dry run")

// touchSet is an insertion-ordered set of node ids.
type touchSet struct {
	ids  []string
	seen map[string]bool
}

func (t *touchSet) add(id string) {
	if t.seen == nil {
		t.seen = make(map[string]bool)
	}
	if !t.seen[id] {
		t.seen[id] = true
		t.ids = append(t.ids, id)
	}
}

func (t *touchSet) remove(ids []string) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
		delete(t.seen, id)
	}
	kept := t.ids[:0]
	for _, id := range t.ids {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	t.ids = kept
}

// Apply runs proposals in order inside one transaction. Any failure rolls
// the whole batch back and is returned as a *types.BatchError naming the
// proposal. After a successful commit the touched nodes are synced and, when
// files changed, published; a publish failure is returned as a
// *types.PublishError alongside the committed Result.
func (e *Engine) Apply(ctx context.Context, proposals []types.Proposal, opts Options) (*Result, error) {
	result := &Result{DryRun: opts.DryRun}
	var touched touchSet

	err := e.store.Update(ctx, func(tx *hierarchy.Tx) error {
		for i := range proposals {
			p := proposals[i]
			p.Normalize()
			if err := e.applyOne(tx, p, result, &touched); err != nil {
				return &types.BatchError{Index: i, Action: p.Action, Err: err}
			}
		}
		if opts.DryRun {
			return errDryRun
		}
		return nil
	})
	result.Touched = touched.ids
	if err != nil && !errors.Is(err, errDryRun) {
		e.log.Warn().Err(err).Int("proposals", len(proposals)).Msg("batch rolled back")
		return nil, err
	}

	e.log.Info().
		Int("created", len(result.Created)).
		Int("updated", len(result.Updated)).
		Int("deleted", len(result.Deleted)).
		Bool("dry_run", opts.DryRun).
		Msg("batch applied")

	if opts.DryRun || opts.NoSync || e.syncer == nil || len(result.Touched) == 0 {
		return result, nil
	}

	report, err := e.syncer.SyncAll(ctx, result.Touched)
	if err != nil {
		return result, fmt.Errorf("syncing touched nodes: %w", err)
	}
	result.Sync = &report

	if opts.NoPublish || e.publisher == nil || len(report.Files) == 0 {
		return result, nil
	}
	return result, e.publish(ctx, proposals, result)
}

func (e *Engine) applyOne(tx *hierarchy.Tx, p types.Proposal, result *Result, touched *touchSet) error {
	if err := p.Validate(); err != nil {
		return err
	}

	switch p.Action {
	case types.ActionAdd:
		id, err := e.add(tx, p, result)
		if err != nil {
			return err
		}
		result.Created = append(result.Created, id)
		touched.add(id)

	case types.ActionUpdate:
		if err := e.update(tx, p, result); err != nil {
			return err
		}
		result.Updated = append(result.Updated, p.TargetNodeID)
		touched.add(p.TargetNodeID)

	case types.ActionDelete:
		removed, err := tx.DeleteNode(p.TargetNodeID)
		if err != nil {
			return err
		}
		result.Deleted = append(result.Deleted, removed...)
		result.Created = without(result.Created, removed)
		result.Updated = without(result.Updated, removed)
		touched.remove(removed)
	}
	return nil
}

// without returns ids minus any in removed, keeping order.
func without(ids, removed []string) []string {
	gone := make(map[string]bool, len(removed))
	for _, id := range removed {
		gone[id] = true
	}
	kept := ids[:0]
	for _, id := range ids {
		if !gone[id] {
			kept = append(kept, id)
		}
	}
	return kept
}

func (e *Engine) add(tx *hierarchy.Tx, p types.Proposal, result *Result) (string, error) {
	if _, err := tx.Node(p.ParentNodeID); err != nil {
		if types.IsNotFound(err) {
			return "", &types.NotFoundError{Kind: "parent", ID: p.ParentNodeID}
		}
		return "", err
	}

	order := 0
	if p.DisplayOrder != nil {
		order = *p.DisplayOrder
	} else {
		next, err := tx.NextDisplayOrder(p.ParentNodeID)
		if err != nil {
			return "", err
		}
		order = next
	}

	node := types.Node{
		Type:         p.NodeType,
		ParentID:     p.ParentNodeID,
		Title:        strings.TrimSpace(p.Title),
		NodeNumber:   strings.TrimSpace(p.NodeNumber),
		DisplayOrder: order,
	}
	if r := strings.TrimSpace(p.Rationale); r != "" {
		node.Metadata = map[string]string{types.MetaRationale: r}
	}

	content, comps := e.splitContent(p.NodeType, p.Content, result)
	node.Description = markdown.FirstParagraph(content)
	created, err := tx.CreateNode(node, content)
	if err != nil {
		return "", err
	}
	if err := setComponents(tx, created.ID, comps); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (e *Engine) update(tx *hierarchy.Tx, p types.Proposal, result *Result) error {
	n, err := tx.Node(p.TargetNodeID)
	if err != nil {
		return err
	}
	if p.NodeType != "" && p.NodeType != n.Type {
		return fmt.Errorf("%w: node %s is a %s, not a %s", types.ErrInvalidProposal, n.ID, n.Type, p.NodeType)
	}

	var fields hierarchy.NodeFields
	if title := strings.TrimSpace(p.Title); title != "" {
		fields.Title = &title
	}
	if number := strings.TrimSpace(p.NodeNumber); number != "" {
		fields.NodeNumber = &number
	}
	fields.DisplayOrder = p.DisplayOrder
	if _, err := tx.UpdateNodeFields(n.ID, fields); err != nil {
		return err
	}
	if r := strings.TrimSpace(p.Rationale); r != "" {
		if err := tx.SetMetadata(n.ID, map[string]string{types.MetaRationale: r}); err != nil {
			return err
		}
	}

	// A blank content field keeps the current text under a new version.
	content, comps := e.splitContent(n.Type, p.Content, result)
	if strings.TrimSpace(p.Content) == "" {
		if content, err = tx.LatestContent(n.ID); err != nil {
			return err
		}
	}
	if _, err := tx.UpdateNode(n.ID, content); err != nil {
		return err
	}
	return setComponents(tx, n.ID, comps)
}

// splitContent separates component sub-blocks from slide content. Other
// node types keep their content whole.
func (e *Engine) splitContent(t types.NodeType, content string, result *Result) (string, []markdown.ComponentBlock) {
	if t != types.NodeSlide {
		return strings.TrimSpace(content), nil
	}
	text, comps, warnings := markdown.SplitSlideBody(content)
	for _, w := range warnings {
		e.log.Warn().Str("kind", string(w.Kind)).Msg(w.Message)
	}
	result.Warnings = append(result.Warnings, warnings...)
	return text, comps
}

func setComponents(tx *hierarchy.Tx, slideID string, comps []markdown.ComponentBlock) error {
	for _, c := range comps {
		if _, err := tx.SetComponentContent(slideID, c.Type, c.Content); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) publish(ctx context.Context, proposals []types.Proposal, result *Result) error {
	branch := BranchName(e.branchPrefix, result.Touched)
	title := fmt.Sprintf("Course content update (%d proposals)", len(proposals))

	if err := e.publisher.CommitAndPush(ctx, branch, title); err != nil {
		return &types.PublishError{Op: "commit", Err: err}
	}
	result.Branch = branch

	url, err := e.publisher.CreatePR(ctx, branch, title, prBody(proposals, result))
	if err != nil {
		return &types.PublishError{Op: "pull-request", Err: err}
	}
	result.PullRequest = url
	return nil
}

// BranchName derives a branch from the touched ids, so publishing the same
// set twice targets the same branch.
func BranchName(prefix string, ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, "\n")))
	return prefix + "/" + hex.EncodeToString(sum[:])[:12]
}

func prBody(proposals []types.Proposal, result *Result) string {
	var b strings.Builder
	b.WriteString("Applied proposals:\n\n")
	for i, p := range proposals {
		target := p.TargetNodeID
		if target == "" {
			target = "under " + p.ParentNodeID
		}
		fmt.Fprintf(&b, "%d. %s %s %q (%s)", i+1, strings.ToUpper(string(p.Action)), strings.ToUpper(string(p.NodeType)), p.Title, target)
		if p.Rationale != "" {
			fmt.Fprintf(&b, ": %s", p.Rationale)
		}
		b.WriteString("\n")
	}
	if result.Sync != nil && len(result.Sync.Failed) > 0 {
		fmt.Fprintf(&b, "\n%d node(s) could not be written back:\n\n", len(result.Sync.Failed))
		for _, f := range result.Sync.Failed {
			fmt.Fprintf(&b, "- %v\n", f)
		}
	}
	return b.String()
}
