// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish commits synced Markdown to a branch and opens a pull
// request for it, using the git and gh command-line tools.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/course-engine/pkg/types"
)

const (
	binGit = "git"
	binGH  = "gh"
)

// ExitError reports a command that ran and exited non-zero.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, dir string, env []string, name string, args ...string) (string, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.String(), &ExitError{
			Command: name + " " + strings.Join(args, " "),
			Code:    exitErr.ExitCode(),
			Stderr:  strings.TrimSpace(stderr.String()),
		}
	}
	return stdout.String(), err
}

// GitPublisher pushes branches with git and opens pull requests with gh.
type GitPublisher struct {
	cfg   types.PublishConfig
	token string
	exec  executor
	log   zerolog.Logger
}

// NewGitPublisher returns a publisher for the working tree cfg.RepoDir.
// token, when set, is passed to gh as GH_TOKEN.
func NewGitPublisher(cfg types.PublishConfig, token string, logger zerolog.Logger) *GitPublisher {
	return newGitPublisher(cfg, token, &osExecutor{}, logger)
}

func newGitPublisher(cfg types.PublishConfig, token string, exec executor, logger zerolog.Logger) *GitPublisher {
	if cfg.RepoDir == "" {
		cfg.RepoDir = "."
	}
	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}
	if cfg.BaseBranch == "" {
		cfg.BaseBranch = "main"
	}
	return &GitPublisher{
		cfg:   cfg,
		token: token,
		exec:  exec,
		log:   logger.With().Str("component", "publish").Logger(),
	}
}

// Available reports an error when git or gh is missing from PATH.
func (p *GitPublisher) Available() error {
	for _, bin := range []string{binGit, binGH} {
		if _, err := p.exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s not found on PATH: %w", bin, err)
		}
	}
	return nil
}

// CommitAndPush points branch at the current HEAD, commits every change in
// the working tree to it, and pushes it to the remote.
func (p *GitPublisher) CommitAndPush(ctx context.Context, branch, message string) error {
	steps := [][]string{
		{"checkout", "-B", branch},
		{"add", "-A"},
		{"commit", "-m", message},
		{"push", "-u", p.cfg.Remote, branch},
	}
	for _, args := range steps {
		if _, err := p.exec.Run(ctx, p.cfg.RepoDir, nil, binGit, args...); err != nil {
			return fmt.Errorf("git %s: %w", args[0], err)
		}
	}
	p.log.Info().Str("branch", branch).Str("remote", p.cfg.Remote).Msg("branch pushed")
	return nil
}

// CreatePR opens a pull request from branch into the base branch and
// returns its URL.
func (p *GitPublisher) CreatePR(ctx context.Context, branch, title, body string) (string, error) {
	var env []string
	if p.token != "" {
		env = []string{"GH_TOKEN=" + p.token}
	}
	out, err := p.exec.Run(ctx, p.cfg.RepoDir, env, binGH,
		"pr", "create",
		"--base", p.cfg.BaseBranch,
		"--head", branch,
		"--title", title,
		"--body", body,
	)
	if err != nil {
		return "", fmt.Errorf("gh pr create: %w", err)
	}

	url := lastLine(out)
	p.log.Info().Str("branch", branch).Str("url", url).Msg("pull request opened")
	return url, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
