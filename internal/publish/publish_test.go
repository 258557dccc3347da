// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pdiddy/course-engine/pkg/types"
)

// mockExecutor records calls and fails the commands listed in failing.
type mockExecutor struct {
	availableBins map[string]bool
	failing       map[string]error // "bin subcommand" -> error
	stdout        map[string]string
	calls         []string
	envs          [][]string
	dirs          []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(_ context.Context, dir string, env []string, name string, args ...string) (string, error) {
	call := name + " " + strings.Join(args, " ")
	m.calls = append(m.calls, call)
	m.envs = append(m.envs, env)
	m.dirs = append(m.dirs, dir)

	key := name + " " + args[0]
	if err, ok := m.failing[key]; ok {
		return "", err
	}
	return m.stdout[key], nil
}

func TestCommitAndPush(t *testing.T) {
	m := &mockExecutor{}
	p := newGitPublisher(types.PublishConfig{RepoDir: "/repo", Remote: "upstream"}, "", m, zerolog.Nop())

	if err := p.CommitAndPush(context.Background(), "content-sync/abc", "Sync course content"); err != nil {
		t.Fatalf("CommitAndPush: %v", err)
	}

	want := []string{
		"git checkout -B content-sync/abc",
		"git add -A",
		"git commit -m Sync course content",
		"git push -u upstream content-sync/abc",
	}
	if strings.Join(m.calls, "\n") != strings.Join(want, "\n") {
		t.Errorf("calls =\n%s\nwant\n%s", strings.Join(m.calls, "\n"), strings.Join(want, "\n"))
	}
	for _, d := range m.dirs {
		if d != "/repo" {
			t.Errorf("command ran in %q, want /repo", d)
		}
	}
}

func TestCommitAndPushStopsAtFirstFailure(t *testing.T) {
	exitErr := &ExitError{Command: "git commit", Code: 1, Stderr: "nothing to commit"}
	m := &mockExecutor{failing: map[string]error{"git commit": exitErr}}
	p := newGitPublisher(types.PublishConfig{}, "", m, zerolog.Nop())

	err := p.CommitAndPush(context.Background(), "b", "msg")
	var got *ExitError
	if !errors.As(err, &got) {
		t.Fatalf("want *ExitError, got %v", err)
	}
	if got.Stderr != "nothing to commit" {
		t.Errorf("Stderr = %q", got.Stderr)
	}
	if len(m.calls) != 3 {
		t.Errorf("ran %d commands, want 3 (push must not run)", len(m.calls))
	}
}

func TestCreatePR(t *testing.T) {
	m := &mockExecutor{stdout: map[string]string{
		"gh pr": "Creating pull request for b into main\n\nhttps://github.com/o/r/pull/7\n",
	}}
	p := newGitPublisher(types.PublishConfig{}, "ghp_token", m, zerolog.Nop())

	url, err := p.CreatePR(context.Background(), "b", "Title", "Body")
	if err != nil {
		t.Fatalf("CreatePR: %v", err)
	}
	if url != "https://github.com/o/r/pull/7" {
		t.Errorf("url = %q", url)
	}
	if want := "gh pr create --base main --head b --title Title --body Body"; m.calls[0] != want {
		t.Errorf("call = %q, want %q", m.calls[0], want)
	}
	if len(m.envs[0]) != 1 || m.envs[0][0] != "GH_TOKEN=ghp_token" {
		t.Errorf("env = %v, want GH_TOKEN", m.envs[0])
	}
	if m.dirs[0] != "." {
		t.Errorf("dir = %q, want default .", m.dirs[0])
	}
}

func TestCreatePRFailure(t *testing.T) {
	m := &mockExecutor{failing: map[string]error{"gh pr": &ExitError{Command: "gh pr create", Code: 4, Stderr: "auth required"}}}
	p := newGitPublisher(types.PublishConfig{}, "", m, zerolog.Nop())

	_, err := p.CreatePR(context.Background(), "b", "t", "b")
	if err == nil || !strings.Contains(err.Error(), "auth required") {
		t.Errorf("error = %v, want stderr in message", err)
	}
	if m.envs[0] != nil {
		t.Errorf("no token should mean no extra env, got %v", m.envs[0])
	}
}

func TestAvailable(t *testing.T) {
	tests := []struct {
		name    string
		bins    map[string]bool
		wantErr string
	}{
		{"both present", map[string]bool{"git": true, "gh": true}, ""},
		{"gh missing", map[string]bool{"git": true}, "gh not found"},
		{"git missing", map[string]bool{"gh": true}, "git not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newGitPublisher(types.PublishConfig{}, "", &mockExecutor{availableBins: tt.bins}, zerolog.Nop())
			err := p.Available()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestExitErrorMessage(t *testing.T) {
	e := &ExitError{Command: "git push", Code: 128, Stderr: "rejected"}
	if got := e.Error(); got != "git push exited with status 128: rejected" {
		t.Errorf("Error() = %q", got)
	}
}
