// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package proposal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/course-engine/pkg/types"
)

// Source supplies a batch of proposals. The engine does not care whether
// they come from a file, a generator, or a person.
type Source interface {
	Proposals(ctx context.Context) ([]types.Proposal, error)
}

// batchFile is the object form of a proposals document.
type batchFile struct {
	Proposals []types.Proposal `json:"proposals" yaml:"proposals"`
}

// FileSource reads proposals from a YAML or JSON file holding either a list
// or an object with a "proposals" key.
type FileSource struct {
	Path string
}

// Proposals implements Source.
func (s FileSource) Proposals(_ context.Context) ([]types.Proposal, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading proposals: %w", err)
	}
	var ps []types.Proposal
	if strings.EqualFold(filepath.Ext(s.Path), ".json") {
		ps, err = decodeJSON(data)
	} else {
		ps, err = decodeYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.Path, err)
	}
	return ps, nil
}

func decodeJSON(data []byte) ([]types.Proposal, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var ps []types.Proposal
		if err := json.Unmarshal(data, &ps); err != nil {
			return nil, err
		}
		return ps, nil
	}
	var f batchFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Proposals, nil
}

func decodeYAML(data []byte) ([]types.Proposal, error) {
	var ps []types.Proposal
	listErr := yaml.Unmarshal(data, &ps)
	if listErr == nil {
		return ps, nil
	}
	var f batchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, listErr
	}
	return f.Proposals, nil
}

// CommandSource runs an external generator through the shell and decodes
// the JSON proposals it prints on stdout.
type CommandSource struct {
	Command string
	Dir     string
	Env     []string
}

// Proposals implements Source.
func (s CommandSource) Proposals(ctx context.Context) ([]types.Proposal, error) {
	if strings.TrimSpace(s.Command) == "" {
		return nil, errors.New("generator command is empty")
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", s.Command)
	cmd.Dir = s.Dir
	if len(s.Env) > 0 {
		cmd.Env = append(os.Environ(), s.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("running generator: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("running generator: %w", err)
	}

	ps, err := decodeJSON(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("decoding generator output: %w", err)
	}
	return ps, nil
}
