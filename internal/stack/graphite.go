// Package stack adapts the Graphite CLI (gt) as the stacked-branch gateway.
// Graphite owns the parent/child branch graph; this package only queries its
// on-disk cache and shells out for submissions.
package stack

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dagster-io/erk/internal/errors"
	"github.com/dagster-io/erk/internal/logger"
	"github.com/dagster-io/erk/internal/ports"
)

var _ ports.StackClient = (*GraphiteClient)(nil)

type GraphiteClient struct {
	repoRoot string
	// userConfigPath is overridable for tests; empty means the default
	// ~/.config/graphite/user_config.
	userConfigPath string
}

func NewGraphiteClient(repoRoot string) *GraphiteClient {
	return &GraphiteClient{repoRoot: repoRoot}
}

func (g *GraphiteClient) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "gt", args...)
	cmd.Dir = g.repoRoot
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// ShouldEnhance reports whether the stack-first strategy applies: gt is
// installed and authenticated, and the branch is tracked by Graphite.
func (g *GraphiteClient) ShouldEnhance(ctx context.Context, branch string) bool {
	if _, err := exec.LookPath("gt"); err != nil {
		return false
	}
	if err := g.CheckAuth(ctx); err != nil {
		return false
	}

	tracked, err := g.TrackedBranches(ctx)
	if err != nil {
		logger.Debug(ctx, "could not read graphite tracked branches", "error", err)
		return false
	}
	_, ok := tracked[branch]
	return ok
}

// Submit runs gt submit for the current stack. The combined output is
// attached to the returned error so callers can classify benign failures
// such as "nothing to submit".
func (g *GraphiteClient) Submit(ctx context.Context, opts ports.StackSubmitOptions) error {
	args := []string{"submit", "--no-interactive"}
	if opts.Publish {
		args = append(args, "--publish")
	}
	if opts.Restack {
		args = append(args, "--restack")
	}
	if opts.Quiet {
		args = append(args, "--quiet")
	}
	if opts.Force {
		args = append(args, "--force")
	}

	out, err := g.run(ctx, args...)
	if err != nil {
		return errors.ErrGraphiteSubmit.WithError(err).WithContext("stderr", strings.TrimSpace(out))
	}
	return nil
}

// CheckAuth verifies that the Graphite CLI has a stored auth token.
func (g *GraphiteClient) CheckAuth(_ context.Context) error {
	path := g.userConfigPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.ErrGraphiteNotAuthenticated.WithError(err)
		}
		path = filepath.Join(home, ".config", "graphite", "user_config")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.ErrGraphiteNotAuthenticated.WithError(err)
	}

	var cfg struct {
		AuthToken string `json:"authToken"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil || cfg.AuthToken == "" {
		return errors.ErrGraphiteNotAuthenticated
	}
	return nil
}

// graphiteCache mirrors the shape of .git/.graphite_cache_persist: a list of
// [branchName, info] pairs.
type graphiteCache struct {
	Branches []json.RawMessage `json:"branches"`
}

type graphiteBranchInfo struct {
	ParentBranchName string `json:"parentBranchName"`
}

// TrackedBranches reads Graphite's persisted branch graph and maps each
// tracked branch to its parent. Trunk appears with an empty parent.
func (g *GraphiteClient) TrackedBranches(_ context.Context) (map[string]string, error) {
	path := filepath.Join(g.repoRoot, ".git", ".graphite_cache_persist")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading graphite cache: %w", err)
	}

	var cache graphiteCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("decoding graphite cache: %w", err)
	}

	relationships := make(map[string]string, len(cache.Branches))
	for _, entry := range cache.Branches {
		var pair []json.RawMessage
		if err := json.Unmarshal(entry, &pair); err != nil || len(pair) != 2 {
			continue
		}
		var name string
		if err := json.Unmarshal(pair[0], &name); err != nil {
			continue
		}
		var info graphiteBranchInfo
		if err := json.Unmarshal(pair[1], &info); err != nil {
			continue
		}
		relationships[name] = info.ParentBranchName
	}
	return relationships, nil
}

// WebURL computes the Graphite web page for a PR. repoID is "owner/repo".
func (g *GraphiteClient) WebURL(repoID string, prNumber int) string {
	return fmt.Sprintf("https://app.graphite.dev/github/pr/%s/%d", repoID, prNumber)
}

// IsNothingToSubmit classifies gt's "nothing to submit" failure, which the
// pipeline treats as an already-up-to-date no-op.
func IsNothingToSubmit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "nothing to submit")
}
