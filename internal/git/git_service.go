package git

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/dagster-io/erk/internal/errors"
	"github.com/dagster-io/erk/internal/models"
)

// GitService runs git against a fixed working directory. An empty workDir
// means the process working directory.
type GitService struct {
	workDir string
}

func NewGitService(workDir string) *GitService {
	return &GitService{workDir: workDir}
}

func (s *GitService) run(ctx context.Context, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if s.workDir != "" {
		cmd.Dir = s.workDir
	}
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// RepoRoot returns the absolute path to the root of the git repository.
func (s *GitService) RepoRoot(ctx context.Context) (string, error) {
	out, stderr, err := s.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", errors.ErrGetRepoRoot.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the checked-out branch name. A detached HEAD yields
// ErrNoBranch.
func (s *GitService) CurrentBranch(ctx context.Context) (string, error) {
	out, stderr, err := s.run(ctx, "branch", "--show-current")
	if err != nil {
		return "", errors.ErrGetBranch.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}

	branch := strings.TrimSpace(out)
	if branch == "" {
		return "", errors.ErrNoBranch
	}
	return branch, nil
}

// DetectTrunkBranch resolves the repository's main integration branch from
// the remote HEAD, falling back to main/master when the remote HEAD is unset.
func (s *GitService) DetectTrunkBranch(ctx context.Context) (string, error) {
	out, _, err := s.run(ctx, "symbolic-ref", "--short", "refs/remotes/origin/HEAD")
	if err == nil {
		// "origin/main" -> "main"
		ref := strings.TrimSpace(out)
		if name, ok := strings.CutPrefix(ref, "origin/"); ok && name != "" {
			return name, nil
		}
	}

	for _, candidate := range []string{"main", "master"} {
		if _, _, err := s.run(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.ErrDetectTrunk
}

// HasUncommittedChanges reports whether the working tree has staged,
// unstaged, or untracked changes.
func (s *GitService) HasUncommittedChanges(ctx context.Context) (bool, error) {
	out, stderr, err := s.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, errors.ErrGetBranch.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}
	return strings.TrimSpace(out) != "", nil
}

// StageAll stages every change in the working tree, including untracked files.
func (s *GitService) StageAll(ctx context.Context) error {
	_, stderr, err := s.run(ctx, "add", "--all")
	if err != nil {
		return errors.ErrStageAll.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}
	return nil
}

func (s *GitService) Commit(ctx context.Context, message string) error {
	_, stderr, err := s.run(ctx, "commit", "-m", message)
	if err != nil {
		return errors.ErrCreateCommit.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}
	return nil
}

// AmendCommitMessage rewrites the HEAD commit's message without touching its
// content.
func (s *GitService) AmendCommitMessage(ctx context.Context, message string) error {
	_, stderr, err := s.run(ctx, "commit", "--amend", "--only", "-m", message)
	if err != nil {
		return errors.ErrAmendCommit.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}
	return nil
}

// CommitsAhead counts commits on HEAD that are not reachable from base.
func (s *GitService) CommitsAhead(ctx context.Context, base string) (int, error) {
	out, stderr, err := s.run(ctx, "rev-list", "--count", base+"..HEAD")
	if err != nil {
		return 0, errors.ErrGetCommits.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}

	count, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, errors.ErrGetCommits.WithError(err)
	}
	return count, nil
}

// DivergenceFromRemote computes (ahead, behind) between branch and its
// remote tracking branch. A branch that has never been pushed has zero
// divergence.
func (s *GitService) DivergenceFromRemote(ctx context.Context, branch string) (models.Divergence, error) {
	remote := "origin/" + branch
	if _, _, err := s.run(ctx, "rev-parse", "--verify", "--quiet", remote); err != nil {
		return models.Divergence{}, nil
	}

	out, stderr, err := s.run(ctx, "rev-list", "--left-right", "--count", branch+"..."+remote)
	if err != nil {
		return models.Divergence{}, errors.ErrDivergence.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}

	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) != 2 {
		return models.Divergence{}, errors.ErrDivergence.WithError(fmt.Errorf("unexpected rev-list output: %q", out))
	}

	ahead, err := strconv.Atoi(fields[0])
	if err != nil {
		return models.Divergence{}, errors.ErrDivergence.WithError(err)
	}
	behind, err := strconv.Atoi(fields[1])
	if err != nil {
		return models.Divergence{}, errors.ErrDivergence.WithError(err)
	}

	return models.Divergence{Ahead: ahead, Behind: behind}, nil
}

// PullRebase rebases the current branch onto its remote counterpart.
func (s *GitService) PullRebase(ctx context.Context) error {
	_, stderr, err := s.run(ctx, "pull", "--rebase")
	if err != nil {
		return errors.ErrPullRebase.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}
	return nil
}

// Push pushes branch to origin. setUpstream configures tracking on first
// push; force uses --force-with-lease. A non-fast-forward rejection is
// reported as ErrPushRejected so callers can map it to a divergence failure.
func (s *GitService) Push(ctx context.Context, branch string, setUpstream, force bool) error {
	args := []string{"push"}
	if setUpstream {
		args = append(args, "--set-upstream")
	}
	if force {
		args = append(args, "--force-with-lease")
	}
	args = append(args, "origin", branch)

	_, stderr, err := s.run(ctx, args...)
	if err != nil {
		trimmed := strings.TrimSpace(stderr)
		if strings.Contains(trimmed, "non-fast-forward") || strings.Contains(trimmed, "[rejected]") {
			return errors.ErrPushRejected.WithError(err).WithContext("stderr", trimmed)
		}
		return errors.ErrPush.WithError(err).WithContext("stderr", trimmed)
	}
	return nil
}

// FetchBranch fetches branch from origin.
func (s *GitService) FetchBranch(ctx context.Context, branch string) error {
	_, stderr, err := s.run(ctx, "fetch", "origin", branch)
	if err != nil {
		return errors.ErrFetch.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}
	return nil
}

// CheckoutBranch checks out branch, creating it from origin/branch when it
// does not exist locally.
func (s *GitService) CheckoutBranch(ctx context.Context, branch string) error {
	if _, _, err := s.run(ctx, "rev-parse", "--verify", "refs/heads/"+branch); err == nil {
		_, stderr, err := s.run(ctx, "checkout", branch)
		if err != nil {
			return errors.ErrCheckout.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
		}
		return nil
	}

	_, stderr, err := s.run(ctx, "checkout", "-b", branch, "--track", "origin/"+branch)
	if err != nil {
		return errors.ErrCheckout.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}
	return nil
}

// DiffToBranch returns the diff of HEAD relative to the merge base with base
// (three-dot semantics, matching what the PR will show).
func (s *GitService) DiffToBranch(ctx context.Context, base string) (string, error) {
	out, stderr, err := s.run(ctx, "diff", base+"...HEAD")
	if err != nil {
		return "", errors.ErrGetDiff.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}
	return out, nil
}

// RemoteURL returns the origin URL.
func (s *GitService) RemoteURL(ctx context.Context) (string, error) {
	out, stderr, err := s.run(ctx, "remote", "get-url", "origin")
	if err != nil {
		return "", errors.ErrGetRepoURL.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}
	return strings.TrimSpace(out), nil
}

// RepoInfo parses the origin URL into owner, repository name, and provider.
func (s *GitService) RepoInfo(ctx context.Context) (string, string, string, error) {
	url, err := s.RemoteURL(ctx)
	if err != nil {
		return "", "", "", err
	}
	return parseRepoURL(url)
}

// CommitMessagesSince returns the subject lines of commits on HEAD since base,
// newest first.
func (s *GitService) CommitMessagesSince(ctx context.Context, base string) ([]string, error) {
	out, stderr, err := s.run(ctx, "log", base+"..HEAD", "--pretty=format:%s", "--no-merges")
	if err != nil {
		return nil, errors.ErrGetCommits.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}

	if strings.TrimSpace(out) == "" {
		return []string{}, nil
	}

	var messages []string
	for _, line := range strings.Split(out, "\n") {
		if line != "" {
			messages = append(messages, line)
		}
	}
	return messages, nil
}

// ListWorktrees reports the worktrees attached to this repository. The first
// entry git prints is the root worktree.
func (s *GitService) ListWorktrees(ctx context.Context) ([]models.WorktreeInfo, error) {
	out, stderr, err := s.run(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, errors.ErrWorktree.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}

	var worktrees []models.WorktreeInfo
	var current models.WorktreeInfo
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			current = models.WorktreeInfo{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "branch "):
			ref := strings.TrimPrefix(line, "branch ")
			current.Branch = strings.TrimPrefix(ref, "refs/heads/")
		case line == "":
			if current.Path != "" {
				current.IsRoot = len(worktrees) == 0
				worktrees = append(worktrees, current)
				current = models.WorktreeInfo{}
			}
		}
	}
	if current.Path != "" {
		current.IsRoot = len(worktrees) == 0
		worktrees = append(worktrees, current)
	}
	return worktrees, nil
}

// AddWorktree checks branch out into a new worktree at path.
func (s *GitService) AddWorktree(ctx context.Context, path, branch string) error {
	_, stderr, err := s.run(ctx, "worktree", "add", path, branch)
	if err != nil {
		return errors.ErrWorktree.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}
	return nil
}

// RemoveWorktree detaches a worktree directory from the repository.
func (s *GitService) RemoveWorktree(ctx context.Context, path string) error {
	_, stderr, err := s.run(ctx, "worktree", "remove", path)
	if err != nil {
		return errors.ErrWorktree.WithError(err).WithContext("stderr", strings.TrimSpace(stderr))
	}
	return nil
}

func parseRepoURL(url string) (string, string, string, error) {
	sshRegex := regexp.MustCompile(`git@([^:]+):([^/]+)/(.+)\.git$`)
	httpsRegex := regexp.MustCompile(`https://([^/]+)/([^/]+)/(.+?)(?:\.git)?$`)

	var matches []string
	if sshRegex.MatchString(url) {
		matches = sshRegex.FindStringSubmatch(url)
	} else if httpsRegex.MatchString(url) {
		matches = httpsRegex.FindStringSubmatch(url)
	}

	if len(matches) >= 4 {
		provider := detectProvider(matches[1])
		repoName := strings.TrimSuffix(matches[3], ".git")
		return matches[2], repoName, provider, nil
	}

	return "", "", "", errors.ErrExtractRepoInfo.WithContext("url", url)
}

func detectProvider(host string) string {
	if strings.Contains(host, "github") {
		return "github"
	}
	if strings.Contains(host, "gitlab") {
		return "gitlab"
	}
	return "unknown"
}
