package ports

import (
	"context"

	"github.com/dagster-io/erk/internal/models"
)

// GitService is the repository gateway: branch, commit, remote, status, and
// rebase operations against a working tree.
type GitService interface {
	RepoRoot(ctx context.Context) (string, error)
	CurrentBranch(ctx context.Context) (string, error)
	DetectTrunkBranch(ctx context.Context) (string, error)
	HasUncommittedChanges(ctx context.Context) (bool, error)
	StageAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	AmendCommitMessage(ctx context.Context, message string) error
	CommitsAhead(ctx context.Context, base string) (int, error)
	DivergenceFromRemote(ctx context.Context, branch string) (models.Divergence, error)
	PullRebase(ctx context.Context) error
	Push(ctx context.Context, branch string, setUpstream, force bool) error
	FetchBranch(ctx context.Context, branch string) error
	CheckoutBranch(ctx context.Context, branch string) error
	DiffToBranch(ctx context.Context, base string) (string, error)
	RemoteURL(ctx context.Context) (string, error)
	CommitMessagesSince(ctx context.Context, base string) ([]string, error)
	ListWorktrees(ctx context.Context) ([]models.WorktreeInfo, error)
	AddWorktree(ctx context.Context, path, branch string) error
	RemoveWorktree(ctx context.Context, path string) error
}
