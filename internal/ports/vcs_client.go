package ports

import (
	"context"

	"github.com/dagster-io/erk/internal/models"
)

// VCSClient is the PR host gateway: pull-request lifecycle operations
// against a hosted code-review system.
type VCSClient interface {
	// CheckAuth verifies the client can talk to the host as an
	// authenticated user.
	CheckAuth(ctx context.Context) error
	// GetPRForBranch returns the open PR whose head is branch, or (nil, nil)
	// when none exists.
	GetPRForBranch(ctx context.Context, branch string) (*models.PRInfo, error)
	GetPRByNumber(ctx context.Context, number int) (*models.PRInfo, error)
	CreatePR(ctx context.Context, branch, title, body, base string) (*models.PRInfo, error)
	UpdatePRBody(ctx context.Context, number int, body string) error
	UpdatePR(ctx context.Context, number int, title, body string) error
	AddLabelToPR(ctx context.Context, number int, label string) error
	// GetIssue fetches a hosted issue, used as plan context. Returns
	// (nil, nil) when the issue does not exist.
	GetIssue(ctx context.Context, number int) (*models.Issue, error)
}
