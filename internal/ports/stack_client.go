package ports

import "context"

// StackSubmitOptions mirror the stack tool's submit flags.
type StackSubmitOptions struct {
	Publish bool
	Restack bool
	Quiet   bool
	Force   bool
}

// StackClient is the gateway to the optional stacked-branch tool. The tool
// owns the parent/child branch graph; the pipeline only queries and submits.
type StackClient interface {
	// ShouldEnhance is the predicate deciding whether the stack-first
	// submission strategy applies to branch.
	ShouldEnhance(ctx context.Context, branch string) bool
	// Submit pushes and creates/updates PRs for the whole stack. It returns
	// an error on genuine failure; "nothing to submit" is also an error and
	// is classified by the caller.
	Submit(ctx context.Context, opts StackSubmitOptions) error
	CheckAuth(ctx context.Context) error
	// TrackedBranches maps each tracked branch to its parent branch.
	TrackedBranches(ctx context.Context) (map[string]string, error)
	// WebURL computes the stack tool's web page for a PR.
	WebURL(repoID string, prNumber int) string
}
