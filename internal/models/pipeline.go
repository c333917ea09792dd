package models

// ErrorKind is the machine-readable category of a pipeline failure.
type ErrorKind string

const (
	KindNoBranch             ErrorKind = "no_branch"
	KindIssueLinkageMismatch ErrorKind = "issue_linkage_mismatch"
	KindGraphiteSubmitFailed ErrorKind = "graphite_submit_failed"
	KindPRNotFound           ErrorKind = "pr_not_found"
	KindGitHubAuthFailed     ErrorKind = "github_auth_failed"
	KindNoCommits            ErrorKind = "no_commits"
	KindBranchDiverged       ErrorKind = "branch_diverged"
	KindParentBranchNoPR     ErrorKind = "parent_branch_no_pr"
	KindNoBaseBranch         ErrorKind = "no_base_branch"
	KindAIGenerationFailed   ErrorKind = "ai_generation_failed"
	KindNoPRNumber           ErrorKind = "no_pr_number"

	// Kinds for unexpected gateway failures outside the contract-defined
	// failure modes above.
	KindGitOperationFailed      ErrorKind = "git_operation_failed"
	KindGitHubOperationFailed   ErrorKind = "github_operation_failed"
	KindMetadataOperationFailed ErrorKind = "metadata_operation_failed"
)

// PipelineError is the typed failure value returned by a pipeline step.
// Once a step returns one, no further steps run.
type PipelineError struct {
	Phase   string
	Kind    ErrorKind
	Message string
	Details map[string]string
}

func (e *PipelineError) Error() string {
	return string(e.Kind) + " during " + e.Phase + ": " + e.Message
}

// NewPipelineError builds a PipelineError. Details key-value pairs can be
// attached afterwards with WithDetail.
func NewPipelineError(phase string, kind ErrorKind, message string) *PipelineError {
	return &PipelineError{
		Phase:   phase,
		Kind:    kind,
		Message: message,
		Details: map[string]string{},
	}
}

func (e *PipelineError) WithDetail(key, value string) *PipelineError {
	e.Details[key] = value
	return e
}

// PipelineState is the immutable record threaded through the submission
// pipeline. Steps receive it by value and return an updated copy; a
// previously returned state is never mutated in place.
type PipelineState struct {
	WorkingDir   string
	RepoRoot     string
	Branch       string
	ParentBranch string
	TrunkBranch  string

	UseStack bool
	Force    bool

	SessionID   string
	IssueNumber *int

	PRNumber   int
	PRURL      string
	WasCreated bool
	BaseBranch string
	StackURL   string

	DiffPath string
	Plan     *PlanContext

	Title string
	Body  string
}

// WithIssueNumber returns a copy of the state carrying the given issue number.
func (s PipelineState) WithIssueNumber(n int) PipelineState {
	s.IssueNumber = &n
	return s
}

// Divergence is the commit-count relationship between a local branch and its
// remote tracking counterpart.
type Divergence struct {
	Ahead  int
	Behind int
}

// Diverged reports whether the branch is behind its remote counterpart.
func (d Divergence) Diverged() bool {
	return d.Behind > 0
}

// BranchRelationship maps a branch to its parent in a stacking hierarchy.
// Relationships are repository-level facts owned by the stack tool, not by
// any single pipeline run.
type BranchRelationship struct {
	Branch string
	Parent string
}

// WorktreeInfo describes a git worktree as reported by the repository
// gateway, which has exclusive ownership of its lifecycle.
type WorktreeInfo struct {
	Path   string
	Branch string
	IsRoot bool
}

// PlanContext is optional linked planning content used to enrich generated
// PR descriptions. Absence is a normal outcome, not an error.
type PlanContext struct {
	IssueNumber int
	Title       string
	Body        string
}
