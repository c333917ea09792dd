package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeAI            ErrorType = "AI"
	TypeVCS           ErrorType = "VCS"
	TypeGit           ErrorType = "GIT"
	TypeStack         ErrorType = "STACK"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if stderr, ok := e.Context["stderr"].(string); ok && stderr != "" {
			msg += fmt.Sprintf(" - %s", stderr)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches derived copies against their sentinel: the builders return new
// values, so identity comparison alone would never match.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// Git errors
var (
	ErrNoBranch = NewAppError(TypeGit, "No branch detected (detached HEAD)", nil).
			WithSuggestion("Check out a branch first: git checkout -b <branch-name>")

	ErrGetBranch = NewAppError(TypeGit, "Failed to get current branch", nil).
			WithSuggestion("Make sure you are in a git repository: git status")

	ErrGetRepoRoot = NewAppError(TypeGit, "Failed to get repository root", nil).
			WithSuggestion("Make sure you are inside a git repository")

	ErrGetRepoURL = NewAppError(TypeGit, "Failed to get repository URL", nil).
			WithSuggestion("Add a remote: git remote add origin <url>")

	ErrDetectTrunk = NewAppError(TypeGit, "Failed to detect trunk branch", nil).
			WithSuggestion("Set the remote HEAD: git remote set-head origin --auto")

	ErrStageAll = NewAppError(TypeGit, "Failed to stage changes", nil).
			WithSuggestion("Check file permissions and repository state: git status")

	ErrCreateCommit = NewAppError(TypeGit, "Failed to create commit", nil).
			WithSuggestion("Ensure git user is configured:\n   git config --global user.name \"Your Name\"\n   git config --global user.email \"your@email.com\"")

	ErrAmendCommit = NewAppError(TypeGit, "Failed to amend commit message", nil)

	ErrGetCommits = NewAppError(TypeGit, "Failed to get commits", nil).
			WithSuggestion("Make sure you have commits in your repository: git log")

	ErrGetDiff = NewAppError(TypeGit, "Failed to compute diff", nil)

	ErrDivergence = NewAppError(TypeGit, "Failed to compute divergence from remote", nil).
			WithSuggestion("Fetch the remote first: git fetch origin")

	ErrPullRebase = NewAppError(TypeGit, "Failed to pull with rebase", nil).
			WithSuggestion("Resolve conflicts manually, then re-run")

	ErrPush = NewAppError(TypeGit, "Failed to push to remote", nil).
		WithSuggestion("Verify remote is configured: git remote -v")

	ErrPushRejected = NewAppError(TypeGit, "Push rejected by remote (non-fast-forward)", nil).
			WithSuggestion("Rebase onto the remote branch or re-run with --force")

	ErrFetch = NewAppError(TypeGit, "Failed to fetch from remote", nil).
		WithSuggestion("Verify remote is configured: git remote -v")

	ErrCheckout = NewAppError(TypeGit, "Failed to check out branch", nil).
			WithSuggestion("Commit or stash local changes first")

	ErrExtractRepoInfo = NewAppError(TypeGit, "Failed to extract repository info", nil)

	ErrWorktree = NewAppError(TypeGit, "Failed to inspect worktrees", nil)
)

// Configuration errors
var (
	ErrAPIKeyMissing = NewAppError(TypeConfiguration, "AI API key is missing", nil).
				WithSuggestion("Run: erk config init")

	ErrTokenMissing = NewAppError(TypeConfiguration, "GitHub token is missing", nil).
			WithSuggestion("Configure a token: erk config init")

	ErrConfigMissing = NewAppError(TypeConfiguration, "Configuration is missing", nil).
				WithSuggestion("Initialize configuration: erk config init")
)

// VCS errors
var (
	ErrGitHubTokenInvalid = NewAppError(TypeVCS, "GitHub token is invalid or expired", nil).
				WithSuggestion("Generate a new token at: https://github.com/settings/tokens\nThen run: erk config init")

	ErrGitHubInsufficientPerms = NewAppError(TypeVCS, "GitHub token has insufficient permissions", nil).
					WithSuggestion("Token needs 'repo' scope.\nRegenerate at: https://github.com/settings/tokens")

	ErrGitHubRateLimit = NewAppError(TypeVCS, "GitHub API rate limit exceeded", nil).
				WithSuggestion("Wait a few minutes or use a personal access token for higher limits")

	ErrRepositoryNotFound = NewAppError(TypeVCS, "repository not found", nil).
				WithSuggestion("Check repository URL and access permissions")
)

// Stack tool errors
var (
	ErrGraphiteNotInstalled = NewAppError(TypeStack, "Graphite CLI not found", nil).
				WithSuggestion("Install it: npm install -g @withgraphite/graphite-cli")

	ErrGraphiteNotAuthenticated = NewAppError(TypeStack, "Graphite CLI is not authenticated", nil).
					WithSuggestion("Authenticate with: gt auth --token <token>")

	ErrGraphiteSubmit = NewAppError(TypeStack, "Graphite submit failed", nil)
)

// AI errors
var (
	ErrAIGeneration = NewAppError(TypeAI, "AI generation failed", nil).
			WithSuggestion("Try again or check your API key configuration")

	ErrInvalidAIOutput = NewAppError(TypeAI, "invalid AI output format", nil).
				WithSuggestion("This is likely a temporary issue, please try again")

	ErrGeminiAPIKeyInvalid = NewAppError(TypeAI, "Gemini API key is invalid", nil).
				WithSuggestion("Get a valid API key at: https://makersuite.google.com/app/apikey\nThen run: erk config init")
)

// Metadata errors
var (
	ErrMetadataRead = NewAppError(TypeInternal, "Failed to read branch metadata", nil).
			WithSuggestion("Check the .erk directory in your repository root")

	ErrMetadataWrite = NewAppError(TypeInternal, "Failed to write branch metadata", nil)
)
