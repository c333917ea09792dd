package models

type (
	// PRInfo is the pull-request shape shared by both submission strategies.
	PRInfo struct {
		Number     int
		URL        string
		Title      string
		Body       string
		BaseBranch string
		HeadBranch string
		State      string
	}

	// Issue is a hosted issue used as plan context for a branch.
	Issue struct {
		Number int
		Title  string
		Body   string
		State  string
	}

	// Commit represents a single commit message on a branch.
	Commit struct {
		Message string
	}
)

// DescriptionRequest is the contract fed to the description generator.
type DescriptionRequest struct {
	Diff           string
	Branch         string
	ParentBranch   string
	CommitMessages []string
	Plan           *PlanContext
}

// DescriptionResult is what the generator returns on success.
type DescriptionResult struct {
	Title string
	Body  string
}
