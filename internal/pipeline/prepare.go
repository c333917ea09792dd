package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	domainErrors "github.com/dagster-io/erk/internal/errors"
	"github.com/dagster-io/erk/internal/logger"
	"github.com/dagster-io/erk/internal/metadata"
	"github.com/dagster-io/erk/internal/models"
)

// branch names like "feature/123-login" or "123-login" encode an issue number
var issueFromBranch = regexp.MustCompile(`(?:^|/)(\d+)-`)

// Prepare resolves the repository facts every later step depends on: repo
// root, current branch, trunk, parent branch, and the linked issue number.
//
// This is the only step allowed a self-healing side effect: when metadata is
// absent but the issue number can be inferred, it writes the missing record.
func Prepare(ctx context.Context, gw *Gateways, state models.PipelineState) (models.PipelineState, *models.PipelineError) {
	root, err := gw.Repo.RepoRoot(ctx)
	if err != nil {
		return state, models.NewPipelineError(PhasePrepare, models.KindGitOperationFailed, err.Error())
	}
	state.RepoRoot = root

	branch, err := gw.Repo.CurrentBranch(ctx)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNoBranch) {
			return state, models.NewPipelineError(PhasePrepare, models.KindNoBranch,
				"not on a branch (detached HEAD); check out a branch and re-run")
		}
		return state, models.NewPipelineError(PhasePrepare, models.KindGitOperationFailed, err.Error())
	}
	state.Branch = branch

	trunk, err := gw.Repo.DetectTrunkBranch(ctx)
	if err != nil {
		return state, models.NewPipelineError(PhasePrepare, models.KindGitOperationFailed, err.Error())
	}
	state.TrunkBranch = trunk

	// parent comes from the stack tool's tracked graph, falling back to trunk
	state.ParentBranch = trunk
	if tracked, err := gw.Stack.TrackedBranches(ctx); err == nil {
		if parent, ok := tracked[branch]; ok && parent != "" {
			state.ParentBranch = parent
		}
	} else {
		logger.Debug(ctx, "could not read tracked branches, using trunk as parent", "error", err)
	}

	return resolveIssueLinkage(ctx, gw, state)
}

func resolveIssueLinkage(ctx context.Context, gw *Gateways, state models.PipelineState) (models.PipelineState, *models.PipelineError) {
	meta, err := gw.Metadata.Load(state.Branch)
	if err != nil {
		return state, models.NewPipelineError(PhasePrepare, models.KindMetadataOperationFailed, err.Error())
	}

	inferred := inferIssueNumber(state.Branch, state.IssueNumber)

	if meta != nil && meta.IssueNumber != 0 {
		if inferred != 0 && inferred != meta.IssueNumber {
			return state, models.NewPipelineError(PhasePrepare, models.KindIssueLinkageMismatch,
				fmt.Sprintf("branch %s references issue #%d but its metadata records issue #%d",
					state.Branch, inferred, meta.IssueNumber)).
				WithDetail("branch", state.Branch).
				WithDetail("metadata_issue", strconv.Itoa(meta.IssueNumber)).
				WithDetail("referenced_issue", strconv.Itoa(inferred))
		}
		return state.WithIssueNumber(meta.IssueNumber), nil
	}

	if inferred != 0 {
		// one-time metadata repair
		repairErr := gw.Metadata.Save(&metadata.BranchMeta{Branch: state.Branch, IssueNumber: inferred})
		if repairErr != nil {
			logger.Warn(ctx, "could not repair branch metadata", "branch", state.Branch, "error", repairErr)
		} else {
			logger.Debug(ctx, "repaired missing branch metadata", "branch", state.Branch, "issue", inferred)
		}
		return state.WithIssueNumber(inferred), nil
	}

	return state, nil
}

// inferIssueNumber resolves the issue the branch is linked to, preferring an
// explicitly requested number over the branch-name convention.
func inferIssueNumber(branch string, requested *int) int {
	if requested != nil {
		return *requested
	}
	if m := issueFromBranch.FindStringSubmatch(branch); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}
