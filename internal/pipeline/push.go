package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	domainErrors "github.com/dagster-io/erk/internal/errors"
	"github.com/dagster-io/erk/internal/logger"
	"github.com/dagster-io/erk/internal/models"
	"github.com/dagster-io/erk/internal/ports"
)

// placeholderTitle is used when a PR must exist before the description is
// generated; finalize rewrites it.
func placeholderTitle(branch string) string {
	return fmt.Sprintf("WIP: %s", branch)
}

// PushAndCreatePR pushes the branch and ensures a PR exists for it. Two
// strategies converge on the same output shape (PR number, URL, base branch,
// was-created flag): the stack tool submits push+PR atomically when the
// branch qualifies, otherwise the core strategy drives git and the PR host
// directly.
func PushAndCreatePR(ctx context.Context, gw *Gateways, state models.PipelineState) (models.PipelineState, *models.PipelineError) {
	if state.UseStack && gw.Stack.ShouldEnhance(ctx, state.Branch) {
		return submitViaStack(ctx, gw, state)
	}
	return submitCore(ctx, gw, state)
}

func submitViaStack(ctx context.Context, gw *Gateways, state models.PipelineState) (models.PipelineState, *models.PipelineError) {
	existing, err := gw.Host.GetPRForBranch(ctx, state.Branch)
	if err != nil {
		logger.Debug(ctx, "could not check for existing PR before stack submit", "error", err)
	}

	submitErr := gw.Stack.Submit(ctx, ports.StackSubmitOptions{
		Publish: true,
		Restack: true,
		Quiet:   true,
		Force:   state.Force,
	})
	if submitErr != nil {
		return state, models.NewPipelineError(PhasePush, models.KindGraphiteSubmitFailed, submitErr.Error()).
			WithDetail("branch", state.Branch)
	}

	pr := lookupPRWithRetry(ctx, gw, state.Branch)
	if pr == nil {
		return state, models.NewPipelineError(PhasePush, models.KindPRNotFound,
			fmt.Sprintf("stack submit succeeded but no PR is visible for branch %s; "+
				"check the PR host manually or re-run in a moment", state.Branch)).
			WithDetail("branch", state.Branch)
	}

	state.PRNumber = pr.Number
	state.PRURL = pr.URL
	state.BaseBranch = pr.BaseBranch
	state.WasCreated = existing == nil
	state.StackURL = gw.Stack.WebURL(gw.RepoID, pr.Number)
	return state, nil
}

// lookupPRWithRetry polls the PR host for the branch's PR. The host is
// eventually consistent after an out-of-band submit, so a few retries with
// exponential backoff are needed before declaring it missing.
func lookupPRWithRetry(ctx context.Context, gw *Gateways, branch string) *models.PRInfo {
	var pr *models.PRInfo
	operation := func() error {
		found, err := gw.Host.GetPRForBranch(ctx, branch)
		if err != nil {
			return backoff.Permanent(err)
		}
		if found == nil {
			return fmt.Errorf("PR for %s not visible yet", branch)
		}
		pr = found
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = 10 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		logger.Debug(ctx, "PR lookup retries exhausted", "branch", branch, "error", err)
		return nil
	}
	return pr
}

func submitCore(ctx context.Context, gw *Gateways, state models.PipelineState) (models.PipelineState, *models.PipelineError) {
	if err := gw.Host.CheckAuth(ctx); err != nil {
		return state, models.NewPipelineError(PhasePush, models.KindGitHubAuthFailed, err.Error())
	}

	ahead, err := gw.Repo.CommitsAhead(ctx, state.ParentBranch)
	if err != nil {
		return state, models.NewPipelineError(PhasePush, models.KindGitOperationFailed, err.Error())
	}
	if ahead == 0 {
		return state, models.NewPipelineError(PhasePush, models.KindNoCommits,
			fmt.Sprintf("branch %s has no commits ahead of %s", state.Branch, state.ParentBranch)).
			WithDetail("branch", state.Branch).
			WithDetail("parent", state.ParentBranch)
	}

	if perr := reconcileDivergence(ctx, gw, state); perr != nil {
		return state, perr
	}

	if err := gw.Repo.Push(ctx, state.Branch, true, state.Force); err != nil {
		if errors.Is(err, domainErrors.ErrPushRejected) {
			// a rejection the divergence check did not anticipate
			return state, models.NewPipelineError(PhasePush, models.KindBranchDiverged, err.Error()).
				WithDetail("branch", state.Branch)
		}
		return state, models.NewPipelineError(PhasePush, models.KindGitOperationFailed, err.Error())
	}

	return ensurePR(ctx, gw, state)
}

// reconcileDivergence applies the rebase-then-recheck policy: being behind
// the remote triggers one rebase-pull; divergence that survives it is an
// error unless forced.
func reconcileDivergence(ctx context.Context, gw *Gateways, state models.PipelineState) *models.PipelineError {
	div, err := gw.Repo.DivergenceFromRemote(ctx, state.Branch)
	if err != nil {
		return models.NewPipelineError(PhasePush, models.KindGitOperationFailed, err.Error())
	}

	if div.Behind > 0 {
		logger.Debug(ctx, "branch behind remote, attempting rebase",
			"branch", state.Branch, "behind", div.Behind)
		if err := gw.Repo.PullRebase(ctx); err != nil {
			return models.NewPipelineError(PhasePush, models.KindBranchDiverged,
				fmt.Sprintf("branch %s is behind its remote and rebase failed: %v", state.Branch, err)).
				WithDetail("branch", state.Branch).
				WithDetail("behind", strconv.Itoa(div.Behind))
		}

		div, err = gw.Repo.DivergenceFromRemote(ctx, state.Branch)
		if err != nil {
			return models.NewPipelineError(PhasePush, models.KindGitOperationFailed, err.Error())
		}
	}

	if div.Behind > 0 && !state.Force {
		return models.NewPipelineError(PhasePush, models.KindBranchDiverged,
			fmt.Sprintf("branch %s is %d ahead and %d behind its remote after rebase; "+
				"rebase manually or re-run with --force", state.Branch, div.Ahead, div.Behind)).
			WithDetail("branch", state.Branch).
			WithDetail("ahead", strconv.Itoa(div.Ahead)).
			WithDetail("behind", strconv.Itoa(div.Behind))
	}
	return nil
}

// ensurePR looks up or creates the branch's PR and guarantees its body
// carries exactly one footer.
func ensurePR(ctx context.Context, gw *Gateways, state models.PipelineState) (models.PipelineState, *models.PipelineError) {
	state.BaseBranch = state.ParentBranch

	pr, err := gw.Host.GetPRForBranch(ctx, state.Branch)
	if err != nil {
		return state, models.NewPipelineError(PhasePush, models.KindGitHubOperationFailed, err.Error())
	}

	if pr == nil {
		// a stacked branch needs its parent's PR in place first
		if state.ParentBranch != state.TrunkBranch {
			parentPR, err := gw.Host.GetPRForBranch(ctx, state.ParentBranch)
			if err != nil {
				return state, models.NewPipelineError(PhasePush, models.KindGitHubOperationFailed, err.Error())
			}
			if parentPR == nil {
				return state, models.NewPipelineError(PhasePush, models.KindParentBranchNoPR,
					fmt.Sprintf("parent branch %s of %s has no PR; submit the stack instead of a single branch",
						state.ParentBranch, state.Branch)).
					WithDetail("branch", state.Branch).
					WithDetail("parent", state.ParentBranch)
			}
		}

		// The footer cannot reference the PR number before the PR exists, so
		// creation always writes it twice: placeholder number, then real one.
		initialBody := BuildFooter(0, state.IssueNumber, gw.PlansRepo)
		created, err := gw.Host.CreatePR(ctx, state.Branch, placeholderTitle(state.Branch), initialBody, state.BaseBranch)
		if err != nil {
			return state, models.NewPipelineError(PhasePush, models.KindGitHubOperationFailed, err.Error())
		}

		correctBody := BuildFooter(created.Number, state.IssueNumber, gw.PlansRepo)
		if err := gw.Host.UpdatePRBody(ctx, created.Number, correctBody); err != nil {
			return state, models.NewPipelineError(PhasePush, models.KindGitHubOperationFailed, err.Error())
		}

		state.PRNumber = created.Number
		state.PRURL = created.URL
		state.WasCreated = true
		return state, nil
	}

	if !HasFooter(pr.Body) {
		footer := BuildFooter(pr.Number, state.IssueNumber, gw.PlansRepo)
		if err := gw.Host.UpdatePRBody(ctx, pr.Number, AppendFooter(pr.Body, footer)); err != nil {
			return state, models.NewPipelineError(PhasePush, models.KindGitHubOperationFailed, err.Error())
		}
	}

	state.PRNumber = pr.Number
	state.PRURL = pr.URL
	state.WasCreated = false
	return state, nil
}
