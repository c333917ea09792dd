package pipeline

import (
	"context"
	"os"

	"github.com/dagster-io/erk/internal/logger"
	"github.com/dagster-io/erk/internal/models"
)

// LearnPlanLabel is attached to PRs whose branch originates from a learn plan.
const LearnPlanLabel = "learn-plan"

// FinalizePR writes the generated title and body (plus a rebuilt footer) to
// the PR, amends the local HEAD commit message, removes the diff artifact,
// and re-resolves the authoritative URLs returned to the caller.
func FinalizePR(ctx context.Context, gw *Gateways, state models.PipelineState) (models.PipelineState, *models.PipelineError) {
	if state.PRNumber == 0 {
		return state, models.NewPipelineError(PhaseFinalize, models.KindNoPRNumber,
			"no PR number survived to finalize; this should not happen")
	}

	issue := state.IssueNumber
	plansRepo := gw.PlansRepo
	if issue == nil {
		// an earlier run may have established a linkage this invocation's
		// metadata no longer carries; preserve it from the existing body
		if pr, err := gw.Host.GetPRByNumber(ctx, state.PRNumber); err == nil && pr != nil {
			preserved, preservedRepo := ExtractClosingReference(pr.Body)
			issue = preserved
			if plansRepo == "" {
				plansRepo = preservedRepo
			}
		}
	}

	title := state.Title
	if title == "" {
		title = defaultTitle(state.Branch)
	}

	footer := BuildFooter(state.PRNumber, issue, plansRepo)
	if err := gw.Host.UpdatePR(ctx, state.PRNumber, title, AppendFooter(state.Body, footer)); err != nil {
		return state, models.NewPipelineError(PhaseFinalize, models.KindGitHubOperationFailed, err.Error())
	}

	if gw.Metadata.HasLearnPlanMarker(state.Branch) {
		if err := gw.Host.AddLabelToPR(ctx, state.PRNumber, LearnPlanLabel); err != nil {
			logger.Warn(ctx, "could not attach learn-plan label", "pr_number", state.PRNumber, "error", err)
		}
	}

	// the commit message carries title+body but never the footer, which is
	// host-side only
	message := title
	if state.Body != "" {
		message = title + "\n\n" + state.Body
	}
	if err := gw.Repo.AmendCommitMessage(ctx, message); err != nil {
		return state, models.NewPipelineError(PhaseFinalize, models.KindGitOperationFailed, err.Error())
	}

	if state.DiffPath != "" {
		if err := os.Remove(state.DiffPath); err != nil && !os.IsNotExist(err) {
			logger.Warn(ctx, "could not remove diff artifact", "path", state.DiffPath, "error", err)
		}
	}

	if pr, err := gw.Host.GetPRByNumber(ctx, state.PRNumber); err == nil && pr != nil {
		state.PRURL = pr.URL
	}

	if state.UseStack && state.StackURL == "" {
		if err := gw.Stack.CheckAuth(ctx); err == nil {
			state.StackURL = gw.Stack.WebURL(gw.RepoID, state.PRNumber)
		}
	}

	state.Title = title
	return state, nil
}
