package pipeline

import (
	"context"

	"github.com/dagster-io/erk/internal/logger"
	"github.com/dagster-io/erk/internal/models"
	"github.com/dagster-io/erk/internal/ports"
	"github.com/dagster-io/erk/internal/stack"
)

// EnhanceWithStackTool submits the stack after a core-strategy run so the
// stack tool's view stays current. It is strictly an enhancement: every
// failure path here skips or warns, never failing a submission that already
// succeeded. A stack URL already in state means the stack-first strategy ran
// and there is nothing left to do.
func EnhanceWithStackTool(ctx context.Context, gw *Gateways, state models.PipelineState) (models.PipelineState, *models.PipelineError) {
	if state.StackURL != "" {
		return state, nil
	}
	if !state.UseStack {
		return state, nil
	}

	if err := gw.Stack.CheckAuth(ctx); err != nil {
		logger.Debug(ctx, "stack tool not authenticated, skipping enhancement", "error", err)
		return state, nil
	}

	tracked, err := gw.Stack.TrackedBranches(ctx)
	if err != nil {
		logger.Debug(ctx, "could not read tracked branches, skipping enhancement", "error", err)
		return state, nil
	}
	if _, ok := tracked[state.Branch]; !ok {
		logger.Debug(ctx, "branch not tracked by stack tool, skipping enhancement", "branch", state.Branch)
		return state, nil
	}

	submitErr := gw.Stack.Submit(ctx, ports.StackSubmitOptions{
		Publish: true,
		Quiet:   true,
		Force:   state.Force,
	})
	if submitErr != nil {
		if stack.IsNothingToSubmit(submitErr) {
			// already up to date
			return state, nil
		}
		logger.Warn(ctx, "stack tool enhancement failed", "branch", state.Branch, "error", submitErr)
		return state, nil
	}

	state.StackURL = gw.Stack.WebURL(gw.RepoID, state.PRNumber)
	return state, nil
}
