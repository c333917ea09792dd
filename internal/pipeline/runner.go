// Package pipeline implements the branch submission workflow: an ordered
// list of steps that takes a local branch through commit normalization,
// push, PR creation or update, AI description generation, and optional
// stack-tool integration.
//
// Each step consumes an immutable state value and returns either an updated
// copy or a typed error; the runner short-circuits on the first error and
// performs no side effects of its own.
package pipeline

import (
	"context"

	"github.com/dagster-io/erk/internal/logger"
	"github.com/dagster-io/erk/internal/models"
)

// Phase names, used as the Phase of any PipelineError a step returns.
const (
	PhasePrepare     = "prepare"
	PhaseCommitWIP   = "commit_wip"
	PhasePush        = "push_and_create_pr"
	PhaseExtractDiff = "extract_diff"
	PhaseFetchPlan   = "fetch_plan_context"
	PhaseDescribe    = "generate_description"
	PhaseEnhance     = "enhance_with_stack_tool"
	PhaseFinalize    = "finalize_pr"
)

type StepFunc func(ctx context.Context, gw *Gateways, state models.PipelineState) (models.PipelineState, *models.PipelineError)

type Step struct {
	Name string
	Run  StepFunc
}

// Steps returns the pipeline's fixed step order.
func Steps() []Step {
	return []Step{
		{PhasePrepare, Prepare},
		{PhaseCommitWIP, CommitWIP},
		{PhasePush, PushAndCreatePR},
		{PhaseExtractDiff, ExtractDiff},
		{PhaseFetchPlan, FetchPlanContext},
		{PhaseDescribe, GenerateDescription},
		{PhaseEnhance, EnhanceWithStackTool},
		{PhaseFinalize, FinalizePR},
	}
}

// Run executes the pipeline. On error, the state as of the failing step's
// input is returned alongside the error; retry is a caller concern.
func Run(ctx context.Context, gw *Gateways, initial models.PipelineState) (models.PipelineState, *models.PipelineError) {
	state := initial
	for _, step := range Steps() {
		logger.Debug(ctx, "running pipeline step", "step", step.Name, "branch", state.Branch)

		next, perr := step.Run(ctx, gw, state)
		if perr != nil {
			logger.Debug(ctx, "pipeline step failed",
				"step", step.Name,
				"kind", string(perr.Kind),
				"error", perr.Message)
			return state, perr
		}
		state = next
	}
	return state, nil
}
