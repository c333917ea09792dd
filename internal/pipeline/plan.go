package pipeline

import (
	"context"

	"github.com/dagster-io/erk/internal/logger"
	"github.com/dagster-io/erk/internal/models"
)

// FetchPlanContext looks up the linked planning issue, when one exists.
// Absence of a linked issue, or of the issue itself, is a normal outcome
// that leaves the context empty.
func FetchPlanContext(ctx context.Context, gw *Gateways, state models.PipelineState) (models.PipelineState, *models.PipelineError) {
	if state.IssueNumber == nil {
		return state, nil
	}

	issue, err := gw.Host.GetIssue(ctx, *state.IssueNumber)
	if err != nil {
		// plan context is an enrichment; a host hiccup must not kill the run
		logger.Warn(ctx, "could not fetch plan context",
			"issue", *state.IssueNumber, "error", err)
		return state, nil
	}
	if issue == nil {
		return state, nil
	}

	state.Plan = &models.PlanContext{
		IssueNumber: issue.Number,
		Title:       issue.Title,
		Body:        issue.Body,
	}
	return state, nil
}
