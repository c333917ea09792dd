package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/dagster-io/erk/internal/logger"
	"github.com/dagster-io/erk/internal/models"
)

func defaultTitle(branch string) string {
	return fmt.Sprintf("Changes from %s", branch)
}

// GenerateDescription feeds the diff artifact and its context to the
// describer. Generator failure is fatal (ai_generation_failed); a
// stylistically empty title is not, it falls back to a fixed default.
func GenerateDescription(ctx context.Context, gw *Gateways, state models.PipelineState) (models.PipelineState, *models.PipelineError) {
	diff := ""
	if state.DiffPath != "" {
		data, err := os.ReadFile(state.DiffPath)
		if err != nil {
			return state, models.NewPipelineError(PhaseDescribe, models.KindGitOperationFailed,
				fmt.Sprintf("reading diff artifact: %v", err))
		}
		diff = string(data)
	}

	messages, err := gw.Repo.CommitMessagesSince(ctx, state.ParentBranch)
	if err != nil {
		logger.Warn(ctx, "could not collect commit messages", "error", err)
		messages = nil
	}

	result, err := gw.Describer.GenerateDescription(ctx, models.DescriptionRequest{
		Diff:           diff,
		Branch:         state.Branch,
		ParentBranch:   state.ParentBranch,
		CommitMessages: messages,
		Plan:           state.Plan,
	})
	if err != nil {
		return state, models.NewPipelineError(PhaseDescribe, models.KindAIGenerationFailed, err.Error())
	}

	state.Title = result.Title
	if state.Title == "" {
		state.Title = defaultTitle(state.Branch)
	}
	state.Body = result.Body
	return state, nil
}
