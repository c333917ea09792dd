package pipeline

import (
	"context"

	"github.com/dagster-io/erk/internal/models"
)

// WIPCommitMessage is the fixed placeholder used to checkpoint uncommitted
// work. The finalize step rewrites it with the generated description.
const WIPCommitMessage = "erk: work in progress"

// CommitWIP checkpoints any uncommitted changes into a single commit. A
// clean working tree is a valid path, not an error.
func CommitWIP(ctx context.Context, gw *Gateways, state models.PipelineState) (models.PipelineState, *models.PipelineError) {
	dirty, err := gw.Repo.HasUncommittedChanges(ctx)
	if err != nil {
		return state, models.NewPipelineError(PhaseCommitWIP, models.KindGitOperationFailed, err.Error())
	}
	if !dirty {
		return state, nil
	}

	if err := gw.Repo.StageAll(ctx); err != nil {
		return state, models.NewPipelineError(PhaseCommitWIP, models.KindGitOperationFailed, err.Error())
	}
	if err := gw.Repo.Commit(ctx, WIPCommitMessage); err != nil {
		return state, models.NewPipelineError(PhaseCommitWIP, models.KindGitOperationFailed, err.Error())
	}
	return state, nil
}
