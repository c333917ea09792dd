package ports

import (
	"context"

	"github.com/dagster-io/erk/internal/models"
)

// Describer generates a PR title and body from a diff and its context.
type Describer interface {
	GenerateDescription(ctx context.Context, req models.DescriptionRequest) (models.DescriptionResult, error)
}
