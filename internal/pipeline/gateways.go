package pipeline

import (
	"github.com/dagster-io/erk/internal/metadata"
	"github.com/dagster-io/erk/internal/ports"
)

// MetadataStore is the slice of the branch metadata store the pipeline uses.
type MetadataStore interface {
	Load(branch string) (*metadata.BranchMeta, error)
	Save(meta *metadata.BranchMeta) error
	HasLearnPlanMarker(branch string) bool
}

// Gateways bundles the external collaborators a pipeline run talks to. All
// side effects happen through these; the runner itself performs none.
type Gateways struct {
	Repo      ports.GitService
	Host      ports.VCSClient
	Stack     ports.StackClient
	Describer ports.Describer
	Metadata  MetadataStore

	// RepoID is "owner/repo", used for stack-tool web URLs.
	RepoID string
	// PlansRepo is the optional plans-repository pointer written into footers.
	PlansRepo string
	// ScratchDir hosts session-scoped diff artifacts; empty means os.TempDir().
	ScratchDir string
	// MaxDiffBytes bounds the extracted diff fed to the describer.
	MaxDiffBytes int
}
