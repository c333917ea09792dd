// Package metadata persists per-branch facts under <repo-root>/.erk.
// The records outlive individual submissions: they link a branch to its
// planning issue and mark branches created from a learn plan.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	domainErrors "github.com/dagster-io/erk/internal/errors"
)

type BranchMeta struct {
	Branch      string `json:"branch"`
	IssueNumber int    `json:"issue_number,omitempty"`
	LearnPlan   bool   `json:"learn_plan,omitempty"`
}

type Store struct {
	root string
}

func NewStore(repoRoot string) *Store {
	return &Store{root: repoRoot}
}

// Load returns the metadata for branch, or nil when none has been recorded.
func (s *Store) Load(branch string) (*BranchMeta, error) {
	data, err := os.ReadFile(s.path(branch))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domainErrors.ErrMetadataRead.WithError(err)
	}

	var meta BranchMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, domainErrors.ErrMetadataRead.WithError(fmt.Errorf("decoding %s: %w", s.path(branch), err))
	}
	return &meta, nil
}

// Save writes the metadata record, creating the .erk directory when needed.
func (s *Store) Save(meta *BranchMeta) error {
	dir := filepath.Dir(s.path(meta.Branch))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return domainErrors.ErrMetadataWrite.WithError(err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return domainErrors.ErrMetadataWrite.WithError(err)
	}

	if err := os.WriteFile(s.path(meta.Branch), data, 0644); err != nil {
		return domainErrors.ErrMetadataWrite.WithError(err)
	}
	return nil
}

// HasLearnPlanMarker reports whether the branch was created from a learn
// plan, either via its metadata record or a marker file at the repo root.
func (s *Store) HasLearnPlanMarker(branch string) bool {
	if meta, err := s.Load(branch); err == nil && meta != nil && meta.LearnPlan {
		return true
	}
	_, err := os.Stat(filepath.Join(s.root, ".erk", "learn-plan"))
	return err == nil
}

// branch names may contain slashes, flatten them for the file name
func (s *Store) path(branch string) string {
	name := strings.ReplaceAll(branch, "/", "__") + ".json"
	return filepath.Join(s.root, ".erk", "branches", name)
}
