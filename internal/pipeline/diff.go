package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dagster-io/erk/internal/logger"
	"github.com/dagster-io/erk/internal/models"
)

const defaultMaxDiffBytes = 200_000

// generated and lock files carry no signal for a reviewer-facing description
var generatedFilePatterns = []string{
	"go.sum",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"Cargo.lock",
	"poetry.lock",
	"uv.lock",
	"Gemfile.lock",
}

var generatedFileSuffixes = []string{
	".pb.go",
	"_generated.go",
	".min.js",
	".min.css",
}

var generatedPathPrefixes = []string{
	"vendor/",
	"node_modules/",
	"dist/",
}

// ExtractDiff computes the branch's diff against its base, strips generated
// files, bounds its size, and persists it as a session-scoped artifact for
// the description step.
func ExtractDiff(ctx context.Context, gw *Gateways, state models.PipelineState) (models.PipelineState, *models.PipelineError) {
	if state.BaseBranch == "" {
		return state, models.NewPipelineError(PhaseExtractDiff, models.KindNoBaseBranch,
			"no base branch resolved; this should not happen after push_and_create_pr")
	}

	diff, err := gw.Repo.DiffToBranch(ctx, state.BaseBranch)
	if err != nil {
		return state, models.NewPipelineError(PhaseExtractDiff, models.KindGitOperationFailed, err.Error())
	}

	filtered := FilterGeneratedFiles(diff)

	maxBytes := gw.MaxDiffBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxDiffBytes
	}
	bounded, truncated := TruncateDiff(filtered, maxBytes)
	if truncated {
		logger.Debug(ctx, "diff truncated for description generation",
			"branch", state.Branch, "max_bytes", maxBytes)
	}

	path, writeErr := writeDiffArtifact(gw.ScratchDir, state.SessionID, bounded)
	if writeErr != nil {
		return state, models.NewPipelineError(PhaseExtractDiff, models.KindGitOperationFailed, writeErr.Error())
	}

	state.DiffPath = path
	return state, nil
}

// FilterGeneratedFiles removes per-file sections for generated and lock
// files from a unified diff. Pure text filtering; unknown sections pass
// through untouched.
func FilterGeneratedFiles(diff string) string {
	if diff == "" {
		return diff
	}

	var out strings.Builder
	for _, section := range splitDiffSections(diff) {
		if isGeneratedSection(section) {
			continue
		}
		out.WriteString(section)
	}
	return out.String()
}

// splitDiffSections splits a unified diff into per-file chunks, each
// beginning with its "diff --git" header. A leading non-header chunk (if
// any) is preserved as-is.
func splitDiffSections(diff string) []string {
	const header = "diff --git "

	var sections []string
	remaining := diff
	for {
		idx := strings.Index(remaining[1:], "\n"+header)
		if idx < 0 {
			sections = append(sections, remaining)
			return sections
		}
		cut := idx + 2 // past the leading offset and the newline
		sections = append(sections, remaining[:cut])
		remaining = remaining[cut:]
	}
}

func isGeneratedSection(section string) bool {
	firstLine, _, _ := strings.Cut(section, "\n")
	if !strings.HasPrefix(firstLine, "diff --git ") {
		return false
	}

	// header shape: diff --git a/<path> b/<path>
	fields := strings.Fields(firstLine)
	if len(fields) < 4 {
		return false
	}
	path := strings.TrimPrefix(fields[3], "b/")
	base := filepath.Base(path)

	for _, name := range generatedFilePatterns {
		if base == name {
			return true
		}
	}
	for _, suffix := range generatedFileSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	for _, prefix := range generatedPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// TruncateDiff bounds diff to maxBytes, reporting whether truncation
// happened. The cut lands on a line boundary so the tail stays parseable.
func TruncateDiff(diff string, maxBytes int) (string, bool) {
	if len(diff) <= maxBytes {
		return diff, false
	}

	cut := maxBytes
	if idx := strings.LastIndexByte(diff[:maxBytes], '\n'); idx > 0 {
		cut = idx + 1
	}
	return diff[:cut] + "\n[diff truncated]\n", true
}

func writeDiffArtifact(scratchDir, sessionID, diff string) (string, error) {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	dir := filepath.Join(scratchDir, "erk")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating scratch directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("diff-%s.patch", sessionID))
	if err := os.WriteFile(path, []byte(diff), 0644); err != nil {
		return "", fmt.Errorf("writing diff artifact: %w", err)
	}
	return path, nil
}
