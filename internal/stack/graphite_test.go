package stack

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/dagster-io/erk/internal/errors"
)

func writeGraphiteCache(t *testing.T, repoRoot, content string) {
	t.Helper()
	gitDir := filepath.Join(repoRoot, ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, ".graphite_cache_persist"), []byte(content), 0644))
}

func TestTrackedBranches(t *testing.T) {
	ctx := context.Background()

	t.Run("missing cache means nothing tracked", func(t *testing.T) {
		client := NewGraphiteClient(t.TempDir())

		tracked, err := client.TrackedBranches(ctx)
		require.NoError(t, err)
		assert.Empty(t, tracked)
	})

	t.Run("parses branch parent pairs", func(t *testing.T) {
		root := t.TempDir()
		writeGraphiteCache(t, root, `{
			"branches": [
				["main", {"validationResult": "TRUNK"}],
				["feature/base", {"parentBranchName": "main"}],
				["feature/top", {"parentBranchName": "feature/base"}]
			]
		}`)
		client := NewGraphiteClient(root)

		tracked, err := client.TrackedBranches(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"main":         "",
			"feature/base": "main",
			"feature/top":  "feature/base",
		}, tracked)
	})

	t.Run("corrupt cache is an error", func(t *testing.T) {
		root := t.TempDir()
		writeGraphiteCache(t, root, "{broken")
		client := NewGraphiteClient(root)

		_, err := client.TrackedBranches(ctx)
		assert.Error(t, err)
	})
}

func TestCheckAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("token present", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "user_config")
		require.NoError(t, os.WriteFile(path, []byte(`{"authToken":"gt_abc"}`), 0600))

		client := NewGraphiteClient(t.TempDir())
		client.userConfigPath = path
		assert.NoError(t, client.CheckAuth(ctx))
	})

	t.Run("missing config", func(t *testing.T) {
		client := NewGraphiteClient(t.TempDir())
		client.userConfigPath = filepath.Join(t.TempDir(), "nope")

		err := client.CheckAuth(ctx)
		assert.True(t, errors.Is(err, domainErrors.ErrGraphiteNotAuthenticated))
	})

	t.Run("empty token", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "user_config")
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0600))

		client := NewGraphiteClient(t.TempDir())
		client.userConfigPath = path
		assert.Error(t, client.CheckAuth(ctx))
	})
}

func TestWebURL(t *testing.T) {
	client := NewGraphiteClient(".")
	url := client.WebURL("dagster-io/erk", 123)
	assert.Equal(t, "https://app.graphite.dev/github/pr/dagster-io/erk/123", url)
}

func TestIsNothingToSubmit(t *testing.T) {
	assert.False(t, IsNothingToSubmit(nil))
	assert.False(t, IsNothingToSubmit(errors.New("network unreachable")))

	submitErr := domainErrors.ErrGraphiteSubmit.
		WithError(errors.New("exit status 1")).
		WithContext("stderr", "Nothing to submit! All PRs are up to date.")
	assert.True(t, IsNothingToSubmit(submitErr))
}
