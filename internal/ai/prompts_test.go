package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPrompt(t *testing.T) {
	data := PromptData{
		Branch:       "feature/login",
		ParentBranch: "main",
		Commits:      "- add login form",
		Diff:         "diff --git a/x b/x",
	}

	t.Run("english template", func(t *testing.T) {
		prompt, err := RenderPrompt("test", GetDescriptionTemplate("en"), data)
		require.NoError(t, err)
		assert.Contains(t, prompt, "feature/login")
		assert.Contains(t, prompt, "target: main")
		assert.Contains(t, prompt, "## Title")
		// no plan context, the plan block is omitted
		assert.NotContains(t, prompt, "implements the following plan")
	})

	t.Run("plan context included when present", func(t *testing.T) {
		withPlan := data
		withPlan.PlanTitle = "Plan: add login"
		withPlan.PlanBody = "step one"

		prompt, err := RenderPrompt("test", GetDescriptionTemplate("en"), withPlan)
		require.NoError(t, err)
		assert.Contains(t, prompt, "Plan: add login")
		assert.Contains(t, prompt, "step one")
	})

	t.Run("spanish template", func(t *testing.T) {
		prompt, err := RenderPrompt("test", GetDescriptionTemplate("es"), data)
		require.NoError(t, err)
		assert.Contains(t, prompt, "Rama: feature/login")
	})
}
