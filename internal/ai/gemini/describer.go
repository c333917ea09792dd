package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dagster-io/erk/internal/ai"
	"github.com/dagster-io/erk/internal/config"
	domainErrors "github.com/dagster-io/erk/internal/errors"
	"github.com/dagster-io/erk/internal/models"
	"github.com/dagster-io/erk/internal/ports"
)

var _ ports.Describer = (*GeminiDescriber)(nil)

type GeminiDescriber struct {
	client *genai.Client
	model  *genai.GenerativeModel
	config *config.Config
}

func NewGeminiDescriber(ctx context.Context, cfg *config.Config) (*GeminiDescriber, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, domainErrors.ErrAPIKeyMissing
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.AIModel)

	return &GeminiDescriber{
		client: client,
		model:  model,
		config: cfg,
	}, nil
}

// GenerateDescription asks the model for a PR title and body. A response
// with no Title section is an error; an empty body is tolerated.
func (gd *GeminiDescriber) GenerateDescription(ctx context.Context, req models.DescriptionRequest) (models.DescriptionResult, error) {
	prompt, err := gd.buildPrompt(req)
	if err != nil {
		return models.DescriptionResult{}, err
	}

	resp, err := gd.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return models.DescriptionResult{}, domainErrors.ErrAIGeneration.WithError(err)
	}

	raw := formatResponse(resp)
	if raw == "" {
		return models.DescriptionResult{}, domainErrors.ErrInvalidAIOutput.WithError(fmt.Errorf("empty response"))
	}

	return parseDescription(raw)
}

func (gd *GeminiDescriber) buildPrompt(req models.DescriptionRequest) (string, error) {
	data := ai.PromptData{
		Branch:       req.Branch,
		ParentBranch: req.ParentBranch,
		Commits:      "- " + strings.Join(req.CommitMessages, "\n- "),
		Diff:         req.Diff,
	}
	if req.Plan != nil {
		data.PlanTitle = req.Plan.Title
		data.PlanBody = req.Plan.Body
	}

	template := ai.GetDescriptionTemplate(gd.config.Language)
	return ai.RenderPrompt("pr_description", template, data)
}

// parseDescription splits the model output into its "## Title" and
// "## Body" sections.
func parseDescription(raw string) (models.DescriptionResult, error) {
	result := models.DescriptionResult{}
	raw = strings.ReplaceAll(raw, "## ", "##")
	sections := strings.Split(raw, "##")

	for _, sec := range sections {
		lines := strings.SplitN(sec, "\n", 2)
		if len(lines) < 2 {
			continue
		}
		switch strings.TrimSpace(lines[0]) {
		case "Title":
			result.Title = strings.TrimSpace(lines[1])
		case "Body":
			result.Body = strings.TrimSpace(lines[1])
		}
	}

	if result.Title == "" {
		return result, domainErrors.ErrInvalidAIOutput.WithError(fmt.Errorf("no title section in response"))
	}

	if utf8.RuneCountInString(result.Title) > 80 {
		result.Title = string([]rune(result.Title)[:77]) + "..."
	}

	return result, nil
}

func formatResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// Close releases the underlying API client.
func (gd *GeminiDescriber) Close() error {
	return gd.client.Close()
}
