package config

import (
	"context"
	"fmt"

	cfg "github.com/dagster-io/erk/internal/config"
	"github.com/dagster-io/erk/internal/i18n"
	"github.com/urfave/cli/v3"
)

func newShowCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "print the current configuration",
		Action: func(ctx context.Context, command *cli.Command) error {
			fmt.Println(t.GetMessage("config_current", 0, nil))
			fmt.Printf("  language:       %s\n", config.Language)
			fmt.Printf("  ai_model:       %s\n", config.AIModel)
			fmt.Printf("  use_stack:      %t\n", config.UseStack)
			fmt.Printf("  max_diff_bytes: %d\n", config.MaxDiffBytes)
			fmt.Printf("  plans_repo:     %s\n", valueOrUnset(config.PlansRepo))
			fmt.Printf("  github_token:   %s\n", maskSecret(config.GitHubToken))
			fmt.Printf("  gemini_api_key: %s\n", maskSecret(config.GeminiAPIKey))
			fmt.Printf("  file:           %s\n", config.PathFile)
			return nil
		},
	}
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

func maskSecret(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
