package config

import (
	"context"
	"fmt"
	"strconv"

	cfg "github.com/dagster-io/erk/internal/config"
	"github.com/dagster-io/erk/internal/i18n"
	"github.com/urfave/cli/v3"
)

func newSetCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "set a single configuration value",
		ArgsUsage: "<key> <value>",
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() != 2 {
				return fmt.Errorf("expected <key> <value> arguments")
			}
			key, value := command.Args().Get(0), command.Args().Get(1)

			switch key {
			case "language":
				config.Language = value
			case "ai_model":
				config.AIModel = value
			case "plans_repo":
				config.PlansRepo = value
			case "use_stack":
				enabled, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("use_stack must be true or false, got %q", value)
				}
				config.UseStack = enabled
			case "max_diff_bytes":
				n, err := strconv.Atoi(value)
				if err != nil || n <= 0 {
					return fmt.Errorf("max_diff_bytes must be a positive integer, got %q", value)
				}
				config.MaxDiffBytes = n
			case "github_token":
				config.GitHubToken = value
			case "gemini_api_key":
				config.GeminiAPIKey = value
			default:
				return fmt.Errorf("unknown configuration key %q", key)
			}

			if err := cfg.SaveConfig(config); err != nil {
				return err
			}

			fmt.Println(t.GetMessage("config_initialized", 0, map[string]interface{}{
				"Path": config.PathFile,
			}))
			return nil
		},
	}
}
