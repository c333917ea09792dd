package config

import (
	"context"
	"fmt"

	cfg "github.com/dagster-io/erk/internal/config"
	"github.com/dagster-io/erk/internal/i18n"
	"github.com/urfave/cli/v3"
)

func newInitCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "write the configuration file with the given credentials",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "github-token",
				Usage: "GitHub personal access token",
			},
			&cli.StringFlag{
				Name:  "gemini-api-key",
				Usage: "Gemini API key used for description generation",
			},
			&cli.StringFlag{
				Name:  "plans-repo",
				Usage: "owner/repo holding planning issues, referenced from PR footers",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.IsSet("github-token") {
				config.GitHubToken = command.String("github-token")
			}
			if command.IsSet("gemini-api-key") {
				config.GeminiAPIKey = command.String("gemini-api-key")
			}
			if command.IsSet("plans-repo") {
				config.PlansRepo = command.String("plans-repo")
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
