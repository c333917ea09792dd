package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	configcmd "github.com/dagster-io/erk/internal/cli/command/config"
	"github.com/dagster-io/erk/internal/cli/command/pr"
	"github.com/dagster-io/erk/internal/cli/registry"
	cfg "github.com/dagster-io/erk/internal/config"
	"github.com/dagster-io/erk/internal/i18n"
	"github.com/dagster-io/erk/internal/version"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("error initializing the cli: %v", err)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func initializeApp() (*cli.Command, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not resolve the user home directory: %w", err)
	}

	appConfig, err := cfg.LoadConfig(homeDir)
	if err != nil {
		return nil, err
	}

	translations, err := i18n.NewTranslations(appConfig.Language)
	if err != nil {
		return nil, fmt.Errorf("could not load translations: %w", err)
	}

	registerCommand := registry.NewRegistry(appConfig, translations)

	if err := registerCommand.Register("pr", pr.NewCommandFactory()); err != nil {
		return nil, fmt.Errorf("registering command 'pr': %w", err)
	}

	if err := registerCommand.Register("config", configcmd.NewCommandFactory()); err != nil {
		return nil, fmt.Errorf("registering command 'config': %w", err)
	}

	commands := registerCommand.CreateCommands()

	helpCommand := &cli.Command{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   translations.GetMessage("help_command_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
	}
	commands = append(commands, helpCommand)

	return &cli.Command{
		Name:                  "erk",
		Usage:                 "push the current branch, create its PR, and describe it",
		Version:               version.Version,
		Commands:              commands,
		EnableShellCompletion: true,
	}, nil
}
