// Package config holds the CLI surface for managing the stored
// configuration: tokens, language, the Graphite toggle and the plans repo.
package config

import (
	cfg "github.com/dagster-io/erk/internal/config"
	"github.com/dagster-io/erk/internal/i18n"
	"github.com/urfave/cli/v3"
)

type CommandFactory struct{}

func NewCommandFactory() *CommandFactory {
	return &CommandFactory{}
}

func (f *CommandFactory) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: t.GetMessage("config_command_description", 0, nil),
		Commands: []*cli.Command{
			newInitCommand(t, config),
			newShowCommand(t, config),
			newSetCommand(t, config),
		},
	}
}
