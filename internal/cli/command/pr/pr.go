// Package pr holds the pull-request facing commands: submitting the current
// branch, checking out a PR locally, and cleaning up its worktree.
package pr

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
		Name:  "pr",
		Usage: "work with pull requests",
		Commands: []*cli.Command{
			NewSubmitCommand().CreateCommand(t, config),
			NewCheckoutCommand().CreateCommand(t, config),
			NewCleanCommand().CreateCommand(t, config),
		},
	}
}
