package pr

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	cfg "github.com/dagster-io/erk/internal/config"
	"github.com/dagster-io/erk/internal/git"
	"github.com/dagster-io/erk/internal/i18n"
	"github.com/dagster-io/erk/internal/logger"
)

type CleanCommand struct{}

func NewCleanCommand() *CleanCommand {
	return &CleanCommand{}
}

func (c *CleanCommand) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "clean",
		Usage:     t.GetMessage("clean_command_description", 0, nil),
		ArgsUsage: "<branch>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "verbose logging",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger.Initialize(command.Bool("debug"))

			if command.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one branch argument")
			}
			branch := command.Args().First()

			gitService := git.NewGitService("")
			worktrees, err := gitService.ListWorktrees(ctx)
			if err != nil {
				return err
			}

			for _, wt := range worktrees {
				if wt.Branch != branch {
					continue
				}
				if wt.IsRoot {
					return fmt.Errorf("branch %s is checked out in the root worktree; not removing it", branch)
				}
				if err := gitService.RemoveWorktree(ctx, wt.Path); err != nil {
					return err
				}
				fmt.Printf("Removed worktree %s (%s)\n", wt.Path, branch)
				return nil
			}

			return fmt.Errorf("no worktree holds branch %s", branch)
		},
	}
}
