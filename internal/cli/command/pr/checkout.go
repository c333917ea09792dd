package pr

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	cfg "github.com/dagster-io/erk/internal/config"
	domainErrors "github.com/dagster-io/erk/internal/errors"
	"github.com/dagster-io/erk/internal/git"
	"github.com/dagster-io/erk/internal/i18n"
	"github.com/dagster-io/erk/internal/logger"
	"github.com/dagster-io/erk/internal/vcs/github"
)

type CheckoutCommand struct{}

func NewCheckoutCommand() *CheckoutCommand {
	return &CheckoutCommand{}
}

// checkoutIntoWorktree puts branch into a sibling worktree directory,
// reusing an existing one when the branch is already checked out somewhere.
func checkoutIntoWorktree(ctx context.Context, gitService *git.GitService, branch string) (string, error) {
	worktrees, err := gitService.ListWorktrees(ctx)
	if err != nil {
		return "", err
	}
	for _, wt := range worktrees {
		if wt.Branch == branch {
			return wt.Path, nil
		}
	}

	root, err := gitService.RepoRoot(ctx)
	if err != nil {
		return "", err
	}

	// branch names may contain slashes, flatten them for the directory name
	dirName := filepath.Base(root) + "-" + strings.ReplaceAll(branch, "/", "__")
	path := filepath.Join(filepath.Dir(root), dirName)
	if err := gitService.AddWorktree(ctx, path, branch); err != nil {
		return "", err
	}
	return path, nil
}

func (c *CheckoutCommand) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "checkout",
		Usage:     t.GetMessage("checkout_command_description", 0, nil),
		ArgsUsage: "<pr-number>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "worktree",
				Aliases: []string{"w"},
				Usage:   "check the branch out into a sibling worktree instead of switching",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "verbose logging",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger.Initialize(command.Bool("debug"))

			if command.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one PR number argument")
			}
			number, err := strconv.Atoi(command.Args().First())
			if err != nil {
				return fmt.Errorf("invalid PR number %q", command.Args().First())
			}

			if config.GitHubToken == "" {
				return domainErrors.ErrTokenMissing
			}

			gitService := git.NewGitService("")
			owner, repoName, _, err := gitService.RepoInfo(ctx)
			if err != nil {
				return err
			}

			host := github.NewGitHubClient(owner, repoName, config.GitHubToken)
			pr, err := host.GetPRByNumber(ctx, number)
			if err != nil {
				return err
			}
			if pr == nil {
				return fmt.Errorf("PR #%d not found in %s/%s", number, owner, repoName)
			}

			if err := gitService.FetchBranch(ctx, pr.HeadBranch); err != nil {
				return err
			}

			if command.Bool("worktree") {
				path, err := checkoutIntoWorktree(ctx, gitService, pr.HeadBranch)
				if err != nil {
					return err
				}
				fmt.Printf("Checked out %s (PR #%d) into %s\n", pr.HeadBranch, pr.Number, path)
				return nil
			}

			if err := gitService.CheckoutBranch(ctx, pr.HeadBranch); err != nil {
				return err
			}

			fmt.Printf("Checked out %s (PR #%d)\n", pr.HeadBranch, pr.Number)
			return nil
		},
	}
}
