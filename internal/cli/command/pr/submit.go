package pr

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/dagster-io/erk/internal/ai/gemini"
	cfg "github.com/dagster-io/erk/internal/config"
	domainErrors "github.com/dagster-io/erk/internal/errors"
	"github.com/dagster-io/erk/internal/git"
	"github.com/dagster-io/erk/internal/i18n"
	"github.com/dagster-io/erk/internal/logger"
	"github.com/dagster-io/erk/internal/metadata"
	"github.com/dagster-io/erk/internal/models"
	"github.com/dagster-io/erk/internal/pipeline"
	"github.com/dagster-io/erk/internal/stack"
	"github.com/dagster-io/erk/internal/vcs/github"
)

type SubmitCommand struct{}

func NewSubmitCommand() *SubmitCommand {
	return &SubmitCommand{}
}

func (c *SubmitCommand) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: t.GetMessage("submit_command_description", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "push even when the branch diverges from its remote after rebase",
			},
			&cli.BoolFlag{
				Name:  "no-stack",
				Usage: "skip Graphite integration for this run",
			},
			&cli.IntFlag{
				Name:    "issue",
				Aliases: []string{"i"},
				Usage:   "issue number to link, overriding the branch-name convention",
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "session identifier for the diff artifact; defaults to a fresh UUID",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "verbose logging",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger.Initialize(command.Bool("debug"))

			gw, describer, err := buildGateways(ctx, config)
			if err != nil {
				return err
			}
			defer func() { _ = describer.Close() }()

			state := models.PipelineState{
				WorkingDir: mustGetwd(),
				UseStack:   config.UseStack && !command.Bool("no-stack"),
				Force:      command.Bool("force"),
				SessionID:  uuid.NewString(),
			}
			if command.IsSet("session") {
				state.SessionID = command.String("session")
			}
			if command.IsSet("issue") {
				state = state.WithIssueNumber(int(command.Int("issue")))
			}

			final, perr := pipeline.Run(ctx, gw, state)
			if perr != nil {
				fmt.Println(t.GetMessage("submit_failed", 0, map[string]interface{}{
					"Phase":   perr.Phase,
					"Kind":    string(perr.Kind),
					"Message": perr.Message,
				}))
				if hint := failureHint(t, perr); hint != "" {
					fmt.Println(hint)
				}
				return cli.Exit("", 1)
			}

			messageID := "submit_pr_updated"
			if final.WasCreated {
				messageID = "submit_pr_created"
			}
			fmt.Println(t.GetMessage(messageID, 0, map[string]interface{}{
				"PRNumber": final.PRNumber,
				"URL":      final.PRURL,
			}))
			if final.StackURL != "" {
				fmt.Println(t.GetMessage("submit_stack_url", 0, map[string]interface{}{
					"URL": final.StackURL,
				}))
			}
			return nil
		},
	}
}

// buildGateways wires the pipeline's collaborators from the local repository
// and the stored configuration.
func buildGateways(ctx context.Context, config *cfg.Config) (*pipeline.Gateways, *gemini.GeminiDescriber, error) {
	if config.GitHubToken == "" {
		return nil, nil, domainErrors.ErrTokenMissing
	}

	gitService := git.NewGitService("")

	root, err := gitService.RepoRoot(ctx)
	if err != nil {
		return nil, nil, err
	}

	owner, repoName, _, err := gitService.RepoInfo(ctx)
	if err != nil {
		return nil, nil, err
	}

	describer, err := gemini.NewGeminiDescriber(ctx, config)
	if err != nil {
		return nil, nil, err
	}

	return &pipeline.Gateways{
		Repo:         gitService,
		Host:         github.NewGitHubClient(owner, repoName, config.GitHubToken),
		Stack:        stack.NewGraphiteClient(root),
		Describer:    describer,
		Metadata:     metadata.NewStore(root),
		RepoID:       owner + "/" + repoName,
		PlansRepo:    config.PlansRepo,
		MaxDiffBytes: config.MaxDiffBytes,
	}, describer, nil
}

// failureHint maps the well-known failure kinds to an actionable message.
func failureHint(t *i18n.Translations, perr *models.PipelineError) string {
	switch perr.Kind {
	case models.KindNoBranch:
		return t.GetMessage("error_no_branch", 0, nil)
	case models.KindBranchDiverged:
		return t.GetMessage("error_branch_diverged", 0, map[string]interface{}{
			"Ahead":  perr.Details["ahead"],
			"Behind": perr.Details["behind"],
		})
	case models.KindNoCommits:
		return t.GetMessage("error_no_commits", 0, map[string]interface{}{
			"Parent": perr.Details["parent"],
		})
	case models.KindParentBranchNoPR:
		return t.GetMessage("error_parent_branch_no_pr", 0, map[string]interface{}{
			"Parent": perr.Details["parent"],
		})
	case models.KindGitHubAuthFailed:
		return t.GetMessage("error_github_auth", 0, nil)
	}
	return ""
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
