package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	domainErrors "github.com/dagster-io/erk/internal/errors"
	"github.com/dagster-io/erk/internal/logger"
	"github.com/dagster-io/erk/internal/models"
	"github.com/dagster-io/erk/internal/ports"
)

var _ ports.VCSClient = (*GitHubClient)(nil)

type PullRequestsService interface {
	Create(ctx context.Context, owner, repo string, pull *github.NewPullRequest) (*github.PullRequest, *github.Response, error)
	Edit(ctx context.Context, owner, repo string, number int, pr *github.PullRequest) (*github.PullRequest, *github.Response, error)
	List(ctx context.Context, owner, repo string, opts *github.PullRequestListOptions) ([]*github.PullRequest, *github.Response, error)
	Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error)
}

type IssuesService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.Issue, *github.Response, error)
	AddLabelsToIssue(ctx context.Context, owner, repo string, number int, labels []string) ([]*github.Label, *github.Response, error)
}

type UsersService interface {
	Get(ctx context.Context, user string) (*github.User, *github.Response, error)
}

type GitHubClient struct {
	prService     PullRequestsService
	issuesService IssuesService
	usersService  UsersService
	owner         string
	repo          string
	limiter       *rate.Limiter
}

// NewGitHubClient builds a client for owner/repo authenticated with token.
// Requests are rate limited well below GitHub's secondary limits.
func NewGitHubClient(owner, repo, token string) *GitHubClient {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	return &GitHubClient{
		prService:     client.PullRequests,
		issuesService: client.Issues,
		usersService:  client.Users,
		owner:         owner,
		repo:          repo,
		limiter:       rate.NewLimiter(rate.Limit(5), 10),
	}
}

// NewGitHubClientWithServices injects service implementations, used by tests.
func NewGitHubClientWithServices(
	prService PullRequestsService,
	issuesService IssuesService,
	usersService UsersService,
	owner string,
	repo string,
) *GitHubClient {
	return &GitHubClient{
		prService:     prService,
		issuesService: issuesService,
		usersService:  usersService,
		owner:         owner,
		repo:          repo,
		limiter:       rate.NewLimiter(rate.Inf, 1),
	}
}

func (ghc *GitHubClient) wait(ctx context.Context) error {
	return ghc.limiter.Wait(ctx)
}

// CheckAuth verifies the token by fetching the authenticated user.
func (ghc *GitHubClient) CheckAuth(ctx context.Context) error {
	if err := ghc.wait(ctx); err != nil {
		return err
	}

	_, resp, err := ghc.usersService.Get(ctx, "")
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return domainErrors.ErrGitHubTokenInvalid.WithContext("operation", "check auth")
		}
		return fmt.Errorf("failed to verify GitHub authentication: %w", err)
	}
	return nil
}

// GetPRForBranch finds the open PR whose head is branch. Returns (nil, nil)
// when no such PR exists; that is the caller's not-found sentinel.
func (ghc *GitHubClient) GetPRForBranch(ctx context.Context, branch string) (*models.PRInfo, error) {
	if err := ghc.wait(ctx); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Debug("listing github pull requests for branch",
		"owner", ghc.owner,
		"repo", ghc.repo,
		"branch", branch)

	prs, resp, err := ghc.prService.List(ctx, ghc.owner, ghc.repo, &github.PullRequestListOptions{
		State: "open",
		Head:  fmt.Sprintf("%s:%s", ghc.owner, branch),
	})
	if err != nil {
		if mapped := ghc.mapStatusError(resp, "list PRs"); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to list PRs for branch %s: %w", branch, err)
	}

	if len(prs) == 0 {
		return nil, nil
	}
	return toPRInfo(prs[0]), nil
}

func (ghc *GitHubClient) GetPRByNumber(ctx context.Context, number int) (*models.PRInfo, error) {
	if err := ghc.wait(ctx); err != nil {
		return nil, err
	}

	pr, resp, err := ghc.prService.Get(ctx, ghc.owner, ghc.repo, number)
	if err != nil {
		if mapped := ghc.mapStatusError(resp, "get PR"); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get PR #%d: %w", number, err)
	}
	return toPRInfo(pr), nil
}

func (ghc *GitHubClient) CreatePR(ctx context.Context, branch, title, body, base string) (*models.PRInfo, error) {
	if err := ghc.wait(ctx); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Debug("creating github pull request",
		"branch", branch,
		"base", base)

	pr, resp, err := ghc.prService.Create(ctx, ghc.owner, ghc.repo, &github.NewPullRequest{
		Title: github.Ptr(title),
		Body:  github.Ptr(body),
		Head:  github.Ptr(branch),
		Base:  github.Ptr(base),
	})
	if err != nil {
		if mapped := ghc.mapStatusError(resp, "create PR"); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create PR for branch %s: %w", branch, err)
	}
	return toPRInfo(pr), nil
}

func (ghc *GitHubClient) UpdatePRBody(ctx context.Context, number int, body string) error {
	if err := ghc.wait(ctx); err != nil {
		return err
	}

	_, resp, err := ghc.prService.Edit(ctx, ghc.owner, ghc.repo, number, &github.PullRequest{
		Body: github.Ptr(body),
	})
	if err != nil {
		if mapped := ghc.mapStatusError(resp, "update PR body"); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update PR #%d body: %w", number, err)
	}
	return nil
}

func (ghc *GitHubClient) UpdatePR(ctx context.Context, number int, title, body string) error {
	if err := ghc.wait(ctx); err != nil {
		return err
	}

	_, resp, err := ghc.prService.Edit(ctx, ghc.owner, ghc.repo, number, &github.PullRequest{
		Title: github.Ptr(title),
		Body:  github.Ptr(body),
	})
	if err != nil {
		if mapped := ghc.mapStatusError(resp, "update PR"); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update PR #%d: %w", number, err)
	}
	return nil
}

func (ghc *GitHubClient) AddLabelToPR(ctx context.Context, number int, label string) error {
	if err := ghc.wait(ctx); err != nil {
		return err
	}

	_, resp, err := ghc.issuesService.AddLabelsToIssue(ctx, ghc.owner, ghc.repo, number, []string{label})
	if err != nil {
		if mapped := ghc.mapStatusError(resp, "add label"); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to add label %q to PR #%d: %w", label, number, err)
	}
	return nil
}

// GetIssue fetches an issue. A 404 is reported as (nil, nil): plan context
// is optional and absence is a normal outcome.
func (ghc *GitHubClient) GetIssue(ctx context.Context, number int) (*models.Issue, error) {
	if err := ghc.wait(ctx); err != nil {
		return nil, err
	}

	issue, resp, err := ghc.issuesService.Get(ctx, ghc.owner, ghc.repo, number)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		if mapped := ghc.mapStatusError(resp, "get issue"); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get issue #%d: %w", number, err)
	}

	return &models.Issue{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
		State:  issue.GetState(),
	}, nil
}

// mapStatusError converts well-known HTTP statuses into typed errors. It
// returns nil when the status carries no special meaning.
func (ghc *GitHubClient) mapStatusError(resp *github.Response, operation string) error {
	if resp == nil {
		return nil
	}
	repoRef := fmt.Sprintf("%s/%s", ghc.owner, ghc.repo)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return domainErrors.ErrGitHubTokenInvalid.
			WithContext("operation", operation)
	case http.StatusForbidden:
		return domainErrors.ErrGitHubInsufficientPerms.
			WithContext("operation", operation).
			WithContext("repo", repoRef)
	case http.StatusTooManyRequests:
		return domainErrors.ErrGitHubRateLimit.
			WithContext("retry_after", resp.Header.Get("Retry-After")).
			WithContext("operation", operation)
	case http.StatusNotFound:
		return domainErrors.ErrRepositoryNotFound.
			WithContext("operation", operation).
			WithContext("repo", repoRef)
	}
	return nil
}

func toPRInfo(pr *github.PullRequest) *models.PRInfo {
	return &models.PRInfo{
		Number:     pr.GetNumber(),
		URL:        pr.GetHTMLURL(),
		Title:      pr.GetTitle(),
		Body:       pr.GetBody(),
		BaseBranch: pr.GetBase().GetRef(),
		HeadBranch: pr.GetHead().GetRef(),
		State:      pr.GetState(),
	}
}
