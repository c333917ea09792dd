package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/dagster-io/erk/internal/metadata"
	"github.com/dagster-io/erk/internal/models"
	"github.com/dagster-io/erk/internal/ports"
)

// fakeRepo is an in-memory GitService. Divergence checks consume the
// divergences queue so tests can script rebase-then-recheck sequences.
type fakeRepo struct {
	root     string
	branch   string
	trunk    string
	dirty    bool
	ahead    map[string]int
	diff     string
	messages []string

	divergences []models.Divergence

	branchErr     error
	pullRebaseErr error
	pushErr       error

	staged      bool
	commits     []string
	amended     []string
	pushes      []string
	pullRebases int
}

func (f *fakeRepo) RepoRoot(ctx context.Context) (string, error) { return f.root, nil }

func (f *fakeRepo) CurrentBranch(ctx context.Context) (string, error) {
	if f.branchErr != nil {
		return "", f.branchErr
	}
	return f.branch, nil
}

func (f *fakeRepo) DetectTrunkBranch(ctx context.Context) (string, error) { return f.trunk, nil }

func (f *fakeRepo) HasUncommittedChanges(ctx context.Context) (bool, error) { return f.dirty, nil }

func (f *fakeRepo) StageAll(ctx context.Context) error {
	f.staged = true
	return nil
}

func (f *fakeRepo) Commit(ctx context.Context, message string) error {
	f.commits = append(f.commits, message)
	f.dirty = false
	return nil
}

func (f *fakeRepo) AmendCommitMessage(ctx context.Context, message string) error {
	f.amended = append(f.amended, message)
	return nil
}

func (f *fakeRepo) CommitsAhead(ctx context.Context, base string) (int, error) {
	return f.ahead[base], nil
}

func (f *fakeRepo) DivergenceFromRemote(ctx context.Context, branch string) (models.Divergence, error) {
	if len(f.divergences) == 0 {
		return models.Divergence{}, nil
	}
	div := f.divergences[0]
	f.divergences = f.divergences[1:]
	return div, nil
}

func (f *fakeRepo) PullRebase(ctx context.Context) error {
	f.pullRebases++
	return f.pullRebaseErr
}

func (f *fakeRepo) Push(ctx context.Context, branch string, setUpstream, force bool) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes = append(f.pushes, branch)
	return nil
}

func (f *fakeRepo) FetchBranch(ctx context.Context, branch string) error { return nil }

func (f *fakeRepo) CheckoutBranch(ctx context.Context, branch string) error {
	f.branch = branch
	return nil
}

func (f *fakeRepo) DiffToBranch(ctx context.Context, base string) (string, error) {
	return f.diff, nil
}

func (f *fakeRepo) RemoteURL(ctx context.Context) (string, error) {
	return "git@github.com:acme/widgets.git", nil
}

func (f *fakeRepo) CommitMessagesSince(ctx context.Context, base string) ([]string, error) {
	return f.messages, nil
}

func (f *fakeRepo) ListWorktrees(ctx context.Context) ([]models.WorktreeInfo, error) {
	return nil, nil
}

func (f *fakeRepo) AddWorktree(ctx context.Context, path, branch string) error { return nil }

func (f *fakeRepo) RemoveWorktree(ctx context.Context, path string) error { return nil }

// fakeHost is an in-memory VCSClient keyed by branch and PR number.
type fakeHost struct {
	authErr    error
	nextNumber int
	byBranch   map[string]*models.PRInfo
	byNumber   map[int]*models.PRInfo
	issues     map[int]*models.Issue
	labels     map[int][]string

	bodyUpdates  int
	fullUpdates  int
	createdCount int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		nextNumber: 100,
		byBranch:   map[string]*models.PRInfo{},
		byNumber:   map[int]*models.PRInfo{},
		issues:     map[int]*models.Issue{},
		labels:     map[int][]string{},
	}
}

func (f *fakeHost) CheckAuth(ctx context.Context) error { return f.authErr }

func (f *fakeHost) GetPRForBranch(ctx context.Context, branch string) (*models.PRInfo, error) {
	pr, ok := f.byBranch[branch]
	if !ok {
		return nil, nil
	}
	cp := *pr
	return &cp, nil
}

func (f *fakeHost) GetPRByNumber(ctx context.Context, number int) (*models.PRInfo, error) {
	pr, ok := f.byNumber[number]
	if !ok {
		return nil, nil
	}
	cp := *pr
	return &cp, nil
}

func (f *fakeHost) CreatePR(ctx context.Context, branch, title, body, base string) (*models.PRInfo, error) {
	number := f.nextNumber
	f.nextNumber++
	pr := &models.PRInfo{
		Number:     number,
		URL:        fmt.Sprintf("https://github.com/acme/widgets/pull/%d", number),
		Title:      title,
		Body:       body,
		BaseBranch: base,
		State:      "open",
	}
	f.byBranch[branch] = pr
	f.byNumber[number] = pr
	f.createdCount++
	cp := *pr
	return &cp, nil
}

func (f *fakeHost) UpdatePRBody(ctx context.Context, number int, body string) error {
	if pr, ok := f.byNumber[number]; ok {
		pr.Body = body
	}
	f.bodyUpdates++
	return nil
}

func (f *fakeHost) UpdatePR(ctx context.Context, number int, title, body string) error {
	if pr, ok := f.byNumber[number]; ok {
		pr.Title = title
		pr.Body = body
	}
	f.fullUpdates++
	return nil
}

func (f *fakeHost) AddLabelToPR(ctx context.Context, number int, label string) error {
	f.labels[number] = append(f.labels[number], label)
	return nil
}

func (f *fakeHost) GetIssue(ctx context.Context, number int) (*models.Issue, error) {
	issue, ok := f.issues[number]
	if !ok {
		return nil, nil
	}
	cp := *issue
	return &cp, nil
}

// fakeStack is an in-memory StackClient. Its Submit is cross-linked to the
// fake host: a successful submit creates the PRs the real tool would.
type fakeStack struct {
	host    *fakeHost
	repo    *fakeRepo
	tracked map[string]string
	authErr error
	submits []ports.StackSubmitOptions

	submitErr error
}

func (f *fakeStack) ShouldEnhance(ctx context.Context, branch string) bool {
	if f.authErr != nil {
		return false
	}
	_, ok := f.tracked[branch]
	return ok
}

func (f *fakeStack) Submit(ctx context.Context, opts ports.StackSubmitOptions) error {
	f.submits = append(f.submits, opts)
	if f.submitErr != nil {
		return f.submitErr
	}
	branch := f.repo.branch
	if _, ok := f.host.byBranch[branch]; !ok {
		base := f.tracked[branch]
		if base == "" {
			base = f.repo.trunk
		}
		_, _ = f.host.CreatePR(ctx, branch, "WIP: "+branch, "", base)
	}
	return nil
}

func (f *fakeStack) CheckAuth(ctx context.Context) error { return f.authErr }

func (f *fakeStack) TrackedBranches(ctx context.Context) (map[string]string, error) {
	return f.tracked, nil
}

func (f *fakeStack) WebURL(repoID string, prNumber int) string {
	return fmt.Sprintf("https://app.graphite.dev/github/pr/%s/%d", repoID, prNumber)
}

type fakeDescriber struct {
	result models.DescriptionResult
	err    error

	requests []models.DescriptionRequest
}

func (f *fakeDescriber) GenerateDescription(ctx context.Context, req models.DescriptionRequest) (models.DescriptionResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return models.DescriptionResult{}, f.err
	}
	return f.result, nil
}

type fakeMeta struct {
	records map[string]*metadata.BranchMeta
	learn   map[string]bool
	saves   int

	loadErr error
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{records: map[string]*metadata.BranchMeta{}, learn: map[string]bool{}}
}

func (f *fakeMeta) Load(branch string) (*metadata.BranchMeta, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	meta, ok := f.records[branch]
	if !ok {
		return nil, nil
	}
	cp := *meta
	return &cp, nil
}

func (f *fakeMeta) Save(meta *metadata.BranchMeta) error {
	cp := *meta
	f.records[meta.Branch] = &cp
	f.saves++
	return nil
}

func (f *fakeMeta) HasLearnPlanMarker(branch string) bool { return f.learn[branch] }

// fixture bundles the fakes behind a wired Gateways value.
type fixture struct {
	repo      *fakeRepo
	host      *fakeHost
	stack     *fakeStack
	describer *fakeDescriber
	meta      *fakeMeta
	gw        *Gateways
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := &fakeRepo{
		root:     t.TempDir(),
		branch:   "42-login-flow",
		trunk:    "main",
		ahead:    map[string]int{"main": 2},
		diff:     "diff --git a/login.go b/login.go\n+func Login() {}\n",
		messages: []string{"add login handler", "wire session store"},
	}
	host := newFakeHost()
	stack := &fakeStack{host: host, repo: repo, tracked: map[string]string{}}
	describer := &fakeDescriber{result: models.DescriptionResult{
		Title: "Add login flow",
		Body:  "Implements the session-backed login handler.",
	}}
	meta := newFakeMeta()

	return &fixture{
		repo:      repo,
		host:      host,
		stack:     stack,
		describer: describer,
		meta:      meta,
		gw: &Gateways{
			Repo:       repo,
			Host:       host,
			Stack:      stack,
			Describer:  describer,
			Metadata:   meta,
			RepoID:     "acme/widgets",
			ScratchDir: t.TempDir(),
		},
	}
}

func (f *fixture) initialState() models.PipelineState {
	return models.PipelineState{
		WorkingDir: f.repo.root,
		SessionID:  "test-session",
	}
}
