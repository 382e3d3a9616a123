package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-github/v75/github"
	"github.com/gregjones/httpcache"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type client struct {
	githubClient *github.Client
	owner        string
	repo         string
}

// New creates a GitHub client with token authentication. The transport stack
// is httpcache (conditional request caching) wrapped by the secondary rate
// limit middleware, wrapped by the go-github REST client.
func New(token, repo string) (interfaces.CIProvider, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	githubClient := github.NewClient(rateLimitClient).WithAuthToken(token)

	return &client{
		githubClient: githubClient,
		owner:        owner,
		repo:         name,
	}, nil
}

// NewWithApp creates a GitHub client with App installation authentication.
func NewWithApp(appID, installationID int64, privateKey []byte, repo string) (interfaces.CIProvider, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	return &client{
		githubClient: github.NewClient(&http.Client{Transport: itr}),
		owner:        owner,
		repo:         name,
	}, nil
}

// NewWithBaseURL creates a client against a custom API endpoint. This
// constructor is intended for testing against an httptest server.
func NewWithBaseURL(httpClient *http.Client, baseURL, repo string) (interfaces.CIProvider, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse base URL", goerr.V("url", baseURL))
	}

	githubClient := github.NewClient(httpClient)
	githubClient.BaseURL = u

	return &client{
		githubClient: githubClient,
		owner:        owner,
		repo:         name,
	}, nil
}

// ListCheckRuns returns every check run reported for the commit, fetching
// all pages.
func (c *client) ListCheckRuns(ctx context.Context, sha string) ([]model.CheckRun, error) {
	opts := &github.ListCheckRunsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allRuns []model.CheckRun
	for {
		result, resp, err := c.githubClient.Checks.ListCheckRunsForRef(ctx, c.owner, c.repo, sha, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list check runs",
				goerr.V("commit", sha), goerr.V("page", opts.Page))
		}

		logRate(ctx, resp, "check-runs", opts.Page, len(result.CheckRuns))

		for _, run := range result.CheckRuns {
			allRuns = append(allRuns, model.CheckRun{
				Name:       run.GetName(),
				Status:     run.GetStatus(),
				Conclusion: run.GetConclusion(),
				DetailsURL: run.GetDetailsURL(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRuns, nil
}

// CreateIssue files a tracking issue and returns its HTML URL.
func (c *client) CreateIssue(ctx context.Context, title, body string, labels []string) (string, error) {
	req := &github.IssueRequest{
		Title: github.String(title),
		Body:  github.String(body),
	}
	if len(labels) > 0 {
		req.Labels = &labels
	}

	issue, _, err := c.githubClient.Issues.Create(ctx, c.owner, c.repo, req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create issue", goerr.V("title", title))
	}
	return issue.GetHTMLURL(), nil
}

// DispatchWorkflow triggers a workflow_dispatch event for the named workflow
// file on the given ref.
func (c *client) DispatchWorkflow(ctx context.Context, workflowFile, ref string, inputs map[string]any) error {
	event := github.CreateWorkflowDispatchEventRequest{
		Ref:    ref,
		Inputs: inputs,
	}

	if _, err := c.githubClient.Actions.CreateWorkflowDispatchEventByFileName(ctx, c.owner, c.repo, workflowFile, event); err != nil {
		return goerr.Wrap(err, "failed to dispatch workflow",
			goerr.V("workflow", workflowFile), goerr.V("ref", ref))
	}
	return nil
}

// RepositoryExists reports whether the bound repository is reachable with
// the configured credentials. A 404 is a definitive no; other errors
// propagate.
func (c *client) RepositoryExists(ctx context.Context) (bool, error) {
	_, resp, err := c.githubClient.Repositories.Get(ctx, c.owner, c.repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to read repository",
			goerr.V("owner", c.owner), goerr.V("repo", c.repo))
	}
	return true, nil
}

// logRate emits the API rate budget after each call.
func logRate(ctx context.Context, resp *github.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}
	ctxlog.From(ctx).Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
	)
}

// ParseRepoURL extracts "owner/name" from a git remote URL in SSH or HTTPS
// form, e.g. git@github.com:acme/widget.git or
// https://github.com/acme/widget.git.
func ParseRepoURL(remote string) (string, error) {
	s := strings.TrimSpace(remote)
	s = strings.TrimSuffix(s, ".git")

	if after, ok := strings.CutPrefix(s, "git@"); ok {
		_, path, found := strings.Cut(after, ":")
		if !found {
			return "", goerr.New("unsupported remote URL", goerr.V("url", remote))
		}
		return repoFromPath(path, remote)
	}

	if u, err := url.Parse(s); err == nil && u.Host != "" {
		return repoFromPath(u.Path, remote)
	}

	return "", goerr.New("unsupported remote URL", goerr.V("url", remote))
}

func repoFromPath(path, original string) (string, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", goerr.New("cannot determine owner/repo from remote URL", goerr.V("url", original))
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1], nil
}

// splitRepo splits an "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", goerr.New("invalid repository name, expected owner/repo",
			goerr.V("repo", fullName))
	}
	return parts[0], parts[1], nil
}
