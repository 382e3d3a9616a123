package interfaces

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// CIProvider defines the GitHub-side operations of a release run: reading
// check runs, filing tracking issues and dispatching the release workflow.
// Implementations are bound to a single owner/repo at construction.
type CIProvider interface {
	// ListCheckRuns returns every check run reported for the commit. All
	// pages are fetched; the slice order is not significant.
	ListCheckRuns(ctx context.Context, sha string) ([]model.CheckRun, error)

	// CreateIssue files a tracking issue and returns its HTML URL.
	CreateIssue(ctx context.Context, title, body string, labels []string) (string, error)

	// DispatchWorkflow triggers a workflow_dispatch event for the workflow
	// file on the given ref.
	DispatchWorkflow(ctx context.Context, workflowFile, ref string, inputs map[string]any) error

	// RepositoryExists reports whether the bound repository is reachable
	// with the configured credentials.
	RepositoryExists(ctx context.Context) (bool, error)
}
