package interfaces

//go:generate moq -out mocks/usecase_mock.go -pkg mocks . ReleaseUseCase

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// ReleaseUseCase defines the staged-release pipeline.
type ReleaseUseCase interface {
	// ResolveCommits expands the command-line commit arguments (hashes or a
	// single A..B range) into full commit metadata, preserving order.
	ResolveCommits(ctx context.Context, args []string) ([]model.CommitRef, error)

	// Run executes the pipeline for a validated request: prepare the staging
	// branch, pick and validate each commit, then dispatch the release
	// workflow. The returned report is non-nil whenever the run got past
	// validation, including on error.
	Run(ctx context.Context, req *model.ReleaseRequest) (*model.RunReport, error)
}

// StatusUseCase defines read-only CI queries against a single commit.
type StatusUseCase interface {
	// Snapshot fetches the commit's check runs once and reduces them.
	Snapshot(ctx context.Context, sha string) (model.CheckSnapshot, error)

	// Await polls the commit until the verdict resolves or the polling
	// budget runs out. Timeout is reported as a verdict, not an error.
	Await(ctx context.Context, sha string) (model.CheckVerdict, model.CheckSnapshot, error)
}
