package usecase

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type statusUseCase struct {
	ci       interfaces.CIProvider
	poller   *CheckPoller
	required []string
}

// NewStatus creates a new instance of StatusUseCase
func NewStatus(ci interfaces.CIProvider, clk interfaces.Clock, cfg model.ReleaseConfig, opts ...PollerOption) interfaces.StatusUseCase {
	return &statusUseCase{
		ci:       ci,
		poller:   NewCheckPoller(ci, clk, cfg, opts...),
		required: cfg.RequiredChecks,
	}
}

// Snapshot fetches the commit's check runs once and reduces them.
func (uc *statusUseCase) Snapshot(ctx context.Context, sha string) (model.CheckSnapshot, error) {
	runs, err := uc.ci.ListCheckRuns(ctx, sha)
	if err != nil {
		return model.CheckSnapshot{}, goerr.Wrap(err, "failed to list check runs", goerr.V("commit", sha))
	}
	return model.NewCheckSnapshot(runs, uc.required), nil
}

// Await polls until the commit's verdict resolves or the budget runs out.
func (uc *statusUseCase) Await(ctx context.Context, sha string) (model.CheckVerdict, model.CheckSnapshot, error) {
	return uc.poller.Await(ctx, sha)
}
