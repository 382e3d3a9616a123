package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestStatusUseCase_Snapshot(t *testing.T) {
	ctx := context.Background()

	ci := &MockCI{
		listFunc: func(ctx context.Context, sha string) ([]model.CheckRun, error) {
			return []model.CheckRun{
				{Name: "lint", Status: "completed", Conclusion: "success"},
				{Name: "test", Status: "in_progress"},
			}, nil
		},
	}

	uc := usecase.NewStatus(ci, newFakeClock(), testConfig())
	snap, err := uc.Snapshot(ctx, "abc1234")

	gt.NoError(t, err)
	gt.Equal(t, snap.Total, 2)
	gt.Equal(t, snap.Pending, 1)
	gt.Equal(t, snap.Verdict(), model.VerdictPending)
	gt.Equal(t, ci.listCalls[0], "abc1234")
}

func TestStatusUseCase_SnapshotError(t *testing.T) {
	ctx := context.Background()

	ci := &MockCI{
		listFunc: func(ctx context.Context, sha string) ([]model.CheckRun, error) {
			return nil, errors.New("HTTP 404")
		},
	}

	uc := usecase.NewStatus(ci, newFakeClock(), testConfig())
	_, err := uc.Snapshot(ctx, "abc1234")

	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("failed to list check runs")
}

func TestStatusUseCase_Await(t *testing.T) {
	ctx := context.Background()

	calls := 0
	ci := &MockCI{
		listFunc: func(ctx context.Context, sha string) ([]model.CheckRun, error) {
			calls++
			if calls == 1 {
				return []model.CheckRun{{Name: "lint", Status: "queued"}}, nil
			}
			return passingChecks("lint", "test"), nil
		},
	}

	uc := usecase.NewStatus(ci, newFakeClock(), testConfig())
	verdict, snap, err := uc.Await(ctx, "abc1234")

	gt.NoError(t, err)
	gt.Equal(t, verdict, model.VerdictSuccess)
	gt.Equal(t, snap.Succeeded, 2)
	gt.Equal(t, len(ci.listCalls), 2)
}
