package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestCheckPoller_Await_ResolvesImmediately(t *testing.T) {
	ctx := context.Background()

	ci := &MockCI{
		listFunc: func(ctx context.Context, sha string) ([]model.CheckRun, error) {
			return passingChecks("lint", "test"), nil
		},
	}
	fake := newFakeClock()

	poller := usecase.NewCheckPoller(ci, fake, testConfig())
	verdict, snap, err := poller.Await(ctx, "s-c1")

	gt.NoError(t, err)
	gt.Equal(t, verdict, model.VerdictSuccess)
	gt.Equal(t, snap.Succeeded, 2)
	gt.Equal(t, len(ci.listCalls), 1)
	gt.Equal(t, len(fake.Waits()), 0)
}

func TestCheckPoller_Await_FailureStopsPolling(t *testing.T) {
	ctx := context.Background()

	// Pending twice, then a hard failure
	calls := 0
	ci := &MockCI{
		listFunc: func(ctx context.Context, sha string) ([]model.CheckRun, error) {
			calls++
			if calls < 3 {
				return []model.CheckRun{{Name: "lint", Status: "in_progress"}}, nil
			}
			return []model.CheckRun{{Name: "lint", Status: "completed", Conclusion: "failure"}}, nil
		},
	}
	fake := newFakeClock()

	poller := usecase.NewCheckPoller(ci, fake, testConfig())
	verdict, _, err := poller.Await(ctx, "s-c1")

	gt.NoError(t, err)
	gt.Equal(t, verdict, model.VerdictFailure)
	gt.Equal(t, len(ci.listCalls), 3)
	gt.Equal(t, len(fake.Waits()), 2)
}

func TestCheckPoller_Await_ExactPollBudget(t *testing.T) {
	ctx := context.Background()

	// Status stays pending forever
	ci := &MockCI{
		listFunc: func(ctx context.Context, sha string) ([]model.CheckRun, error) {
			return []model.CheckRun{{Name: "lint", Status: "queued"}}, nil
		},
	}
	fake := newFakeClock()

	// Interval 20s, budget 100s: polls at 0, 20, 40, 60 and 80 seconds,
	// then the budget is met and the verdict is timeout.
	poller := usecase.NewCheckPoller(ci, fake, testConfig())
	verdict, _, err := poller.Await(ctx, "s-c1")

	gt.NoError(t, err)
	gt.Equal(t, verdict, model.VerdictTimeout)
	gt.Equal(t, len(ci.listCalls), 5)
	gt.Equal(t, len(fake.Waits()), 4)
}

func TestCheckPoller_Await_BudgetBoundaryIsInclusive(t *testing.T) {
	ctx := context.Background()

	ci := &MockCI{
		listFunc: func(ctx context.Context, sha string) ([]model.CheckRun, error) {
			return nil, nil
		},
	}
	fake := newFakeClock()

	cfg := testConfig()
	cfg.PollInterval = 30 * time.Second
	cfg.PollTimeout = 60 * time.Second

	poller := usecase.NewCheckPoller(ci, fake, cfg)
	verdict, _, err := poller.Await(ctx, "s-c1")

	// Elapsed reaches exactly 60s after the second poll: meeting the budget
	// already times out.
	gt.NoError(t, err)
	gt.Equal(t, verdict, model.VerdictTimeout)
	gt.Equal(t, len(ci.listCalls), 2)
}

func TestCheckPoller_Await_TransientErrorCountsAsPending(t *testing.T) {
	ctx := context.Background()

	calls := 0
	ci := &MockCI{
		listFunc: func(ctx context.Context, sha string) ([]model.CheckRun, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("HTTP 502")
			}
			return passingChecks("lint", "test"), nil
		},
	}
	fake := newFakeClock()

	poller := usecase.NewCheckPoller(ci, fake, testConfig())
	verdict, _, err := poller.Await(ctx, "s-c1")

	gt.NoError(t, err)
	gt.Equal(t, verdict, model.VerdictSuccess)
	gt.Equal(t, len(ci.listCalls), 2)
	gt.Equal(t, len(fake.Waits()), 1)
}

func TestCheckPoller_Await_ProgressPerPendingPoll(t *testing.T) {
	ctx := context.Background()

	ci := &MockCI{
		listFunc: func(ctx context.Context, sha string) ([]model.CheckRun, error) {
			return []model.CheckRun{{Name: "lint", Status: "in_progress"}}, nil
		},
	}
	fake := newFakeClock()

	var elapsed []time.Duration
	poller := usecase.NewCheckPoller(ci, fake, testConfig(),
		usecase.WithProgress(func(snap model.CheckSnapshot, e time.Duration) {
			elapsed = append(elapsed, e)
		}))

	verdict, _, err := poller.Await(ctx, "s-c1")

	gt.NoError(t, err)
	gt.Equal(t, verdict, model.VerdictTimeout)
	gt.Equal(t, len(elapsed), 5)
	gt.Equal(t, elapsed[0], time.Duration(0))
	gt.Equal(t, elapsed[4], 80*time.Second)
}

func TestCheckPoller_Await_CancellationInterrupts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	ci := &MockCI{
		listFunc: func(ctx context.Context, sha string) ([]model.CheckRun, error) {
			calls++
			if calls == 2 {
				cancel()
				return nil, ctx.Err()
			}
			return []model.CheckRun{{Name: "lint", Status: "queued"}}, nil
		},
	}
	fake := newFakeClock()

	poller := usecase.NewCheckPoller(ci, fake, testConfig())
	_, _, err := poller.Await(ctx, "s-c1")

	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("interrupted")
	gt.Equal(t, len(ci.listCalls), 2)
}
