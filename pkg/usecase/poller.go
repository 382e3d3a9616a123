package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// Default polling cadence, used when the configuration leaves them zero.
const (
	DefaultPollInterval = 20 * time.Second
	DefaultPollTimeout  = 1800 * time.Second
)

// ProgressFunc is called once per poll that leaves the verdict unresolved.
type ProgressFunc func(snap model.CheckSnapshot, elapsed time.Duration)

// PollerOption configures a CheckPoller.
type PollerOption func(*CheckPoller)

// WithProgress registers a per-poll progress callback.
func WithProgress(fn ProgressFunc) PollerOption {
	return func(p *CheckPoller) {
		p.progress = fn
	}
}

// CheckPoller drives the check classification of one commit to a terminal
// verdict by polling at a fixed interval within a fixed time budget.
type CheckPoller struct {
	ci       interfaces.CIProvider
	clock    interfaces.Clock
	interval time.Duration
	timeout  time.Duration
	required []string
	progress ProgressFunc
}

// NewCheckPoller creates a poller bound to one CI provider and clock.
func NewCheckPoller(ci interfaces.CIProvider, clk interfaces.Clock, cfg model.ReleaseConfig, opts ...PollerOption) *CheckPoller {
	p := &CheckPoller{
		ci:       ci,
		clock:    clk,
		interval: cfg.PollInterval,
		timeout:  cfg.PollTimeout,
		required: cfg.RequiredChecks,
	}
	if p.interval <= 0 {
		p.interval = DefaultPollInterval
	}
	if p.timeout <= 0 {
		p.timeout = DefaultPollTimeout
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Await polls the commit until its checks resolve to success or failure, or
// the time budget runs out. Elapsed time accumulates in whole intervals;
// reaching the budget yields VerdictTimeout, which is distinct from failure.
// An error is returned only when the context is cancelled mid-poll.
func (p *CheckPoller) Await(ctx context.Context, sha string) (model.CheckVerdict, model.CheckSnapshot, error) {
	logger := ctxlog.From(ctx)

	var elapsed time.Duration
	var last model.CheckSnapshot

	for {
		runs, err := p.ci.ListCheckRuns(ctx, sha)
		if err != nil {
			if ctx.Err() != nil {
				return model.VerdictPending, last, goerr.Wrap(err, "polling interrupted", goerr.V("commit", sha))
			}
			// A transient API failure consumes one poll and keeps the
			// verdict pending.
			logger.Warn("failed to list check runs, counting the poll as pending",
				"error", err,
				"commit", sha,
			)
			last = model.CheckSnapshot{}
		} else {
			last = model.NewCheckSnapshot(runs, p.required)
		}

		if v := last.Verdict(); v == model.VerdictSuccess || v == model.VerdictFailure {
			logger.Info("checks resolved",
				"commit", sha,
				"verdict", v,
				"checks", last.Summary(),
			)
			return v, last, nil
		}

		if p.progress != nil {
			p.progress(last, elapsed)
		}

		elapsed += p.interval
		if elapsed >= p.timeout {
			logger.Warn("polling budget exhausted",
				"commit", sha,
				"elapsed", elapsed,
				"timeout", p.timeout,
				"checks", last.Summary(),
			)
			return model.VerdictTimeout, last, nil
		}

		select {
		case <-ctx.Done():
			return model.VerdictPending, last, goerr.Wrap(ctx.Err(), "polling interrupted", goerr.V("commit", sha))
		case <-p.clock.After(p.interval):
		}
	}
}
