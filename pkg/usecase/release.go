package usecase

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type releaseUseCase struct {
	vcs      interfaces.VersionControl
	ci       interfaces.CIProvider
	clock    interfaces.Clock
	notifier interfaces.Notifier
	poller   *CheckPoller
	cfg      model.ReleaseConfig
	progress ProgressFunc
	newRunID func() string
}

// ReleaseOption configures the release use case.
type ReleaseOption func(*releaseUseCase)

// WithNotifier attaches a notification channel. Without one, runs are only
// reported through logs.
func WithNotifier(n interfaces.Notifier) ReleaseOption {
	return func(uc *releaseUseCase) {
		uc.notifier = n
	}
}

// WithPollProgress forwards per-poll progress to the caller, typically for
// terminal output.
func WithPollProgress(fn ProgressFunc) ReleaseOption {
	return func(uc *releaseUseCase) {
		uc.progress = fn
	}
}

// NewRelease creates a new instance of ReleaseUseCase
func NewRelease(
	vcs interfaces.VersionControl,
	ci interfaces.CIProvider,
	clk interfaces.Clock,
	cfg model.ReleaseConfig,
	opts ...ReleaseOption,
) interfaces.ReleaseUseCase {
	uc := &releaseUseCase{
		vcs:      vcs,
		ci:       ci,
		clock:    clk,
		cfg:      cfg,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.poller = NewCheckPoller(ci, clk, cfg, WithProgress(uc.progress))
	return uc
}

// ResolveCommits expands the positional commit arguments into full commit
// metadata. A single A..B argument expands to every commit reachable from B
// but not A, oldest first; otherwise each argument must name one commit. A
// range cannot be combined with other arguments, wherever it appears.
func (uc *releaseUseCase) ResolveCommits(ctx context.Context, args []string) ([]model.CommitRef, error) {
	if len(args) == 0 {
		return nil, goerr.New("no commits given", goerr.T(types.ErrTagInput))
	}

	hasRange := false
	for _, arg := range args {
		if strings.Contains(arg, "..") {
			hasRange = true
			break
		}
	}

	ids := args
	if hasRange {
		if len(args) > 1 {
			return nil, goerr.New("a commit range cannot be combined with other commits",
				goerr.V("args", args), goerr.T(types.ErrTagInput))
		}
		expanded, err := uc.vcs.ExpandRange(ctx, args[0])
		if err != nil {
			return nil, goerr.Wrap(err, "failed to expand commit range",
				goerr.V("range", args[0]), goerr.T(types.ErrTagInput))
		}
		if len(expanded) == 0 {
			return nil, goerr.New("commit range is empty",
				goerr.V("range", args[0]), goerr.T(types.ErrTagInput))
		}
		ids = expanded
	}

	refs := make([]model.CommitRef, 0, len(ids))
	for _, id := range ids {
		ref, err := uc.vcs.CommitInfo(ctx, id)
		if err != nil {
			return nil, goerr.Wrap(err, "unknown commit",
				goerr.V("commit", id), goerr.T(types.ErrTagInput))
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Run executes the staged-release pipeline. Commits are applied strictly in
// request order; the first conflict or failed validation terminates the run
// and later commits are never attempted.
func (uc *releaseUseCase) Run(ctx context.Context, req *model.ReleaseRequest) (*model.RunReport, error) {
	logger := ctxlog.From(ctx)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	report := &model.RunReport{RunID: uc.newRunID(), Tag: req.Tag, StartedAt: uc.clock.Now()}
	defer func() { report.FinishedAt = uc.clock.Now() }()

	logger.Info("starting release run",
		"run_id", report.RunID,
		"tag", req.Tag,
		"commits", len(req.Commits),
		"repo", uc.cfg.Repo,
		"staging", uc.cfg.StagingBranch,
	)

	if err := uc.prepareStaging(ctx); err != nil {
		return report, err
	}

	for _, commit := range req.Commits {
		outcome, err := uc.applyCommit(ctx, report, commit)
		report.Outcomes = append(report.Outcomes, outcome)
		if err != nil {
			uc.notify(ctx, failureNotification(report, outcome, err))
			return report, err
		}
	}

	if err := uc.triggerRelease(ctx, req); err != nil {
		logger.Warn("release workflow dispatch failed, staging is validated and intact",
			"error", err,
			"workflow", uc.cfg.WorkflowFile,
			"tag", req.Tag,
		)
		uc.notify(ctx, summaryNotification(report, err))
		return report, err
	}
	report.Triggered = true

	logger.Info("release run finished",
		"run_id", report.RunID,
		"tag", req.Tag,
		"validated", len(report.Validated()),
	)
	uc.notify(ctx, summaryNotification(report, nil))
	return report, nil
}

// prepareStaging aligns the local staging branch with the remote before any
// pick is attempted.
func (uc *releaseUseCase) prepareStaging(ctx context.Context) error {
	logger := ctxlog.From(ctx)
	logger.Info("preparing staging branch",
		"remote", uc.cfg.Remote,
		"branch", uc.cfg.StagingBranch,
	)

	if err := uc.vcs.Fetch(ctx, uc.cfg.Remote); err != nil {
		return goerr.Wrap(err, "failed to fetch remote", goerr.V("remote", uc.cfg.Remote))
	}
	if err := uc.vcs.Checkout(ctx, uc.cfg.StagingBranch); err != nil {
		return goerr.Wrap(err, "failed to checkout staging branch", goerr.V("branch", uc.cfg.StagingBranch))
	}
	if err := uc.vcs.ResetHard(ctx, uc.cfg.StagingRef()); err != nil {
		return goerr.Wrap(err, "failed to reset staging branch", goerr.V("ref", uc.cfg.StagingRef()))
	}
	return nil
}

// applyCommit runs one commit through pick, push and CI validation. On
// conflict the branch is reset to the remote; on failed validation the pick
// is reverted and the revert pushed. Both paths file a tracking issue and
// return a classified error that stops the run.
func (uc *releaseUseCase) applyCommit(ctx context.Context, report *model.RunReport, commit model.CommitRef) (model.CommitOutcome, error) {
	logger := ctxlog.From(ctx)
	outcome := model.CommitOutcome{Commit: commit, State: model.StatePicking}

	logger.Info("picking commit",
		"commit", commit.Short(),
		"subject", commit.Subject,
	)

	if err := uc.vcs.CherryPick(ctx, commit.SHA); err != nil {
		if abortErr := uc.vcs.CherryPickAbort(ctx); abortErr != nil {
			logger.Warn("cherry-pick abort failed", "error", abortErr)
		}
		if resetErr := uc.vcs.ResetHard(ctx, uc.cfg.StagingRef()); resetErr != nil {
			logger.Error("failed to reset staging after conflict", "error", resetErr)
		}
		title, body := conflictIssue(report, commit, err, uc.cfg)
		report.IssueURL = uc.fileIssue(ctx, title, body)
		return outcome, goerr.Wrap(err, "cherry-pick conflict",
			goerr.V("commit", commit.SHA), goerr.T(types.ErrTagConflict))
	}

	stagingSHA, err := uc.vcs.HeadSHA(ctx)
	if err != nil {
		return outcome, goerr.Wrap(err, "failed to read staging tip")
	}
	outcome.StagingSHA = stagingSHA

	if err := uc.vcs.Push(ctx, uc.cfg.Remote, uc.cfg.StagingBranch); err != nil {
		// The remote was not updated, so drop the local pick and leave both
		// sides where the run found them.
		if resetErr := uc.vcs.ResetHard(ctx, uc.cfg.StagingRef()); resetErr != nil {
			logger.Error("failed to reset staging after push failure", "error", resetErr)
		}
		return outcome, goerr.Wrap(err, "failed to push staging branch",
			goerr.V("commit", commit.SHA), goerr.V("branch", uc.cfg.StagingBranch))
	}
	outcome.State = model.StatePushed
	logger.Info("pushed to staging",
		"commit", commit.Short(),
		"staging_sha", stagingSHA,
		"branch", uc.cfg.StagingBranch,
	)

	outcome.State = model.StateAwaitingCI
	verdict, snap, err := uc.poller.Await(ctx, stagingSHA)
	if err != nil {
		return outcome, err
	}
	outcome.CIResult = verdict

	if verdict == model.VerdictSuccess {
		outcome.State = model.StateValidated
		logger.Info("commit validated",
			"commit", commit.Short(),
			"staging_sha", stagingSHA,
			"checks", snap.Summary(),
		)
		return outcome, nil
	}

	logger.Error("commit failed validation",
		"commit", commit.Short(),
		"staging_sha", stagingSHA,
		"verdict", verdict,
		"checks", snap.Summary(),
	)

	if err := uc.vcs.RevertHead(ctx); err != nil {
		return outcome, goerr.Wrap(err, "failed to revert staging tip",
			goerr.V("staging_sha", stagingSHA), goerr.T(types.ErrTagValidation))
	}
	if err := uc.vcs.Push(ctx, uc.cfg.Remote, uc.cfg.StagingBranch); err != nil {
		return outcome, goerr.Wrap(err, "failed to push revert",
			goerr.V("staging_sha", stagingSHA), goerr.T(types.ErrTagValidation))
	}
	outcome.State = model.StateReverted

	title, body := validationIssue(report, outcome, snap, uc.cfg)
	report.IssueURL = uc.fileIssue(ctx, title, body)

	return outcome, goerr.New("CI did not validate the commit",
		goerr.V("commit", commit.SHA),
		goerr.V("staging_sha", stagingSHA),
		goerr.V("verdict", string(verdict)),
		goerr.T(types.ErrTagValidation))
}

// triggerRelease dispatches the tag workflow once every commit is validated.
func (uc *releaseUseCase) triggerRelease(ctx context.Context, req *model.ReleaseRequest) error {
	logger := ctxlog.From(ctx)

	prerelease := uc.cfg.Prerelease || req.IsPrerelease()
	inputs := map[string]any{
		"tag":            req.Tag,
		"create_release": "true",
		"prerelease":     strconv.FormatBool(prerelease),
	}

	logger.Info("dispatching release workflow",
		"workflow", uc.cfg.WorkflowFile,
		"ref", uc.cfg.StagingBranch,
		"tag", req.Tag,
		"prerelease", prerelease,
	)

	if err := uc.ci.DispatchWorkflow(ctx, uc.cfg.WorkflowFile, uc.cfg.StagingBranch, inputs); err != nil {
		return goerr.Wrap(err, "failed to dispatch release workflow",
			goerr.V("workflow", uc.cfg.WorkflowFile),
			goerr.V("tag", req.Tag),
			goerr.T(types.ErrTagTrigger))
	}
	return nil
}

// fileIssue creates a tracking issue and returns its URL. Issue creation is
// best effort: a failure is logged and the run keeps its original outcome.
func (uc *releaseUseCase) fileIssue(ctx context.Context, title, body string) string {
	logger := ctxlog.From(ctx)

	url, err := uc.ci.CreateIssue(ctx, title, body, uc.cfg.IssueLabels)
	if err != nil {
		logger.Error("failed to create tracking issue",
			"error", err,
			"title", title,
		)
		return ""
	}
	logger.Info("tracking issue created", "url", url)
	return url
}

func (uc *releaseUseCase) notify(ctx context.Context, n model.Notification) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Notify(ctx, n); err != nil {
		ctxlog.From(ctx).Warn("notification failed",
			"error", err,
			"title", n.Title,
		)
	}
}
