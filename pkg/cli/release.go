package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/cli/config"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/drover/pkg/infra/git"
	githubinfra "github.com/m-mizutani/drover/pkg/infra/github"
	"github.com/m-mizutani/drover/pkg/usecase"
	"github.com/m-mizutani/drover/pkg/utils/clock"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdRelease() *cli.Command {
	var (
		releaseCfg config.Release
		githubCfg  config.GitHub
		notifyCfg  config.Notify
		assumeYes  bool
		dryRun     bool
	)

	flags := append(releaseCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:        "yes",
			Aliases:     []string{"y"},
			Usage:       "Skip the confirmation prompt",
			Destination: &assumeYes,
			Sources:     cli.EnvVars("DROVER_YES"),
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Print the plan and stop",
			Destination: &dryRun,
			Sources:     cli.EnvVars("DROVER_DRY_RUN"),
		},
	)

	return &cli.Command{
		Name:      "release",
		Aliases:   []string{"r"},
		Usage:     "Cherry-pick commits onto staging, validate each via CI, trigger the release workflow",
		ArgsUsage: "<tag> <commit...|A..B>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			args := c.Args().Slice()
			if len(args) < 2 {
				return goerr.New("usage: drover release <tag> <commit...|A..B>",
					goerr.T(types.ErrTagInput))
			}
			tag, commitArgs := args[0], args[1:]

			if err := model.ValidateTag(tag); err != nil {
				return err
			}

			cfg, err := releaseCfg.Load(c)
			if err != nil {
				return err
			}

			vcs := git.New()
			if cfg.Repo == "" {
				cfg.Repo, err = deriveRepo(ctx, vcs, cfg.Remote)
				if err != nil {
					return err
				}
				logger.Debug("derived repository from remote",
					"repo", cfg.Repo, "remote", cfg.Remote)
			}

			ci, err := githubCfg.Build(cfg.Repo)
			if err != nil {
				return err
			}

			ok, err := ci.RepositoryExists(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to verify repository",
					goerr.V("repo", cfg.Repo), goerr.T(types.ErrTagInput))
			}
			if !ok {
				return goerr.New("repository not found or not accessible",
					goerr.V("repo", cfg.Repo), goerr.T(types.ErrTagInput))
			}

			notifier, err := notifyCfg.Build()
			if err != nil {
				return err
			}

			logger.Debug("loaded configuration",
				"release", cfg,
				"github", githubCfg,
				"notify", notifyCfg,
			)

			opts := []usecase.ReleaseOption{usecase.WithPollProgress(renderProgress)}
			if notifier != nil {
				opts = append(opts, usecase.WithNotifier(notifier))
			}
			uc := usecase.NewRelease(vcs, ci, clock.New(), cfg, opts...)

			commits, err := uc.ResolveCommits(ctx, commitArgs)
			if err != nil {
				return err
			}

			printPlan(os.Stdout, tag, cfg, commits)
			if dryRun {
				fmt.Println("dry run, stopping before any change")
				return nil
			}

			if !newPrompter(assumeYes).Confirm(fmt.Sprintf("Proceed with release %s?", tag)) {
				fmt.Println("aborted, nothing was changed")
				return nil
			}

			req, err := model.NewReleaseRequest(tag, commits)
			if err != nil {
				return err
			}

			report, err := uc.Run(ctx, req)
			if err != nil {
				if goerr.HasTag(err, types.ErrTagTrigger) {
					printTriggerWarning(os.Stdout, cfg, report)
					return nil
				}
				return err
			}

			printReport(os.Stdout, report)
			return nil
		},
	}
}

// deriveRepo reads owner/name from the remote URL when --repo is not given.
func deriveRepo(ctx context.Context, vcs interfaces.VersionControl, remote string) (string, error) {
	remoteURL, err := vcs.RemoteURL(ctx, remote)
	if err != nil {
		return "", goerr.Wrap(err, "cannot determine repository, pass --repo",
			goerr.V("remote", remote), goerr.T(types.ErrTagInput))
	}

	repo, err := githubinfra.ParseRepoURL(remoteURL)
	if err != nil {
		return "", goerr.Wrap(err, "cannot determine repository, pass --repo",
			goerr.V("remote", remote), goerr.T(types.ErrTagInput))
	}
	return repo, nil
}
