package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/drover/pkg/cli/config"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/drover/pkg/infra/git"
	"github.com/m-mizutani/drover/pkg/usecase"
	"github.com/m-mizutani/drover/pkg/utils/clock"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdStatus() *cli.Command {
	var (
		releaseCfg config.Release
		githubCfg  config.GitHub
		wait       bool
	)

	flags := append(releaseCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "wait",
		Usage:       "Poll until checks resolve instead of taking a single snapshot",
		Destination: &wait,
		Sources:     cli.EnvVars("DROVER_WAIT"),
	})

	return &cli.Command{
		Name:      "status",
		Aliases:   []string{"st"},
		Usage:     "Classify the CI check runs reported for a commit",
		ArgsUsage: "<commit>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			args := c.Args().Slice()
			if len(args) != 1 {
				return goerr.New("usage: drover status <commit>",
					goerr.T(types.ErrTagInput))
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
			}

			ci, err := githubCfg.Build(cfg.Repo)
			if err != nil {
				return err
			}

			commit, err := vcs.CommitInfo(ctx, args[0])
			if err != nil {
				return goerr.Wrap(err, "unknown commit",
					goerr.V("commit", args[0]), goerr.T(types.ErrTagInput))
			}

			uc := usecase.NewStatus(ci, clock.New(), cfg, usecase.WithProgress(renderProgress))

			var (
				verdict model.CheckVerdict
				snap    model.CheckSnapshot
			)
			if wait {
				verdict, snap, err = uc.Await(ctx, commit.SHA)
				if err != nil {
					return err
				}
			} else {
				snap, err = uc.Snapshot(ctx, commit.SHA)
				if err != nil {
					return err
				}
				verdict = snap.Verdict()
			}

			printStatus(os.Stdout, commit, verdict, snap)

			if verdict == model.VerdictFailure || verdict == model.VerdictTimeout {
				return goerr.New("checks did not pass",
					goerr.V("commit", commit.SHA), goerr.V("verdict", verdict),
					goerr.T(types.ErrTagValidation))
			}
			return nil
		},
	}
}
