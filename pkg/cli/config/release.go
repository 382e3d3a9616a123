package config

import (
	"os"
	"time"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Release holds the release pipeline settings. Values resolve as
// flags/env > config file > built-in defaults.
type Release struct {
	Repo           string
	Remote         string
	StagingBranch  string
	RequiredChecks []string
	PollInterval   time.Duration
	PollTimeout    time.Duration
	WorkflowFile   string
	IssueLabels    []string
	Prerelease     bool
	ConfigPath     string
}

// defaultRequiredChecks must all report on a staging commit before it can
// validate.
var defaultRequiredChecks = []string{"test (3.11)", "test (3.12)", "lint"}

// Flags returns CLI flags for release configuration
func (c *Release) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Repository as owner/name (default: derived from the git remote)",
			Destination: &c.Repo,
			Sources:     cli.EnvVars("DROVER_REPO"),
		},
		&cli.StringFlag{
			Name:        "remote",
			Usage:       "Git remote to push to",
			Value:       "origin",
			Destination: &c.Remote,
			Sources:     cli.EnvVars("DROVER_REMOTE"),
		},
		&cli.StringFlag{
			Name:        "staging-branch",
			Usage:       "Branch that receives cherry-picked commits",
			Value:       "staging",
			Destination: &c.StagingBranch,
			Sources:     cli.EnvVars("DROVER_STAGING_BRANCH"),
		},
		&cli.StringSliceFlag{
			Name:        "required-check",
			Usage:       "Check name that must report before a commit can validate (repeatable)",
			Value:       defaultRequiredChecks,
			Destination: &c.RequiredChecks,
			Sources:     cli.EnvVars("DROVER_REQUIRED_CHECKS"),
		},
		&cli.DurationFlag{
			Name:        "poll-interval",
			Usage:       "Wait between CI polls",
			Value:       20 * time.Second,
			Destination: &c.PollInterval,
			Sources:     cli.EnvVars("DROVER_POLL_INTERVAL"),
		},
		&cli.DurationFlag{
			Name:        "poll-timeout",
			Usage:       "Total CI polling budget per commit",
			Value:       30 * time.Minute,
			Destination: &c.PollTimeout,
			Sources:     cli.EnvVars("DROVER_POLL_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:        "workflow-file",
			Usage:       "Workflow file dispatched after all commits validate",
			Value:       "release-tag.yml",
			Destination: &c.WorkflowFile,
			Sources:     cli.EnvVars("DROVER_WORKFLOW_FILE"),
		},
		&cli.StringSliceFlag{
			Name:        "issue-label",
			Usage:       "Label attached to tracking issues (repeatable)",
			Value:       []string{"release-blocker"},
			Destination: &c.IssueLabels,
			Sources:     cli.EnvVars("DROVER_ISSUE_LABELS"),
		},
		&cli.BoolFlag{
			Name:        "prerelease",
			Usage:       "Mark the created release as a prerelease",
			Destination: &c.Prerelease,
			Sources:     cli.EnvVars("DROVER_PRERELEASE"),
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to a TOML config file",
			Destination: &c.ConfigPath,
			Sources:     cli.EnvVars("DROVER_CONFIG"),
		},
	}
}

// fileConfig is the TOML config file shape. Durations are strings accepted
// by time.ParseDuration.
type fileConfig struct {
	Repo           string   `toml:"repo"`
	Remote         string   `toml:"remote"`
	StagingBranch  string   `toml:"staging_branch"`
	RequiredChecks []string `toml:"required_checks"`
	PollInterval   string   `toml:"poll_interval"`
	PollTimeout    string   `toml:"poll_timeout"`
	WorkflowFile   string   `toml:"workflow_file"`
	IssueLabels    []string `toml:"issue_labels"`
	Prerelease     *bool    `toml:"prerelease"`
}

// Load merges the flag values with the optional config file and returns the
// settings the pipeline runs with. Flags and environment variables win over
// the file; the file wins over built-in defaults.
func (c *Release) Load(cmd *cli.Command) (model.ReleaseConfig, error) {
	cfg := model.ReleaseConfig{
		Repo:           c.Repo,
		Remote:         c.Remote,
		StagingBranch:  c.StagingBranch,
		RequiredChecks: c.RequiredChecks,
		PollInterval:   c.PollInterval,
		PollTimeout:    c.PollTimeout,
		WorkflowFile:   c.WorkflowFile,
		IssueLabels:    c.IssueLabels,
		Prerelease:     c.Prerelease,
	}

	if c.ConfigPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(c.ConfigPath)
	if err != nil {
		return cfg, goerr.Wrap(err, "failed to read config file",
			goerr.V("path", c.ConfigPath), goerr.T(types.ErrTagInput))
	}

	var file fileConfig
	if err := toml.Unmarshal(data, &file); err != nil {
		return cfg, goerr.Wrap(err, "failed to parse config file",
			goerr.V("path", c.ConfigPath), goerr.T(types.ErrTagInput))
	}

	if !cmd.IsSet("repo") && file.Repo != "" {
		cfg.Repo = file.Repo
	}
	if !cmd.IsSet("remote") && file.Remote != "" {
		cfg.Remote = file.Remote
	}
	if !cmd.IsSet("staging-branch") && file.StagingBranch != "" {
		cfg.StagingBranch = file.StagingBranch
	}
	if !cmd.IsSet("required-check") && len(file.RequiredChecks) > 0 {
		cfg.RequiredChecks = file.RequiredChecks
	}
	if !cmd.IsSet("poll-interval") && file.PollInterval != "" {
		d, err := time.ParseDuration(file.PollInterval)
		if err != nil {
			return cfg, goerr.Wrap(err, "invalid poll_interval in config file",
				goerr.V("value", file.PollInterval), goerr.T(types.ErrTagInput))
		}
		cfg.PollInterval = d
	}
	if !cmd.IsSet("poll-timeout") && file.PollTimeout != "" {
		d, err := time.ParseDuration(file.PollTimeout)
		if err != nil {
			return cfg, goerr.Wrap(err, "invalid poll_timeout in config file",
				goerr.V("value", file.PollTimeout), goerr.T(types.ErrTagInput))
		}
		cfg.PollTimeout = d
	}
	if !cmd.IsSet("workflow-file") && file.WorkflowFile != "" {
		cfg.WorkflowFile = file.WorkflowFile
	}
	if !cmd.IsSet("issue-label") && len(file.IssueLabels) > 0 {
		cfg.IssueLabels = file.IssueLabels
	}
	if !cmd.IsSet("prerelease") && file.Prerelease != nil {
		cfg.Prerelease = *file.Prerelease
	}

	return cfg, nil
}
