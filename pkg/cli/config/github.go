package config

import (
	"os"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/types"
	githubinfra "github.com/m-mizutani/drover/pkg/infra/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub API credentials. Token auth and App auth are mutually
// exclusive; App auth requires all three app values.
type GitHub struct {
	Token          string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKeyFile string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token (PAT or Actions token)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("DROVER_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("DROVER_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("DROVER_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to the GitHub App private key file",
			Destination: &c.PrivateKeyFile,
			Sources:     cli.EnvVars("DROVER_GITHUB_PRIVATE_KEY"),
		},
	}
}

// Build constructs a CIProvider bound to repo from whichever auth mode is
// configured.
func (c *GitHub) Build(repo string) (interfaces.CIProvider, error) {
	switch {
	case c.Token != "":
		return githubinfra.New(c.Token, repo)

	case c.AppID != 0 || c.InstallationID != 0 || c.PrivateKeyFile != "":
		if c.AppID == 0 || c.InstallationID == 0 || c.PrivateKeyFile == "" {
			return nil, goerr.New("GitHub App auth requires app ID, installation ID and private key",
				goerr.T(types.ErrTagInput))
		}
		key, err := os.ReadFile(c.PrivateKeyFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read GitHub App private key",
				goerr.V("path", c.PrivateKeyFile), goerr.T(types.ErrTagInput))
		}
		return githubinfra.NewWithApp(c.AppID, c.InstallationID, key, repo)

	default:
		return nil, goerr.New("GitHub credentials are required: set --github-token or the App auth flags",
			goerr.T(types.ErrTagInput))
	}
}
