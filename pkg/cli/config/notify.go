package config

import (
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/types"
	slackinfra "github.com/m-mizutani/drover/pkg/infra/slack"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Notify holds Slack notification settings. With nothing set, notifications
// are disabled.
type Notify struct {
	SlackWebhook string `masq:"secret"`
	SlackToken   string `masq:"secret"`
	SlackChannel string
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook",
			Usage:       "Slack incoming webhook URL",
			Destination: &c.SlackWebhook,
			Sources:     cli.EnvVars("DROVER_SLACK_WEBHOOK"),
		},
		&cli.StringFlag{
			Name:        "slack-token",
			Usage:       "Slack bot token (requires --slack-channel)",
			Destination: &c.SlackToken,
			Sources:     cli.EnvVars("DROVER_SLACK_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID to notify",
			Destination: &c.SlackChannel,
			Sources:     cli.EnvVars("DROVER_SLACK_CHANNEL"),
		},
	}
}

// Build returns a notifier for the configured channel, or nil when
// notifications are disabled.
func (c *Notify) Build() (interfaces.Notifier, error) {
	switch {
	case c.SlackWebhook != "":
		return slackinfra.NewWebhook(c.SlackWebhook), nil
	case c.SlackToken != "" && c.SlackChannel != "":
		return slackinfra.New(c.SlackToken, c.SlackChannel), nil
	case c.SlackToken != "" || c.SlackChannel != "":
		return nil, goerr.New("slack token and channel must be set together",
			goerr.T(types.ErrTagInput))
	default:
		return nil, nil
	}
}
