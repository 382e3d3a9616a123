package slack

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// attachment bar colors keyed by notification level
var levelColors = map[model.NotifyLevel]string{
	model.NotifyInfo:    "good",
	model.NotifyWarning: "warning",
	model.NotifyError:   "danger",
}

type notifier struct {
	client  *slack.Client
	webhook string
	channel string
}

var _ interfaces.Notifier = (*notifier)(nil)

// New creates a notifier that posts via the Web API with a bot token. Extra
// options are forwarded to the underlying client; tests pass
// slack.OptionAPIURL to point at a local server.
func New(token, channel string, opts ...slack.Option) interfaces.Notifier {
	return &notifier{
		client:  slack.New(token, opts...),
		channel: channel,
	}
}

// NewWebhook creates a notifier that posts to an incoming webhook URL.
func NewWebhook(webhookURL string) interfaces.Notifier {
	return &notifier{webhook: webhookURL}
}

func (x *notifier) Notify(ctx context.Context, n model.Notification) error {
	attachment := slack.Attachment{
		Color:      levelColors[n.Level],
		Title:      n.Title,
		Text:       n.Body,
		MarkdownIn: []string{"text"},
	}

	if x.webhook != "" {
		msg := &slack.WebhookMessage{
			Attachments: []slack.Attachment{attachment},
		}
		if err := slack.PostWebhookContext(ctx, x.webhook, msg); err != nil {
			return goerr.Wrap(err, "failed to post slack webhook message",
				goerr.V("title", n.Title))
		}
		ctxlog.From(ctx).Debug("posted slack notification", "title", n.Title, "via", "webhook")
		return nil
	}

	_, ts, err := x.client.PostMessageContext(ctx, x.channel,
		slack.MsgOptionText(n.Title, false),
		slack.MsgOptionAttachments(attachment),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post slack message",
			goerr.V("channel", x.channel), goerr.V("title", n.Title))
	}

	ctxlog.From(ctx).Debug("posted slack notification", "title", n.Title, "ts", ts)
	return nil
}
