package platform

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/coopco/postpilot/internal/config"
)

// SlackClient cross-posts text to a configured Slack channel.
type SlackClient struct {
	api     *slack.Client
	channel string
}

func NewSlackClient(cfg config.SlackConfig) *SlackClient {
	return &SlackClient{
		api:     slack.New(cfg.BotToken),
		channel: cfg.Channel,
	}
}

func (c *SlackClient) Name() string { return "slack" }

func (c *SlackClient) CreatePost(ctx context.Context, text string, mediaIDs []string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, c.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return "", fmt.Errorf("slack send failed: %w", err)
	}
	return ts, nil
}
