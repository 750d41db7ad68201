package platform

import (
	"context"
	"log/slog"
	"sync"

	"github.com/coopco/postpilot/internal/config"
)

// Manager holds the primary posting platform plus optional cross-post
// targets. The primary result decides success; cross-post failures are
// logged and never fail the publish.
type Manager struct {
	primary   Client
	crossPost []Client
	mu        sync.Mutex
}

func NewManager(primary Client) *Manager {
	return &Manager{primary: primary}
}

// FromConfig builds a Manager with the Twitter primary and whichever
// cross-post targets have credentials configured.
func FromConfig(cfg *config.Config) (*Manager, error) {
	m := NewManager(NewTwitterClient(cfg.Twitter))

	if cfg.CrossPost.Telegram.Token != "" {
		tg, err := NewTelegramClient(cfg.CrossPost.Telegram)
		if err != nil {
			return nil, err
		}
		m.AddCrossPost(tg)
	}
	if cfg.CrossPost.Discord.Token != "" {
		dc, err := NewDiscordClient(cfg.CrossPost.Discord)
		if err != nil {
			return nil, err
		}
		m.AddCrossPost(dc)
	}
	if cfg.CrossPost.Slack.BotToken != "" {
		m.AddCrossPost(NewSlackClient(cfg.CrossPost.Slack))
	}
	return m, nil
}

// Primary returns the primary posting platform.
func (m *Manager) Primary() Client {
	return m.primary
}

// AddCrossPost registers a secondary publish target.
func (m *Manager) AddCrossPost(c Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.crossPost = append(m.crossPost, c)
}

// CrossPost sends text to every secondary target, logging failures.
func (m *Manager) CrossPost(ctx context.Context, text string) {
	m.mu.Lock()
	targets := make([]Client, len(m.crossPost))
	copy(targets, m.crossPost)
	m.mu.Unlock()

	for _, c := range targets {
		if _, err := c.CreatePost(ctx, text, nil); err != nil {
			slog.Error("cross-post failed", "platform", c.Name(), "error", err)
			continue
		}
		slog.Info("cross-posted", "platform", c.Name())
	}
}
