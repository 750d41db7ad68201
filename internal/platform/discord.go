package platform

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/coopco/postpilot/internal/config"
)

// DiscordClient cross-posts text to a configured Discord channel.
type DiscordClient struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordClient(cfg config.DiscordConfig) (*DiscordClient, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &DiscordClient{session: session, channelID: cfg.ChannelID}, nil
}

func (c *DiscordClient) Name() string { return "discord" }

func (c *DiscordClient) CreatePost(ctx context.Context, text string, mediaIDs []string) (string, error) {
	msg, err := c.session.ChannelMessageSend(c.channelID, text)
	if err != nil {
		return "", fmt.Errorf("discord send failed: %w", err)
	}
	return msg.ID, nil
}
