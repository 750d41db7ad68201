package platform

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/coopco/postpilot/internal/config"
)

// TelegramClient cross-posts text to a configured Telegram chat.
type TelegramClient struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramClient(cfg config.TelegramConfig) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chatId %q: %w", cfg.ChatID, err)
	}
	return &TelegramClient{bot: bot, chatID: chatID}, nil
}

func (c *TelegramClient) Name() string { return "telegram" }

func (c *TelegramClient) CreatePost(ctx context.Context, text string, mediaIDs []string) (string, error) {
	sent, err := c.bot.Send(tgbotapi.NewMessage(c.chatID, text))
	if err != nil {
		return "", fmt.Errorf("telegram send failed: %w", err)
	}
	return strconv.Itoa(sent.MessageID), nil
}
