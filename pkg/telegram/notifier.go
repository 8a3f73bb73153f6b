package telegram

import (
	"context"
	"fmt"

	"zahaam/config"
	"zahaam/pkg/logger"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// Notifier pushes plain-text messages to a single configured chat. A notifier
// built without a bot token is disabled and drops every message.
type Notifier struct {
	bot     *telebot.Bot
	chat    *telebot.Chat
	limiter *rate.Limiter
	cfg     *config.TelegramConfig
	log     *logger.Logger
}

// NewNotifier builds a notifier from cfg. The bot is created offline so
// startup never blocks on the Telegram API.
func NewNotifier(cfg *config.TelegramConfig, log *logger.Logger) (*Notifier, error) {
	n := &Notifier{cfg: cfg, log: log}
	if cfg.BotToken == "" {
		log.Info("Telegram bot token not set, notifications disabled")
		return n, nil
	}

	settings := telebot.Settings{
		Token:   cfg.BotToken,
		Offline: true,
	}
	if cfg.URL != "" {
		settings.URL = cfg.URL
	}
	bot, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	perSecond := cfg.MaxGlobalRequestPerSecond
	if perSecond <= 0 {
		perSecond = 1
	}

	n.bot = bot
	n.chat = &telebot.Chat{ID: cfg.ChatID}
	n.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	return n, nil
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.bot != nil && n.cfg.ChatID != 0
}

// Send delivers message, waiting on the global limiter first.
func (n *Notifier) Send(ctx context.Context, message string) error {
	if !n.Enabled() {
		return nil
	}
	if n.cfg.TimeoutDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.cfg.TimeoutDuration)
		defer cancel()
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit: %w", err)
	}
	if _, err := n.bot.Send(n.chat, message); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// SendAlert satisfies logger.AlertSender.
func (n *Notifier) SendAlert(message string) error {
	return n.Send(context.Background(), message)
}
