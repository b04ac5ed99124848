package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"

	"alert-service/internal/config"
	"alert-service/internal/logging"
	"alert-service/internal/utils"
)

// telegramLimiter is the global rate limiter for Telegram messages
var telegramLimiter *rate.Limiter

func initTelegramLimiter(ratePerSecond int) {
	telegramLimiter = rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond)
}

// SendTelegram broadcasts a message to the configured operator chat. It is
// an additive channel: dispatch success never depends on it.
func SendTelegram(ctx context.Context, cfg config.Config, logger *logging.Logger, text string) error {
	if !cfg.Telegram.Enabled {
		return fmt.Errorf("telegram provider is disabled")
	}
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("missing bot_token in Telegram configuration")
	}
	if cfg.Telegram.ChatID == 0 {
		return fmt.Errorf("missing chat_id in Telegram configuration")
	}

	if telegramLimiter == nil {
		initTelegramLimiter(cfg.Telegram.RatePerSecond)
	}
	if err := telegramLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit exceeded: %w", err)
	}

	return utils.Retry(logger, 3, time.Second, func() error {
		b, err := bot.New(cfg.Telegram.BotToken)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram bot: %w", err)
		}
		params := &bot.SendMessageParams{
			ChatID: cfg.Telegram.ChatID,
			Text:   text,
		}
		if _, err := b.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", cfg.Telegram.ChatID, err)
		}
		return nil
	})
}
