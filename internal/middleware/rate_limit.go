package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/fall-line/lifelens/internal/config"
	"github.com/fall-line/lifelens/internal/repository"
)

// RateLimit drops text messages beyond the per-minute budget. The warning
// is sent once, exactly at the threshold.
func RateLimit(limits *repository.Limits) func(bot.HandlerFunc) bot.HandlerFunc {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.Text == "" {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			count, err := limits.IncrementRateLimit(ctx, chatID)
			if err != nil {
				slog.Error("rate limit check", "chat_id", chatID, "error", err)
				next(ctx, b, update)
				return
			}

			if count > config.RateLimitPerMinute {
				if count == config.RateLimitPerMinute+1 {
					b.SendMessage(ctx, &bot.SendMessageParams{
						ChatID: chatID,
						Text:   "⏳ Too many messages. Give me a minute to catch up.",
					})
				}
				return
			}

			next(ctx, b, update)
		}
	}
}
