package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Logging records every handled update with its duration.
func Logging(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		start := time.Now()
		next(ctx, b, update)

		attrs := []any{
			"update_id", update.ID,
			"duration", time.Since(start).String(),
		}
		if update.Message != nil {
			attrs = append(attrs,
				"chat_id", update.Message.Chat.ID,
				"type", "message",
			)
		} else if update.CallbackQuery != nil {
			attrs = append(attrs,
				"data", update.CallbackQuery.Data,
				"type", "callback",
			)
		}
		slog.Info("update handled", attrs...)
	}
}
