package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/fall-line/lifelens/internal/middleware"
	"github.com/fall-line/lifelens/internal/telegram"
)

// handleFacePhoto registers a face from a photo whose caption is the
// person's name.
func (h *Handler) handleFacePhoto(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID

	name := strings.TrimSpace(msg.Caption)
	if name == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Add the person's name as the photo caption and send it again.",
		})
		return
	}

	// Telegram sorts photo sizes ascending; take the largest.
	photo := msg.Photo[len(msg.Photo)-1]

	data, err := telegram.DownloadFile(ctx, b, h.cfg.BotToken, photo.FileID)
	if err != nil {
		slog.Error("download face photo", "user_id", user.ID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Couldn't read that photo. Please try again.",
		})
		return
	}

	if err := h.gateway.RegisterFace(ctx, name, "face.jpg", data); err != nil {
		slog.Error("register face", "user_id", user.ID, "error", err)
		h.alerter.Error("face register", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Face registration failed. Please try again later.",
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "✅ " + name + " registered! The camera will recognize them from now on.",
	})
}
