package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/fall-line/lifelens/internal/domain"
	"github.com/fall-line/lifelens/internal/middleware"
)

// handleRename retitles the active chat: /rename Morning walk
func (h *Handler) handleRename(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	parts := strings.SplitN(update.Message.Text, " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Usage: /rename <new title>",
		})
		return
	}
	title := strings.TrimSpace(parts[1])

	if err := h.ensureHydrated(ctx, user); err != nil {
		slog.Warn("hydrate before rename", "user_id", user.ID, "error", err)
	}

	active, ok := h.chats.ActiveSession(user.GatewayID)
	if !ok {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "No active chat yet. Ask me something first!",
		})
		return
	}

	if err := h.chats.RenameChat(ctx, user.GatewayID, active.ID, title); err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			slog.Warn("rename kept local", "user_id", user.ID, "error", err)
			h.alerter.PersistenceFailure(user.GatewayID, err)
		} else {
			slog.Error("rename chat", "user_id", user.ID, "error", err)
			return
		}
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "✏️ Renamed to " + title,
	})
}
