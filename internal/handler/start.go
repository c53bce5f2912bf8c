package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/fall-line/lifelens/internal/middleware"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if update.Message.Chat.Type != "private" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text: "👋 Hi! I'm the LifeLens assistant for this group.\n\n" +
				"Ask me about what the camera has seen, or use /clear to reset the shared chat.",
		})
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	if err := h.ensureHydrated(ctx, user); err != nil {
		slog.Warn("hydrate on start", "user_id", user.ID, "error", err)
	}

	text := fmt.Sprintf(
		"👋 Hi, *%s*!\n\n"+
			"I'm %s, your LifeLens camera assistant. Ask me about your day in plain "+
			"words and I'll search your captured memories.\n\n"+
			"📋 *Commands:*\n"+
			"/chats — Manage chat sessions\n"+
			"/new — Start a new chat\n"+
			"/rename <title> — Rename the current chat\n"+
			"/history — Show the current chat by day\n"+
			"/settings — Speech language, voice, speed\n"+
			"/stats — Capture statistics\n"+
			"/timeline — Where you've been\n"+
			"/clear — Delete all chats\n\n"+
			"Send a photo with a name as the caption to register a face.\n\n"+
			"Just type a question to begin!",
		user.Name(), user.AssistantName,
	)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	})
}
