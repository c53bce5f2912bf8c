package handler

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/fall-line/lifelens/internal/middleware"
	"github.com/fall-line/lifelens/internal/service"
)

// handleSpeak toggles read-aloud for one assistant reply. Pressing the
// button on the message currently playing stops it.
func (h *Handler) handleSpeak(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	messageID := strings.TrimPrefix(update.CallbackQuery.Data, "speak_")

	msg, ok := h.chats.FindMessage(user.GatewayID, messageID)
	if !ok {
		answerCallback(ctx, b, update, "Message no longer available")
		return
	}

	started := h.speaker.Toggle(service.SpeakRequest{
		MessageID: messageID,
		ChatID:    callbackChatID(update),
		Text:      msg.Content,
		Settings:  h.prefs.Get(ctx, user.ID),
	})

	if started {
		answerCallback(ctx, b, update, "🔊 Speaking…")
	} else {
		answerCallback(ctx, b, update, "⏹ Stopped")
	}
}
