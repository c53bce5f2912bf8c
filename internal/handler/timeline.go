package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/fall-line/lifelens/internal/service"
	"github.com/fall-line/lifelens/internal/telegram"
)

const timelineLimit = 20

// handleTimeline lists recent places the camera recorded.
func (h *Handler) handleTimeline(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	stopTyping := telegram.StartTyping(ctx, b, chatID)
	defer stopTyping()

	entries, err := h.gateway.Locations(ctx)
	if err != nil {
		slog.Warn("load timeline", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   service.ConnectionErrorReply,
		})
		return
	}
	if len(entries) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "No locations recorded yet.",
		})
		return
	}

	var sb strings.Builder
	sb.WriteString("🗺 Your timeline\n")
	lastDate := ""
	for i, e := range entries {
		if i == timelineLimit {
			break
		}
		if e.Date != lastDate {
			fmt.Fprintf(&sb, "\n📅 %s\n", e.Date)
			lastDate = e.Date
		}
		place := e.Location.Area
		if e.Location.FormattedAddress != "" {
			place = fmt.Sprintf("%s, %s", e.Location.Area, e.Location.FormattedAddress)
		}
		fmt.Fprintf(&sb, "  📍 %s — %s\n", e.Time, place)
	}

	if err := telegram.SendLongMessage(ctx, b, chatID, sb.String(), nil); err != nil {
		slog.Error("send timeline", "chat_id", chatID, "error", err)
	}
}
