package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/fall-line/lifelens/internal/middleware"
	"github.com/fall-line/lifelens/internal/service"
	"github.com/fall-line/lifelens/internal/telegram"
)

// handleStats renders the capture dashboard: overall numbers, most-seen
// objects, and registered faces.
func (h *Handler) handleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	stopTyping := telegram.StartTyping(ctx, b, chatID)
	defer stopTyping()

	overall, err := h.gateway.OverallStats(ctx)
	if err != nil {
		slog.Warn("overall stats", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   service.ConnectionErrorReply,
		})
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Capture stats\n\n")
	fmt.Fprintf(&sb, "📸 Total captures: %d\n", overall.TotalCaptures)
	fmt.Fprintf(&sb, "📅 Days recorded: %d\n", overall.TotalDays)
	if overall.LastCapture != "" {
		fmt.Fprintf(&sb, "🕐 Last capture: %s\n", overall.LastCapture)
	}

	if objects, err := h.gateway.ObjectStats(ctx); err != nil {
		slog.Warn("object stats", "error", err)
	} else if len(objects) > 0 {
		sb.WriteString("\n👀 Most seen:\n")
		for i, o := range objects {
			if i == 10 {
				break
			}
			fmt.Fprintf(&sb, "  %s — %d\n", o.Label, o.Count)
		}
	}

	if faces, err := h.gateway.FaceStats(ctx); err != nil {
		slog.Warn("face stats", "error", err)
	} else if len(faces) > 0 {
		sb.WriteString("\n🙂 Faces:\n")
		for _, f := range faces {
			fmt.Fprintf(&sb, "  %s — seen %d times (last %s)\n", f.Name, f.SeenCount, f.LastSeen)
		}
	}

	if err := telegram.SendLongMessage(ctx, b, chatID, sb.String(), nil); err != nil {
		slog.Error("send stats", "chat_id", chatID, "error", err)
	}
}

// handleWiFi pushes new camera WiFi credentials: /wifi <ssid> <password>
// Admin only.
func (h *Handler) handleWiFi(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if !user.IsAdmin && !h.cfg.IsAdmin(user.TelegramID) {
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) != 3 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Usage: /wifi <ssid> <password>",
		})
		return
	}

	if err := h.gateway.UpdateWiFi(ctx, parts[1], parts[2]); err != nil {
		slog.Error("update wifi", "error", err)
		h.alerter.Error("wifi update", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Couldn't update the camera WiFi.",
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "📶 Camera WiFi updated. It may take a minute to reconnect.",
	})
}
