package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/fall-line/lifelens/internal/domain"
	"github.com/fall-line/lifelens/internal/middleware"
	"github.com/fall-line/lifelens/internal/service"
	"github.com/fall-line/lifelens/internal/telegram"
)

// groupKey derives the gateway partition for a group's shared chat log.
func groupKey(chatID int64) string {
	return fmt.Sprintf("group-%d", chatID)
}

// handleTextGroup runs the search flow against the group's shared global
// chat log instead of per-user sessions.
func (h *Handler) handleTextGroup(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	query := update.Message.Text
	key := groupKey(chatID)

	if err := h.limits.TrySetActiveRequest(ctx, chatID); err != nil {
		if errors.Is(err, domain.ErrActiveRequest) {
			return
		}
		slog.Error("set active request", "chat_id", chatID, "error", err)
	}
	defer h.limits.RemoveActiveRequest(context.WithoutCancel(ctx), chatID)

	// An empty log gets the welcome entry before anything else.
	msgs, err := h.gateway.GlobalMessages(ctx, key)
	if err != nil {
		slog.Warn("load global chat", "chat_id", chatID, "error", err)
	} else if len(msgs) == 0 {
		welcome := service.NewBotMessage(
			"👋 Hi! I'm the LifeLens assistant. Ask me about what the camera has seen.", "")
		if err := h.gateway.AppendGlobalMessage(ctx, key, welcome); err != nil {
			slog.Warn("seed global chat", "chat_id", chatID, "error", err)
		}
	}

	if err := h.gateway.AppendGlobalMessage(ctx, key, service.NewUserMessage(query)); err != nil {
		slog.Warn("append global user message", "chat_id", chatID, "error", err)
		h.alerter.PersistenceFailure(key, err)
	}

	stopTyping := telegram.StartTyping(ctx, b, chatID)
	defer stopTyping()

	var reply string
	resp, err := h.gateway.Search(ctx, query)
	if err != nil {
		slog.Warn("group search failed", "chat_id", chatID, "error", err)
		reply = service.ConnectionErrorReply
	} else {
		reply = service.SearchReply(resp)
	}

	if err := h.gateway.AppendGlobalMessage(ctx, key, service.NewBotMessage(reply, query)); err != nil {
		slog.Warn("append global bot message", "chat_id", chatID, "error", err)
	}

	if err := telegram.SendLongMessage(ctx, b, chatID, reply, nil); err != nil {
		slog.Error("send group reply", "chat_id", chatID, "error", err)
	}
}

// handleClear wipes the chat history: all sessions in private, the shared
// log in groups. Both end with exactly one fresh conversation.
func (h *Handler) handleClear(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if update.Message.Chat.Type != "private" {
		key := groupKey(chatID)
		if err := h.gateway.ClearGlobalChat(ctx, key); err != nil {
			slog.Error("clear global chat", "chat_id", chatID, "error", err)
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   service.ConnectionErrorReply,
			})
			return
		}
		welcome := service.NewBotMessage(
			"🧹 Chat cleared. Ask me anything about what the camera has seen.", "")
		if err := h.gateway.AppendGlobalMessage(ctx, key, welcome); err != nil {
			slog.Warn("seed global chat", "chat_id", chatID, "error", err)
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   welcome.Content,
		})
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	if err := h.ensureHydrated(ctx, user); err != nil {
		slog.Warn("hydrate before clear", "user_id", user.ID, "error", err)
	}

	if err := h.chats.ClearAll(ctx, user.GatewayID); err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			slog.Warn("clear kept local", "user_id", user.ID, "error", err)
			h.alerter.PersistenceFailure(user.GatewayID, err)
		} else {
			slog.Error("clear all chats", "user_id", user.ID, "error", err)
			return
		}
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🧹 All chats deleted. A fresh one is ready — just type a question.",
	})
}
