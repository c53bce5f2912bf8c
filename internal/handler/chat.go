package handler

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/fall-line/lifelens/internal/config"
	"github.com/fall-line/lifelens/internal/domain"
	"github.com/fall-line/lifelens/internal/middleware"
	"github.com/fall-line/lifelens/internal/service"
	"github.com/fall-line/lifelens/internal/telegram"
)

// ensureHydrated loads the user's sessions on first contact. Subsequent
// calls are no-ops inside the manager.
func (h *Handler) ensureHydrated(ctx context.Context, user *domain.User) error {
	return h.chats.Hydrate(ctx, user.GatewayID, user.Name(), user.AssistantName)
}

// handleTextPrivate runs the memory-search flow for a direct message.
func (h *Handler) handleTextPrivate(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	chatID := update.Message.Chat.ID
	query := update.Message.Text

	// 1. Claim the in-flight slot so a double send doesn't fork the flow.
	if err := h.limits.TrySetActiveRequest(ctx, chatID); err != nil {
		if errors.Is(err, domain.ErrActiveRequest) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "⏳ Still working on your previous question.",
			})
			return
		}
		slog.Error("set active request", "chat_id", chatID, "error", err)
	}
	defer func() {
		if err := h.limits.RemoveActiveRequest(context.WithoutCancel(ctx), chatID); err != nil {
			slog.Error("remove active request", "chat_id", chatID, "error", err)
		}
	}()

	// 2. Make sure the session state is loaded.
	if err := h.ensureHydrated(ctx, user); err != nil {
		slog.Error("hydrate", "user_id", user.ID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   service.ConnectionErrorReply,
		})
		return
	}

	active, ok := h.chats.ActiveSession(user.GatewayID)
	if !ok {
		created, err := h.chats.CreateNewChat(ctx, user.GatewayID)
		if err != nil && !errors.Is(err, domain.ErrPersistence) {
			slog.Error("create chat", "user_id", user.ID, "error", err)
			return
		}
		active = created
	}
	firstMessage := len(active.Messages) == 0

	// 3. Record the user message; a gateway failure keeps it local.
	userMsg := service.NewUserMessage(query)
	if err := h.chats.AddMessage(ctx, user.GatewayID, active.ID, userMsg); err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			slog.Warn("user message kept local", "user_id", user.ID, "error", err)
			h.alerter.PersistenceFailure(user.GatewayID, err)
		} else {
			slog.Error("add user message", "user_id", user.ID, "error", err)
			return
		}
	}

	// 4. A fresh chat takes its title from the first question.
	if firstMessage && active.Title == config.NewChatTitle {
		if err := h.chats.RenameChat(ctx, user.GatewayID, active.ID, snippet(query, 40)); err != nil {
			slog.Warn("auto title", "user_id", user.ID, "error", err)
		}
	}

	stopTyping := telegram.StartTyping(ctx, b, chatID)
	defer stopTyping()

	// 5. Log the raw query for analytics. Best effort.
	if err := h.gateway.LogQuery(ctx, user.GatewayID, query, active.ID); err != nil {
		slog.Debug("log query", "error", err)
	}

	// 6. Search the memory index.
	var reply string
	resp, err := h.gateway.Search(ctx, query)
	if err != nil {
		slog.Warn("search failed", "user_id", user.ID, "error", err)
		reply = service.ConnectionErrorReply
	} else {
		reply = service.SearchReply(resp)
	}

	// 7. Record and deliver the assistant reply.
	botMsg := service.NewBotMessage(reply, query)
	if err := h.chats.AddMessage(ctx, user.GatewayID, active.ID, botMsg); err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			slog.Warn("bot message kept local", "user_id", user.ID, "error", err)
			h.alerter.PersistenceFailure(user.GatewayID, err)
		} else {
			slog.Error("add bot message", "user_id", user.ID, "error", err)
		}
	}

	markup := telegram.InlineKeyboard(
		telegram.ButtonRow(telegram.InlineButton("🔊 Listen", "speak_"+botMsg.ID)),
	)
	if err := telegram.SendLongMessage(ctx, b, chatID, reply, markup); err != nil {
		slog.Error("send reply", "chat_id", chatID, "error", err)
	}
}

func snippet(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
