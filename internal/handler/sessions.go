package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/fall-line/lifelens/internal/config"
	"github.com/fall-line/lifelens/internal/domain"
	"github.com/fall-line/lifelens/internal/middleware"
	"github.com/fall-line/lifelens/internal/service"
	"github.com/fall-line/lifelens/internal/telegram"
)

func (h *Handler) handleChats(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.Message == nil {
		return
	}
	if err := h.ensureHydrated(ctx, user); err != nil {
		slog.Warn("hydrate before list", "user_id", user.ID, "error", err)
	}

	text, markup := h.sessionsView(user, 0)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        text,
		ReplyMarkup: markup,
	})
}

// sessionsView renders one page of the session list.
func (h *Handler) sessionsView(user *domain.User, page int) (string, *models.InlineKeyboardMarkup) {
	sessions := h.chats.Sessions(user.GatewayID)
	active, _ := h.chats.ActiveSession(user.GatewayID)

	totalPages := (len(sessions) + config.SessionsPerPage - 1) / config.SessionsPerPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	start := page * config.SessionsPerPage
	end := min(start+config.SessionsPerPage, len(sessions))

	var rows [][]models.InlineKeyboardButton
	for _, s := range sessions[start:end] {
		label := sessionLabel(s)
		if s.ID == active.ID {
			label = "✅ " + label
		}
		rows = append(rows, telegram.ButtonRow(
			telegram.InlineButton(label, "chat_open_"+s.ID),
			telegram.InlineButton("🗑", "chat_del_"+s.ID),
		))
	}

	if totalPages > 1 {
		rows = append(rows, telegram.PaginationRow("chats_page_", page, totalPages))
	}
	rows = append(rows, telegram.ButtonRow(
		telegram.InlineButton("➕ New chat", "chat_new"),
		telegram.InlineButton("🧹 Delete all", "chat_clear"),
	))

	text := fmt.Sprintf("💬 Your chats (%d):", len(sessions))
	return text, telegram.InlineKeyboard(rows...)
}

func sessionLabel(s domain.ChatSession) string {
	title := s.Title
	if title == "" || title == config.NewChatTitle {
		if last, ok := s.LastMessage(); ok {
			title = snippet(last.Content, 24)
		} else {
			title = config.NewChatTitle
		}
	}
	return fmt.Sprintf("%s · %s", title, s.CreatedAt.Format("Jan 2"))
}

func (h *Handler) handleNewChat(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.Message == nil {
		return
	}
	if err := h.ensureHydrated(ctx, user); err != nil {
		slog.Warn("hydrate before new chat", "user_id", user.ID, "error", err)
	}

	if _, err := h.chats.CreateNewChat(ctx, user.GatewayID); err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			slog.Warn("new chat kept local", "user_id", user.ID, "error", err)
			h.alerter.PersistenceFailure(user.GatewayID, err)
		} else {
			slog.Error("create chat", "user_id", user.ID, "error", err)
			return
		}
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "✨ New chat started. What would you like to know?",
	})
}

// handleChatCallback handles chat_open_, chat_del_, chat_new, chat_clear.
func (h *Handler) handleChatCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	data := update.CallbackQuery.Data
	chatID := callbackChatID(update)

	if err := h.ensureHydrated(ctx, user); err != nil {
		slog.Warn("hydrate in callback", "user_id", user.ID, "error", err)
	}

	switch {
	case data == "chat_new":
		if _, err := h.chats.CreateNewChat(ctx, user.GatewayID); err != nil && !errors.Is(err, domain.ErrPersistence) {
			slog.Error("create chat", "user_id", user.ID, "error", err)
			answerCallback(ctx, b, update, "Something went wrong")
			return
		}
		answerCallback(ctx, b, update, "✨ New chat started")

	case data == "chat_clear":
		if err := h.chats.ClearAll(ctx, user.GatewayID); err != nil && !errors.Is(err, domain.ErrPersistence) {
			slog.Error("clear chats", "user_id", user.ID, "error", err)
			answerCallback(ctx, b, update, "Something went wrong")
			return
		}
		answerCallback(ctx, b, update, "🧹 All chats deleted")

	case strings.HasPrefix(data, "chat_open_"):
		id := strings.TrimPrefix(data, "chat_open_")
		if err := h.chats.SetActive(user.GatewayID, id); err != nil {
			answerCallback(ctx, b, update, "Chat no longer exists")
			return
		}
		answerCallback(ctx, b, update, "Switched")

	case strings.HasPrefix(data, "chat_del_"):
		id := strings.TrimPrefix(data, "chat_del_")
		err := h.chats.DeleteChat(ctx, user.GatewayID, id)
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			answerCallback(ctx, b, update, "Chat no longer exists")
			return
		case errors.Is(err, domain.ErrPersistence):
			slog.Warn("delete kept local", "user_id", user.ID, "error", err)
			h.alerter.PersistenceFailure(user.GatewayID, err)
		case err != nil:
			slog.Error("delete chat", "user_id", user.ID, "error", err)
			answerCallback(ctx, b, update, "Something went wrong")
			return
		}
		answerCallback(ctx, b, update, "🗑 Deleted")
	}

	h.refreshSessionsMessage(ctx, b, update, user, chatID, 0)
}

func (h *Handler) handleChatsPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	page, err := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, "chats_page_"))
	if err != nil {
		return
	}
	answerCallback(ctx, b, update, "")
	h.refreshSessionsMessage(ctx, b, update, user, callbackChatID(update), page)
}

func (h *Handler) refreshSessionsMessage(ctx context.Context, b *bot.Bot, update *models.Update, user *domain.User, chatID int64, page int) {
	text, markup := h.sessionsView(user, page)
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   update.CallbackQuery.Message.Message.ID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		slog.Debug("refresh session list", "error", err)
	}
}

// handleHistory prints the active chat grouped by calendar day.
func (h *Handler) handleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if err := h.ensureHydrated(ctx, user); err != nil {
		slog.Warn("hydrate before history", "user_id", user.ID, "error", err)
	}

	active, ok := h.chats.ActiveSession(user.GatewayID)
	if !ok || len(active.Messages) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "This chat is empty. Ask me something first!",
		})
		return
	}

	now := time.Now()
	var sb strings.Builder
	fmt.Fprintf(&sb, "💬 %s\n", active.Title)
	for _, group := range service.GroupMessagesByDate(active.Messages, now) {
		fmt.Fprintf(&sb, "\n— %s —\n", service.FormatDateLabel(group.Date, now))
		for _, m := range group.Messages {
			prefix := "You"
			if m.Sender == domain.SenderBot {
				prefix = user.AssistantName
			}
			fmt.Fprintf(&sb, "%s: %s\n", prefix, m.Content)
		}
	}

	if err := telegram.SendLongMessage(ctx, b, chatID, sb.String(), nil); err != nil {
		slog.Error("send history", "chat_id", chatID, "error", err)
	}
}
