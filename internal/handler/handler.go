package handler

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/fall-line/lifelens/internal/config"
	"github.com/fall-line/lifelens/internal/repository"
	"github.com/fall-line/lifelens/internal/service"
	"github.com/fall-line/lifelens/internal/telegram"
)

// Deps carries everything the handlers need.
type Deps struct {
	Cfg     *config.Config
	Chats   *service.ChatManager
	Gateway *service.Gateway
	Prefs   *service.PrefsService
	Users   *service.UserService
	Speaker *service.Speaker
	Limits  *repository.Limits
	Alerter *telegram.Alerter
}

type Handler struct {
	cfg     *config.Config
	chats   *service.ChatManager
	gateway *service.Gateway
	prefs   *service.PrefsService
	users   *service.UserService
	speaker *service.Speaker
	limits  *repository.Limits
	alerter *telegram.Alerter
}

func New(d Deps) *Handler {
	return &Handler{
		cfg:     d.Cfg,
		chats:   d.Chats,
		gateway: d.Gateway,
		prefs:   d.Prefs,
		users:   d.Users,
		speaker: d.Speaker,
		limits:  d.Limits,
		alerter: d.Alerter,
	}
}

// HandleDefault routes updates that no command handler claimed.
func (h *Handler) HandleDefault(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message

	switch msg.Chat.Type {
	case "private":
		if len(msg.Photo) > 0 {
			h.handleFacePhoto(ctx, b, update)
			return
		}
		if msg.Text != "" && !strings.HasPrefix(msg.Text, "/") {
			h.handleTextPrivate(ctx, b, update)
		}
	case "group", "supergroup":
		if msg.Text != "" && !strings.HasPrefix(msg.Text, "/") {
			h.handleTextGroup(ctx, b, update)
		}
	}
}

func answerCallback(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
	})
}

// callbackChatID extracts the chat the callback's message lives in.
func callbackChatID(update *models.Update) int64 {
	if update.CallbackQuery == nil {
		return 0
	}
	return update.CallbackQuery.Message.Message.Chat.ID
}
