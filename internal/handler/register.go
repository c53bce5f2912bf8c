package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Register wires every command and callback onto the bot.
func Register(b *bot.Bot, h *Handler) {
	// Commands
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/chats", bot.MatchTypeExact, h.handleChats)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/new", bot.MatchTypeExact, h.handleNewChat)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/rename", bot.MatchTypePrefix, h.handleRename)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/clear", bot.MatchTypeExact, h.handleClear)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/history", bot.MatchTypeExact, h.handleHistory)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/settings", bot.MatchTypeExact, h.handleSettings)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypeExact, h.handleStats)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/timeline", bot.MatchTypeExact, h.handleTimeline)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/wifi", bot.MatchTypePrefix, h.handleWiFi)

	// Callbacks
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "chat_", bot.MatchTypePrefix, h.handleChatCallback)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "chats_page_", bot.MatchTypePrefix, h.handleChatsPage)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "set_", bot.MatchTypePrefix, h.handleSettingsCallback)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "speak_", bot.MatchTypePrefix, h.handleSpeak)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "noop", bot.MatchTypeExact, handleNoop)
}

func handleNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	answerCallback(ctx, b, update, "")
}
