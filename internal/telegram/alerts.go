package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
)

// Alerter mirrors operational events into a telegram supergroup so the
// operator sees gateway trouble and new registrations without reading logs.
// A zero chat id disables it.
type Alerter struct {
	b      *bot.Bot
	chatID int64

	topicErrors int
	topicUsers  int
}

func NewAlerter(chatID int64, topicErrors, topicUsers int) *Alerter {
	return &Alerter{
		chatID:      chatID,
		topicErrors: topicErrors,
		topicUsers:  topicUsers,
	}
}

// SetBot attaches the bot once it exists; the alerter is created earlier
// because middlewares need it before bot construction.
func (a *Alerter) SetBot(b *bot.Bot) {
	a.b = b
}

func (a *Alerter) send(topic int, text string) {
	if a == nil || a.b == nil || a.chatID == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := a.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          a.chatID,
		MessageThreadID: topic,
		Text:            text,
	})
	if err != nil {
		slog.Warn("send alert", "error", err)
	}
}

// Error reports a failure with its origin.
func (a *Alerter) Error(origin string, err error) {
	a.send(a.topicErrors, fmt.Sprintf("❌ %s\n%v", origin, err))
}

// PersistenceFailure reports a gateway write that was kept local only.
func (a *Alerter) PersistenceFailure(userID string, err error) {
	a.send(a.topicErrors, fmt.Sprintf("⚠️ gateway write failed for %s\n%v", userID, err))
}

// NewUser reports a fresh registration.
func (a *Alerter) NewUser(telegramID int64, name string) {
	a.send(a.topicUsers, fmt.Sprintf("🆕 user %s (%d)", name, telegramID))
}
