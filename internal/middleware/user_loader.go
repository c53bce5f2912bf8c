package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/fall-line/lifelens/internal/domain"
	"github.com/fall-line/lifelens/internal/service"
	"github.com/fall-line/lifelens/internal/telegram"
)

type ctxKey string

const userKey ctxKey = "user"

// GetUser returns the account loaded for this update, or nil.
func GetUser(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey).(*domain.User)
	return u
}

// UserLoader resolves the sender to an account and stores it in the
// context. First contact registers the user and raises an alert.
func UserLoader(users *service.UserService, alerter *telegram.Alerter) func(bot.HandlerFunc) bot.HandlerFunc {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			from := senderOf(update)
			if from == nil {
				next(ctx, b, update)
				return
			}

			user, created, err := users.FindOrCreate(ctx, from.ID, from.FirstName, from.Username)
			if err != nil {
				slog.Error("load user", "telegram_id", from.ID, "error", err)
				next(ctx, b, update)
				return
			}
			if created {
				slog.Info("new user registered", "telegram_id", from.ID, "username", from.Username)
				alerter.NewUser(from.ID, from.FirstName)
			}

			if err := users.Touch(ctx, user.ID); err != nil {
				slog.Debug("touch last interaction", "error", err)
			}

			next(context.WithValue(ctx, userKey, user), b, update)
		}
	}
}

func senderOf(update *models.Update) *models.User {
	switch {
	case update.Message != nil:
		return update.Message.From
	case update.CallbackQuery != nil:
		return &update.CallbackQuery.From
	default:
		return nil
	}
}
