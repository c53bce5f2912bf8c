package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	lifelens "github.com/fall-line/lifelens"
	"github.com/fall-line/lifelens/internal/config"
	"github.com/fall-line/lifelens/internal/domain"
	"github.com/fall-line/lifelens/internal/handler"
	"github.com/fall-line/lifelens/internal/middleware"
	"github.com/fall-line/lifelens/internal/repository"
	"github.com/fall-line/lifelens/internal/service"
	"github.com/fall-line/lifelens/internal/telegram"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := repository.RunMigrations(cfg.DatabaseURL, lifelens.MigrationsFS); err != nil {
		return err
	}
	slog.Info("migrations applied")

	// Repositories
	users := repository.NewUsers(pool)
	prefsRepo := repository.NewPrefs(pool)
	limits := repository.NewLimits(pool)

	// Services
	userService := service.NewUserService(users)
	prefsService := service.NewPrefsService(prefsRepo)
	gateway := service.NewGateway(cfg.GatewayBaseURL)
	chats := service.NewChatManager(gateway)
	translator := service.NewTranslator(cfg.TranslateBaseURL, cfg.TranslateAPIKey)

	// The alerter and the default handler are wired before the bot exists,
	// so both get their bot reference after construction.
	alerter := telegram.NewAlerter(cfg.LogChatID, cfg.LogTopicErrors, cfg.LogTopicUsers)

	var h *handler.Handler
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover,
			middleware.Logging,
			middleware.RateLimit(limits),
			middleware.UserLoader(userService, alerter),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			h.HandleDefault(ctx, b, update)
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return err
	}
	alerter.SetBot(b)

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("drop pending updates", "error", err)
		}
	}

	speaker := service.NewSpeaker(handler.NewEngine(b), translator, config.MaxChunkLen)

	// Changing speech settings mid-playback stops the current read-aloud,
	// same as the camera app cancels synthesis on a language switch.
	prefsService.Subscribe(func(_ int64, _ domain.SpeechSettings) {
		speaker.Stop()
	})

	h = handler.New(handler.Deps{
		Cfg:     cfg,
		Chats:   chats,
		Gateway: gateway,
		Prefs:   prefsService,
		Users:   userService,
		Speaker: speaker,
		Limits:  limits,
		Alerter: alerter,
	})
	handler.Register(b, h)

	// Sweep locks abandoned by crashed handlers.
	go func() {
		ticker := time.NewTicker(config.ActiveRequestCleanupInt)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := limits.CleanupStaleRequests(ctx, config.ActiveRequestMaxAge)
				if err != nil {
					slog.Error("cleanup stale requests", "error", err)
				} else if n > 0 {
					slog.Info("cleaned stale requests", "count", n)
				}
			}
		}
	}()

	slog.Info("bot started")
	b.Start(ctx)
	slog.Info("bot stopped")
	return nil
}
