package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/maxzer/booking/internal/accounts"
	"github.com/maxzer/booking/internal/calendar"
	"github.com/maxzer/booking/internal/config"
	"github.com/maxzer/booking/internal/metrics"
	"github.com/maxzer/booking/internal/notify"
	"github.com/maxzer/booking/internal/server"
	"github.com/maxzer/booking/internal/server/handlers"
	"github.com/maxzer/booking/internal/server/middleware"
	"github.com/maxzer/booking/internal/server/storage/sqlite"
	"github.com/maxzer/booking/internal/server/token"
	"github.com/maxzer/booking/internal/telegram"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("booking server starting",
		slog.String("version", Version),
		slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	resolver := telegram.NewResolver(logger, telegram.ResolverConfig{
		BotToken:                cfg.Telegram.BotToken,
		MaxAge:                  cfg.Telegram.InitDataMaxAge,
		AllowUnverifiedFallback: cfg.Telegram.AllowUnverified,
	})

	accountsSvc := accounts.NewService(logger, store)

	tokens := token.NewService(logger, token.Config{
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		TempTTL:       cfg.JWT.TempTTL,
	}, store, store)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	var notifier notify.Notifier
	tgNotifier, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Notify.AdminChatID, logger)
	if err != nil {
		logger.Warn("telegram notifier unavailable, notifications disabled", slog.Any("error", err))
		notifier = notify.NewNop()
	} else {
		notifier = tgNotifier
	}

	// Календарь подключается отдельной интеграцией, без нее — заглушка
	syncer := calendar.NewNoop()

	authLimiter := middleware.NewRateLimiter(cfg.Limits.AuthLimit, cfg.Limits.Window, logger)
	defer authLimiter.Stop()
	authLimiter.OnLimit(func() { collector.RecordRateLimited("authentication") })

	writeLimiter := middleware.NewRateLimiter(cfg.Limits.ProfileLimit, cfg.Limits.Window, logger)
	defer writeLimiter.Stop()
	writeLimiter.OnLimit(func() { collector.RecordRateLimited("profile-write") })

	router := server.NewRouter(&server.RouterDeps{
		Logger: logger,
		Auth: handlers.NewAuthHandler(logger, resolver, accountsSvc, tokens, collector,
			handlers.CookieConfig{
				Domain: cfg.HTTP.CookieDomain,
				Secure: cfg.HTTP.CookieSecure,
				MaxAge: cfg.JWT.RefreshTTL,
			}),
		Users:          handlers.NewUsersHandler(logger, store),
		Events:         handlers.NewEventsHandler(logger, store, syncer, notifier, collector),
		PriceLists:     handlers.NewPriceListsHandler(logger, store),
		Webhook:        handlers.NewWebhookHandler(logger, store, syncer, cfg.Webhook.SecretToken),
		Health:         handlers.NewHealthHandler(logger),
		Tokens:         tokens,
		Sessions:       store,
		UserStorage:    store,
		AuthLimiter:    authLimiter,
		WriteLimiter:   writeLimiter,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Gatherer:       registry,
	})

	srv := server.New(server.Config{
		Addr:            cfg.HTTP.Addr,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		SweepInterval:   cfg.Limits.SessionsSweep,
	}, router, logger, store)

	return srv.Run(ctx)
}

func printVersion() {
	fmt.Printf("Booking Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
