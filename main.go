package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digest-bot/auth"
	"digest-bot/bot"
	"digest-bot/config"
	"digest-bot/digest"
	"digest-bot/fetch"
	"digest-bot/lock"
	"digest-bot/scheduler"
	"digest-bot/scraper"
	"digest-bot/storage"
	"digest-bot/summarizer"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configPath := os.Getenv("DIGEST_BOT_CONFIG")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		logger.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}
	api.Debug = cfg.LogLevel == "debug"

	tokens := auth.NewTokenCache(cfg.ProductHuntClientID, cfg.ProductHuntClientSecret, "", logger)

	fetchers := []fetch.Fetcher{
		fetch.NewHackerNewsFetcher("", logger),
		fetch.NewGeekNewsFetcher("", logger),
		fetch.NewGitHubFetcher("", "", logger),
		fetch.NewProductHuntFetcher("", tokens, logger),
	}

	summ := summarizer.New(cfg.SummarizerCommand, logger)
	notifier := bot.NewNotifier(api, cfg.ChatID)
	d := digest.New(
		store,
		fetchers,
		summ,
		notifier,
		lock.New(cfg.LockPath),
		cfg.ItemsPerSource,
		logger,
	)

	runDigest := func(ctx context.Context, batch string) {
		if err := d.Run(ctx, batch); err != nil {
			logger.Error("Digest run failed", "batch", batch, "error", err)
		}
	}

	sched, err := scheduler.New(cfg.Timezone)
	if err != nil {
		logger.Error("Failed to create scheduler", "error", err)
		os.Exit(1)
	}

	morning, evening := store.ScheduleTimes(cfg.MorningTime, cfg.EveningTime)
	if err := sched.Schedule(morning, func() { runDigest(ctx, storage.BatchMorning) }); err != nil {
		logger.Error("Failed to schedule morning digest", "error", err)
		os.Exit(1)
	}
	if err := sched.Schedule(evening, func() { runDigest(ctx, storage.BatchEvening) }); err != nil {
		logger.Error("Failed to schedule evening digest", "error", err)
		os.Exit(1)
	}

	sched.Start()
	logger.Info("Scheduler started",
		"morning", morning,
		"evening", evening,
		"timezone", cfg.Timezone,
	)

	handler := bot.NewHandler(
		api,
		store,
		summ,
		scraper.New(cfg.FetchTimeoutSecs),
		cfg.ChatID,
		cfg.MorningTime,
		cfg.EveningTime,
		runDigest,
		logger,
	)
	go handler.Run(ctx)

	logger.Info("Bot started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	sched.Stop()
	logger.Info("Shutdown complete")
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
