package main

import (
	"log"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"beautycrm/internal/config"
	"beautycrm/internal/database"
	"beautycrm/internal/notify"
	"beautycrm/internal/pkg/logger"
	"beautycrm/internal/reminder"
	"beautycrm/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.IsProdLike())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if cfg.RedisAddr == "" {
		lg.Fatal("REDIS_ADDR is required for the reminder worker")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		lg.Fatal("db connect failed", zap.Error(err))
	}

	var notifier notify.Notifier = notify.Log{Logger: lg}
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, repository.NewBotSettingsRepository(db))
		if err != nil {
			lg.Fatal("telegram init failed", zap.Error(err))
		}
		notifier = tg
	} else {
		lg.Warn("TELEGRAM_BOT_TOKEN not set: reminders will only be logged")
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: 5,
			Queues:      map[string]int{"default": 1},
			Logger:      lg.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(reminder.TypeBookingReminder, reminder.NewHandler(
		repository.NewBookingRepository(db), notifier, cfg.Location(),
	))

	lg.Info("reminder worker starting", zap.String("redis", cfg.RedisAddr))
	if err := srv.Run(mux); err != nil {
		lg.Fatal("worker stopped", zap.Error(err))
	}
}
