package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"beautycrm/internal/cache"
	"beautycrm/internal/config"
	"beautycrm/internal/database"
	"beautycrm/internal/notify"
	"beautycrm/internal/pkg/logger"
	"beautycrm/internal/reminder"
	"beautycrm/internal/repository"
	"beautycrm/internal/server"
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

	ctx := context.Background()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		lg.Fatal("db connect failed", zap.Error(err))
	}
	if err := database.Prepare(ctx, db, cfg.DatabaseURL); err != nil {
		lg.Fatal("schema migration failed", zap.Error(err))
	}
	sqlxDB, err := database.SQLX(db, cfg.DatabaseURL)
	if err != nil {
		lg.Fatal("sqlx wrap failed", zap.Error(err))
	}

	infra := server.Infra{DB: db, SQLX: sqlxDB, Logger: lg}

	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			lg.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			infra.Cache = rc
			defer func() { _ = rc.Close() }()
		}

		queue := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = queue.Close() }()
		infra.Reminders = reminder.NewScheduler(queue, cfg.ReminderLead)
	} else {
		lg.Info("REDIS_ADDR not set: cache and reminders disabled")
	}

	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, repository.NewBotSettingsRepository(db))
		if err != nil {
			lg.Warn("telegram notifications disabled", zap.Error(err))
		} else {
			infra.Notifier = tg
		}
	}

	srv, err := server.New(cfg, infra)
	if err != nil {
		lg.Fatal("server init failed", zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("server listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Hub.Close()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		lg.Error("forced shutdown", zap.Error(err))
	}
}
