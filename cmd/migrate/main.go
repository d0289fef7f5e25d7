package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"beautycrm/internal/config"
	"beautycrm/internal/database"
	"beautycrm/internal/pkg/logger"
)

// migrate brings the schema up to date: goose migrations on PostgreSQL,
// AutoMigrate on SQLite.
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

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		lg.Fatal("db connect failed", zap.Error(err))
	}
	if err := database.Prepare(context.Background(), db, cfg.DatabaseURL); err != nil {
		lg.Fatal("migration failed", zap.Error(err))
	}
	lg.Info("schema is up to date", zap.String("dialect", database.Dialect(cfg.DatabaseURL)))
}
