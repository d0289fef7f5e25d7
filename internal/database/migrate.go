package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"beautycrm/internal/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Models lists every table owned by the service, in dependency order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.UserPermission{},
		&domain.Client{},
		&domain.Service{},
		&domain.SpecialPackage{},
		&domain.Booking{},
		&domain.InternalMessage{},
		&domain.BotSettings{},
	}
}

// AutoMigrate is used for SQLite (dev, tests, seed).
func AutoMigrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("auto-migrate %T: %w", m, err)
		}
	}
	return nil
}

// Migrate applies the versioned SQL migrations against PostgreSQL.
func Migrate(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Prepare brings the schema up to date for whichever dialect dsn points at.
func Prepare(ctx context.Context, db *gorm.DB, dsn string) error {
	if IsPostgres(dsn) {
		return Migrate(ctx, db)
	}
	return AutoMigrate(db)
}
