package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"beautycrm/internal/config"
	"beautycrm/internal/database"
	"beautycrm/internal/domain"
	"beautycrm/internal/pkg/logger"
	"beautycrm/internal/pkg/password"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(false)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		lg.Fatal("DB connection failed", zap.Error(err))
	}
	if err := database.Prepare(context.Background(), db, cfg.DatabaseURL); err != nil {
		lg.Fatal("schema preparation failed", zap.Error(err))
	}

	// Cleanup old data (children first)
	lg.Info("cleaning old data")
	for _, table := range []string{
		"internal_messages", "bookings", "special_packages", "services",
		"clients", "user_permissions", "users", "bot_settings",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			lg.Fatal("cleanup failed", zap.String("table", table), zap.Error(err))
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	loc := cfg.Location()

	// ================== STAFF ==================
	staff := []struct {
		username, name, position string
		role                     domain.UserRole
	}{
		{"admin", "Администратор", "", domain.RoleAdmin},
		{"manager", "Айгерим Manager", "Управляющая", domain.RoleManager},
		{"sales", "Дана Sales", "Администратор ресепшн", domain.RoleSales},
		{"marketer", "Асель Marketing", "SMM", domain.RoleMarketer},
		{"master1", "Мадина", "Мастер маникюра", domain.RoleEmployee},
		{"master2", "Жанна", "Бровист", domain.RoleEmployee},
	}
	users := make([]domain.User, 0, len(staff))
	for _, s := range staff {
		hash, err := password.Hash(s.username + "123")
		if err != nil {
			lg.Fatal("hash password", zap.Error(err))
		}
		u := domain.User{
			Username:     s.username,
			FullName:     s.name,
			PasswordHash: hash,
			Role:         s.role,
			Position:     s.position,
			IsActive:     true,
		}
		mustCreate(lg, db, &u)
		users = append(users, u)
		lg.Info("staff created", zap.String("login", s.username+" / "+s.username+"123"), zap.String("role", string(s.role)))
	}

	// ================== SERVICES ==================
	services := []domain.Service{
		{Key: "manicure", Name: "Manicure", NameRu: "Маникюр", Price: 8000, Duration: 60, Category: "nails", IsActive: true},
		{Key: "pedicure", Name: "Pedicure", NameRu: "Педикюр", Price: 10000, Duration: 90, Category: "nails", IsActive: true},
		{Key: "brows", Name: "Brow shaping", NameRu: "Коррекция бровей", Price: 5000, Duration: 30, Category: "brows", IsActive: true},
		{Key: "lashes", Name: "Lash extension", NameRu: "Наращивание ресниц", Price: 12000, Duration: 120, Category: "lashes", IsActive: true},
	}
	for i := range services {
		mustCreate(lg, db, &services[i])
	}

	pkg := domain.SpecialPackage{
		Name:          "Nails combo",
		NameRu:        "Маникюр + педикюр",
		ServiceKey:    "manicure",
		OriginalPrice: 18000,
		SpecialPrice:  14500,
		Keywords:      []string{"комбо", "маникюр", "педикюр"},
		IsActive:      true,
	}
	if err := pkg.Normalize(); err != nil {
		lg.Fatal("package", zap.Error(err))
	}
	mustCreate(lg, db, &pkg)

	// ================== CLIENTS ==================
	clients := make([]domain.Client, 0, 8)
	for i := 0; i < 8; i++ {
		phone := fmt.Sprintf("+7777123%04d", 4500+i)
		c := domain.Client{DisplayName: fmt.Sprintf("Клиент %d", i+1), Phone: &phone}
		if i%3 == 0 {
			insta := fmt.Sprintf("client_%d", i+1)
			c.InstagramID = &insta
		}
		if i == 0 {
			hash, _ := password.Hash("client123")
			c.PasswordHash = hash
		}
		mustCreate(lg, db, &c)
		clients = append(clients, c)
	}
	lg.Info("cabinet client", zap.String("login", clients[0].PhoneValue()+" / client123"))

	// ================== BOOKINGS ==================
	masters := []string{"Мадина", "Жанна"}
	statuses := []domain.BookingStatus{
		domain.BookingNew, domain.BookingPending, domain.BookingConfirmed, domain.BookingCompleted, domain.BookingCancelled,
	}
	today := time.Now().In(loc)
	for i := 0; i < 20; i++ {
		c := clients[rng.Intn(len(clients))]
		svc := services[rng.Intn(len(services))]
		day := today.AddDate(0, 0, rng.Intn(21)-10)
		start := time.Date(day.Year(), day.Month(), day.Day(), 9+rng.Intn(11), 30*rng.Intn(2), 0, 0, loc)

		status := statuses[rng.Intn(len(statuses))]
		if start.After(today) && status == domain.BookingCompleted {
			status = domain.BookingConfirmed
		}
		b := domain.Booking{
			ClientID:        &c.ID,
			Service:         svc.Key,
			Datetime:        start.UTC(),
			DurationMinutes: svc.DurationMinutes(),
			Phone:           c.PhoneValue(),
			Name:            c.DisplayName,
			Status:          status,
			Master:          masters[rng.Intn(len(masters))],
			Version:         1,
		}
		if status == domain.BookingCompleted {
			b.Revenue = svc.Price
		}
		mustCreate(lg, db, &b)
	}

	// ================== CHAT & SETTINGS ==================
	mustCreate(lg, db, &domain.InternalMessage{SenderID: users[0].ID, IsGroup: true, Message: "Добро пожаловать в CRM!"})
	mustCreate(lg, db, &domain.InternalMessage{SenderID: users[1].ID, RecipientID: &users[2].ID, Message: "Проверь записи на завтра"})

	settings := domain.BotSettings{ID: 1, BotName: "Salon bot", GreetingMessage: "Здравствуйте! Чем помочь?", MaxMessageLength: 5}
	settings.Normalize()
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&settings).Error; err != nil {
		lg.Fatal("bot settings", zap.Error(err))
	}

	lg.Info("seed completed")
}

func mustCreate(lg *zap.Logger, db *gorm.DB, v any) {
	if err := db.Create(v).Error; err != nil {
		lg.Fatal("insert failed", zap.String("type", fmt.Sprintf("%T", v)), zap.Error(err))
	}
}
