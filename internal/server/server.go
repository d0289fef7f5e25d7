package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"beautycrm/internal/cache"
	"beautycrm/internal/config"
	"beautycrm/internal/middleware"
	"beautycrm/internal/modules/analytics"
	"beautycrm/internal/modules/auth"
	"beautycrm/internal/modules/booking"
	"beautycrm/internal/modules/botsettings"
	"beautycrm/internal/modules/cabinet"
	"beautycrm/internal/modules/calendar"
	"beautycrm/internal/modules/catalog"
	"beautycrm/internal/modules/chat"
	"beautycrm/internal/modules/clients"
	"beautycrm/internal/modules/users"
	"beautycrm/internal/notify"
	"beautycrm/internal/pkg/jwt"
	"beautycrm/internal/reminder"
	"beautycrm/internal/repository"
)

// Infra holds the external services the API depends on. Nil Cache,
// Reminders and Notifier fall back to no-ops.
type Infra struct {
	DB        *gorm.DB
	SQLX      *sqlx.DB
	Cache     cache.Cache
	Reminders booking.ReminderScheduler
	Notifier  notify.Notifier
	Logger    *zap.Logger
}

type Server struct {
	Engine *gin.Engine
	Hub    *chat.Hub
	Tokens *jwt.Service
}

type handlers struct {
	auth        *auth.Handler
	booking     *booking.Handler
	calendar    *calendar.Handler
	cabinet     *cabinet.Handler
	catalog     *catalog.Handler
	clients     *clients.Handler
	users       *users.Handler
	chat        *chat.Handler
	ws          *chat.WSHandler
	analytics   *analytics.Handler
	botSettings *botsettings.Handler
}

// New assembles repositories, services and handlers and builds the router.
func New(cfg *config.Config, infra Infra) (*Server, error) {
	if infra.DB == nil || infra.SQLX == nil {
		return nil, fmt.Errorf("server: database handles are required")
	}
	if infra.Cache == nil {
		infra.Cache = cache.Noop{}
	}
	if infra.Reminders == nil {
		infra.Reminders = reminder.NoopScheduler{}
	}
	if infra.Notifier == nil {
		infra.Notifier = notify.Noop{}
	}
	if infra.Logger == nil {
		infra.Logger = zap.L()
	}

	hours, err := calendar.ParseHours(cfg.SalonOpen, cfg.SalonClose, cfg.SlotStep)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	loc := cfg.Location()
	tokens := jwt.New(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repository.NewUserRepository(infra.DB)
	clientRepo := repository.NewClientRepository(infra.DB)
	bookingRepo := repository.NewBookingRepository(infra.DB)
	serviceRepo := repository.NewServiceRepository(infra.DB)
	packageRepo := repository.NewPackageRepository(infra.DB)
	chatRepo := repository.NewChatRepository(infra.DB)
	botRepo := repository.NewBotSettingsRepository(infra.DB)
	analyticsRepo := repository.NewAnalyticsRepository(infra.SQLX)

	hub := chat.NewHub()

	h := handlers{
		auth: auth.NewHandler(auth.NewService(userRepo, tokens, cfg.JWTTTL)),
		booking: booking.NewHandler(booking.NewService(
			bookingRepo, clientRepo, serviceRepo, infra.Reminders, infra.Notifier, loc,
		)),
		calendar: calendar.NewHandler(calendar.NewService(bookingRepo, hours, loc)),
		cabinet: cabinet.NewHandler(cabinet.NewService(cabinet.Deps{
			Clients:   clientRepo,
			Bookings:  bookingRepo,
			Services:  serviceRepo,
			Staff:     userRepo,
			Tokens:    tokens,
			Reminders: infra.Reminders,
			Notifier:  infra.Notifier,
		}, hours, loc)),
		catalog:     catalog.NewHandler(catalog.NewService(serviceRepo, packageRepo, infra.Cache)),
		clients:     clients.NewHandler(clients.NewService(clientRepo)),
		users:       users.NewHandler(users.NewService(userRepo)),
		chat:        chat.NewHandler(chat.NewService(chatRepo, userRepo, hub)),
		ws:          chat.NewWSHandler(hub, cfg.AllowedOrigins()),
		analytics:   analytics.NewHandler(analytics.NewService(analyticsRepo, infra.Cache, loc)),
		botSettings: botsettings.NewHandler(botsettings.NewService(botRepo)),
	}

	guards := routeGuards{
		tokens:  tokens,
		users:   userRepo,
		clients: clientRepo,
		public:  middleware.NewRateLimiter(cfg.PublicRatePerMin),
	}

	gin.SetMode(ginMode(cfg))
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(infra.Logger),
		middleware.RequestLogger(infra.Logger),
		middleware.CORS(cfg.AllowedOrigins()),
	)
	registerRoutes(engine, h, guards)

	return &Server{Engine: engine, Hub: hub, Tokens: tokens}, nil
}

func ginMode(cfg *config.Config) string {
	if cfg.IsProdLike() {
		return gin.ReleaseMode
	}
	if cfg.AppEnv == "test" {
		return gin.TestMode
	}
	return gin.DebugMode
}
