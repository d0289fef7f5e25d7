package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"beautycrm/internal/domain"
	"beautycrm/internal/middleware"
	"beautycrm/internal/pkg/jwt"
	"beautycrm/internal/repository"
)

type routeGuards struct {
	tokens  *jwt.Service
	users   *repository.UserRepository
	clients *repository.ClientRepository
	public  *middleware.RateLimiter
}

func (g routeGuards) can(r domain.Resource, a domain.Action) gin.HandlerFunc {
	return middleware.RequirePermission(g.users, r, a)
}

// registerRoutes is the only place that decides who may call what. Every
// staff route goes through the role table in domain via RequirePermission.
func registerRoutes(r *gin.Engine, h handlers, g routeGuards) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	/* ---------- PUBLIC SITE & CLIENT CABINET ---------- */

	public := r.Group("/public")
	{
		public.GET("/services", h.catalog.PublicServices)
		public.GET("/special-packages", h.catalog.PublicPackages)
		public.POST("/bookings", g.public.Middleware(), h.booking.CreatePublic)

		client := public.Group("/client")
		client.POST("/register", g.public.Middleware(), h.cabinet.Register)
		client.POST("/login", g.public.Middleware(), h.cabinet.Login)

		cabinet := client.Group("")
		cabinet.Use(middleware.ClientAuth(g.tokens, g.clients))
		{
			cabinet.GET("/me", h.cabinet.Me)
			cabinet.GET("/bookings", h.cabinet.Bookings)
			cabinet.GET("/available-slots", h.cabinet.AvailableSlots)
			cabinet.POST("/bookings/:id/reschedule", h.cabinet.Reschedule)
			cabinet.POST("/bookings/:id/cancel", h.cabinet.Cancel)
		}
	}

	/* ---------- STAFF API ---------- */

	api := r.Group("/api")
	h.auth.RegisterPublicRoutes(api)

	staff := api.Group("")
	staff.Use(middleware.JWTAuth(g.tokens, g.users))
	{
		h.auth.RegisterProtectedRoutes(staff)
		staff.GET("/roles", h.users.Roles)

		staff.GET("/calendar/day", g.can(domain.ResourceBookings, domain.ActionView), h.calendar.Day)
		staff.GET("/calendar/week", g.can(domain.ResourceBookings, domain.ActionView), h.calendar.Week)

		bookings := staff.Group("/bookings")
		{
			bookings.GET("", g.can(domain.ResourceBookings, domain.ActionView), h.booking.List)
			bookings.GET("/:id", g.can(domain.ResourceBookings, domain.ActionView), h.booking.Get)
			bookings.POST("", g.can(domain.ResourceBookings, domain.ActionCreate), h.booking.Create)
			bookings.PATCH("/:id", g.can(domain.ResourceBookings, domain.ActionEdit), h.booking.Update)
			bookings.PUT("/:id/status", g.can(domain.ResourceBookings, domain.ActionEdit), h.booking.UpdateStatus)
			bookings.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), h.booking.Delete)
		}

		clients := staff.Group("/clients")
		{
			clients.GET("", g.can(domain.ResourceClients, domain.ActionView), h.clients.List)
			clients.GET("/:id", g.can(domain.ResourceClients, domain.ActionView), h.clients.Get)
			clients.POST("", g.can(domain.ResourceClients, domain.ActionCreate), h.clients.Create)
			clients.PUT("/:id", g.can(domain.ResourceClients, domain.ActionEdit), h.clients.Update)
		}

		services := staff.Group("/services")
		{
			services.GET("", g.can(domain.ResourceServices, domain.ActionView), h.catalog.ListServices)
			services.POST("", g.can(domain.ResourceServices, domain.ActionCreate), h.catalog.CreateService)
			services.PUT("/:id", g.can(domain.ResourceServices, domain.ActionEdit), h.catalog.UpdateService)
			services.DELETE("/:id", g.can(domain.ResourceServices, domain.ActionDelete), h.catalog.DeleteService)
		}

		packages := staff.Group("/special-packages")
		{
			packages.GET("", g.can(domain.ResourcePackages, domain.ActionView), h.catalog.ListPackages)
			packages.POST("", g.can(domain.ResourcePackages, domain.ActionCreate), h.catalog.CreatePackage)
			packages.PUT("/:id", g.can(domain.ResourcePackages, domain.ActionEdit), h.catalog.UpdatePackage)
			packages.DELETE("/:id", g.can(domain.ResourcePackages, domain.ActionDelete), h.catalog.DeletePackage)
		}

		users := staff.Group("/users")
		{
			users.GET("", g.can(domain.ResourceUsers, domain.ActionView), h.users.List)
			users.POST("", g.can(domain.ResourceUsers, domain.ActionCreate), h.users.Create)
			users.GET("/:id", g.can(domain.ResourceUsers, domain.ActionView), h.users.Get)
			users.PUT("/:id", g.can(domain.ResourceUsers, domain.ActionEdit), h.users.Update)
			users.DELETE("/:id", g.can(domain.ResourceUsers, domain.ActionDelete), h.users.Delete)
			users.GET("/:id/permissions", g.can(domain.ResourceUsers, domain.ActionView), h.users.Permissions)
			users.PUT("/:id/permissions", g.can(domain.ResourceUsers, domain.ActionEdit), h.users.ReplacePermissions)
			users.PUT("/:id/permissions/:resource/:action", g.can(domain.ResourceUsers, domain.ActionEdit), h.users.SetPermission)
		}

		chat := staff.Group("/internal-chat")
		{
			chat.GET("/users", g.can(domain.ResourceChat, domain.ActionView), h.chat.Users)
			chat.GET("/messages", g.can(domain.ResourceChat, domain.ActionView), h.chat.Messages)
			chat.POST("/send", g.can(domain.ResourceChat, domain.ActionCreate), h.chat.Send)
			chat.POST("/read/:userID", g.can(domain.ResourceChat, domain.ActionView), h.chat.MarkRead)
		}

		staff.GET("/analytics/funnel", g.can(domain.ResourceAnalytics, domain.ActionView), h.analytics.Funnel)
		staff.GET("/analytics/summary", g.can(domain.ResourceAnalytics, domain.ActionView), h.analytics.Summary)

		staff.GET("/bot-settings", g.can(domain.ResourceBotSettings, domain.ActionView), h.botSettings.Get)
		staff.PUT("/bot-settings", g.can(domain.ResourceBotSettings, domain.ActionEdit), h.botSettings.Update)
	}

	r.GET("/ws/internal-chat",
		middleware.JWTAuth(g.tokens, g.users),
		g.can(domain.ResourceChat, domain.ActionView),
		h.ws.Handle,
	)
}
