package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/venue-ordering/internal/config"
	"github.com/iliyamo/venue-ordering/internal/handler"
	"github.com/iliyamo/venue-ordering/internal/middleware"
	"github.com/iliyamo/venue-ordering/internal/model"
	"github.com/iliyamo/venue-ordering/internal/repository"
)

// Handlers collects every handler the router wires up.
type Handlers struct {
	Auth         *handler.AuthHandler
	Admin        *handler.AdminHandler
	Stats        *handler.StatsHandler
	Menu         *handler.MenuHandler
	Guests       *handler.GuestHandler
	Reservations *handler.ReservationHandler
	Orders       *handler.OrderHandler
}

// Register wires all routes onto the Echo instance. Authorization is
// declared here, per route group, rather than improvised inside handlers:
// the super-admin surface is an enumerated group under /v1/admin, host
// CRUD requires role ADMIN (which an impersonation session carries), and
// the guest surface requires role GUEST. The credential and PIN endpoints
// sit behind the Redis token bucket when one is available.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client, rlCfg config.RateLimitConfig, h Handlers, sessions *repository.SessionRepo) {
	// Liveness probe, no auth.
	e.GET("/healthz", handler.Health)

	throttle := middleware.NewTokenBucket(rlCfg, rdb)

	// Public authentication endpoints. Logout lives here on purpose: it
	// must keep answering 200 for tokens whose session is already gone,
	// which the identity middleware would reject with a 401.
	pub := e.Group("/v1/auth")
	pub.POST("/login", h.Auth.Login, throttle)
	pub.GET("/pin/:pin", h.Auth.ValidatePin, throttle)
	pub.POST("/logout", h.Auth.Logout)

	// Host self-registration is public as well.
	e.POST("/v1/admin/register", h.Admin.RegisterHost)

	// Everything below requires a token that passes both signature
	// verification and a live session row.
	authed := e.Group("/v1", middleware.Authenticate(cfg.JWTSecret, sessions))
	authed.GET("/auth/verify", h.Auth.Verify)

	// Super-admin-only surface, enumerated: nothing else on the API is
	// reachable with super-admin privilege alone.
	admin := authed.Group("/admin", middleware.RequireSuperAdmin())
	admin.GET("/hosts", h.Admin.ListHosts)
	admin.POST("/impersonate/:hostId", h.Admin.Impersonate)
	admin.DELETE("/hosts/:hostId", h.Admin.DeleteHost)

	// Host-scoped CRUD. Only role ADMIN passes: an impersonation session
	// carries ADMIN, a plain super-admin session does not and is rejected
	// here, since it has no tenant to act as.
	host := authed.Group("", middleware.RequireRole(model.RoleAdmin))
	host.GET("/dashboard/stats", h.Stats.Dashboard)
	host.GET("/items", h.Menu.ListItems)
	host.POST("/items", h.Menu.CreateItem)
	host.PUT("/items/:id", h.Menu.UpdateItem)
	host.DELETE("/items/:id", h.Menu.DeleteItem)
	host.GET("/guests", h.Guests.List)
	host.POST("/guests", h.Guests.Create)
	host.GET("/reservations", h.Reservations.List)
	host.POST("/reservations", h.Reservations.Create)
	host.DELETE("/reservations/:id", h.Reservations.Delete)
	host.POST("/reservations/:id/pin", h.Reservations.RegeneratePIN)
	host.GET("/reservations/:id/orders", h.Reservations.ListOrders)

	// Guest surface: menu browsing and ordering under the reservation the
	// token was granted for.
	guest := authed.Group("", middleware.RequireRole(model.RoleGuest))
	guest.GET("/menu", h.Menu.GuestMenu)
	guest.GET("/orders", h.Orders.List)
	guest.POST("/orders", h.Orders.Create)
}
