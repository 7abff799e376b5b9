package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-ordering/internal/config"
	"github.com/iliyamo/venue-ordering/internal/middleware"
	"github.com/iliyamo/venue-ordering/internal/model"
	"github.com/iliyamo/venue-ordering/internal/queue"
	"github.com/iliyamo/venue-ordering/internal/repository"
	queue_publisher "github.com/iliyamo/venue-ordering/internal/service"
	"github.com/iliyamo/venue-ordering/internal/utils"
)

// AdminHandler implements host registration and the super-admin surface:
// listing hosts, impersonating a host, and removing one. Every privileged
// action here emits an audit event and a log line carrying the acting
// super-admin's id.
type AdminHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *repository.SessionRepo
	Logf     func(format string, v ...any) // log sink, swappable in tests
}

func NewAdminHandler(cfg config.Config, u *repository.UserRepo, s *repository.SessionRepo, logf func(string, ...any)) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: u, Sessions: s, Logf: logf}
}

func (h *AdminHandler) logf(format string, v ...any) {
	if h.Logf != nil {
		h.Logf(format, v...)
	}
}

// ----- DTOs -----

type registerHostReq struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

type hostPart struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterHost creates a host account (role ADMIN, never super-admin).
// Public endpoint; the password is hashed before storage and never logged.
func (h *AdminHandler) RegisterHost(c echo.Context) error {
	var req registerHostReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Users.CreateHost(ctx, req.Email, req.Password, req.Name, req.Phone, req.Address, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create host failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "host registered", "user_id": id})
}

// ListHosts returns every host account. Password hashes are never selected
// by the repository, so they cannot appear here.
func (h *AdminHandler) ListHosts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hosts, err := h.Users.ListHosts(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]hostPart, 0, len(hosts))
	for _, u := range hosts {
		out = append(out, hostPart{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt})
	}
	return c.JSON(http.StatusOK, out)
}

// Impersonate grants the calling super-admin a session acting as the
// target host. The target must be a host (role ADMIN, not super-admin):
// one super-admin can never impersonate another, and an ineligible or
// unknown target is a plain 404. The minted token is privilege-identical
// to the host's own login except for the impersonated_by claim, which is
// retained for the token's lifetime and surfaces in the audit trail.
func (h *AdminHandler) Impersonate(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	hostID, err := strconv.ParseUint(c.Param("hostId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "host not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	host, err := h.Users.GetHost(ctx, hostID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "host not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	ttl := time.Duration(h.Cfg.AccessTTLHours) * time.Hour
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, ttl, host.ID, model.RoleAdmin, false, 0, ident.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	if err := h.Sessions.Create(ctx, host.ID, access.Token, access.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}

	h.logf("impersonation granted: super_admin=%d host=%d", ident.UserID, host.ID)
	_ = queue_publisher.PublishSecurityEvent(ctx, queue.SecurityEvent{
		Action:   queue.ActionImpersonate,
		ActorID:  ident.UserID,
		TargetID: host.ID,
		RemoteIP: c.RealIP(),
	})

	return c.JSON(http.StatusOK, echo.Map{"token": access.Token})
}

// DeleteHost removes a host account and revokes all of its sessions,
// including any impersonation sessions currently acting as it.
func (h *AdminHandler) DeleteHost(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	hostID, err := strconv.ParseUint(c.Param("hostId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "host not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.DeleteHost(ctx, hostID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "host not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if err := h.Sessions.RevokeAllForUser(ctx, hostID); err != nil {
		h.logf("revoke sessions for deleted host %d failed: %v", hostID, err)
	}

	h.logf("host deleted: super_admin=%d host=%d", ident.UserID, hostID)
	_ = queue_publisher.PublishSecurityEvent(ctx, queue.SecurityEvent{
		Action:   queue.ActionHostDeleted,
		ActorID:  ident.UserID,
		TargetID: hostID,
		RemoteIP: c.RealIP(),
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "host deleted"})
}

// DashboardStats holds the calling tenant's record counts. Served on the
// host-scoped group; under impersonation the counts are the impersonated
// host's. Reads leave no audit trail, only mutations do.
type DashboardStats struct {
	Reservations uint64 `json:"reservations"`
	Guests       uint64 `json:"guests"`
	Items        uint64 `json:"items"`
	Orders       uint64 `json:"orders"`
}

// StatsHandler serves the host dashboard counters.
type StatsHandler struct {
	Reservations *repository.ReservationRepo
	Guests       *repository.GuestRepo
	Items        *repository.MenuItemRepo
	Orders       *repository.OrderRepo
}

func NewStatsHandler(r *repository.ReservationRepo, g *repository.GuestRepo, m *repository.MenuItemRepo, o *repository.OrderRepo) *StatsHandler {
	return &StatsHandler{Reservations: r, Guests: g, Items: m, Orders: o}
}

// Dashboard aggregates per-tenant counts for the admin dashboard.
func (h *StatsHandler) Dashboard(c echo.Context) error {
	ident, _ := middleware.CurrentIdentity(c)
	tenant, ok := ident.Tenant()
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var stats DashboardStats
	var err error
	if stats.Reservations, err = h.Reservations.CountByHost(ctx, tenant); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if stats.Guests, err = h.Guests.CountByHost(ctx, tenant); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if stats.Items, err = h.Items.CountByHost(ctx, tenant); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if stats.Orders, err = h.Orders.CountByHost(ctx, tenant); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}
