package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-ordering/internal/model"
	"github.com/iliyamo/venue-ordering/internal/queue"
	"github.com/iliyamo/venue-ordering/internal/repository"
)

// GuestHandler implements host-side guest record management.
type GuestHandler struct {
	Guests *repository.GuestRepo
}

func NewGuestHandler(g *repository.GuestRepo) *GuestHandler {
	return &GuestHandler{Guests: g}
}

type guestReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type guestPart struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// List returns the caller's guests.
func (h *GuestHandler) List(c echo.Context) error {
	tenant, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	guests, err := h.Guests.ListByHost(ctx, tenant)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]guestPart, 0, len(guests))
	for _, g := range guests {
		out = append(out, toGuestPart(g))
	}
	return c.JSON(http.StatusOK, out)
}

// Create registers a guest under the caller's tenant.
func (h *GuestHandler) Create(c echo.Context) error {
	tenant, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req guestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Guests.Create(ctx, tenant, req.Name, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create guest failed"})
	}
	auditTenantAction(c, queue.ActionGuestCreated, id)
	return c.JSON(http.StatusCreated, guestPart{ID: id, Name: req.Name, Email: req.Email})
}

func toGuestPart(g model.Guest) guestPart {
	return guestPart{ID: g.ID, Name: g.Name, Email: g.Email}
}
