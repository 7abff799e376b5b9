package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-ordering/internal/middleware"
	"github.com/iliyamo/venue-ordering/internal/model"
	"github.com/iliyamo/venue-ordering/internal/queue"
	"github.com/iliyamo/venue-ordering/internal/repository"
	queue_publisher "github.com/iliyamo/venue-ordering/internal/service"
)

// MenuHandler covers both sides of the menu: host CRUD on their own items
// and the read-only menu a guest sees.  Every query is filtered by the
// caller's effective tenant; an item id belonging to another host is a 404.
type MenuHandler struct {
	Items *repository.MenuItemRepo
}

func NewMenuHandler(items *repository.MenuItemRepo) *MenuHandler {
	return &MenuHandler{Items: items}
}

// ----- DTOs -----

type menuItemReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PriceCents  uint32  `json:"price_cents"`
	Available   *bool   `json:"available"`
}

type menuItemPart struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	PriceCents  uint32  `json:"price_cents"`
	Available   bool    `json:"available"`
}

func toMenuItemPart(m model.MenuItem) menuItemPart {
	return menuItemPart{ID: m.ID, Name: m.Name, Description: m.Description, PriceCents: m.PriceCents, Available: m.Available}
}

// tenantOf resolves the caller's effective tenant. Handlers on host/guest
// groups always have one; the check guards against a route being wired
// onto the wrong group.
func tenantOf(c echo.Context) (uint64, bool) {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return 0, false
	}
	return ident.Tenant()
}

// pathID parses a numeric :id-style path parameter. A malformed id is
// reported as not found, same as an unknown one.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil
}

// auditTenantAction records a host-scoped mutation performed under an
// impersonated session. The initiating super-admin's id is carried in both
// the log line and the published event, so every change made while
// impersonating stays attributable. Mutations in a host's own session
// produce no trail here.
func auditTenantAction(c echo.Context, action string, targetID uint64) {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok || ident.ImpersonatedBy == 0 {
		return
	}
	log.Printf("impersonated action: %s super_admin=%d host=%d target=%d",
		action, ident.ImpersonatedBy, ident.UserID, targetID)
	_ = queue_publisher.PublishSecurityEvent(c.Request().Context(), queue.SecurityEvent{
		Action:         action,
		ActorID:        ident.UserID,
		TargetID:       targetID,
		ImpersonatedBy: ident.ImpersonatedBy,
		RemoteIP:       c.RealIP(),
	})
}

// ListItems returns the caller's full menu, including unavailable items.
func (h *MenuHandler) ListItems(c echo.Context) error {
	tenant, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Items.ListByHost(ctx, tenant, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]menuItemPart, 0, len(items))
	for _, m := range items {
		out = append(out, toMenuItemPart(m))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateItem adds a menu item under the caller's tenant.
func (h *MenuHandler) CreateItem(c echo.Context) error {
	tenant, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req menuItemReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Items.Create(ctx, tenant, req.Name, req.Description, req.PriceCents)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create item failed"})
	}
	auditTenantAction(c, queue.ActionItemCreated, id)
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// UpdateItem rewrites a menu item the caller owns.
func (h *MenuHandler) UpdateItem(c echo.Context) error {
	tenant, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	var req menuItemReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	current, err := h.Items.GetByID(ctx, id, tenant)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	available := current.Available
	if req.Available != nil {
		available = *req.Available
	}
	if err := h.Items.Update(ctx, id, tenant, req.Name, req.Description, req.PriceCents, available); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	auditTenantAction(c, queue.ActionItemUpdated, id)
	return c.JSON(http.StatusOK, echo.Map{"message": "item updated"})
}

// DeleteItem removes a menu item the caller owns.
func (h *MenuHandler) DeleteItem(c echo.Context) error {
	tenant, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.Delete(ctx, id, tenant); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	auditTenantAction(c, queue.ActionItemDeleted, id)
	return c.JSON(http.StatusOK, echo.Map{"message": "item deleted"})
}

// GuestMenu returns the orderable menu of the guest's borrowed host
// tenant. Unavailable items are filtered out.
func (h *MenuHandler) GuestMenu(c echo.Context) error {
	tenant, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Items.ListByHost(ctx, tenant, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]menuItemPart, 0, len(items))
	for _, m := range items {
		out = append(out, toMenuItemPart(m))
	}
	return c.JSON(http.StatusOK, out)
}
