package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-ordering/internal/middleware"
	"github.com/iliyamo/venue-ordering/internal/model"
	"github.com/iliyamo/venue-ordering/internal/repository"
)

// OrderHandler implements the guest ordering flow. The reservation an
// order lands under comes from the token's reservation claim, never from
// the request body, so a guest cannot place orders under someone else's
// reservation. The ordered item is looked up within the guest's borrowed
// tenant; an item from another venue is a plain 404.
type OrderHandler struct {
	Items        *repository.MenuItemRepo
	Orders       *repository.OrderRepo
	Reservations *repository.ReservationRepo
}

func NewOrderHandler(items *repository.MenuItemRepo, orders *repository.OrderRepo, reservations *repository.ReservationRepo) *OrderHandler {
	return &OrderHandler{Items: items, Orders: orders, Reservations: reservations}
}

// maxOrderQuantity caps a single order line. Orders are placed one item at
// a time by a person at a venue; anything past this is a malformed or
// hostile request.
const maxOrderQuantity = 1000

type orderReq struct {
	ItemID   uint64 `json:"item_id"`
	Quantity uint32 `json:"quantity"`
}

type orderPart struct {
	ID         uint64    `json:"id"`
	ItemID     uint64    `json:"item_id"`
	Quantity   uint32    `json:"quantity"`
	TotalCents uint32    `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

func toOrderParts(orders []model.Order) []orderPart {
	out := make([]orderPart, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderPart{ID: o.ID, ItemID: o.ItemID, Quantity: o.Quantity, TotalCents: o.TotalCents, CreatedAt: o.CreatedAt})
	}
	return out
}

// Create places an order of one menu item under the guest's reservation.
func (h *OrderHandler) Create(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok || ident.ReservationID == 0 {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	tenant, ok := ident.Tenant()
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req orderReq
	if err := c.Bind(&req); err != nil || req.ItemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_id required"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity > maxOrderQuantity {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity too large"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	item, err := h.Items.GetByID(ctx, req.ItemID, tenant)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !item.Available {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item not available"})
	}

	// The stored total is uint32; widen for the multiplication so a large
	// price times a large quantity cannot silently wrap.
	total := uint64(item.PriceCents) * uint64(req.Quantity)
	if total > math.MaxUint32 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order total too large"})
	}

	order, err := h.Orders.Create(ctx, tenant, ident.ReservationID, item.ID, req.Quantity, uint32(total))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}
	return c.JSON(http.StatusCreated, orderPart{
		ID: order.ID, ItemID: order.ItemID, Quantity: order.Quantity,
		TotalCents: order.TotalCents, CreatedAt: order.CreatedAt,
	})
}

// List returns the orders placed under the guest's own reservation.
func (h *OrderHandler) List(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok || ident.ReservationID == 0 {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	tenant, ok := ident.Tenant()
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListByReservation(ctx, ident.ReservationID, tenant)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toOrderParts(orders))
}
