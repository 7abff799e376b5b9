package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-ordering/internal/model"
	"github.com/iliyamo/venue-ordering/internal/queue"
	"github.com/iliyamo/venue-ordering/internal/repository"
)

// ReservationHandler implements host-side reservation management. The
// guest referenced by a new reservation must belong to the same tenant, so
// one host can never attach a reservation to another host's guest; the
// failure reads as "guest not found".
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Guests       *repository.GuestRepo
	Orders       *repository.OrderRepo
}

func NewReservationHandler(r *repository.ReservationRepo, g *repository.GuestRepo, o *repository.OrderRepo) *ReservationHandler {
	return &ReservationHandler{Reservations: r, Guests: g, Orders: o}
}

// ----- DTOs -----

type reservationReq struct {
	GuestID   uint64    `json:"guest_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type reservationPart struct {
	ID        uint64    `json:"id"`
	GuestID   uint64    `json:"guest_id"`
	PIN       string    `json:"pin"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

func toReservationPart(r model.Reservation) reservationPart {
	return reservationPart{ID: r.ID, GuestID: r.GuestID, PIN: r.PIN, StartDate: r.StartDate, EndDate: r.EndDate}
}

// List returns the caller's reservations. The PIN is included: this is the
// host's own data, and the host hands the PIN to the guest out of band.
func (h *ReservationHandler) List(c echo.Context) error {
	tenant, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.ListByHost(ctx, tenant)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]reservationPart, 0, len(list))
	for _, r := range list {
		out = append(out, toReservationPart(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Create books a reservation for one of the caller's guests and allocates
// its PIN.
func (h *ReservationHandler) Create(c echo.Context) error {
	tenant, ok := tenantOf(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil || req.GuestID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest_id required"})
	}
	if !req.EndDate.After(req.StartDate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be after start_date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Tenant check on the guest; a foreign guest id reads as not found.
	if _, err := h.Guests.GetByID(ctx, req.GuestID, tenant); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "guest not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	res, err := h.Reservations.Create(ctx, tenant, req.GuestID, req.StartDate.UTC(), req.EndDate.UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
	}
	auditTenantAction(c, queue.ActionReservationCreated, res.ID)
	return c.JSON(http.StatusCreated, toReservationPart(res))
}

// Delete removes the caller's reservation.
func (h *ReservationHandler) Delete(c echo.Context) error {
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

	if err := h.Reservations.Delete(ctx, id, tenant); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	auditTenantAction(c, queue.ActionReservationDeleted, id)
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation deleted"})
}

// RegeneratePIN rotates the PIN of the caller's reservation. Any guest
// session already granted under the old PIN stays live until it expires or
// is revoked; only new PIN validations see the rotation.
func (h *ReservationHandler) RegeneratePIN(c echo.Context) error {
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

	pin, err := h.Reservations.RegeneratePIN(ctx, id, tenant)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "regenerate pin failed"})
	}
	auditTenantAction(c, queue.ActionPINRegenerated, id)
	return c.JSON(http.StatusOK, echo.Map{"pin": pin})
}

// ListOrders returns the orders placed under one of the caller's
// reservations.
func (h *ReservationHandler) ListOrders(c echo.Context) error {
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

	// Confirm the reservation is the caller's before listing.
	if _, err := h.Reservations.GetByID(ctx, id, tenant); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	orders, err := h.Orders.ListByReservation(ctx, id, tenant)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toOrderParts(orders))
}
