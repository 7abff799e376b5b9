package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-ordering/internal/middleware"
	"github.com/iliyamo/venue-ordering/internal/model"
	"github.com/iliyamo/venue-ordering/internal/repository"
)

func newOrderHandler(db *sql.DB) *OrderHandler {
	return NewOrderHandler(
		repository.NewMenuItemRepo(db),
		repository.NewOrderRepo(db),
		repository.NewReservationRepo(db))
}

func guestContext(e *echo.Echo, rec *httptest.ResponseRecorder, req *http.Request) echo.Context {
	c := e.NewContext(req, rec)
	setIdentity(c, middleware.Identity{UserID: 3, Role: model.RoleGuest, ReservationID: 9})
	return c
}

func TestCreateOrderPricesFromMenu(t *testing.T) {
	db, mock := newMock(t)
	h := newOrderHandler(db)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM menu_items WHERE id=\\? AND host_id=\\?").
		WithArgs(uint64(5), uint64(3)).
		WillReturnRows(menuItemRows().AddRow(5, 3, "Coffee", nil, 450, true, now, now))
	// Reservation id comes from the token, total from the stored price.
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO orders (host_id, reservation_id, item_id, quantity, total_cents) VALUES (?,?,?,?,?)")).
		WithArgs(uint64(3), uint64(9), uint64(5), uint32(2), uint32(900)).
		WillReturnResult(sqlmock.NewResult(31, 1))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := guestContext(e, rec, jsonRequest(http.MethodPost, "/v1/orders", `{"item_id":5,"quantity":2}`))

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID         uint64 `json:"id"`
		TotalCents uint32 `json:"total_cents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != 31 || resp.TotalCents != 900 {
		t.Fatalf("response = %+v", resp)
	}
}

func TestCreateOrderForeignItemIs404(t *testing.T) {
	db, mock := newMock(t)
	h := newOrderHandler(db)

	mock.ExpectQuery("FROM menu_items WHERE id=\\? AND host_id=\\?").
		WithArgs(uint64(77), uint64(3)).
		WillReturnRows(menuItemRows())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := guestContext(e, rec, jsonRequest(http.MethodPost, "/v1/orders", `{"item_id":77}`))

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateOrderUnavailableItem(t *testing.T) {
	db, mock := newMock(t)
	h := newOrderHandler(db)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM menu_items WHERE id=\\? AND host_id=\\?").
		WithArgs(uint64(5), uint64(3)).
		WillReturnRows(menuItemRows().AddRow(5, 3, "Coffee", nil, 450, false, now, now))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := guestContext(e, rec, jsonRequest(http.MethodPost, "/v1/orders", `{"item_id":5}`))

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateOrderCapsQuantity(t *testing.T) {
	// No query expectations: an oversized quantity is rejected before any
	// menu lookup happens.
	db, _ := newMock(t)
	h := newOrderHandler(db)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := guestContext(e, rec, jsonRequest(http.MethodPost, "/v1/orders", `{"item_id":5,"quantity":5000}`))

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateOrderTotalOverflowIs400(t *testing.T) {
	db, mock := newMock(t)
	h := newOrderHandler(db)

	// Max uint32 price times a quantity of 2 would wrap a 32-bit total.
	// No INSERT expectation; the order must be rejected.
	now := time.Now().UTC()
	mock.ExpectQuery("FROM menu_items WHERE id=\\? AND host_id=\\?").
		WithArgs(uint64(5), uint64(3)).
		WillReturnRows(menuItemRows().AddRow(5, 3, "Coffee", nil, uint32(4294967295), true, now, now))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := guestContext(e, rec, jsonRequest(http.MethodPost, "/v1/orders", `{"item_id":5,"quantity":2}`))

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateOrderWithoutReservationClaim(t *testing.T) {
	db, _ := newMock(t)
	h := newOrderHandler(db)

	// A host token has no reservation claim and cannot place guest orders.
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/orders", `{"item_id":5}`), rec)
	setIdentity(c, middleware.Identity{UserID: 3, Role: model.RoleAdmin})

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
