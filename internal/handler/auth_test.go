package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/venue-ordering/internal/config"
	"github.com/iliyamo/venue-ordering/internal/middleware"
	"github.com/iliyamo/venue-ordering/internal/model"
	"github.com/iliyamo/venue-ordering/internal/repository"
	"github.com/iliyamo/venue-ordering/internal/utils"
)

const testSecret = "handler-test-secret"

func testConfig() config.Config {
	return config.Config{JWTSecret: testSecret, AccessTTLHours: 1, BcryptCost: bcrypt.MinCost}
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	// Keep the audit publisher quiet regardless of the environment the
	// tests run in.
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "")
	return db, mock
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func setIdentity(c echo.Context, ident middleware.Identity) {
	c.Set("identity", ident)
}

func newAuthHandler(db *sql.DB) *AuthHandler {
	return NewAuthHandler(testConfig(),
		repository.NewUserRepo(db),
		repository.NewSessionRepo(db),
		repository.NewReservationRepo(db))
}

func userRowsWithPassword(t *testing.T, id uint64, email, password string, role model.Role, super bool) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "role", "is_super_admin",
		"name", "phone", "address", "created_at", "updated_at",
	}).AddRow(id, email, hash, string(role), super, nil, nil, nil, now, now)
}

func TestLoginIssuesSessionBackedToken(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("host@example.com").
		WillReturnRows(userRowsWithPassword(t, 5, "host@example.com", "pw", model.RoleAdmin, false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions")).
		WithArgs(uint64(5), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/login", `{"email":"Host@Example.com","password":"pw"}`), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token        string     `json:"token"`
		Role         model.Role `json:"role"`
		IsSuperAdmin bool       `json:"is_super_admin"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != model.RoleAdmin || resp.IsSuperAdmin {
		t.Fatalf("response = %+v", resp)
	}
	claims, err := utils.ParseAccessToken(testSecret, resp.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if id, _ := claims.UserID(); id != 5 {
		t.Fatalf("token subject = %d, want 5", id)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	// No session insert is expected: a failed login grants nothing.
	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("host@example.com").
		WillReturnRows(userRowsWithPassword(t, 5, "host@example.com", "pw", model.RoleAdmin, false))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/login", `{"email":"host@example.com","password":"wrong"}`), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid credentials") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestLoginUnknownEmailSameResponse(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password_hash", "role", "is_super_admin",
			"name", "phone", "address", "created_at", "updated_at",
		}))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/login", `{"email":"nobody@example.com","password":"pw"}`), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	// Indistinguishable from the wrong-password reply.
	if !strings.Contains(rec.Body.String(), "invalid credentials") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestLogout(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE token_hash=?")).
		WithArgs(utils.HashToken("some-token")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	// Without any token there is nothing to revoke.
	rec = httptest.NewRecorder()
	if err := h.Logout(e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil), rec)); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func pinContext(e *echo.Echo, rec *httptest.ResponseRecorder, pin string) echo.Context {
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/auth/pin/"+pin, nil), rec)
	c.SetParamNames("pin")
	c.SetParamValues(pin)
	return c
}

func TestValidatePinRejectsMalformedBeforeStorage(t *testing.T) {
	// No query expectations: a malformed PIN must never reach the database.
	db, _ := newMock(t)
	h := newAuthHandler(db)
	e := echo.New()

	for _, pin := range []string{"", "123", "12345", "12a4", "١٢٣٤"} {
		rec := httptest.NewRecorder()
		if err := h.ValidatePin(pinContext(e, rec, pin)); err != nil {
			t.Fatalf("ValidatePin(%q): %v", pin, err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("pin %q: status = %d, want 401", pin, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "invalid or expired PIN") {
			t.Fatalf("pin %q: body = %s", pin, rec.Body.String())
		}
	}
}

func TestValidatePinGrantsGuestSession(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	start := time.Now().UTC().Add(-time.Hour)
	end := time.Now().UTC().Add(time.Hour)
	mock.ExpectQuery("FROM reservations WHERE pin=").
		WithArgs("1234", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "host_id", "guest_id", "pin", "start_date", "end_date", "created_at", "updated_at",
		}).AddRow(9, 3, 6, "1234", start, end, start, start))
	// The session row lands under the borrowed host id.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions")).
		WithArgs(uint64(3), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	e := echo.New()
	rec := httptest.NewRecorder()
	if err := h.ValidatePin(pinContext(e, rec, "1234")); err != nil {
		t.Fatalf("ValidatePin: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token         string     `json:"token"`
		Role          model.Role `json:"role"`
		ReservationID uint64     `json:"reservation_id"`
		GuestID       uint64     `json:"guest_id"`
		HostID        uint64     `json:"host_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != model.RoleGuest || resp.ReservationID != 9 || resp.GuestID != 6 || resp.HostID != 3 {
		t.Fatalf("response = %+v", resp)
	}

	claims, err := utils.ParseAccessToken(testSecret, resp.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if id, _ := claims.UserID(); id != 3 {
		t.Fatalf("token subject = %d, want borrowed host 3", id)
	}
	if claims.Role != model.RoleGuest || claims.ReservationID != 9 {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.IsSuperAdmin {
		t.Fatal("guest token carries super-admin privilege")
	}
}

func TestValidatePinMiss(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	mock.ExpectQuery("FROM reservations WHERE pin=").
		WithArgs("4321", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "host_id", "guest_id", "pin", "start_date", "end_date", "created_at", "updated_at",
		}))

	e := echo.New()
	rec := httptest.NewRecorder()
	if err := h.ValidatePin(pinContext(e, rec, "4321")); err != nil {
		t.Fatalf("ValidatePin: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid or expired PIN") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestVerifyEchoesIdentity(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	// Host and super-admin sessions get the account email from the store.
	mock.ExpectQuery("FROM users WHERE id=\\? LIMIT 1").
		WithArgs(uint64(3)).
		WillReturnRows(userRowsWithPassword(t, 3, "host@example.com", "pw", model.RoleAdmin, false))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/auth/verify", nil), rec)
	setIdentity(c, middleware.Identity{UserID: 3, Role: model.RoleAdmin, ImpersonatedBy: 2})

	if err := h.Verify(c); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["user_id"] != float64(3) || resp["impersonated_by"] != float64(2) {
		t.Fatalf("response = %v", resp)
	}
	if resp["email"] != "host@example.com" {
		t.Fatalf("email = %v", resp["email"])
	}
	if _, present := resp["reservation_id"]; present {
		t.Fatal("zero reservation_id serialized")
	}
}

func TestVerifyGuestSessionSkipsAccountLookup(t *testing.T) {
	// No query expectations: a guest session borrows a host subject, so
	// resolving it to an account would leak the host's email to the guest.
	db, _ := newMock(t)
	h := newAuthHandler(db)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/auth/verify", nil), rec)
	setIdentity(c, middleware.Identity{UserID: 3, Role: model.RoleGuest, ReservationID: 9})

	if err := h.Verify(c); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, present := resp["email"]; present {
		t.Fatal("guest session response carries an account email")
	}
	if resp["reservation_id"] != float64(9) {
		t.Fatalf("response = %v", resp)
	}
}
