package handler

import (
	"context"  // provides context with cancellation for DB calls
	"errors"   // sentinel error matching
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls and clock reads

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/venue-ordering/internal/config"     // app configuration
	"github.com/iliyamo/venue-ordering/internal/middleware" // identity extraction
	"github.com/iliyamo/venue-ordering/internal/model"      // roles and entities
	"github.com/iliyamo/venue-ordering/internal/queue"      // audit event payloads
	"github.com/iliyamo/venue-ordering/internal/repository" // DB repositories
	queue_publisher "github.com/iliyamo/venue-ordering/internal/service"
	"github.com/iliyamo/venue-ordering/internal/utils" // token issuing and hashing
)

// AuthHandler bundles dependencies for authentication endpoints: host
// login/logout/verify and the guest PIN grant.
type AuthHandler struct {
	Cfg          config.Config
	Users        *repository.UserRepo
	Sessions     *repository.SessionRepo
	Reservations *repository.ReservationRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *repository.SessionRepo, r *repository.ReservationRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Reservations: r}
}

func (h *AuthHandler) ttl() time.Duration {
	return time.Duration(h.Cfg.AccessTTLHours) * time.Hour
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token        string     `json:"token"`
	Role         model.Role `json:"role"`
	IsSuperAdmin bool       `json:"is_super_admin"`
}

type pinResp struct {
	Token         string     `json:"token"`
	Role          model.Role `json:"role"`
	ReservationID uint64     `json:"reservation_id"`
	GuestID       uint64     `json:"guest_id"`
	HostID        uint64     `json:"host_id"`
}

// Login verifies email/password and grants a fresh session. A failed
// login creates no session row and always answers with the same message:
// an unknown email and a wrong password are indistinguishable.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return h.loginRejected(c, req.Email)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return h.loginRejected(c, req.Email)
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, h.ttl(), u.ID, u.Role, u.IsSuperAdmin, 0, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	if err := h.Sessions.Create(ctx, u.ID, access.Token, access.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}

	return c.JSON(http.StatusOK, loginResp{
		Token:        access.Token,
		Role:         u.Role,
		IsSuperAdmin: u.IsSuperAdmin,
	})
}

// loginRejected emits the audit event for a failed attempt and returns the
// single generic 401.
func (h *AuthHandler) loginRejected(c echo.Context, email string) error {
	_ = queue_publisher.PublishSecurityEvent(c.Request().Context(), queue.SecurityEvent{
		Action:   queue.ActionLoginFailed,
		Email:    email,
		RemoteIP: c.RealIP(),
	})
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
}

// Logout revokes the presented token. Revocation is idempotent: a token
// that is already revoked or expired still gets a 200, so clients can
// always log out safely. Only a request with no token at all is rejected.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw := middleware.BearerToken(c)
	if raw == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.Revoke(ctx, raw); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Verify reports the live session's identity. Reaching this handler at all
// means the auth middleware accepted both the signature and the session
// row, so it echoes the identity back. Host and super-admin sessions get
// the account email from the store as well; a guest session borrows a host
// subject, so no account lookup happens for it and the email is omitted
// whenever the row cannot be read.
func (h *AuthHandler) Verify(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	resp := echo.Map{
		"user_id":        ident.UserID,
		"role":           ident.Role,
		"is_super_admin": ident.IsSuperAdmin,
	}
	if ident.ImpersonatedBy != 0 {
		resp["impersonated_by"] = ident.ImpersonatedBy
	}
	if ident.ReservationID != 0 {
		resp["reservation_id"] = ident.ReservationID
	}
	if ident.Role != model.RoleGuest {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if u, err := h.Users.GetByID(ctx, ident.UserID); err == nil {
			resp["email"] = u.Email
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// ValidatePin authenticates a guest by reservation PIN. The PIN must be
// exactly 4 digits (checked before touching storage) and must belong to a
// reservation whose date window contains the current instant. Every miss,
// whether malformed, unknown, expired or not yet started, produces the identical
// generic 401 so the endpoint cannot be used to probe which PINs exist.
// On success the guest borrows the reservation's host id as its tenant
// scoping key; the GUEST role keeps the token off host-only routes.
func (h *AuthHandler) ValidatePin(c echo.Context) error {
	pin := c.Param("pin")
	if !validPinFormat(pin) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired PIN"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// One clock read for the whole authentication decision.
	now := time.Now().UTC()
	res, err := h.Reservations.FindActiveByPIN(ctx, pin, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired PIN"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, h.ttl(), res.HostID, model.RoleGuest, false, res.ID, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	if err := h.Sessions.Create(ctx, res.HostID, access.Token, access.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}

	return c.JSON(http.StatusOK, pinResp{
		Token:         access.Token,
		Role:          model.RoleGuest,
		ReservationID: res.ID,
		GuestID:       res.GuestID,
		HostID:        res.HostID,
	})
}

// validPinFormat reports whether pin is exactly 4 ASCII digits.
func validPinFormat(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}
