package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/venue-ordering/internal/repository" // session store lookups
	"github.com/iliyamo/venue-ordering/internal/utils"      // token parsing
)

// AccessTokenCookie is the HTTP-only cookie checked when no Authorization
// header is present.
const AccessTokenCookie = "access_token"

// BearerToken extracts the raw access token from a request: the
// "Authorization: Bearer" header first, then the access token cookie.
// It returns the empty string when neither carries a token.
func BearerToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		if raw := strings.TrimPrefix(auth, "Bearer "); raw != "" {
			return raw
		}
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// Authenticate returns the identity middleware that protects every
// non-public route.  A request is authenticated only when both checks
// pass: the token's HS256 signature and embedded expiry verify against
// the process signing key, and the session store still holds a live row
// for the token.  The store is the authority; the signature check only
// keeps forged or expired tokens from reaching the database.  On success
// an immutable Identity is attached to the request context.  Every
// failure mode (missing token, bad signature, expired token, revoked or
// expired session) produces the same 401 so callers learn nothing about
// which check failed.
func Authenticate(secret string, sessions *repository.SessionRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := BearerToken(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// Signature validity is not enough: the session row is the
			// source of truth for revocation.
			if _, err := sessions.Validate(c.Request().Context(), raw); err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			userID, err := claims.UserID()
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(identityKey, Identity{
				UserID:         userID,
				Role:           claims.Role,
				IsSuperAdmin:   claims.IsSuperAdmin,
				ReservationID:  claims.ReservationID,
				ImpersonatedBy: claims.ImpersonatedBy,
			})
			return next(c)
		}
	}
}
