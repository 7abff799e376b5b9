package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/iliyamo/venue-ordering/internal/model" // closed role enum
)

// RequireRole returns a middleware that enforces that the authenticated
// identity holds one of the allowed roles.  It assumes Authenticate has
// already run; a request with no identity is rejected.  Role membership is
// checked in addition to tenant scoping, never instead of it: a guest
// token carries a host-shaped subject but must still be unable to reach
// host-only routes.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := CurrentIdentity(c)
			if !ok || !allowed[ident.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireSuperAdmin enforces the is_super_admin claim.  Super-admin-only
// routes are enumerated under their own group; there is no blocklist.
// Note that role SUPER_ADMIN alone is not enough and an impersonated
// session (role ADMIN, is_super_admin false) is rejected here: the
// privilege does not survive impersonation.
func RequireSuperAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := CurrentIdentity(c)
			if !ok || !ident.IsSuperAdmin || ident.Role != model.RoleSuperAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
