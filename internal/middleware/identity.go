package middleware

// identity.go defines the immutable Identity value the auth middleware
// attaches to the request context, and the policy helpers built on it.
// Handlers never read raw claims; they consume this value only.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-ordering/internal/model"
)

// identityKey is the context key under which Authenticate stores the
// request's Identity.
const identityKey = "identity"

// Identity is the validated, immutable identity of a request.  It is
// constructed once by the Authenticate middleware after both the token
// signature and the session row have been verified, and is never mutated
// downstream.
//
// UserID is the session's effective subject: the credential owner for host
// logins, the impersonated host for impersonation sessions, and the
// borrowed host id for guest PIN sessions.  ImpersonatedBy carries the
// initiating super-admin's id for the lifetime of an impersonated session
// and is zero otherwise.
type Identity struct {
	UserID         uint64
	Role           model.Role
	IsSuperAdmin   bool
	ReservationID  uint64
	ImpersonatedBy uint64
}

// Tenant returns the host id this identity is authorized to act as, and
// whether it has one at all.  An ADMIN acts as itself (which, under
// impersonation, is already the target host).  A GUEST acts as the
// borrowed host.  A non-impersonated SUPER_ADMIN has no tenant: host-scoped
// resources are simply unreachable for it, and its own endpoints are
// enumerated explicitly under /v1/admin.
func (id Identity) Tenant() (uint64, bool) {
	if id.IsSuperAdmin {
		return 0, false
	}
	return id.UserID, true
}

// CurrentIdentity returns the Identity the auth middleware stored on the
// context.  The second return is false on routes that never passed through
// Authenticate.
func CurrentIdentity(c echo.Context) (Identity, bool) {
	v := c.Get(identityKey)
	ident, ok := v.(Identity)
	return ident, ok
}
