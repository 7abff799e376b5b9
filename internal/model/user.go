package model

import "time"

// Role is the closed set of roles a session can carry.  Role values are
// stored verbatim in the users table and embedded in access tokens, so
// they must never be renamed without a migration.
type Role string

const (
	RoleAdmin      Role = "ADMIN"       // a host (venue admin); the tenant root
	RoleSuperAdmin Role = "SUPER_ADMIN" // platform operator; owns no guest-facing data
	RoleGuest      Role = "GUEST"       // PIN-authenticated guest tied to a reservation
)

// ParseRole maps a raw string onto the Role enum.  Unknown values are
// rejected rather than passed through so that a forged or corrupted claim
// can never produce an unchecked role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleSuperAdmin, RoleGuest:
		return Role(s), true
	}
	return "", false
}

// User represents a row in the `users` table.  A user with role ADMIN is a
// host: the owner of menu items, guests, reservations and orders via a
// host_id foreign key on those tables.  A SUPER_ADMIN owns no guest-facing
// data directly and only acts as a host through impersonation.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address, stored lower-cased.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name (ADMIN or SUPER_ADMIN; GUEST never has a row here).
//  IsSuperAdmin – true only for platform operators.
//  Name         – optional display name.
//  Phone        – optional contact phone.
//  Address      – optional venue address.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	IsSuperAdmin bool      // users.is_super_admin
	Name         *string   // users.name (nullable)
	Phone        *string   // users.phone (nullable)
	Address      *string   // users.address (nullable)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Session models an entry in the `sessions` table: the server-side,
// revocable record behind every issued bearer token.  The raw token is not
// stored; only its SHA-256 hash.  A token that verifies cryptographically
// but has no live row here is unauthenticated; the store is the authority,
// the signature only an integrity check.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning user; for guest sessions this is the reservation's
//              host id (the guest borrows the host tenant as scoping key).
//  TokenHash – SHA-256 hex digest of the issued token.
//  ExpiresAt – absolute expiry; past this instant the row is dead.
//  CreatedAt – timestamp of the grant.
type Session struct {
	ID        uint64    // sessions.id
	UserID    uint64    // sessions.user_id
	TokenHash string    // sessions.token_hash
	ExpiresAt time.Time // sessions.expires_at
	CreatedAt time.Time // sessions.created_at
}
