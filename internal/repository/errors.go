// Package repository defines the data access layer and the sentinel error
// values shared across its repositories. These sentinels let handlers map
// failure scenarios onto HTTP responses without inspecting driver errors.
// Note that there is deliberately no ErrForbidden for tenant mismatches:
// a resource that exists but belongs to another host is reported as
// ErrNotFound, so a non-owning tenant can never confirm its existence.
package repository

import "errors"

// ErrNotFound is returned when a row does not exist for the caller:
// either because it is absent or because it belongs to a different host.
// Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering a user with an email that is
// already taken. Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrSessionNotFound is returned by the session store when no row matches
// the presented token. Callers must treat it exactly like
// ErrSessionExpired: the request is unauthenticated.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired is returned when a session row exists but its absolute
// expiry has passed. The row may be deleted as a side effect of the lookup.
var ErrSessionExpired = errors.New("session expired")

// ErrPINSpaceExhausted is returned when a fresh unique PIN could not be
// generated after a bounded number of attempts.
var ErrPINSpaceExhausted = errors.New("could not allocate a unique pin")
