package model

import "time"

// Reservation records a guest's stay at a host venue.  Its 4-digit PIN
// authenticates the guest, but only while the current instant falls inside
// the [StartDate, EndDate] window.  PINs are not globally unique; the
// window filter is part of every PIN lookup.
//
// Fields:
//  ID        – primary key identifier.
//  HostID    – owning host (users.id).
//  GuestID   – guest this reservation belongs to.
//  PIN       – 4 ASCII digits presented by the guest to authenticate.
//  StartDate – first instant at which the PIN is valid.
//  EndDate   – last instant at which the PIN is valid.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
	ID        uint64    // reservations.id
	HostID    uint64    // reservations.host_id
	GuestID   uint64    // reservations.guest_id
	PIN       string    // reservations.pin
	StartDate time.Time // reservations.start_date
	EndDate   time.Time // reservations.end_date
	CreatedAt time.Time // reservations.created_at
	UpdatedAt time.Time // reservations.updated_at
}

// Guest is a person a host has registered.  Guests never authenticate on
// their own; they exist to be referenced by reservations and orders.
//
// Fields:
//  ID        – primary key identifier.
//  HostID    – owning host (users.id).
//  Name      – guest display name.
//  Email     – guest contact email.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Guest struct {
	ID        uint64    // guests.id
	HostID    uint64    // guests.host_id
	Name      string    // guests.name
	Email     string    // guests.email
	CreatedAt time.Time // guests.created_at
	UpdatedAt time.Time // guests.updated_at
}
