package model

import "time"

// MenuItem is a food or drink item on a host's menu.  Prices are stored in
// cents to avoid floating point arithmetic on money.
//
// Fields:
//  ID          – primary key identifier.
//  HostID      – owning host (users.id).
//  Name        – item name shown to guests.
//  Description – optional longer description.
//  PriceCents  – unit price in cents.
//  Available   – whether guests may currently order the item.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type MenuItem struct {
	ID          uint64    // menu_items.id
	HostID      uint64    // menu_items.host_id
	Name        string    // menu_items.name
	Description *string   // menu_items.description (nullable)
	PriceCents  uint32    // menu_items.price_cents
	Available   bool      // menu_items.available
	CreatedAt   time.Time // menu_items.created_at
	UpdatedAt   time.Time // menu_items.updated_at
}

// Order is a guest's order of a single menu item under a reservation.
// The host_id column is denormalized from the reservation so that
// tenant-scoped queries and dashboard counts stay single-table.
//
// Fields:
//  ID            – primary key identifier.
//  HostID        – owning host, copied from the reservation at creation.
//  ReservationID – reservation the order was placed under.
//  ItemID        – ordered menu item.
//  Quantity      – number of units ordered.
//  TotalCents    – quantity × unit price at order time, in cents.
//  CreatedAt     – creation timestamp.
type Order struct {
	ID            uint64    // orders.id
	HostID        uint64    // orders.host_id
	ReservationID uint64    // orders.reservation_id
	ItemID        uint64    // orders.item_id
	Quantity      uint32    // orders.quantity
	TotalCents    uint32    // orders.total_cents
	CreatedAt     time.Time // orders.created_at
}
