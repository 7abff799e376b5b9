package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-ordering/internal/model"
)

// OrderRepo persists guest orders ('orders' table). host_id is denormalized
// from the reservation at insert time so tenant scoping stays single-table.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// Create inserts an order and returns it. totalCents is computed by the
// caller from the item's price at order time.
func (r *OrderRepo) Create(ctx context.Context, hostID, reservationID, itemID uint64, quantity, totalCents uint32) (model.Order, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO orders (host_id, reservation_id, item_id, quantity, total_cents) VALUES (?,?,?,?,?)",
		hostID, reservationID, itemID, quantity, totalCents)
	if err != nil {
		return model.Order{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Order{}, err
	}
	return model.Order{
		ID:            uint64(id),
		HostID:        hostID,
		ReservationID: reservationID,
		ItemID:        itemID,
		Quantity:      quantity,
		TotalCents:    totalCents,
	}, nil
}

// ListByReservation returns a reservation's orders, scoped to the host so
// a foreign reservation id yields an empty list rather than data.
func (r *OrderRepo) ListByReservation(ctx context.Context, reservationID, hostID uint64) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,host_id,reservation_id,item_id,quantity,total_cents,created_at FROM orders WHERE reservation_id=? AND host_id=? ORDER BY created_at",
		reservationID, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.HostID, &o.ReservationID, &o.ItemID,
			&o.Quantity, &o.TotalCents, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// CountByHost returns the number of orders placed under a host's
// reservations.
func (r *OrderRepo) CountByHost(ctx context.Context, hostID uint64) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders WHERE host_id=?", hostID).Scan(&n)
	return n, err
}
