package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-ordering/internal/model"
)

// MenuItemRepo persists a host's menu ('menu_items' table).
type MenuItemRepo struct{ DB *sql.DB }

func NewMenuItemRepo(db *sql.DB) *MenuItemRepo { return &MenuItemRepo{DB: db} }

const menuItemColumns = "id,host_id,name,description,price_cents,available,created_at,updated_at"

func scanMenuItem(row *sql.Row) (model.MenuItem, error) {
	var m model.MenuItem
	err := row.Scan(&m.ID, &m.HostID, &m.Name, &m.Description,
		&m.PriceCents, &m.Available, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.MenuItem{}, ErrNotFound
	}
	return m, err
}

// Create inserts a menu item under a host and returns its ID.
func (r *MenuItemRepo) Create(ctx context.Context, hostID uint64, name string, description *string, priceCents uint32) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO menu_items (host_id, name, description, price_cents, available) VALUES (?,?,?,?,1)",
		hostID, name, description, priceCents)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a menu item scoped to its owning host.
func (r *MenuItemRepo) GetByID(ctx context.Context, id, hostID uint64) (model.MenuItem, error) {
	return scanMenuItem(r.DB.QueryRowContext(ctx,
		"SELECT "+menuItemColumns+" FROM menu_items WHERE id=? AND host_id=? LIMIT 1",
		id, hostID))
}

// ListByHost returns a host's menu. When onlyAvailable is set, items a
// guest cannot currently order are excluded.
func (r *MenuItemRepo) ListByHost(ctx context.Context, hostID uint64, onlyAvailable bool) ([]model.MenuItem, error) {
	q := "SELECT " + menuItemColumns + " FROM menu_items WHERE host_id=?"
	if onlyAvailable {
		q += " AND available=1"
	}
	q += " ORDER BY name"
	rows, err := r.DB.QueryContext(ctx, q, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.MenuItem
	for rows.Next() {
		var m model.MenuItem
		if err := rows.Scan(&m.ID, &m.HostID, &m.Name, &m.Description,
			&m.PriceCents, &m.Available, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update rewrites a host's menu item. The host filter makes a foreign
// item indistinguishable from a missing one; callers should GetByID first
// when they need the distinction between "absent" and "unchanged".
func (r *MenuItemRepo) Update(ctx context.Context, id, hostID uint64, name string, description *string, priceCents uint32, available bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE menu_items SET name=?, description=?, price_cents=?, available=? WHERE id=? AND host_id=?",
		name, description, priceCents, available, id, hostID)
	return err
}

// Delete removes a host's menu item.
func (r *MenuItemRepo) Delete(ctx context.Context, id, hostID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM menu_items WHERE id=? AND host_id=?", id, hostID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByHost returns the number of menu items a host owns.
func (r *MenuItemRepo) CountByHost(ctx context.Context, hostID uint64) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM menu_items WHERE host_id=?", hostID).Scan(&n)
	return n, err
}
