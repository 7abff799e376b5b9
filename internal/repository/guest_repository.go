package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-ordering/internal/model"
)

// GuestRepo persists guest records ('guests' table). Guests are plain
// host-owned data; they never authenticate on their own.
type GuestRepo struct{ DB *sql.DB }

func NewGuestRepo(db *sql.DB) *GuestRepo { return &GuestRepo{DB: db} }

// Create inserts a guest under a host and returns its ID.
func (r *GuestRepo) Create(ctx context.Context, hostID uint64, name, email string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO guests (host_id, name, email) VALUES (?,?,?)",
		hostID, name, email)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a guest scoped to its owning host.
func (r *GuestRepo) GetByID(ctx context.Context, id, hostID uint64) (model.Guest, error) {
	var g model.Guest
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,host_id,name,email,created_at,updated_at FROM guests WHERE id=? AND host_id=? LIMIT 1",
		id, hostID).Scan(&g.ID, &g.HostID, &g.Name, &g.Email, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Guest{}, ErrNotFound
	}
	return g, err
}

// ListByHost returns all guests owned by a host.
func (r *GuestRepo) ListByHost(ctx context.Context, hostID uint64) ([]model.Guest, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,host_id,name,email,created_at,updated_at FROM guests WHERE host_id=? ORDER BY name",
		hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Guest
	for rows.Next() {
		var g model.Guest
		if err := rows.Scan(&g.ID, &g.HostID, &g.Name, &g.Email, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// CountByHost returns the number of guests a host owns.
func (r *GuestRepo) CountByHost(ctx context.Context, hostID uint64) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM guests WHERE host_id=?", hostID).Scan(&n)
	return n, err
}
