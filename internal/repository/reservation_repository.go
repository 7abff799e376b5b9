package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/venue-ordering/internal/model"
	"github.com/iliyamo/venue-ordering/internal/utils"
)

// pinAttempts bounds the unique-PIN generation loop. The PIN space is only
// 10,000 values, shared among reservations that are still active, so a busy
// host can legitimately collide a few times.
const pinAttempts = 25

// ReservationRepo persists guest reservations ('reservations' table).
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

const reservationColumns = "id,host_id,guest_id,pin,start_date,end_date,created_at,updated_at"

func scanReservation(row *sql.Row) (model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(&res.ID, &res.HostID, &res.GuestID, &res.PIN,
		&res.StartDate, &res.EndDate, &res.CreatedAt, &res.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Reservation{}, ErrNotFound
	}
	return res, err
}

// FindActiveByPIN resolves a PIN to the reservation whose window contains
// now. The window filter is part of the query itself: a PIN outside its
// window produces the same ErrNotFound as a PIN that never existed, so the
// lookup leaks nothing about why it missed. The caller supplies now so the
// whole authentication decision uses one clock read.
func (r *ReservationRepo) FindActiveByPIN(ctx context.Context, pin string, now time.Time) (model.Reservation, error) {
	return scanReservation(r.DB.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE pin=? AND start_date<=? AND end_date>=? LIMIT 1",
		pin, now, now))
}

// GetByID fetches a reservation scoped to its owning host. A foreign host's
// reservation id is ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id, hostID uint64) (model.Reservation, error) {
	return scanReservation(r.DB.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id=? AND host_id=? LIMIT 1",
		id, hostID))
}

// ListByHost returns all reservations owned by a host, newest first.
func (r *ReservationRepo) ListByHost(ctx context.Context, hostID uint64) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE host_id=? ORDER BY start_date DESC",
		hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.HostID, &res.GuestID, &res.PIN,
			&res.StartDate, &res.EndDate, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Create inserts a reservation with a freshly generated PIN that is unique
// among reservations whose window has not yet closed.
func (r *ReservationRepo) Create(ctx context.Context, hostID, guestID uint64, start, end time.Time) (model.Reservation, error) {
	pin, err := r.freePIN(ctx)
	if err != nil {
		return model.Reservation{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reservations (host_id, guest_id, pin, start_date, end_date) VALUES (?,?,?,?,?)",
		hostID, guestID, pin, start, end)
	if err != nil {
		return model.Reservation{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Reservation{}, err
	}
	return model.Reservation{
		ID:        uint64(id),
		HostID:    hostID,
		GuestID:   guestID,
		PIN:       pin,
		StartDate: start,
		EndDate:   end,
	}, nil
}

// RegeneratePIN assigns a new unique PIN to a host's reservation and
// returns it. The old PIN stops authenticating immediately.
func (r *ReservationRepo) RegeneratePIN(ctx context.Context, id, hostID uint64) (string, error) {
	pin, err := r.freePIN(ctx)
	if err != nil {
		return "", err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE reservations SET pin=? WHERE id=? AND host_id=?", pin, id, hostID)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrNotFound
	}
	return pin, nil
}

// Delete removes a host's reservation.
func (r *ReservationRepo) Delete(ctx context.Context, id, hostID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM reservations WHERE id=? AND host_id=?", id, hostID)
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

// CountByHost returns the number of reservations a host owns.
func (r *ReservationRepo) CountByHost(ctx context.Context, hostID uint64) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE host_id=?", hostID).Scan(&n)
	return n, err
}

// freePIN generates 4 random digits and retries until no reservation with
// an open window holds the same PIN. The check and the insert are not one
// atomic statement; a race between two hosts is possible but harmless:
// PINs are not globally unique by contract, the loop only keeps accidental
// sharing rare.
func (r *ReservationRepo) freePIN(ctx context.Context) (string, error) {
	now := time.Now().UTC()
	for i := 0; i < pinAttempts; i++ {
		pin, err := utils.RandomDigits(4)
		if err != nil {
			return "", err
		}
		var taken int
		err = r.DB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM reservations WHERE pin=? AND end_date>=?", pin, now).Scan(&taken)
		if err != nil {
			return "", err
		}
		if taken == 0 {
			return pin, nil
		}
	}
	return "", ErrPINSpaceExhausted
}
