package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/venue-ordering/internal/model"
	"github.com/iliyamo/venue-ordering/internal/utils"
)

// UserRepo persists host and super-admin accounts ('users' table).
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,role,is_super_admin,name,phone,address,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsSuperAdmin,
		&u.Name, &u.Phone, &u.Address, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// CreateHost inserts a host account (role ADMIN, never super-admin) and
// returns its ID. The password is hashed here so a plain password never
// crosses the repository boundary outward.
func (r *UserRepo) CreateHost(ctx context.Context, email, password string, name, phone, address *string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, is_super_admin, name, phone, address) VALUES (?,?,?,?,?,?,?)",
		email, hash, model.RoleAdmin, false, name, phone, address)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetHost fetches a user only if it is an impersonation-eligible host:
// role ADMIN and not a super-admin. Anything else is ErrNotFound.
func (r *UserRepo) GetHost(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND role=? AND is_super_admin=0 LIMIT 1",
		id, model.RoleAdmin))
}

// ListHosts returns all host accounts. Password hashes are not selected;
// the zero value stays in the struct so they can never leak into a response.
func (r *UserRepo) ListHosts(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,email,name,created_at,updated_at FROM users WHERE role=? AND is_super_admin=0 ORDER BY id",
		model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var hosts []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Role = model.RoleAdmin
		hosts = append(hosts, u)
	}
	return hosts, rows.Err()
}

// DeleteHost removes a host account. Super-admins and unknown ids are both
// ErrNotFound; the caller cannot tell which it was.
func (r *UserRepo) DeleteHost(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM users WHERE id=? AND role=? AND is_super_admin=0",
		id, model.RoleAdmin)
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
