package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/venue-ordering/internal/model"
	"github.com/iliyamo/venue-ordering/internal/utils"
)

// SessionRepo is the source of truth for whether an issued bearer token is
// still live ('sessions' table, one row per token, keyed by token hash).
// A token whose signature verifies but has no live row here is
// unauthenticated. Rows are never updated in place: every grant inserts a
// fresh row, so a user may hold any number of concurrent sessions.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row for an issued token. userID is the session
// owner: the credential holder for logins, the target host for
// impersonation grants, and the borrowed host id for guest PIN grants.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, token string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, utils.HashToken(token), expiresAt)
	return err
}

// Validate returns the live session for a token. The expiry comparison uses
// a single clock read. A found-but-expired row is deleted best-effort and
// reported as ErrSessionExpired; callers must treat that identically to
// ErrSessionNotFound.
func (r *SessionRepo) Validate(ctx context.Context, token string) (model.Session, error) {
	hash := utils.HashToken(token)
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, expires_at, created_at FROM sessions WHERE token_hash=? LIMIT 1",
		hash).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, err
	}
	now := time.Now().UTC()
	if now.After(s.ExpiresAt) {
		// Dead row; purge it so the table does not accumulate garbage.
		_, _ = r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash=?", hash)
		return model.Session{}, ErrSessionExpired
	}
	s.TokenHash = hash
	return s, nil
}

// Revoke deletes the session for a token. Revoking an absent token is not
// an error; once Revoke returns, any subsequent Validate observes the
// session as gone.
func (r *SessionRepo) Revoke(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE token_hash=?", utils.HashToken(token))
	return err
}

// RevokeAllForUser deletes every session owned by a user, e.g. when a host
// account is removed.
func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id=?", userID)
	return err
}

// PurgeExpired deletes all sessions past their expiry and returns how many
// were removed. Run periodically; Validate already rejects expired rows, so
// this is maintenance, not correctness.
func (r *SessionRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
