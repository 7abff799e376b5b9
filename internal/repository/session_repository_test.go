package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/venue-ordering/internal/utils"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func TestSessionCreateStoresHash(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepo(db)

	exp := time.Now().UTC().Add(time.Hour)
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO sessions (user_id, token_hash, expires_at) VALUES (?,?,?)")).
		WithArgs(uint64(7), utils.HashToken("raw-token"), exp).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), 7, "raw-token", exp); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestSessionValidateLive(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepo(db)

	exp := time.Now().UTC().Add(time.Hour)
	created := time.Now().UTC().Add(-time.Minute)
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, user_id, expires_at, created_at FROM sessions WHERE token_hash=? LIMIT 1")).
		WithArgs(utils.HashToken("raw-token")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}).
			AddRow(3, 7, exp, created))

	s, err := repo.Validate(context.Background(), "raw-token")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if s.UserID != 7 {
		t.Fatalf("user id = %d, want 7", s.UserID)
	}
	if s.TokenHash != utils.HashToken("raw-token") {
		t.Fatalf("token hash = %q", s.TokenHash)
	}
}

func TestSessionValidateUnknownToken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepo(db)

	mock.ExpectQuery("SELECT id, user_id, expires_at, created_at FROM sessions").
		WithArgs(utils.HashToken("revoked")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}))

	if _, err := repo.Validate(context.Background(), "revoked"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionValidateExpiredRowIsPurged(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepo(db)

	// A row past its expiry authenticates nothing and is swept on sight.
	exp := time.Now().UTC().Add(-time.Minute)
	mock.ExpectQuery("SELECT id, user_id, expires_at, created_at FROM sessions").
		WithArgs(utils.HashToken("stale")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}).
			AddRow(3, 7, exp, exp.Add(-time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE token_hash=?")).
		WithArgs(utils.HashToken("stale")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if _, err := repo.Validate(context.Background(), "stale"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
}

func TestSessionRevoke(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE token_hash=?")).
		WithArgs(utils.HashToken("raw-token")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Revoke(context.Background(), "raw-token"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	// Revoking a token with no row is still a success.
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE token_hash=?")).
		WithArgs(utils.HashToken("raw-token")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Revoke(context.Background(), "raw-token"); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}
}

func TestSessionRevokeAllForUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE user_id=?")).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := repo.RevokeAllForUser(context.Background(), 7); err != nil {
		t.Fatalf("RevokeAllForUser: %v", err)
	}
}

func TestSessionPurgeExpired(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE expires_at < ?")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 3 {
		t.Fatalf("purged = %d, want 3", n)
	}
}
