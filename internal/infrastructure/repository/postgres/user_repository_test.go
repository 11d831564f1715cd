package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

func newUserRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &UserRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetByEmailReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newUserRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, name, email, password_hash").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestVerifyDeviceTrustsUnexpiredDevice(t *testing.T) {
	repo, mock, done := newUserRepoWithMock(t)
	defer done()

	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT d.expires_at").
		WithArgs("user@example.com", "device-1").
		WillReturnRows(sqlmock.NewRows([]string{"expires_at"}).AddRow(now.Add(24 * time.Hour)))

	ok, err := repo.VerifyDevice(context.Background(), "user@example.com", "device-1", now)
	if err != nil {
		t.Fatalf("VerifyDevice() error = %v", err)
	}
	if !ok {
		t.Fatalf("expected device to be trusted")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestVerifyDeviceRejectsExpiredDevice(t *testing.T) {
	repo, mock, done := newUserRepoWithMock(t)
	defer done()

	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT d.expires_at").
		WithArgs("user@example.com", "device-1").
		WillReturnRows(sqlmock.NewRows([]string{"expires_at"}).AddRow(now.Add(-time.Minute)))

	ok, err := repo.VerifyDevice(context.Background(), "user@example.com", "device-1", now)
	if err != nil {
		t.Fatalf("VerifyDevice() error = %v", err)
	}
	if ok {
		t.Fatalf("expected expired device to be rejected")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestVerifyDeviceUnknownUserIsError(t *testing.T) {
	repo, mock, done := newUserRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT d.expires_at").
		WithArgs("nobody@example.com", "device-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT id, name, email, password_hash").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.VerifyDevice(context.Background(), "nobody@example.com", "device-1", time.Now())
	if !domain.IsKind(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
