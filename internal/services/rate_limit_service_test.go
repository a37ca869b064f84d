package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/mkheight/hostel-backend/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRateLimitTest(t *testing.T) (*RateLimitService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	postgresDB := &database.PostgresDB{DB: sqlxDB}
	service := NewRateLimitService(postgresDB, RateLimitConfig{MaxFailures: 3, Window: 15 * time.Minute, MaxIPFails: 9})

	cleanup := func() {
		db.Close()
	}

	return service, mock, cleanup
}

func TestCheckLogin_NoFailures(t *testing.T) {
	service, mock, cleanup := setupRateLimitTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("warden@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "min"}).AddRow(0, time.Now()))
	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("10.0.0.1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "min"}).AddRow(0, time.Now()))

	err := service.CheckLogin(context.Background(), " Warden@Example.com ", "10.0.0.1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckLogin_EmailExceeded(t *testing.T) {
	service, mock, cleanup := setupRateLimitTest(t)
	defer cleanup()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("warden@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "min"}).AddRow(3, now.Add(-5*time.Minute)))

	err := service.CheckLogin(context.Background(), "warden@example.com", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, KindRateLimited, KindOf(err))

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 10*time.Minute, se.RetryAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckLogin_IPExceeded(t *testing.T) {
	service, mock, cleanup := setupRateLimitTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("warden@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "min"}).AddRow(1, time.Now()))
	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("10.0.0.1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "min"}).AddRow(9, time.Now()))

	err := service.CheckLogin(context.Background(), "warden@example.com", "10.0.0.1")
	assert.Equal(t, KindRateLimited, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAttempt_SuccessClearsFailures(t *testing.T) {
	service, mock, cleanup := setupRateLimitTest(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO login_attempts").
		WithArgs("warden@example.com", "10.0.0.1", true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM login_attempts WHERE identifier").
		WithArgs("warden@example.com").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := service.RecordAttempt(context.Background(), "warden@example.com", "10.0.0.1", true)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAttempt_Failure(t *testing.T) {
	service, mock, cleanup := setupRateLimitTest(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO login_attempts").
		WithArgs("warden@example.com", "10.0.0.1", false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := service.RecordAttempt(context.Background(), "warden@example.com", "10.0.0.1", false)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupExpired(t *testing.T) {
	service, mock, cleanup := setupRateLimitTest(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM login_attempts WHERE attempted_at").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 7))

	removed, err := service.CleanupExpired(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(7), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRateLimitService_IPLimitDefaultsToTripleEmailLimit(t *testing.T) {
	service := NewRateLimitService(nil, RateLimitConfig{MaxFailures: 10, Window: 15 * time.Minute})
	assert.Equal(t, 30, service.config.MaxIPFails)

	service = NewRateLimitService(nil, RateLimitConfig{MaxFailures: 10, Window: 15 * time.Minute, MaxIPFails: 12})
	assert.Equal(t, 12, service.config.MaxIPFails)
}

func TestCheckLogin_EmailBelowLimitIPBelowLimit(t *testing.T) {
	service, mock, cleanup := setupRateLimitTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("warden@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "min"}).AddRow(2, time.Now()))
	mock.ExpectQuery("SELECT COUNT(.+) FROM login_attempts").
		WithArgs("10.0.0.1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "min"}).AddRow(8, time.Now()))

	assert.NoError(t, service.CheckLogin(context.Background(), "warden@example.com", "10.0.0.1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
