package booking

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var bookedAt = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func TestAdmitBookingLocksSessionAndInserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT max_capacity FROM class_sessions").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"max_capacity"}).AddRow(10))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(10, 7, bookedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "class_session_id", "status", "booked_at"}).
			AddRow(1, 10, 7, StatusBooked, bookedAt))
	mock.ExpectCommit()

	booking, err := repo.AdmitBooking(context.Background(), 10, 7, bookedAt)
	require.NoError(t, err)
	assert.Equal(t, 1, booking.ID)
	assert.Equal(t, StatusBooked, booking.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmitBookingAtCapacity(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT max_capacity FROM class_sessions").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"max_capacity"}).AddRow(10))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
	mock.ExpectRollback()

	_, err := repo.AdmitBooking(context.Background(), 10, 7, bookedAt)
	assert.ErrorIs(t, err, ErrSessionFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmitBookingDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT max_capacity FROM class_sessions").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"max_capacity"}).AddRow(10))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(10, 7, bookedAt).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, err := repo.AdmitBooking(context.Background(), 10, 7, bookedAt)
	assert.ErrorIs(t, err, ErrDuplicateBooking)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingUpdatesOnlyBookedRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec("UPDATE bookings").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CancelBooking(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingAlreadyCancelledRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec("UPDATE bookings").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CancelBooking(context.Background(), 1)
	assert.ErrorIs(t, err, ErrBookingNotFoundOrAlreadyCancelled)
}
