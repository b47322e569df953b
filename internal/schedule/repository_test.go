package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
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

func TestBulkInsertSessionsSkipsDuplicates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	start := time.Date(2025, 5, 5, 18, 30, 0, 0, time.UTC)
	sessions := []ClassSession{
		{GymClassID: 5, TrainerID: 3, RoomID: 2, StartTime: start, EndTime: start.Add(time.Hour), MaxCapacity: 10},
		{GymClassID: 5, TrainerID: 3, RoomID: 2, StartTime: start.AddDate(0, 0, 2), EndTime: start.AddDate(0, 0, 2).Add(time.Hour), MaxCapacity: 10},
	}

	// One row already exists; ON CONFLICT leaves it untouched.
	mock.ExpectExec("INSERT INTO class_sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.BulkInsertSessions(context.Background(), sessions)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkInsertSessionsEmptyBatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	created, err := repo.BulkInsertSessions(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelSessionMarksRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec("UPDATE class_sessions SET is_canceled = true").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CancelSession(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelSessionUnknownID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec("UPDATE class_sessions SET is_canceled = true").
		WithArgs(404).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CancelSession(context.Background(), 404)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestHasFutureSessions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(5, now).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	got, err := repo.HasFutureSessions(context.Background(), 5, now)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestListUpcomingSessionsComputesAvailability(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	start := time.Date(2025, 5, 5, 18, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "gym_class_id", "trainer_id", "room_id", "start_time", "end_time",
		"max_capacity", "is_canceled", "created_at", "booked_count",
	}).
		AddRow(7, 5, 3, 2, start, start.Add(time.Hour), 10, false, now, 4).
		AddRow(8, 5, 3, 2, start.AddDate(0, 0, 2), start.AddDate(0, 0, 2).Add(time.Hour), 10, false, now, 10)

	mock.ExpectQuery("FROM class_sessions s").
		WithArgs(5, now).
		WillReturnRows(rows)

	sessions, err := repo.ListUpcomingSessions(context.Background(), 5, now)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, 6, sessions[0].Available)
	assert.False(t, sessions[0].IsFull)
	assert.Equal(t, 0, sessions[1].Available)
	assert.True(t, sessions[1].IsFull)
}
