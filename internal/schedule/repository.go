package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"gymflow/internal/db"
)

var (
	ErrClassNotFound   = errors.New("gym class not found")
	ErrSessionNotFound = errors.New("class session not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const classColumns = "id, plan_id, name, is_active, created_at"
const sessionColumns = "id, gym_class_id, trainer_id, room_id, start_time, end_time, max_capacity, is_canceled, created_at"

func (r *repository) CreateClass(ctx context.Context, planID int, name string) (*GymClass, error) {
	var class GymClass
	err := r.db.GetContext(ctx, &class, `
		INSERT INTO gym_classes (plan_id, name)
		VALUES ($1, $2)
		RETURNING `+classColumns+`
	`, planID, name)
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *repository) GetClassByID(ctx context.Context, id int) (*GymClass, error) {
	var class GymClass
	err := r.db.GetContext(ctx, &class, `
		SELECT `+classColumns+` FROM gym_classes WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *repository) ListClasses(ctx context.Context, onlyActive bool) ([]GymClass, error) {
	query := `SELECT ` + classColumns + ` FROM gym_classes`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC`

	var classes []GymClass
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *repository) DeleteClass(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM gym_classes WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrClassNotFound
	}
	return nil
}

func (r *repository) HasFutureSessions(ctx context.Context, classID int, now time.Time) (bool, error) {
	return db.Exists(ctx, r.db, `
		SELECT EXISTS(
			SELECT 1 FROM class_sessions
			WHERE gym_class_id = $1 AND NOT is_canceled AND start_time >= $2
		)
	`, classID, now)
}

func (r *repository) CreateSession(ctx context.Context, session ClassSession) (*ClassSession, error) {
	var created ClassSession
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO class_sessions (gym_class_id, trainer_id, room_id, start_time, end_time, max_capacity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+sessionColumns+`
	`, session.GymClassID, session.TrainerID, session.RoomID, session.StartTime, session.EndTime, session.MaxCapacity)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// BulkInsertSessions inserts a generated batch in one statement. Sessions
// colliding with an existing (gym_class_id, start_time) pair are skipped, so
// re-submitting the same generation parameters does not duplicate sessions.
func (r *repository) BulkInsertSessions(ctx context.Context, sessions []ClassSession) (int, error) {
	if len(sessions) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO class_sessions (gym_class_id, trainer_id, room_id, start_time, end_time, max_capacity)
		VALUES `)

	args := make([]interface{}, 0, len(sessions)*6)
	for i, s := range sessions {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 6
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, s.GymClassID, s.TrainerID, s.RoomID, s.StartTime, s.EndTime, s.MaxCapacity)
	}
	sb.WriteString(" ON CONFLICT (gym_class_id, start_time) DO NOTHING")

	result, err := r.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(inserted), nil
}

func (r *repository) GetSessionByID(ctx context.Context, id int) (*ClassSession, error) {
	var session ClassSession
	err := r.db.GetContext(ctx, &session, `
		SELECT `+sessionColumns+` FROM class_sessions WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) CancelSession(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE class_sessions SET is_canceled = true WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *repository) ListUpcomingSessions(ctx context.Context, classID int, from time.Time) ([]SessionWithAvailability, error) {
	var sessions []SessionWithAvailability
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT s.id, s.gym_class_id, s.trainer_id, s.room_id, s.start_time, s.end_time,
		       s.max_capacity, s.is_canceled, s.created_at,
		       COUNT(b.id) FILTER (WHERE b.status = 'booked') AS booked_count
		FROM class_sessions s
		LEFT JOIN bookings b ON b.class_session_id = s.id
		WHERE s.gym_class_id = $1 AND NOT s.is_canceled AND s.start_time >= $2
		GROUP BY s.id
		ORDER BY s.start_time ASC
	`, classID, from)
	if err != nil {
		return nil, err
	}

	for i := range sessions {
		sessions[i].Available = sessions[i].MaxCapacity - sessions[i].BookedCount
		sessions[i].IsFull = sessions[i].Available <= 0
	}
	return sessions, nil
}
