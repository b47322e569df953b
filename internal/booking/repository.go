package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrSessionFull                       = errors.New("session is at capacity")
	ErrDuplicateBooking                  = errors.New("user already has a booking for this session")
	ErrBookingNotFoundOrAlreadyCancelled = errors.New("booking not found or already cancelled")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const bookingColumns = "id, user_id, class_session_id, status, booked_at"

// AdmitBooking performs the capacity check and the insert as one atomic unit.
// The session row is locked for the duration of the transaction, so two
// requests racing for the last seat serialize: the first commits, the second
// re-counts and gets ErrSessionFull. A duplicate booking by the same user
// trips the partial unique index and surfaces as ErrDuplicateBooking.
func (r *repository) AdmitBooking(ctx context.Context, userID, sessionID int, bookedAt time.Time) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var maxCapacity int
	err = tx.GetContext(ctx, &maxCapacity, `
		SELECT max_capacity FROM class_sessions WHERE id = $1 FOR UPDATE
	`, sessionID)
	if err != nil {
		return nil, err
	}

	var bookedCount int
	err = tx.GetContext(ctx, &bookedCount, `
		SELECT COUNT(*) FROM bookings WHERE class_session_id = $1 AND status = 'booked'
	`, sessionID)
	if err != nil {
		return nil, err
	}

	if bookedCount >= maxCapacity {
		return nil, ErrSessionFull
	}

	var booking Booking
	err = tx.GetContext(ctx, &booking, `
		INSERT INTO bookings (user_id, class_session_id, status, booked_at)
		VALUES ($1, $2, 'booked', $3)
		RETURNING `+bookingColumns+`
	`, userID, sessionID, bookedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateBooking
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &booking, nil
}

func (r *repository) GetBookingByID(ctx context.Context, id int) (*Booking, error) {
	var booking Booking
	err := r.db.GetContext(ctx, &booking, `
		SELECT `+bookingColumns+` FROM bookings WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) CancelBooking(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET status = 'cancelled' WHERE id = $1 AND status = 'booked'
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrBookingNotFoundOrAlreadyCancelled
	}
	return nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID int) ([]BookingWithDetails, error) {
	var bookings []BookingWithDetails
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT b.id, b.user_id, b.class_session_id, b.status, b.booked_at,
		       c.name AS class_name,
		       s.start_time AS session_start,
		       s.end_time AS session_end
		FROM bookings b
		JOIN class_sessions s ON b.class_session_id = s.id
		JOIN gym_classes c ON s.gym_class_id = c.id
		WHERE b.user_id = $1
		ORDER BY s.start_time DESC, b.booked_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) GetBookingsBySession(ctx context.Context, sessionID int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE class_session_id = $1
		ORDER BY booked_at DESC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
