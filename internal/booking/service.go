package booking

import (
	"context"
	"database/sql"
	"errors"

	"gymflow/internal/apperr"
	"gymflow/internal/clock"
	"gymflow/internal/membership"
	"gymflow/internal/metrics"
	"gymflow/internal/schedule"
)

type Service interface {
	BookSession(ctx context.Context, userID, sessionID int) (*Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID int) error
	GetUserBookings(ctx context.Context, userID int) ([]BookingWithDetails, error)
	GetBookingsBySession(ctx context.Context, sessionID int) ([]Booking, error)
}

type service struct {
	repo     Repository
	sessions schedule.Service
	ledger   membership.Service
	clock    clock.Clock
}

func NewService(repo Repository, sessions schedule.Service, ledger membership.Service, clk clock.Clock) Service {
	return &service{
		repo:     repo,
		sessions: sessions,
		ledger:   ledger,
		clock:    clk,
	}
}

// BookSession admits a user into a session. Admission requires the session
// to be bookable (exists, not canceled, in the future), the user to hold a
// valid entitlement to the plan backing the session's class, and a free
// seat. The seat check and the insert run atomically in the repository, so
// capacity is never exceeded under concurrent requests.
func (s *service) BookSession(ctx context.Context, userID, sessionID int) (*Booking, error) {
	session, err := s.sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if session.IsCanceled {
		return nil, apperr.New(apperr.KindInvalidState, "session is canceled")
	}
	if session.StartTime.Before(now) {
		return nil, apperr.New(apperr.KindInvalidState, "session has already started")
	}

	class, err := s.sessions.GetClassByID(ctx, session.GymClassID)
	if err != nil {
		return nil, err
	}

	entitled, err := s.ledger.HasValidEntitlement(ctx, userID, class.PlanID, now)
	if err != nil {
		return nil, err
	}
	if !entitled {
		metrics.RecordBookingAdmission("denied")
		return nil, apperr.New(apperr.KindForbidden, "no valid membership for this class")
	}

	booking, err := s.repo.AdmitBooking(ctx, userID, sessionID, now)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionFull):
			metrics.RecordBookingAdmission("full")
			return nil, apperr.New(apperr.KindFull, "session is at capacity")
		case errors.Is(err, ErrDuplicateBooking):
			metrics.RecordBookingAdmission("duplicate")
			return nil, apperr.New(apperr.KindConflict, "already booked for this session")
		case errors.Is(err, sql.ErrNoRows):
			return nil, apperr.New(apperr.KindNotFound, "class session not found")
		}
		return nil, err
	}

	metrics.RecordBookingAdmission("admitted")
	return booking, nil
}

func (s *service) CancelBooking(ctx context.Context, userID, bookingID int) error {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.KindNotFound, "booking not found")
		}
		return err
	}

	if booking.UserID != userID {
		return apperr.New(apperr.KindForbidden, "can only cancel own bookings")
	}

	if err := s.repo.CancelBooking(ctx, bookingID); err != nil {
		if errors.Is(err, ErrBookingNotFoundOrAlreadyCancelled) {
			return apperr.New(apperr.KindInvalidState, "booking is already cancelled")
		}
		return err
	}

	metrics.RecordBookingCancellation()
	return nil
}

func (s *service) GetUserBookings(ctx context.Context, userID int) ([]BookingWithDetails, error) {
	return s.repo.GetUserBookings(ctx, userID)
}

func (s *service) GetBookingsBySession(ctx context.Context, sessionID int) ([]Booking, error) {
	return s.repo.GetBookingsBySession(ctx, sessionID)
}
