package booking

import (
	"context"
	"time"
)

type Repository interface {
	AdmitBooking(ctx context.Context, userID, sessionID int, bookedAt time.Time) (*Booking, error)
	GetBookingByID(ctx context.Context, id int) (*Booking, error)
	CancelBooking(ctx context.Context, id int) error
	GetUserBookings(ctx context.Context, userID int) ([]BookingWithDetails, error)
	GetBookingsBySession(ctx context.Context, sessionID int) ([]Booking, error)
}
