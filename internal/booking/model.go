package booking

import "time"

const (
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
)

type Booking struct {
	ID             int       `db:"id" json:"id"`
	UserID         int       `db:"user_id" json:"user_id"`
	ClassSessionID int       `db:"class_session_id" json:"class_session_id"`
	Status         string    `db:"status" json:"status"`
	BookedAt       time.Time `db:"booked_at" json:"booked_at"`
}

type BookingWithDetails struct {
	Booking
	ClassName    string    `db:"class_name" json:"class_name"`
	SessionStart time.Time `db:"session_start" json:"session_start"`
	SessionEnd   time.Time `db:"session_end" json:"session_end"`
}

type BookSessionRequest struct {
	ClassSessionID int `json:"class_session_id" binding:"required"`
}
