package schedule

import "time"

type GymClass struct {
	ID        int       `db:"id" json:"id"`
	PlanID    int       `db:"plan_id" json:"plan_id"`
	Name      string    `db:"name" json:"name"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ClassSession struct {
	ID          int       `db:"id" json:"id"`
	GymClassID  int       `db:"gym_class_id" json:"gym_class_id"`
	TrainerID   int       `db:"trainer_id" json:"trainer_id"`
	RoomID      int       `db:"room_id" json:"room_id"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	MaxCapacity int       `db:"max_capacity" json:"max_capacity"`
	IsCanceled  bool      `db:"is_canceled" json:"is_canceled"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type SessionWithAvailability struct {
	ClassSession
	BookedCount int  `db:"booked_count" json:"booked_count"`
	Available   int  `db:"-" json:"available"`
	IsFull      bool `db:"-" json:"is_full"`
}

type CreateClassRequest struct {
	PlanID int    `json:"plan_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

type CreateSessionRequest struct {
	TrainerID   int    `json:"trainer_id" binding:"required"`
	RoomID      int    `json:"room_id" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	MaxCapacity int    `json:"max_capacity" binding:"required,min=1"`
}

// GenerateRecurringRequest is validated field-by-field in the handler so
// admins get every problem with the pattern at once, not just the first.
type GenerateRecurringRequest struct {
	TrainerID       int      `json:"trainer_id" validate:"required"`
	RoomID          int      `json:"room_id" validate:"required"`
	StartTime       string   `json:"start_time" validate:"required"`
	DurationMinutes int      `json:"duration_minutes" validate:"required,min=1"`
	MaxCapacity     int      `json:"max_capacity" validate:"required,min=1"`
	StartDate       string   `json:"start_date" validate:"required"`
	EndDate         string   `json:"end_date" validate:"required"`
	RepeatDays      []string `json:"repeat_days" validate:"required,min=1"`
}

type GenerateRecurringResponse struct {
	Created int `json:"created"`
}
