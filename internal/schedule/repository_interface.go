package schedule

import (
	"context"
	"time"
)

type Repository interface {
	CreateClass(ctx context.Context, planID int, name string) (*GymClass, error)
	GetClassByID(ctx context.Context, id int) (*GymClass, error)
	ListClasses(ctx context.Context, onlyActive bool) ([]GymClass, error)
	DeleteClass(ctx context.Context, id int) error
	HasFutureSessions(ctx context.Context, classID int, now time.Time) (bool, error)

	CreateSession(ctx context.Context, session ClassSession) (*ClassSession, error)
	BulkInsertSessions(ctx context.Context, sessions []ClassSession) (int, error)
	GetSessionByID(ctx context.Context, id int) (*ClassSession, error)
	CancelSession(ctx context.Context, id int) error
	ListUpcomingSessions(ctx context.Context, classID int, from time.Time) ([]SessionWithAvailability, error)
}
