package schedule

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"gymflow/internal/apperr"
	"gymflow/internal/clock"
	"gymflow/internal/metrics"
	"gymflow/internal/plan"
)

type Service interface {
	CreateClass(ctx context.Context, req CreateClassRequest) (*GymClass, error)
	GetClassByID(ctx context.Context, id int) (*GymClass, error)
	ListClasses(ctx context.Context, onlyActive bool) ([]GymClass, error)
	DeleteClass(ctx context.Context, id int) error

	CreateSession(ctx context.Context, classID int, req CreateSessionRequest) (*ClassSession, error)
	GenerateRecurring(ctx context.Context, classID int, req GenerateRecurringRequest) (int, error)
	GetSessionByID(ctx context.Context, id int) (*ClassSession, error)
	CancelSession(ctx context.Context, id int) error
	ListUpcomingSessions(ctx context.Context, classID int) ([]SessionWithAvailability, error)
}

type service struct {
	repo  Repository
	plans plan.Service
	clock clock.Clock
}

func NewService(repo Repository, plans plan.Service, clk clock.Clock) Service {
	return &service{
		repo:  repo,
		plans: plans,
		clock: clk,
	}
}

func (s *service) CreateClass(ctx context.Context, req CreateClassRequest) (*GymClass, error) {
	p, err := s.plans.GetCatalog(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, apperr.New(apperr.KindValidation, "plan is not active")
	}

	return s.repo.CreateClass(ctx, req.PlanID, req.Name)
}

func (s *service) GetClassByID(ctx context.Context, id int) (*GymClass, error) {
	class, err := s.repo.GetClassByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "gym class not found")
		}
		return nil, err
	}
	return class, nil
}

func (s *service) ListClasses(ctx context.Context, onlyActive bool) ([]GymClass, error) {
	return s.repo.ListClasses(ctx, onlyActive)
}

// DeleteClass removes a class that has no pending commitments. Classes with
// non-canceled future sessions cannot be deleted.
func (s *service) DeleteClass(ctx context.Context, id int) error {
	if _, err := s.GetClassByID(ctx, id); err != nil {
		return err
	}

	hasFuture, err := s.repo.HasFutureSessions(ctx, id, s.clock.Now())
	if err != nil {
		return err
	}
	if hasFuture {
		return apperr.New(apperr.KindConflict, "class has upcoming sessions")
	}

	if err := s.repo.DeleteClass(ctx, id); err != nil {
		if errors.Is(err, ErrClassNotFound) {
			return apperr.New(apperr.KindNotFound, "gym class not found")
		}
		return err
	}
	return nil
}

func (s *service) CreateSession(ctx context.Context, classID int, req CreateSessionRequest) (*ClassSession, error) {
	if _, err := s.GetClassByID(ctx, classID); err != nil {
		return nil, err
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "start_time must be RFC3339")
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "end_time must be RFC3339")
	}
	if !startTime.Before(endTime) {
		return nil, apperr.New(apperr.KindValidation, "start_time must be before end_time")
	}
	if req.MaxCapacity <= 0 {
		return nil, apperr.New(apperr.KindValidation, "max_capacity must be positive")
	}

	return s.repo.CreateSession(ctx, ClassSession{
		GymClassID:  classID,
		TrainerID:   req.TrainerID,
		RoomID:      req.RoomID,
		StartTime:   startTime,
		EndTime:     endTime,
		MaxCapacity: req.MaxCapacity,
	})
}

// GenerateRecurring enumerates every day in [start_date, end_date] whose
// weekday is listed in repeat_days and creates one session per match, all in
// one bulk insert. Days that already have a session for this class at the
// same start time are skipped, so the returned count is only the sessions
// actually created.
func (s *service) GenerateRecurring(ctx context.Context, classID int, req GenerateRecurringRequest) (int, error) {
	if _, err := s.GetClassByID(ctx, classID); err != nil {
		return 0, err
	}

	hour, minute, err := parseTimeOfDay(req.StartTime)
	if err != nil {
		return 0, err
	}
	if req.DurationMinutes <= 0 {
		return 0, apperr.New(apperr.KindValidation, "duration_minutes must be positive")
	}
	if req.MaxCapacity <= 0 {
		return 0, apperr.New(apperr.KindValidation, "max_capacity must be positive")
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return 0, apperr.New(apperr.KindValidation, "start_date must be YYYY-MM-DD")
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return 0, apperr.New(apperr.KindValidation, "end_date must be YYYY-MM-DD")
	}
	if startDate.After(endDate) {
		return 0, apperr.New(apperr.KindValidation, "start_date must not be after end_date")
	}

	repeatDays, err := parseWeekdays(req.RepeatDays)
	if err != nil {
		return 0, err
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute

	var sessions []ClassSession
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		if !repeatDays[day.Weekday()] {
			continue
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
		sessions = append(sessions, ClassSession{
			GymClassID:  classID,
			TrainerID:   req.TrainerID,
			RoomID:      req.RoomID,
			StartTime:   start,
			EndTime:     start.Add(duration),
			MaxCapacity: req.MaxCapacity,
		})
	}

	created, err := s.repo.BulkInsertSessions(ctx, sessions)
	if err != nil {
		return 0, err
	}

	metrics.RecordSessionsGenerated(created)
	return created, nil
}

func (s *service) GetSessionByID(ctx context.Context, id int) (*ClassSession, error) {
	session, err := s.repo.GetSessionByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "class session not found")
		}
		return nil, err
	}
	return session, nil
}

// CancelSession marks a session canceled without deleting it, so booking
// history stays intact. Canceled sessions are excluded from admission and
// from upcoming listings.
func (s *service) CancelSession(ctx context.Context, id int) error {
	if err := s.repo.CancelSession(ctx, id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return apperr.New(apperr.KindNotFound, "class session not found")
		}
		return err
	}
	return nil
}

func (s *service) ListUpcomingSessions(ctx context.Context, classID int) ([]SessionWithAvailability, error) {
	if _, err := s.GetClassByID(ctx, classID); err != nil {
		return nil, err
	}
	return s.repo.ListUpcomingSessions(ctx, classID, s.clock.Now())
}

func parseTimeOfDay(value string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, apperr.New(apperr.KindValidation, "start_time must be HH:MM")
	}
	return t.Hour(), t.Minute(), nil
}

func parseWeekdays(names []string) (map[time.Weekday]bool, error) {
	if len(names) == 0 {
		return nil, apperr.New(apperr.KindValidation, "repeat_days must not be empty")
	}

	byName := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}

	days := make(map[time.Weekday]bool, len(names))
	for _, name := range names {
		day, ok := byName[strings.ToLower(name)]
		if !ok {
			return nil, apperr.Newf(apperr.KindValidation, "unknown weekday %q", name)
		}
		days[day] = true
	}
	return days, nil
}
