package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gymflow/internal/apperr"
	"gymflow/internal/clock"
	"gymflow/internal/plan"
)

type MockScheduleRepo struct{ mock.Mock }

func (m *MockScheduleRepo) CreateClass(ctx context.Context, planID int, name string) (*GymClass, error) {
	args := m.Called(ctx, planID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GymClass), args.Error(1)
}

func (m *MockScheduleRepo) GetClassByID(ctx context.Context, id int) (*GymClass, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GymClass), args.Error(1)
}

func (m *MockScheduleRepo) ListClasses(ctx context.Context, onlyActive bool) ([]GymClass, error) {
	args := m.Called(ctx, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]GymClass), args.Error(1)
}

func (m *MockScheduleRepo) DeleteClass(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockScheduleRepo) HasFutureSessions(ctx context.Context, classID int, now time.Time) (bool, error) {
	args := m.Called(ctx, classID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduleRepo) CreateSession(ctx context.Context, session ClassSession) (*ClassSession, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClassSession), args.Error(1)
}

func (m *MockScheduleRepo) BulkInsertSessions(ctx context.Context, sessions []ClassSession) (int, error) {
	args := m.Called(ctx, sessions)
	return args.Int(0), args.Error(1)
}

func (m *MockScheduleRepo) GetSessionByID(ctx context.Context, id int) (*ClassSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClassSession), args.Error(1)
}

func (m *MockScheduleRepo) CancelSession(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockScheduleRepo) ListUpcomingSessions(ctx context.Context, classID int, from time.Time) ([]SessionWithAvailability, error) {
	args := m.Called(ctx, classID, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SessionWithAvailability), args.Error(1)
}

// stubPlanService satisfies plan.Service for the single method the schedule
// service consults.
type stubPlanService struct {
	plan.Service
	catalog *plan.PlanWithPrice
	err     error
}

func (s stubPlanService) GetCatalog(ctx context.Context, planID int) (*plan.PlanWithPrice, error) {
	return s.catalog, s.err
}

var testNow = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func activePlan() stubPlanService {
	return stubPlanService{catalog: &plan.PlanWithPrice{
		Plan: plan.Plan{ID: 1, Name: "Gold", IsActive: true},
	}}
}

func yogaClass() *GymClass {
	return &GymClass{ID: 5, PlanID: 1, Name: "Yoga", IsActive: true}
}

func TestGenerateRecurringEnumeratesMatchingWeekdays(t *testing.T) {
	repo := new(MockScheduleRepo)
	svc := NewService(repo, activePlan(), clock.NewFixed(testNow))

	repo.On("GetClassByID", mock.Anything, 5).Return(yogaClass(), nil)

	var captured []ClassSession
	repo.On("BulkInsertSessions", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).([]ClassSession)
		}).
		Return(6, nil)

	// 2025-05-05 is a Monday; two full weeks through Sunday 2025-05-18.
	created, err := svc.GenerateRecurring(context.Background(), 5, GenerateRecurringRequest{
		TrainerID:       3,
		RoomID:          2,
		StartTime:       "18:30",
		DurationMinutes: 60,
		MaxCapacity:     10,
		StartDate:       "2025-05-05",
		EndDate:         "2025-05-18",
		RepeatDays:      []string{"monday", "wednesday", "friday"},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, created)
	require.Len(t, captured, 6)

	first := captured[0]
	assert.Equal(t, 5, first.GymClassID)
	assert.Equal(t, 3, first.TrainerID)
	assert.Equal(t, 2, first.RoomID)
	assert.Equal(t, time.Date(2025, 5, 5, 18, 30, 0, 0, time.UTC), first.StartTime)
	assert.Equal(t, time.Date(2025, 5, 5, 19, 30, 0, 0, time.UTC), first.EndTime)
	assert.Equal(t, 10, first.MaxCapacity)

	for _, s := range captured {
		wd := s.StartTime.Weekday()
		assert.Contains(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, wd)
	}
	assert.Equal(t, time.Date(2025, 5, 16, 18, 30, 0, 0, time.UTC), captured[5].StartTime)
}

func TestGenerateRecurringRejectsInvertedRange(t *testing.T) {
	repo := new(MockScheduleRepo)
	svc := NewService(repo, activePlan(), clock.NewFixed(testNow))

	repo.On("GetClassByID", mock.Anything, 5).Return(yogaClass(), nil)

	_, err := svc.GenerateRecurring(context.Background(), 5, GenerateRecurringRequest{
		TrainerID:       3,
		RoomID:          2,
		StartTime:       "18:30",
		DurationMinutes: 60,
		MaxCapacity:     10,
		StartDate:       "2025-05-18",
		EndDate:         "2025-05-05",
		RepeatDays:      []string{"monday"},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestGenerateRecurringRejectsBadTimeOfDay(t *testing.T) {
	repo := new(MockScheduleRepo)
	svc := NewService(repo, activePlan(), clock.NewFixed(testNow))

	repo.On("GetClassByID", mock.Anything, 5).Return(yogaClass(), nil)

	_, err := svc.GenerateRecurring(context.Background(), 5, GenerateRecurringRequest{
		TrainerID:       3,
		RoomID:          2,
		StartTime:       "25:99",
		DurationMinutes: 60,
		MaxCapacity:     10,
		StartDate:       "2025-05-05",
		EndDate:         "2025-05-18",
		RepeatDays:      []string{"monday"},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestGenerateRecurringRejectsUnknownWeekday(t *testing.T) {
	repo := new(MockScheduleRepo)
	svc := NewService(repo, activePlan(), clock.NewFixed(testNow))

	repo.On("GetClassByID", mock.Anything, 5).Return(yogaClass(), nil)

	_, err := svc.GenerateRecurring(context.Background(), 5, GenerateRecurringRequest{
		TrainerID:       3,
		RoomID:          2,
		StartTime:       "18:30",
		DurationMinutes: 60,
		MaxCapacity:     10,
		StartDate:       "2025-05-05",
		EndDate:         "2025-05-18",
		RepeatDays:      []string{"moonday"},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestDeleteClassWithUpcomingSessions(t *testing.T) {
	repo := new(MockScheduleRepo)
	svc := NewService(repo, activePlan(), clock.NewFixed(testNow))

	repo.On("GetClassByID", mock.Anything, 5).Return(yogaClass(), nil)
	repo.On("HasFutureSessions", mock.Anything, 5, testNow).Return(true, nil)

	err := svc.DeleteClass(context.Background(), 5)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	repo.AssertNotCalled(t, "DeleteClass", mock.Anything, mock.Anything)
}

func TestDeleteClassWithoutUpcomingSessions(t *testing.T) {
	repo := new(MockScheduleRepo)
	svc := NewService(repo, activePlan(), clock.NewFixed(testNow))

	repo.On("GetClassByID", mock.Anything, 5).Return(yogaClass(), nil)
	repo.On("HasFutureSessions", mock.Anything, 5, testNow).Return(false, nil)
	repo.On("DeleteClass", mock.Anything, 5).Return(nil)

	require.NoError(t, svc.DeleteClass(context.Background(), 5))
	repo.AssertExpectations(t)
}

func TestCancelSessionMissing(t *testing.T) {
	repo := new(MockScheduleRepo)
	svc := NewService(repo, activePlan(), clock.NewFixed(testNow))

	repo.On("CancelSession", mock.Anything, 404).Return(ErrSessionNotFound)

	err := svc.CancelSession(context.Background(), 404)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCreateSessionRejectsInvertedTimes(t *testing.T) {
	repo := new(MockScheduleRepo)
	svc := NewService(repo, activePlan(), clock.NewFixed(testNow))

	repo.On("GetClassByID", mock.Anything, 5).Return(yogaClass(), nil)

	_, err := svc.CreateSession(context.Background(), 5, CreateSessionRequest{
		TrainerID:   3,
		RoomID:      2,
		StartTime:   "2025-05-05T19:30:00Z",
		EndTime:     "2025-05-05T18:30:00Z",
		MaxCapacity: 10,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCreateClassRequiresActivePlan(t *testing.T) {
	repo := new(MockScheduleRepo)
	inactive := stubPlanService{catalog: &plan.PlanWithPrice{Plan: plan.Plan{ID: 1, IsActive: false}}}
	svc := NewService(repo, inactive, clock.NewFixed(testNow))

	_, err := svc.CreateClass(context.Background(), CreateClassRequest{PlanID: 1, Name: "Yoga"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	repo.AssertNotCalled(t, "CreateClass", mock.Anything, mock.Anything, mock.Anything)
}
