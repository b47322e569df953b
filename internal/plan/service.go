package plan

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gymflow/internal/apperr"
	"gymflow/internal/clock"
	"gymflow/internal/metrics"
)

type Service interface {
	CreatePlan(ctx context.Context, req CreatePlanRequest) (*Plan, error)
	GetCatalog(ctx context.Context, planID int) (*PlanWithPrice, error)
	ListPlans(ctx context.Context, onlyActive bool) ([]Plan, error)
	UpdatePlan(ctx context.Context, planID int, req UpdatePlanRequest) (*Plan, error)
	DeactivatePlan(ctx context.Context, planID int) error

	EffectivePrice(ctx context.Context, planID int, at time.Time) (int64, error)
	ApplyPromotion(ctx context.Context, planID int, req ApplyPromotionRequest) (*Promotion, error)
	StopPromotion(ctx context.Context, promoID int) error
	ListPromotions(ctx context.Context, planID int) ([]Promotion, error)
}

type service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) Service {
	return &service{repo: repo, clock: clk}
}

func (s *service) CreatePlan(ctx context.Context, req CreatePlanRequest) (*Plan, error) {
	return s.repo.CreatePlan(ctx, req.Name, req.Category, req.PriceCents, req.DurationDays)
}

func (s *service) GetCatalog(ctx context.Context, planID int) (*PlanWithPrice, error) {
	p, err := s.repo.GetPlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "plan not found")
		}
		return nil, err
	}

	result := &PlanWithPrice{Plan: *p, EffectivePriceCents: p.PriceCents}

	promo, err := s.repo.ActivePromotionAt(ctx, planID, s.clock.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		return nil, err
	}

	result.EffectivePriceCents = promo.SalePriceCents
	result.Promotion = promo
	return result, nil
}

func (s *service) ListPlans(ctx context.Context, onlyActive bool) ([]Plan, error) {
	return s.repo.ListPlans(ctx, onlyActive)
}

func (s *service) UpdatePlan(ctx context.Context, planID int, req UpdatePlanRequest) (*Plan, error) {
	p, err := s.repo.UpdatePlan(ctx, planID, req.Name, req.PriceCents, req.Category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "plan not found")
		}
		return nil, err
	}
	return p, nil
}

func (s *service) DeactivatePlan(ctx context.Context, planID int) error {
	if _, err := s.repo.GetPlanByID(ctx, planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.KindNotFound, "plan not found")
		}
		return err
	}
	return s.repo.DeactivatePlan(ctx, planID)
}

// EffectivePrice resolves what the plan sells for at the given instant:
// the sale price of the promotion covering it, else the base price.
func (s *service) EffectivePrice(ctx context.Context, planID int, at time.Time) (int64, error) {
	p, err := s.repo.GetPlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperr.New(apperr.KindNotFound, "plan not found")
		}
		return 0, err
	}

	promo, err := s.repo.ActivePromotionAt(ctx, planID, at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p.PriceCents, nil
		}
		return 0, err
	}

	return promo.SalePriceCents, nil
}

func (s *service) ApplyPromotion(ctx context.Context, planID int, req ApplyPromotionRequest) (*Promotion, error) {
	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid start_date")
	}
	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid end_date")
	}

	if !startDate.Before(endDate) {
		return nil, apperr.New(apperr.KindValidation, "promotion start_date must be before end_date")
	}
	if req.SalePriceCents <= 0 {
		return nil, apperr.New(apperr.KindValidation, "promotion sale price must be positive")
	}

	if _, err := s.repo.GetPlanByID(ctx, planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "plan not found")
		}
		return nil, err
	}

	promo, err := s.repo.ApplyPromotion(ctx, planID, req.Name, req.SalePriceCents, startDate, endDate)
	if err != nil {
		return nil, err
	}

	metrics.RecordPromotionApplied()
	return promo, nil
}

func (s *service) StopPromotion(ctx context.Context, promoID int) error {
	return s.repo.StopPromotion(ctx, promoID)
}

func (s *service) ListPromotions(ctx context.Context, planID int) ([]Promotion, error) {
	return s.repo.ListPromotions(ctx, planID)
}
