package plan

import (
	"context"
	"time"
)

type Repository interface {
	CreatePlan(ctx context.Context, name, category string, priceCents int64, durationDays int) (*Plan, error)
	GetPlanByID(ctx context.Context, id int) (*Plan, error)
	ListPlans(ctx context.Context, onlyActive bool) ([]Plan, error)
	UpdatePlan(ctx context.Context, id int, name *string, priceCents *int64, category *string) (*Plan, error)
	DeactivatePlan(ctx context.Context, id int) error

	ActivePromotionAt(ctx context.Context, planID int, at time.Time) (*Promotion, error)
	ApplyPromotion(ctx context.Context, planID int, name string, salePriceCents int64, startDate, endDate time.Time) (*Promotion, error)
	StopPromotion(ctx context.Context, promoID int) error
	ListPromotions(ctx context.Context, planID int) ([]Promotion, error)
}
