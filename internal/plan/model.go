package plan

import "time"

type Plan struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	PriceCents   int64     `db:"price_cents" json:"price_cents"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	Category     string    `db:"category" json:"category"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Promotion struct {
	ID             int       `db:"id" json:"id"`
	PlanID         int       `db:"plan_id" json:"plan_id"`
	Name           string    `db:"name" json:"name"`
	SalePriceCents int64     `db:"sale_price_cents" json:"sale_price_cents"`
	StartDate      time.Time `db:"start_date" json:"start_date"`
	EndDate        time.Time `db:"end_date" json:"end_date"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// PlanWithPrice is the catalog view: the plan plus what it currently sells
// for, and the promotion responsible when one applies.
type PlanWithPrice struct {
	Plan
	EffectivePriceCents int64      `json:"effective_price_cents"`
	Promotion           *Promotion `json:"promotion,omitempty"`
}

type CreatePlanRequest struct {
	Name         string `json:"name" binding:"required"`
	PriceCents   int64  `json:"price_cents" binding:"required,gt=0"`
	DurationDays int    `json:"duration_days" binding:"required,gt=0"`
	Category     string `json:"category"`
}

type UpdatePlanRequest struct {
	Name       *string `json:"name,omitempty"`
	PriceCents *int64  `json:"price_cents,omitempty" binding:"omitempty,gt=0"`
	Category   *string `json:"category,omitempty"`
}

type ApplyPromotionRequest struct {
	Name           string `json:"name" binding:"required"`
	SalePriceCents int64  `json:"sale_price_cents" binding:"required"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date" binding:"required"`
}
