package plan

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrNoActivePromotion = errors.New("no active promotion for plan")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePlan(ctx context.Context, name, category string, priceCents int64, durationDays int) (*Plan, error) {
	query := `
		INSERT INTO plans (name, category, price_cents, duration_days, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, name, price_cents, duration_days, category, is_active, created_at, updated_at
	`

	var p Plan
	err := r.db.GetContext(ctx, &p, query, name, category, priceCents, durationDays)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetPlanByID(ctx context.Context, id int) (*Plan, error) {
	query := `
		SELECT id, name, price_cents, duration_days, category, is_active, created_at, updated_at
		FROM plans
		WHERE id = $1
	`

	var p Plan
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) ListPlans(ctx context.Context, onlyActive bool) ([]Plan, error) {
	query := `
		SELECT id, name, price_cents, duration_days, category, is_active, created_at, updated_at
		FROM plans
	`
	if onlyActive {
		query += " WHERE is_active"
	}
	query += " ORDER BY id"

	var plans []Plan
	err := r.db.SelectContext(ctx, &plans, query)
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *repository) UpdatePlan(ctx context.Context, id int, name *string, priceCents *int64, category *string) (*Plan, error) {
	query := `
		UPDATE plans
		SET name = COALESCE($2, name),
		    price_cents = COALESCE($3, price_cents),
		    category = COALESCE($4, category),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, price_cents, duration_days, category, is_active, created_at, updated_at
	`

	var p Plan
	err := r.db.GetContext(ctx, &p, query, id, name, priceCents, category)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) DeactivatePlan(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE plans SET is_active = false, updated_at = NOW() WHERE id = $1
	`, id)
	return err
}

// ActivePromotionAt returns the active promotion covering the given instant.
// The one-active-per-plan invariant makes the ORDER BY a tie-break only:
// should the invariant ever be violated, the most recent promotion wins.
func (r *repository) ActivePromotionAt(ctx context.Context, planID int, at time.Time) (*Promotion, error) {
	query := `
		SELECT id, plan_id, name, sale_price_cents, start_date, end_date, is_active, created_at
		FROM promotions
		WHERE plan_id = $1 AND is_active AND start_date <= $2 AND end_date >= $2
		ORDER BY start_date DESC, id DESC
		LIMIT 1
	`

	var promo Promotion
	err := r.db.GetContext(ctx, &promo, query, planID, at)
	if err != nil {
		return nil, err
	}

	return &promo, nil
}

// ApplyPromotion swaps the active promotion for a plan in one transaction:
// every other active promotion is deactivated before the new one is
// inserted, so a reader never sees two active promotions for one plan.
func (r *repository) ApplyPromotion(ctx context.Context, planID int, name string, salePriceCents int64, startDate, endDate time.Time) (*Promotion, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE promotions SET is_active = false WHERE plan_id = $1 AND is_active
	`, planID)
	if err != nil {
		return nil, err
	}

	var promo Promotion
	err = tx.GetContext(ctx, &promo, `
		INSERT INTO promotions (plan_id, name, sale_price_cents, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING id, plan_id, name, sale_price_cents, start_date, end_date, is_active, created_at
	`, planID, name, salePriceCents, startDate, endDate)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &promo, nil
}

func (r *repository) StopPromotion(ctx context.Context, promoID int) error {
	// Idempotent: stopping an already inactive promotion is a no-op.
	_, err := r.db.ExecContext(ctx, `
		UPDATE promotions SET is_active = false WHERE id = $1
	`, promoID)
	return err
}

func (r *repository) ListPromotions(ctx context.Context, planID int) ([]Promotion, error) {
	query := `
		SELECT id, plan_id, name, sale_price_cents, start_date, end_date, is_active, created_at
		FROM promotions
		WHERE plan_id = $1
		ORDER BY created_at DESC
	`

	var promos []Promotion
	err := r.db.SelectContext(ctx, &promos, query, planID)
	if err != nil {
		return nil, err
	}

	return promos, nil
}
