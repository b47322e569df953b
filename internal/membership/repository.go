package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"gymflow/internal/db"
)

var (
	ErrInvoiceNotPending    = errors.New("invoice is not pending")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const subColumns = "id, user_id, plan_id, start_date, end_date, is_active, auto_renew, created_at, updated_at"
const invColumns = "id, user_id, subscription_id, amount_cents, status, due_date, paid_at, created_at"

func (r *repository) GetSubscriptionByID(ctx context.Context, id int) (*Subscription, error) {
	var sub Subscription
	err := r.db.GetContext(ctx, &sub, `
		SELECT `+subColumns+` FROM subscriptions WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetPendingSubscription finds the caller's not-yet-paid subscription for a
// plan along with its pending invoice, so a retried subscribe returns the
// existing pair instead of creating duplicates.
func (r *repository) GetPendingSubscription(ctx context.Context, userID, planID int) (*Subscription, *Invoice, error) {
	var sub Subscription
	err := r.db.GetContext(ctx, &sub, `
		SELECT `+subColumns+`
		FROM subscriptions
		WHERE user_id = $1 AND plan_id = $2 AND NOT is_active
	`, userID, planID)
	if err != nil {
		return nil, nil, err
	}

	var inv Invoice
	err = r.db.GetContext(ctx, &inv, `
		SELECT `+invColumns+`
		FROM invoices
		WHERE subscription_id = $1 AND status = 'PENDING'
		ORDER BY created_at DESC
		LIMIT 1
	`, sub.ID)
	if err != nil {
		return &sub, nil, err
	}

	return &sub, &inv, nil
}

// CreateSubscriptionWithInvoice creates the pending subscription and its
// first invoice in one transaction. The invoice amount is frozen here:
// later promotion changes never alter it.
func (r *repository) CreateSubscriptionWithInvoice(ctx context.Context, userID, planID int, amountCents int64, now, dueDate time.Time) (*Subscription, *Invoice, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var sub Subscription
	err = tx.GetContext(ctx, &sub, `
		INSERT INTO subscriptions (user_id, plan_id, start_date, end_date, is_active, auto_renew)
		VALUES ($1, $2, $3, $3, false, false)
		RETURNING `+subColumns+`
	`, userID, planID, now)
	if err != nil {
		return nil, nil, err
	}

	var inv Invoice
	err = tx.GetContext(ctx, &inv, `
		INSERT INTO invoices (user_id, subscription_id, amount_cents, status, due_date)
		VALUES ($1, $2, $3, 'PENDING', $4)
		RETURNING `+invColumns+`
	`, userID, sub.ID, amountCents, dueDate)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return &sub, &inv, nil
}

// DeleteSubscription removes the subscription row and its unpaid invoices.
// Callers must have verified that no invoice was ever paid.
func (r *repository) DeleteSubscription(ctx context.Context, subID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE invoices SET status = 'CANCELLED' WHERE subscription_id = $1 AND status IN ('PENDING', 'OVERDUE')
	`, subID)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM subscriptions WHERE id = $1
	`, subID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrSubscriptionNotFound
	}

	return tx.Commit()
}

func (r *repository) SetAutoRenew(ctx context.Context, subID int, autoRenew bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET auto_renew = $2, updated_at = NOW() WHERE id = $1
	`, subID, autoRenew)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

func (r *repository) ListUserSubscriptions(ctx context.Context, userID int) ([]Subscription, error) {
	var subs []Subscription
	err := r.db.SelectContext(ctx, &subs, `
		SELECT `+subColumns+`
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repository) GetInvoiceByID(ctx context.Context, id int) (*Invoice, error) {
	var inv Invoice
	err := r.db.GetContext(ctx, &inv, `
		SELECT `+invColumns+` FROM invoices WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repository) CreateInvoice(ctx context.Context, userID, subID int, amountCents int64, dueDate time.Time) (*Invoice, error) {
	var inv Invoice
	err := r.db.GetContext(ctx, &inv, `
		INSERT INTO invoices (user_id, subscription_id, amount_cents, status, due_date)
		VALUES ($1, $2, $3, 'PENDING', $4)
		RETURNING `+invColumns+`
	`, userID, subID, amountCents, dueDate)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// PayInvoice marks the invoice paid and extends the subscription in one
// transaction. The WHERE status = 'PENDING' guard makes concurrent pays of
// the same invoice settle to exactly one winner, and GREATEST keeps the
// end date monotonic even if a stale extension races in.
func (r *repository) PayInvoice(ctx context.Context, invoiceID, subID int, paidAt, newEndDate time.Time) (*Invoice, *Subscription, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var inv Invoice
	err = tx.GetContext(ctx, &inv, `
		UPDATE invoices
		SET status = 'PAID', paid_at = $2
		WHERE id = $1 AND status = 'PENDING'
		RETURNING `+invColumns+`
	`, invoiceID, paidAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrInvoiceNotPending
		}
		return nil, nil, err
	}

	var sub Subscription
	err = tx.GetContext(ctx, &sub, `
		UPDATE subscriptions
		SET end_date = GREATEST(end_date, $2), is_active = true, start_date = LEAST(start_date, $3), updated_at = $3
		WHERE id = $1
		RETURNING `+subColumns+`
	`, subID, newEndDate, paidAt)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return &inv, &sub, nil
}

func (r *repository) HasPaidInvoice(ctx context.Context, subID int) (bool, error) {
	return db.Exists(ctx, r.db, `
		SELECT EXISTS(
			SELECT 1 FROM invoices WHERE subscription_id = $1 AND status = 'PAID'
		)
	`, subID)
}

func (r *repository) HasPendingInvoice(ctx context.Context, subID int) (bool, error) {
	return db.Exists(ctx, r.db, `
		SELECT EXISTS(
			SELECT 1 FROM invoices WHERE subscription_id = $1 AND status = 'PENDING'
		)
	`, subID)
}

func (r *repository) ListUserInvoices(ctx context.Context, userID int) ([]Invoice, error) {
	var invoices []Invoice
	err := r.db.SelectContext(ctx, &invoices, `
		SELECT `+invColumns+`
		FROM invoices
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repository) MarkOverdueInvoices(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE invoices SET status = 'OVERDUE' WHERE status = 'PENDING' AND due_date < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) HasValidEntitlement(ctx context.Context, userID, planID int, at time.Time) (bool, error) {
	return db.Exists(ctx, r.db, `
		SELECT EXISTS(
			SELECT 1 FROM subscriptions
			WHERE user_id = $1 AND plan_id = $2 AND is_active AND end_date >= $3
		)
	`, userID, planID, at)
}
