package membership

import "time"

type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "PENDING"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
	InvoiceOverdue   InvoiceStatus = "OVERDUE"
)

// SubscriptionState is derived, never stored: EXPIRED is an active
// subscription whose end date has passed.
type SubscriptionState string

const (
	StatePendingPayment SubscriptionState = "PENDING_PAYMENT"
	StateActive         SubscriptionState = "ACTIVE"
	StateExpired        SubscriptionState = "EXPIRED"
)

type Subscription struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	PlanID    int       `db:"plan_id" json:"plan_id"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	AutoRenew bool      `db:"auto_renew" json:"auto_renew"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (s *Subscription) State(now time.Time) SubscriptionState {
	if !s.IsActive {
		return StatePendingPayment
	}
	if s.EndDate.Before(now) {
		return StateExpired
	}
	return StateActive
}

type Invoice struct {
	ID             int           `db:"id" json:"id"`
	UserID         int           `db:"user_id" json:"user_id"`
	SubscriptionID int           `db:"subscription_id" json:"subscription_id"`
	AmountCents    int64         `db:"amount_cents" json:"amount_cents"`
	Status         InvoiceStatus `db:"status" json:"status"`
	DueDate        time.Time     `db:"due_date" json:"due_date"`
	PaidAt         *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

type SubscribeRequest struct {
	PlanID int `json:"plan_id" binding:"required"`
}

type PayInvoiceRequest struct {
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
}

type SubscribeResponse struct {
	Subscription *Subscription `json:"subscription"`
	Invoice      *Invoice      `json:"invoice"`
}

type SubscriptionView struct {
	Subscription
	State SubscriptionState `json:"state"`
}

// extendEnd is the proration rule: a still-valid subscription extends from
// its current expiry, an already-expired one restarts from now.
func extendEnd(now, currentEnd time.Time, durationDays int) time.Time {
	base := currentEnd
	if now.After(base) {
		base = now
	}
	return base.AddDate(0, 0, durationDays)
}
