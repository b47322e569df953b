package membership

import (
	"context"
	"time"
)

type Repository interface {
	GetSubscriptionByID(ctx context.Context, id int) (*Subscription, error)
	GetPendingSubscription(ctx context.Context, userID, planID int) (*Subscription, *Invoice, error)
	CreateSubscriptionWithInvoice(ctx context.Context, userID, planID int, amountCents int64, now, dueDate time.Time) (*Subscription, *Invoice, error)
	DeleteSubscription(ctx context.Context, subID int) error
	SetAutoRenew(ctx context.Context, subID int, autoRenew bool) error
	ListUserSubscriptions(ctx context.Context, userID int) ([]Subscription, error)

	GetInvoiceByID(ctx context.Context, id int) (*Invoice, error)
	CreateInvoice(ctx context.Context, userID, subID int, amountCents int64, dueDate time.Time) (*Invoice, error)
	PayInvoice(ctx context.Context, invoiceID, subID int, paidAt, newEndDate time.Time) (*Invoice, *Subscription, error)
	HasPaidInvoice(ctx context.Context, subID int) (bool, error)
	HasPendingInvoice(ctx context.Context, subID int) (bool, error)
	ListUserInvoices(ctx context.Context, userID int) ([]Invoice, error)
	MarkOverdueInvoices(ctx context.Context, now time.Time) (int64, error)

	HasValidEntitlement(ctx context.Context, userID, planID int, at time.Time) (bool, error)
}
