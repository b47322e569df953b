package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"gymflow/internal/apperr"
	"gymflow/internal/clock"
	"gymflow/internal/metrics"
	"gymflow/internal/plan"
)

const invoiceDueDays = 3

// PaymentGateway is the boundary to the external payment collaborator.
// The engine only consumes the success/failure fact; it speaks no gateway
// protocol of its own.
type PaymentGateway interface {
	Charge(ctx context.Context, userID, invoiceID int, paymentMethodID string, amountCents int64) error
}

type acceptAllGateway struct{}

func (acceptAllGateway) Charge(ctx context.Context, userID, invoiceID int, paymentMethodID string, amountCents int64) error {
	return nil
}

// AcceptAllGateway treats every charge as confirmed. Production wiring
// replaces it with a real gateway adapter.
func AcceptAllGateway() PaymentGateway {
	return acceptAllGateway{}
}

type Service interface {
	Subscribe(ctx context.Context, userID, planID int) (*SubscribeResponse, error)
	PayInvoice(ctx context.Context, userID, invoiceID int, paymentMethodID string) (*Invoice, *Subscription, error)
	CancelSubscription(ctx context.Context, userID, subID int) error
	ToggleAutoRenew(ctx context.Context, userID, subID int) (bool, error)
	CreateRenewalInvoice(ctx context.Context, userID, subID int) (*Invoice, error)
	HasValidEntitlement(ctx context.Context, userID, planID int, at time.Time) (bool, error)
	ListSubscriptions(ctx context.Context, userID int) ([]SubscriptionView, error)
	ListInvoices(ctx context.Context, userID int) ([]Invoice, error)
	MarkOverdueInvoices(ctx context.Context) (int64, error)
}

type service struct {
	repo    Repository
	plans   plan.Service
	gateway PaymentGateway
	clock   clock.Clock
}

func NewService(repo Repository, plans plan.Service, gateway PaymentGateway, clk clock.Clock) Service {
	return &service{
		repo:    repo,
		plans:   plans,
		gateway: gateway,
		clock:   clk,
	}
}

// Subscribe creates a pending subscription and its first invoice, with the
// amount frozen at the plan's current effective price. Retried calls while
// a pending subscription exists return the existing pair.
func (s *service) Subscribe(ctx context.Context, userID, planID int) (*SubscribeResponse, error) {
	p, err := s.plans.GetCatalog(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, apperr.New(apperr.KindNotFound, "plan is not available")
	}

	if sub, inv, err := s.repo.GetPendingSubscription(ctx, userID, planID); err == nil && inv != nil {
		return &SubscribeResponse{Subscription: sub, Invoice: inv}, nil
	}

	now := s.clock.Now()
	dueDate := now.AddDate(0, 0, invoiceDueDays)

	sub, inv, err := s.repo.CreateSubscriptionWithInvoice(ctx, userID, planID, p.EffectivePriceCents, now, dueDate)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race with a concurrent subscribe; the existing pair wins.
			if sub, inv, err2 := s.repo.GetPendingSubscription(ctx, userID, planID); err2 == nil && inv != nil {
				return &SubscribeResponse{Subscription: sub, Invoice: inv}, nil
			}
			return nil, apperr.Wrap(apperr.KindConflict, "pending subscription already exists", err)
		}
		return nil, err
	}

	metrics.RecordSubscriptionCreated()
	return &SubscribeResponse{Subscription: sub, Invoice: inv}, nil
}

// PayInvoice settles a pending invoice and extends the subscription by the
// plan duration from max(now, current end). Invoice and subscription are
// committed together or not at all.
func (s *service) PayInvoice(ctx context.Context, userID, invoiceID int, paymentMethodID string) (*Invoice, *Subscription, error) {
	inv, err := s.repo.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperr.New(apperr.KindNotFound, "invoice not found")
		}
		return nil, nil, err
	}

	if inv.UserID != userID {
		return nil, nil, apperr.New(apperr.KindInvalidState, "invoice does not belong to user")
	}
	if inv.Status != InvoicePending {
		return nil, nil, apperr.Newf(apperr.KindInvalidState, "invoice is %s, not PENDING", inv.Status)
	}

	sub, err := s.repo.GetSubscriptionByID(ctx, inv.SubscriptionID)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.plans.GetCatalog(ctx, sub.PlanID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.gateway.Charge(ctx, userID, invoiceID, paymentMethodID, inv.AmountCents); err != nil {
		return nil, nil, apperr.Wrap(apperr.KindInvalidState, "payment was not confirmed", err)
	}

	now := s.clock.Now()
	newEnd := extendEnd(now, sub.EndDate, p.DurationDays)

	paidInv, updatedSub, err := s.repo.PayInvoice(ctx, invoiceID, sub.ID, now, newEnd)
	if err != nil {
		if errors.Is(err, ErrInvoiceNotPending) {
			return nil, nil, apperr.New(apperr.KindInvalidState, "invoice is no longer pending")
		}
		return nil, nil, err
	}

	metrics.RecordInvoicePaid()
	return paidInv, updatedSub, nil
}

// CancelSubscription deletes a subscription that has never been paid for.
// A paid subscription is cancelled only by letting it lapse.
func (s *service) CancelSubscription(ctx context.Context, userID, subID int) error {
	sub, err := s.repo.GetSubscriptionByID(ctx, subID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.KindNotFound, "subscription not found")
		}
		return err
	}

	if sub.UserID != userID {
		return apperr.New(apperr.KindForbidden, "subscription does not belong to user")
	}

	paid, err := s.repo.HasPaidInvoice(ctx, subID)
	if err != nil {
		return err
	}
	if paid {
		return apperr.New(apperr.KindInvalidState, "a paid subscription cannot be cancelled")
	}

	return s.repo.DeleteSubscription(ctx, subID)
}

func (s *service) ToggleAutoRenew(ctx context.Context, userID, subID int) (bool, error) {
	sub, err := s.repo.GetSubscriptionByID(ctx, subID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, apperr.New(apperr.KindNotFound, "subscription not found")
		}
		return false, err
	}

	if sub.UserID != userID {
		return false, apperr.New(apperr.KindForbidden, "subscription does not belong to user")
	}

	newValue := !sub.AutoRenew
	if err := s.repo.SetAutoRenew(ctx, subID, newValue); err != nil {
		return false, err
	}

	return newValue, nil
}

// CreateRenewalInvoice issues the next invoice for a subscription at the
// plan's current effective price. At most one pending invoice may exist
// per subscription at a time.
func (s *service) CreateRenewalInvoice(ctx context.Context, userID, subID int) (*Invoice, error) {
	sub, err := s.repo.GetSubscriptionByID(ctx, subID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "subscription not found")
		}
		return nil, err
	}

	if sub.UserID != userID {
		return nil, apperr.New(apperr.KindForbidden, "subscription does not belong to user")
	}

	pending, err := s.repo.HasPendingInvoice(ctx, subID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperr.New(apperr.KindConflict, "an unpaid invoice already exists for this subscription")
	}

	now := s.clock.Now()
	price, err := s.plans.EffectivePrice(ctx, sub.PlanID, now)
	if err != nil {
		return nil, err
	}

	return s.repo.CreateInvoice(ctx, userID, subID, price, now.AddDate(0, 0, invoiceDueDays))
}

func (s *service) HasValidEntitlement(ctx context.Context, userID, planID int, at time.Time) (bool, error) {
	return s.repo.HasValidEntitlement(ctx, userID, planID, at)
}

func (s *service) ListSubscriptions(ctx context.Context, userID int) ([]SubscriptionView, error) {
	subs, err := s.repo.ListUserSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	views := make([]SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, SubscriptionView{Subscription: sub, State: sub.State(now)})
	}
	return views, nil
}

func (s *service) ListInvoices(ctx context.Context, userID int) ([]Invoice, error) {
	return s.repo.ListUserInvoices(ctx, userID)
}

func (s *service) MarkOverdueInvoices(ctx context.Context) (int64, error) {
	return s.repo.MarkOverdueInvoices(ctx, s.clock.Now())
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
