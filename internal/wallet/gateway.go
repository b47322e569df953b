package wallet

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"gymflow/internal/apperr"
)

// Gateway pays invoices from the user's wallet balance. It satisfies the
// membership payment boundary: a successful Charge has already moved the
// money, so the caller may mark the invoice paid.
type Gateway struct {
	repo Repository
}

func NewGateway(db *sqlx.DB) *Gateway {
	return &Gateway{repo: NewRepository(db)}
}

func NewGatewayWithRepository(repo Repository) *Gateway {
	return &Gateway{repo: repo}
}

func (g *Gateway) Charge(ctx context.Context, userID, invoiceID int, paymentMethodID string, amountCents int64) error {
	err := g.repo.Apply(ctx, userID, -amountCents, TxInvoicePayment)
	if errors.Is(err, ErrInsufficientFunds) {
		return apperr.Wrap(apperr.KindInvalidState, "insufficient wallet balance", err)
	}
	return err
}
