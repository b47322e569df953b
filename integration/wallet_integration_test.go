package integration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymflow/internal/apperr"
	"gymflow/internal/clock"
	"gymflow/internal/membership"
	"gymflow/internal/plan"
	"gymflow/internal/wallet"
)

// Paying an invoice from the wallet: declined while the balance is short,
// confirmed after a top-up, and the debit lands in the transaction ledger.
func TestWalletPaidInvoice_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	clk := clock.Real()
	plans := plan.NewService(plan.NewRepository(db), clk)
	wallets := wallet.NewRepository(db)
	ledger := membership.NewService(membership.NewRepository(db), plans, wallet.NewGatewayWithRepository(wallets), clk)
	ctx := context.Background()

	gold, err := plans.CreatePlan(ctx, plan.CreatePlanRequest{
		Name:         "Gold",
		PriceCents:   500000,
		DurationDays: 30,
		Category:     "standard",
	})
	require.NoError(t, err)

	userID := 1
	resp, err := ledger.Subscribe(ctx, userID, gold.ID)
	require.NoError(t, err)

	// Empty wallet: the charge is declined and the invoice stays pending.
	_, _, err = ledger.PayInvoice(ctx, userID, resp.Invoice.ID, "wallet")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	var status string
	require.NoError(t, db.Get(&status, "SELECT status FROM invoices WHERE id = $1", resp.Invoice.ID))
	assert.Equal(t, string(membership.InvoicePending), status)

	require.NoError(t, wallets.Apply(ctx, userID, 600000, wallet.TxTopUp))

	paidInv, sub, err := ledger.PayInvoice(ctx, userID, resp.Invoice.ID, "wallet")
	require.NoError(t, err)
	assert.Equal(t, membership.InvoicePaid, paidInv.Status)
	assert.True(t, sub.IsActive)

	w, err := wallets.GetOrCreateWallet(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), w.BalanceCents)

	txs, err := wallets.GetTransactions(ctx, userID, 10, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, wallet.TxInvoicePayment, txs[0].Type)
	assert.Equal(t, int64(-500000), txs[0].AmountCents)
}
