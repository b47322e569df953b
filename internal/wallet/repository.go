package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrInsufficientFunds = errors.New("insufficient wallet balance")

const walletColumns = "id, user_id, balance_cents, currency, created_at, updated_at"
const txColumns = "id, wallet_id, amount_cents, type, balance_after, created_at"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error) {
	var w Wallet
	err := r.db.GetContext(ctx, &w, `
		SELECT `+walletColumns+` FROM wallets WHERE user_id = $1
	`, userID)
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.GetContext(ctx, &w, `
		INSERT INTO wallets (user_id) VALUES ($1)
		RETURNING `+walletColumns+`
	`, userID)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Apply posts one ledger entry and moves the balance atomically. The
// wallet row is locked for the duration so concurrent debits cannot
// overdraw; a debit past zero rolls back with ErrInsufficientFunds.
func (r *repository) Apply(ctx context.Context, userID int, amountCents int64, txType string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var w Wallet
	err = tx.GetContext(ctx, &w, `
		SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 FOR UPDATE
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.GetContext(ctx, &w, `
			INSERT INTO wallets (user_id) VALUES ($1)
			RETURNING `+walletColumns+`
		`, userID)
	}
	if err != nil {
		return err
	}

	newBalance := w.BalanceCents + amountCents
	if newBalance < 0 {
		return ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets SET balance_cents = $1, updated_at = NOW() WHERE id = $2
	`, newBalance, w.ID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions (wallet_id, amount_cents, type, balance_after)
		VALUES ($1, $2, $3, $4)
	`, w.ID, amountCents, txType, newBalance)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var walletID int
	err := r.db.GetContext(ctx, &walletID, `SELECT id FROM wallets WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return []Transaction{}, nil
	}
	if err != nil {
		return nil, err
	}

	var txs []Transaction
	err = r.db.SelectContext(ctx, &txs, `
		SELECT `+txColumns+` FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	return txs, nil
}
