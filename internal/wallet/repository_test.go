package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func walletRow(id, userID int, balance int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "balance_cents", "currency", "created_at", "updated_at"}).
		AddRow(id, userID, balance, "RUB", now, now)
}

func TestApplyDebitsLockedBalance(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM wallets WHERE user_id = \$1 FOR UPDATE`).
		WithArgs(10).
		WillReturnRows(walletRow(1, 10, 600000))
	mock.ExpectExec(`UPDATE wallets SET balance_cents = \$1`).
		WithArgs(int64(100000), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO wallet_transactions`).
		WithArgs(1, int64(-500000), TxInvoicePayment, int64(100000)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Apply(context.Background(), 10, -500000, TxInvoicePayment)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyRejectsOverdraw(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM wallets WHERE user_id = \$1 FOR UPDATE`).
		WithArgs(10).
		WillReturnRows(walletRow(1, 10, 400000))
	mock.ExpectRollback()

	err := repo.Apply(context.Background(), 10, -500000, TxInvoicePayment)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyCreatesWalletOnFirstTopUp(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM wallets WHERE user_id = \$1 FOR UPDATE`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO wallets \(user_id\)`).
		WithArgs(42).
		WillReturnRows(walletRow(7, 42, 0))
	mock.ExpectExec(`UPDATE wallets SET balance_cents = \$1`).
		WithArgs(int64(250000), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO wallet_transactions`).
		WithArgs(7, int64(250000), TxTopUp, int64(250000)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Apply(context.Background(), 42, 250000, TxTopUp)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransactionsNoWallet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT id FROM wallets WHERE user_id = \$1`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	txs, err := repo.GetTransactions(context.Background(), 99, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, txs)
}
