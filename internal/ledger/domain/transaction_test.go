package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalAmountFor(t *testing.T) {
	tests := []struct {
		name       string
		typ        TransactionType
		qty        string
		price      string
		commission string
		want       string
	}{
		{"buy adds commission", TransactionBuy, "10", "100", "1", "1001"},
		{"sell nets commission", TransactionSell, "5", "150", "1", "749"},
		{"fee is commission only", TransactionFee, "0", "0", "25", "25"},
		{"split moves nothing", TransactionSplit, "10", "0", "0", "0"},
		{"deposit is notional", TransactionDeposit, "1", "5000", "0", "5000"},
		{"dividend is notional", TransactionDividend, "10", "0.82", "0", "8.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalAmountFor(tt.typ, d(tt.qty), d(tt.price), d(tt.commission))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestCashEffectSigns(t *testing.T) {
	tests := []struct {
		typ  TransactionType
		want string
	}{
		{TransactionBuy, "-1001"},
		{TransactionSell, "999"},
		{TransactionDeposit, "1000"},
		{TransactionWithdrawal, "-1000"},
		{TransactionDividend, "1000"},
		{TransactionInterest, "1000"},
		{TransactionFee, "-1"},
		{TransactionSplit, "0"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			tx, err := NewTransaction("TXN1", "ACC1", tt.typ, "AAPL", d("10"), d("100"), d("1"), "")
			require.NoError(t, err)
			assert.True(t, CashEffect(tx).Equal(d(tt.want)), "got %s want %s", CashEffect(tx), tt.want)
		})
	}
}

func TestApplyThenReverseCashIsIdentity(t *testing.T) {
	account := NewAccount("ACC1", "U1", "main", "USD", d("10000"))

	for _, typ := range []TransactionType{
		TransactionBuy, TransactionSell, TransactionDeposit, TransactionWithdrawal,
		TransactionDividend, TransactionInterest, TransactionFee, TransactionSplit,
	} {
		tx, err := NewTransaction("TXN-"+string(typ), "ACC1", typ, "AAPL", d("10"), d("100"), d("1"), "")
		require.NoError(t, err)

		account.ApplyCash(tx)
		account.ReverseCash(tx)
		assert.True(t, account.CashBalance.Equal(d("10000")), "%s did not round-trip", typ)
	}
}

func TestSellCommissionDeductedExactlyOnce(t *testing.T) {
	// The sell's total amount is already net of commission, so the cash
	// credit equals qty*price - commission, never minus it twice.
	account := NewAccount("ACC1", "U1", "main", "USD", d("0"))
	tx, err := NewTransaction("TXN1", "ACC1", TransactionSell, "AAPL", d("5"), d("150"), d("1"), "")
	require.NoError(t, err)

	account.ApplyCash(tx)
	assert.True(t, account.CashBalance.Equal(d("749")))
}

func TestNewTransactionRejectsUnknownType(t *testing.T) {
	_, err := NewTransaction("TXN1", "ACC1", "SHORT", "AAPL", d("1"), d("1"), decimal.Zero, "")
	assert.ErrorIs(t, err, ErrInsufficientData)
}
