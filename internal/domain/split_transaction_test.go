package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validSplitTransaction() SplitTransaction {
	return SplitTransaction{
		ID:      uuid.New(),
		Address: "0x01cf0e2f2f715450",
		Request: SplitRequest{
			TotalAmount: decimal.NewFromInt(100),
			Allocation:  Allocation{Savings: 50, DeFi: 30, Spending: 20},
		},
		Amounts: SplitAmounts{
			Savings:  decimal.NewFromInt(50),
			DeFi:     decimal.NewFromInt(30),
			Spending: decimal.NewFromInt(20),
		},
		Reward:    decimal.NewFromInt(1),
		Status:    TransactionStatusSuccess,
		CreatedAt: time.Now(),
	}
}

func TestSplitTransaction_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(tx *SplitTransaction)
		errMsg string
	}{
		{
			name:   "valid transaction",
			mutate: func(tx *SplitTransaction) {},
		},
		{
			name:   "missing address",
			mutate: func(tx *SplitTransaction) { tx.Address = "" },
			errMsg: ErrWalletNotConnected.Error(),
		},
		{
			name:   "incomplete allocation",
			mutate: func(tx *SplitTransaction) { tx.Request.Allocation.Spending = 10 },
			errMsg: "allocate 10% more",
		},
		{
			name:   "amounts lose a penny",
			mutate: func(tx *SplitTransaction) { tx.Amounts.Spending = decimal.RequireFromString("19.99") },
			errMsg: "split amounts do not equal total amount",
		},
		{
			name: "negative amount",
			mutate: func(tx *SplitTransaction) {
				tx.Amounts.Savings = decimal.NewFromInt(-10)
				tx.Amounts.Spending = decimal.NewFromInt(80)
			},
			errMsg: "split amounts must not be negative",
		},
		{
			name:   "negative reward",
			mutate: func(tx *SplitTransaction) { tx.Reward = decimal.NewFromInt(-1) },
			errMsg: "reward must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validSplitTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSplitTransaction_Record(t *testing.T) {
	tx := validSplitTransaction()

	assert.True(t, tx.Withdrawn().Equal(decimal.NewFromInt(80)), "spending stays in the wallet")

	rec := tx.Record()
	assert.Equal(t, tx.ID.String(), rec.ID)
	assert.Equal(t, tx.ID.String(), rec.TxID)
	assert.Equal(t, TransactionTypeSalarySplit, rec.Type)
	assert.Equal(t, TransactionStatusSuccess, rec.Status)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, tx.CreatedAt, rec.Timestamp)
}
