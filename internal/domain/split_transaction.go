package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SplitAmounts holds the monetary share of each bucket
type SplitAmounts struct {
	Savings  decimal.Decimal
	DeFi     decimal.Decimal
	Spending decimal.Decimal
}

// Total returns the sum of the three amounts
func (a SplitAmounts) Total() decimal.Decimal {
	return a.Savings.Add(a.DeFi).Add(a.Spending)
}

// SplitTransaction is an executed salary split
// Adheres to the ledger layout: FLOW is debited by Savings+DeFi, the savings
// vault is credited Savings, the LP vault DeFi, and FROTH is minted as Reward.
// Spending stays in the wallet.
type SplitTransaction struct {
	ID          uuid.UUID
	Address     string
	Request     SplitRequest
	Amounts     SplitAmounts
	Reward      decimal.Decimal
	LockedUntil *time.Time // NULL unless the savings share was locked
	Status      TransactionStatus
	CreatedAt   time.Time
}

// Validate ensures the transaction adheres to domain rules
// CRITICAL: the bucket amounts must add up to the requested total exactly
func (t *SplitTransaction) Validate() error {
	if t.Address == "" {
		return ErrWalletNotConnected
	}

	if err := t.Request.Validate(); err != nil {
		return err
	}

	for _, amount := range []decimal.Decimal{t.Amounts.Savings, t.Amounts.DeFi, t.Amounts.Spending} {
		if amount.LessThan(decimal.Zero) {
			return errors.New("split amounts must not be negative")
		}
	}

	if !t.Amounts.Total().Equal(t.Request.TotalAmount) {
		return errors.New("split amounts do not equal total amount")
	}

	if t.Reward.LessThan(decimal.Zero) {
		return errors.New("reward must not be negative")
	}

	return nil
}

// Withdrawn returns the FLOW that leaves the wallet (savings + LP shares)
func (t *SplitTransaction) Withdrawn() decimal.Decimal {
	return t.Amounts.Savings.Add(t.Amounts.DeFi)
}

// Record converts the split into a history entry
func (t *SplitTransaction) Record() TransactionRecord {
	return TransactionRecord{
		ID:        t.ID.String(),
		Type:      TransactionTypeSalarySplit,
		Amount:    t.Request.TotalAmount,
		Details:   "Seflow Salary Split",
		Status:    t.Status,
		Timestamp: t.CreatedAt,
		TxID:      t.ID.String(),
	}
}
