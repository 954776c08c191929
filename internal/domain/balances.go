package domain

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalances holds the vault balances of a wallet
type AccountBalances struct {
	Address        string
	Flow           decimal.Decimal // spendable wallet balance
	Savings        decimal.Decimal
	LP             decimal.Decimal
	Froth          decimal.Decimal // reward token, not part of TotalValue
	YieldEarned    decimal.Decimal // LP yield compounded so far
	LastCompoundAt time.Time       // start of the current LP accrual period
	UpdatedAt      time.Time
}

// TotalValue returns FLOW + savings + LP
func (b *AccountBalances) TotalValue() decimal.Decimal {
	return b.Flow.Add(b.Savings).Add(b.LP)
}

// SavingsLock describes whether the savings vault is currently locked
type SavingsLock struct {
	IsLocked      bool
	UnlockTime    time.Time
	RemainingDays int
}

// NewSavingsLock computes the lock status at now for a vault locked until lockedUntil
func NewSavingsLock(lockedUntil *time.Time, now time.Time) SavingsLock {
	if lockedUntil == nil || !lockedUntil.After(now) {
		return SavingsLock{}
	}

	remaining := lockedUntil.Sub(now)
	return SavingsLock{
		IsLocked:      true,
		UnlockTime:    *lockedUntil,
		RemainingDays: int(math.Ceil(remaining.Hours() / 24)),
	}
}

// Validate ensures the balances adhere to domain rules
func (b *AccountBalances) Validate() error {
	if _, err := NormalizeAddress(b.Address); err != nil {
		return err
	}
	for _, v := range []decimal.Decimal{b.Flow, b.Savings, b.LP, b.Froth, b.YieldEarned} {
		if v.LessThan(decimal.Zero) {
			return errors.New("balances must not be negative")
		}
	}
	return nil
}
