package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Week is the accrual period of LP yield
const Week = 7 * 24 * time.Hour

// YieldPolicy describes how the liquidity pool vault earns yield
type YieldPolicy struct {
	WeeklyRate decimal.Decimal // fraction of the LP balance earned per full week
}

// DefaultYieldPolicy returns 0.1% of the LP balance per full week
func DefaultYieldPolicy() YieldPolicy {
	return YieldPolicy{WeeklyRate: decimal.RequireFromString("0.001")}
}

// LPPosition is the liquidity pool view of a wallet at a point in time
type LPPosition struct {
	Balance                decimal.Decimal
	TotalYieldEarned       decimal.Decimal
	AvailableYield         decimal.Decimal
	LastCompoundTime       time.Time
	WeeksSinceLastCompound int
	CanClaimYield          bool
}

// WeeksSince returns the full weeks elapsed from last to now (never negative)
func WeeksSince(last, now time.Time) int {
	if last.IsZero() || !now.After(last) {
		return 0
	}
	return int(now.Sub(last) / Week)
}

// AvailableYield returns the uncompounded yield of an LP balance last compounded at last
// Logic:
//   - yield accrues per full week only (simple interest between compounds)
//   - the result is truncated to FlowPrecision
func (p YieldPolicy) AvailableYield(lpBalance decimal.Decimal, last, now time.Time) decimal.Decimal {
	weeks := WeeksSince(last, now)
	if weeks == 0 || lpBalance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return lpBalance.Mul(p.WeeklyRate).Mul(decimal.NewFromInt(int64(weeks))).Truncate(FlowPrecision)
}

// Position computes the LP position of an account at now
func (p YieldPolicy) Position(b *AccountBalances, now time.Time) LPPosition {
	available := p.AvailableYield(b.LP, b.LastCompoundAt, now)
	return LPPosition{
		Balance:                b.LP,
		TotalYieldEarned:       b.YieldEarned,
		AvailableYield:         available,
		LastCompoundTime:       b.LastCompoundAt,
		WeeksSinceLastCompound: WeeksSince(b.LastCompoundAt, now),
		CanClaimYield:          available.GreaterThan(decimal.Zero),
	}
}

// CompoundTransaction is an executed yield compound: accrued yield moved into the LP vault
type CompoundTransaction struct {
	ID        uuid.UUID
	Address   string
	Yield     decimal.Decimal
	LPBalance decimal.Decimal // LP balance after compounding
	Since     time.Time       // compound clock the yield was accrued from
	Automatic bool            // triggered by the auto-compound scheduler
	CreatedAt time.Time
}

// Validate ensures the compound adheres to domain rules
func (tx *CompoundTransaction) Validate() error {
	if tx.Address == "" {
		return errors.New("address is required")
	}
	if tx.Yield.LessThanOrEqual(decimal.Zero) {
		return ErrNoYieldAvailable
	}
	if !tx.CreatedAt.After(tx.Since) {
		return errors.New("compound time must be after the previous compound")
	}
	return nil
}

// Record converts the compound into a history record
func (tx *CompoundTransaction) Record() TransactionRecord {
	details := fmt.Sprintf("LP Yield Compound (%s FLOW)", tx.Yield.StringFixed(2))
	if tx.Automatic {
		details = fmt.Sprintf("Auto-compound (%s FLOW)", tx.Yield.StringFixed(2))
	}
	return TransactionRecord{
		ID:        tx.ID.String(),
		Type:      TransactionTypeCompound,
		Amount:    tx.Yield,
		Details:   details,
		Status:    TransactionStatusSuccess,
		Timestamp: tx.CreatedAt,
		TxID:      tx.ID.String(),
	}
}
