package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// FlowPrecision is the number of decimal places a FLOW amount carries
	FlowPrecision = 8

	// MaxAmountScale leaves room for the two places a whole percentage adds,
	// so every share of a split still fits FlowPrecision exactly.
	MaxAmountScale = FlowPrecision - 2
)

// SplitRequest is the finalized allocation handed to the submission collaborator
// It is built once at submission time and never mutated afterwards.
type SplitRequest struct {
	TotalAmount decimal.Decimal
	Allocation  Allocation
	LockVault   bool // lock the savings share for the reward policy's lock window
}

// NewSplitRequest builds a SplitRequest and validates it
func NewSplitRequest(totalAmount decimal.Decimal, allocation Allocation, lockVault bool) (SplitRequest, error) {
	req := SplitRequest{
		TotalAmount: totalAmount,
		Allocation:  allocation,
		LockVault:   lockVault,
	}
	if err := req.Validate(); err != nil {
		return SplitRequest{}, err
	}
	return req, nil
}

// Validate ensures the request is submittable
// CRITICAL: the allocation must sum to exactly 100 and the amount must be positive
func (r SplitRequest) Validate() error {
	if err := ValidateAmount(r.TotalAmount); err != nil {
		return err
	}
	return r.Allocation.Validate()
}

// ValidateAmount checks that a split total is positive and has at most MaxAmountScale decimal places
func ValidateAmount(total decimal.Decimal) error {
	if total.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	if !total.Truncate(MaxAmountScale).Equal(total) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, MaxAmountScale)
	}
	return nil
}

// RewardPolicy describes the FROTH reward minted for every split
type RewardPolicy struct {
	BaseRate decimal.Decimal // fraction of the total, savings unlocked
	LockRate decimal.Decimal // fraction of the total, savings locked
	LockDays int
}

// DefaultRewardPolicy returns 1% (1.5% when locked) with a 30 day lock window
func DefaultRewardPolicy() RewardPolicy {
	return RewardPolicy{
		BaseRate: decimal.RequireFromString("0.01"),
		LockRate: decimal.RequireFromString("0.015"),
		LockDays: 30,
	}
}

// Reward returns the FROTH reward for a split of totalAmount
// The result is truncated to FlowPrecision so it is stored exactly.
func (p RewardPolicy) Reward(totalAmount decimal.Decimal, lockVault bool) decimal.Decimal {
	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	rate := p.BaseRate
	if lockVault {
		rate = p.LockRate
	}
	return totalAmount.Mul(rate).Truncate(FlowPrecision)
}

// LockWindow returns how long savings stay locked (zero when not locking)
func (p RewardPolicy) LockWindow(lockVault bool) time.Duration {
	if !lockVault {
		return 0
	}
	return time.Duration(p.LockDays) * 24 * time.Hour
}
