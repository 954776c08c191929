package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSplitRequest(t *testing.T) {
	tests := []struct {
		name    string
		total   decimal.Decimal
		alloc   Allocation
		wantErr error
	}{
		{
			name:  "valid request",
			total: decimal.NewFromInt(1000),
			alloc: Allocation{Savings: 50, DeFi: 30, Spending: 20},
		},
		{
			name:    "zero amount",
			total:   decimal.Zero,
			alloc:   Allocation{Savings: 50, DeFi: 30, Spending: 20},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			total:   decimal.NewFromInt(-5),
			alloc:   Allocation{Savings: 50, DeFi: 30, Spending: 20},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "incomplete allocation",
			total:   decimal.NewFromInt(1000),
			alloc:   Allocation{Savings: 50, DeFi: 30},
			wantErr: ErrIncompleteAllocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewSplitRequest(tt.total, tt.alloc, true)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, req.TotalAmount.Equal(tt.total))
			assert.Equal(t, tt.alloc, req.Allocation)
			assert.True(t, req.LockVault)
		})
	}
}

func TestRewardPolicy(t *testing.T) {
	policy := DefaultRewardPolicy()
	total := decimal.NewFromInt(200)

	assert.True(t, policy.Reward(total, false).Equal(decimal.NewFromInt(2)), "1% without lock")
	assert.True(t, policy.Reward(total, true).Equal(decimal.NewFromInt(3)), "1.5% with lock")
	assert.True(t, policy.Reward(decimal.Zero, true).IsZero())

	assert.Equal(t, time.Duration(0), policy.LockWindow(false))
	assert.Equal(t, 30*24*time.Hour, policy.LockWindow(true))
}

func TestValidateAmount_Scale(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		wantErr bool
	}{
		{name: "whole", total: "1000"},
		{name: "six places", total: "1.234567"},
		{name: "trailing zeros", total: "1.23456700"},
		{name: "seven places", total: "1.2345678", wantErr: true},
		{name: "eight places", total: "1.23456789", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.total))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				assert.Contains(t, err.Error(), "decimal places")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSplitShares_FitFlowPrecision(t *testing.T) {
	// Every accepted total splits into shares that need no rounding at FlowPrecision
	total := decimal.RequireFromString("1.234567")
	for p := 0; p <= 100; p++ {
		share := total.Mul(decimal.NewFromInt(int64(p))).Div(decimal.NewFromInt(100))
		assert.True(t, share.Truncate(FlowPrecision).Equal(share), "share at %d%%", p)
	}
}

func TestRewardPolicy_TruncatesToFlowPrecision(t *testing.T) {
	reward := DefaultRewardPolicy().Reward(decimal.RequireFromString("1.234567"), true)

	assert.Equal(t, "0.01851850", reward.StringFixed(FlowPrecision))
	assert.True(t, reward.Truncate(FlowPrecision).Equal(reward))
}
