package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinIntervalDays = 1
	MaxIntervalDays = 365
)

// MinAutoCompoundBalance is the FLOW an account must hold to enable auto-compounding
var MinAutoCompoundBalance = decimal.RequireFromString("0.01")

// AutoCompoundSettings is the auto-compound schedule of a wallet
type AutoCompoundSettings struct {
	Address      string
	IntervalDays int
	Enabled      bool
	CreatedAt    time.Time
	LastRunAt    *time.Time // NULL until the scheduler first runs
	NextRunAt    time.Time
}

// Interval returns the schedule period
func (s *AutoCompoundSettings) Interval() time.Duration {
	return time.Duration(s.IntervalDays) * 24 * time.Hour
}

// Validate ensures the settings adhere to domain rules
func (s *AutoCompoundSettings) Validate() error {
	if _, err := NormalizeAddress(s.Address); err != nil {
		return err
	}
	return ValidateInterval(s.IntervalDays)
}

// ValidateInterval checks an auto-compound interval in days
func ValidateInterval(days int) error {
	if days < MinIntervalDays || days > MaxIntervalDays {
		return fmt.Errorf("%w: must be between %d and %d days", ErrInvalidInterval, MinIntervalDays, MaxIntervalDays)
	}
	return nil
}

// CompoundTask represents a scheduled yield compound that is due
type CompoundTask struct {
	ID           uuid.UUID
	Address      string
	IntervalDays int
	ScheduledFor time.Time
}

// NextRun returns when the schedule fires again after a run at ranAt
func (t CompoundTask) NextRun(ranAt time.Time) time.Time {
	return ranAt.Add(time.Duration(t.IntervalDays) * 24 * time.Hour)
}

// ContractStats aggregates the ledger across every account
type ContractStats struct {
	TotalUsers           int
	TotalSplits          int
	TotalVolumeProcessed decimal.Decimal
}
