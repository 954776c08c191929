package domain

import (
	"context"
	"time"
)

// BalanceRepository defines the interface for account balance persistence operations
type BalanceRepository interface {
	// Get retrieves the balances of an account
	// Returns an error wrapping ErrNotFound if the account is unknown
	Get(ctx context.Context, address string) (*AccountBalances, error)

	// Create creates a new account with its starting balances
	Create(ctx context.Context, balances *AccountBalances) error
}

// SplitSubmitter is the transaction submission collaborator
type SplitSubmitter interface {
	// Submit executes the split: it moves the amounts between the vaults and
	// records the transaction atomically.
	// Returns an error wrapping ErrInsufficientBalance if FLOW < total amount.
	Submit(ctx context.Context, tx *SplitTransaction) error
}

// SplitLedger is the local record of executed splits
type SplitLedger interface {
	SplitSubmitter

	// List retrieves a paginated list of splits for an account, newest first
	List(ctx context.Context, address string, limit, offset int) ([]*SplitTransaction, error)

	// Count returns the total number of splits for an account
	Count(ctx context.Context, address string) (int, error)

	// LatestLocked retrieves the most recent split that locked the savings vault
	// Returns an error wrapping ErrNotFound if there is none
	LatestLocked(ctx context.Context, address string) (*SplitTransaction, error)
}

// HistorySource is the balance/history query collaborator for transaction history
type HistorySource interface {
	// ListTransactions returns up to limit history records for an account
	ListTransactions(ctx context.Context, address string, limit int) ([]TransactionRecord, error)
}

// EventPublisher announces executed splits to downstream consumers
type EventPublisher interface {
	PublishSplitSubmitted(ctx context.Context, tx *SplitTransaction) error
}

// CompoundLedger records LP yield compounding
type CompoundLedger interface {
	// Compound credits tx.Yield to the LP vault, restarts the accrual period at
	// tx.CreatedAt and records the compound atomically.
	// Returns an error wrapping ErrStalePosition if the account was compounded after tx.Since.
	Compound(ctx context.Context, tx *CompoundTransaction) error

	// ListCompounds retrieves a paginated list of compounds for an account, newest first
	ListCompounds(ctx context.Context, address string, limit, offset int) ([]*CompoundTransaction, error)
}

// StatsRepository aggregates the split ledger across all accounts
type StatsRepository interface {
	Stats(ctx context.Context) (*ContractStats, error)
}

// AutoCompoundRepository persists auto-compound schedules
type AutoCompoundRepository interface {
	// Get retrieves the schedule of an account
	// Returns an error wrapping ErrNotFound if none was set up
	Get(ctx context.Context, address string) (*AutoCompoundSettings, error)

	// Save creates or replaces the schedule of an account
	Save(ctx context.Context, settings *AutoCompoundSettings) error

	// ListDue retrieves enabled schedules with NextRunAt <= now, oldest first
	ListDue(ctx context.Context, now time.Time, limit int) ([]*AutoCompoundSettings, error)

	// MarkRun records a scheduler run and the next firing time
	MarkRun(ctx context.Context, address string, ranAt, nextRunAt time.Time) error
}
