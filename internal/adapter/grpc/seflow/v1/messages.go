package seflowv1

import "time"

// Allocation is the savings/DeFi/spending percentage triple
type Allocation struct {
	Savings  int `json:"savings"`
	Defi     int `json:"defi"`
	Spending int `json:"spending"`
}

type RebalanceRequest struct {
	Current Allocation `json:"current"`
	Field   string     `json:"field"`
	Value   int        `json:"value"`
}

type RebalanceResponse struct {
	Allocation Allocation `json:"allocation"`
	Remaining  int        `json:"remaining"`
	Complete   bool       `json:"complete"`
}

// SplitRequest is shared by PreviewSplit and SubmitSplit.
// TotalAmount is a decimal string.
type SplitRequest struct {
	TotalAmount string     `json:"total_amount"`
	Allocation  Allocation `json:"allocation"`
	LockVault   bool       `json:"lock_vault"`
}

type PreviewSplitRequest = SplitRequest

type PreviewSplitResponse struct {
	Allocation     Allocation `json:"allocation"`
	SavingsAmount  string     `json:"savings_amount"`
	DefiAmount     string     `json:"defi_amount"`
	SpendingAmount string     `json:"spending_amount"`
	Reward         string     `json:"reward"`
	LockDays       int        `json:"lock_days"`
	Remaining      int        `json:"remaining"`
	Submittable    bool       `json:"submittable"`
	Reason         string     `json:"reason,omitempty"`
}

type SubmitSplitRequest = SplitRequest

type SubmitSplitResponse struct {
	TransactionId  string     `json:"transaction_id"`
	SavingsAmount  string     `json:"savings_amount"`
	DefiAmount     string     `json:"defi_amount"`
	SpendingAmount string     `json:"spending_amount"`
	Reward         string     `json:"reward"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type GetDashboardRequest struct{}

type Balances struct {
	Flow       string `json:"flow"`
	Savings    string `json:"savings"`
	Lp         string `json:"lp"`
	Froth      string `json:"froth"`
	TotalValue string `json:"total_value"`
}

type SavingsLock struct {
	IsLocked      bool       `json:"is_locked"`
	UnlockTime    *time.Time `json:"unlock_time,omitempty"`
	RemainingDays int        `json:"remaining_days"`
}

type GetDashboardResponse struct {
	Address  string        `json:"address"`
	Balances Balances      `json:"balances"`
	Lock     SavingsLock   `json:"lock"`
	Lp       LPPosition    `json:"lp"`
	Recent   []Transaction `json:"recent"`
}

type ListTransactionsRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	Source       string        `json:"source"`
}

// Transaction is one history record
type Transaction struct {
	Id        string    `json:"id"`
	Type      string    `json:"type"`
	Amount    string    `json:"amount"`
	Details   string    `json:"details"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	TxId      string    `json:"tx_id,omitempty"`
}

type GetContractStatsRequest struct{}

type GetContractStatsResponse struct {
	TotalUsers           int    `json:"total_users"`
	TotalSplits          int    `json:"total_splits"`
	TotalVolumeProcessed string `json:"total_volume_processed"`
}

// LPPosition is the liquidity pool vault with its accrued yield
type LPPosition struct {
	Balance                string    `json:"balance"`
	TotalYieldEarned       string    `json:"total_yield_earned"`
	AvailableYield         string    `json:"available_yield"`
	LastCompoundTime       time.Time `json:"last_compound_time"`
	WeeksSinceLastCompound int       `json:"weeks_since_last_compound"`
	CanClaimYield          bool      `json:"can_claim_yield"`
}

type GetLPPositionRequest struct{}

type GetLPPositionResponse struct {
	Position LPPosition `json:"position"`
}

type CompoundYieldRequest struct{}

type CompoundYieldResponse struct {
	TransactionId string    `json:"transaction_id"`
	Yield         string    `json:"yield"`
	LpBalance     string    `json:"lp_balance"`
	CreatedAt     time.Time `json:"created_at"`
}

type EnableAutoCompoundRequest struct {
	IntervalDays int `json:"interval_days"`
}

type DisableAutoCompoundRequest struct{}

type GetAutoCompoundStatusRequest struct{}

// AutoCompoundStatus is shared by the auto-compound RPCs
type AutoCompoundStatus struct {
	Configured   bool       `json:"configured"`
	Enabled      bool       `json:"enabled"`
	IntervalDays int        `json:"interval_days,omitempty"`
	LastRunAt    *time.Time `json:"last_run_at,omitempty"`
	NextRunAt    *time.Time `json:"next_run_at,omitempty"`
}
