package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a history entry
type TransactionType string

const (
	TransactionTypeSalarySplit TransactionType = "salary_split"
	TransactionTypeCompound    TransactionType = "compound"
	TransactionTypeTransfer    TransactionType = "transfer"
)

// TransactionStatus is the settlement state of a history entry
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// TransactionRecord is a single line of an account's transaction history
type TransactionRecord struct {
	ID        string            `json:"id"`
	Type      TransactionType   `json:"type"`
	Amount    decimal.Decimal   `json:"amount"`
	Details   string            `json:"details"`
	Status    TransactionStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	TxID      string            `json:"txId,omitempty"`
}
