package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/seflow-backend/internal/domain"
)

// SeflowContract is the testnet account hosting the Seflow contracts.
// Any event type naming it marks a salary split.
const SeflowContract = "0x7d7f281847222367"

// Flow event types spell the account without the 0x prefix,
// e.g. A.7d7f281847222367.SeflowSalarySplitter.SplitExecuted.
var seflowContractHex = strings.TrimPrefix(SeflowContract, "0x")

const (
	MaxFindLabsRecords   = 50
	MaxAccessNodeRecords = 20
)

// FindLabsPage is the transaction listing returned by the FindLabs indexer
type FindLabsPage struct {
	Data []FindLabsTransaction `json:"data"`
}

// FindLabsTransaction is one indexed transaction
type FindLabsTransaction struct {
	ID                  string          `json:"id"`
	Status              string          `json:"status"`
	Timestamp           string          `json:"timestamp"`
	Error               string          `json:"error,omitempty"`
	TransactionBodyHash string          `json:"transaction_body_hash,omitempty"`
	Tags                []FindLabsTag   `json:"tags,omitempty"`
	Events              []FindLabsEvent `json:"events,omitempty"`
}

type FindLabsTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FindLabsEvent carries its fields either as an object or as a JSON-encoded string
type FindLabsEvent struct {
	Name   string          `json:"name"`
	Type   string          `json:"type,omitempty"`
	Fields json.RawMessage `json:"fields,omitempty"`
}

// AccessNodeTransaction is one entry of the Flow Access Node REST listing
type AccessNodeTransaction struct {
	ID     string            `json:"id"`
	Result *AccessNodeResult `json:"result,omitempty"`
}

type AccessNodeResult struct {
	Status         int               `json:"status"`
	BlockTimestamp string            `json:"block_timestamp"`
	Events         []AccessNodeEvent `json:"events,omitempty"`
}

type AccessNodeEvent struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// NormalizeFindLabs converts FindLabs transactions into history records
// Logic:
//   - status "sealed" is success, otherwise a non-empty error is failed
//   - amount comes from the FlowToken.TokensWithdrawn event "amount" field
//   - an event naming the Seflow contract marks the record as a salary split
//   - at most MaxFindLabsRecords records are returned
func NormalizeFindLabs(txs []FindLabsTransaction, now time.Time) []domain.TransactionRecord {
	if len(txs) > MaxFindLabsRecords {
		txs = txs[:MaxFindLabsRecords]
	}

	records := make([]domain.TransactionRecord, 0, len(txs))
	for i, tx := range txs {
		record := domain.TransactionRecord{
			ID:        firstNonEmpty(tx.ID, tx.TransactionBodyHash, fmt.Sprintf("tx-%d", i)),
			Type:      domain.TransactionTypeTransfer,
			Amount:    decimal.Zero,
			Details:   tagNames(tx.Tags),
			Status:    findLabsStatus(tx),
			Timestamp: parseTimestamp(tx.Timestamp, now),
			TxID:      firstNonEmpty(tx.ID, tx.TransactionBodyHash),
		}

		for _, e := range tx.Events {
			if !e.matches("FlowToken") || !e.matches("TokensWithdrawn") {
				continue
			}
			if amount, ok := parseAmount(e.amountField()); ok {
				record.Amount = amount
				record.Details = fmt.Sprintf("FLOW Transfer (%s FLOW)", amount.StringFixed(2))
			}
			break
		}

		for _, e := range tx.Events {
			if namesSeflowContract(e.Name) || namesSeflowContract(e.Type) {
				record.Type = domain.TransactionTypeSalarySplit
				record.Details = "Seflow Salary Split"
				break
			}
		}

		records = append(records, record)
	}
	return records
}

// NormalizeAccessNode converts Access Node transactions into history records
// Only executed (status 0) transactions are kept, at most MaxAccessNodeRecords.
func NormalizeAccessNode(txs []AccessNodeTransaction, now time.Time) []domain.TransactionRecord {
	records := make([]domain.TransactionRecord, 0, MaxAccessNodeRecords)
	for i, tx := range txs {
		if len(records) == MaxAccessNodeRecords {
			break
		}
		if tx.Result == nil || tx.Result.Status != 0 {
			continue
		}

		record := domain.TransactionRecord{
			ID:        firstNonEmpty(tx.ID, fmt.Sprintf("tx-%d", i)),
			Type:      domain.TransactionTypeTransfer,
			Amount:    decimal.Zero,
			Details:   "Flow transaction",
			Status:    domain.TransactionStatusSuccess,
			Timestamp: parseTimestamp(tx.Result.BlockTimestamp, now),
			TxID:      tx.ID,
		}

		for _, e := range tx.Result.Events {
			if !strings.Contains(e.Type, "FlowToken.TokensWithdrawn") {
				continue
			}
			if s, ok := e.Data["amount"].(string); ok {
				if amount, ok := parseAmount(s); ok {
					record.Amount = amount
					record.Details = fmt.Sprintf("FLOW Token Transfer (%s FLOW)", amount.StringFixed(2))
				}
			}
			break
		}

		for _, e := range tx.Result.Events {
			if namesSeflowContract(e.Type) {
				record.Type = domain.TransactionTypeSalarySplit
				record.Details = "Seflow Salary Split Transaction"
				break
			}
		}

		records = append(records, record)
	}
	return records
}

func findLabsStatus(tx FindLabsTransaction) domain.TransactionStatus {
	if strings.EqualFold(tx.Status, "sealed") {
		return domain.TransactionStatusSuccess
	}
	if tx.Error != "" {
		return domain.TransactionStatusFailed
	}
	return domain.TransactionStatusSuccess
}

// namesSeflowContract reports whether an event type or name refers to the
// Seflow account, in either the A.<hex> or the 0x<hex> spelling
func namesSeflowContract(s string) bool {
	return strings.Contains(strings.ToLower(s), seflowContractHex)
}

func (e FindLabsEvent) matches(s string) bool {
	return strings.Contains(e.Name, s) || strings.Contains(e.Type, s)
}

// amountField extracts "amount" from the event fields, decoding string-wrapped JSON first
func (e FindLabsEvent) amountField() interface{} {
	if len(e.Fields) == 0 {
		return nil
	}

	raw := []byte(e.Fields)
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = []byte(encoded)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields["amount"]
}

func parseAmount(v interface{}) (decimal.Decimal, bool) {
	switch a := v.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(a))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(a), true
	default:
		return decimal.Zero, false
	}
}

func parseTimestamp(s string, now time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	return now.UTC()
}

func tagNames(tags []FindLabsTag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Name != "" {
			names = append(names, t.Name)
		}
	}
	if len(names) == 0 {
		return "Flow transaction"
	}
	return strings.Join(names, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
