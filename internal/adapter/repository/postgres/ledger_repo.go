package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/seflow-backend/internal/domain"
)

// ledgerRepository implements domain.SplitLedger
type ledgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new split ledger repository
func NewLedgerRepository(db *DB) domain.SplitLedger {
	return &ledgerRepository{db: db}
}

const splitColumns = `
	id, address, total_amount, savings_pct, defi_pct, spending_pct, lock_vault,
	savings_amount, defi_amount, spending_amount, reward, locked_until, status, created_at
`

// Submit moves the split amounts between the vaults and records the split in one database transaction
func (r *ledgerRepository) Submit(ctx context.Context, tx *domain.SplitTransaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	// Start a database transaction
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	// Lock the account row and check the FLOW balance
	var flowStr string
	err = dbTx.QueryRowContext(ctx, `SELECT flow FROM accounts WHERE address = $1 FOR UPDATE`, tx.Address).Scan(&flowStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("account %s: %w", tx.Address, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to lock account: %w", err)
	}
	flow, err := decimal.NewFromString(flowStr)
	if err != nil {
		return fmt.Errorf("failed to parse flow: %w", err)
	}
	if flow.LessThan(tx.Request.TotalAmount) {
		return fmt.Errorf("%w: have %s, need %s", domain.ErrInsufficientBalance, flow.String(), tx.Request.TotalAmount.String())
	}

	// Spending stays in the wallet; savings and LP shares leave it
	updateQuery := `
		UPDATE accounts
		SET flow = flow - $2, savings = savings + $3, lp = lp + $4, froth = froth + $5, updated_at = $6
		WHERE address = $1
	`
	_, err = dbTx.ExecContext(ctx, updateQuery,
		tx.Address,
		tx.Withdrawn().String(),
		tx.Amounts.Savings.String(),
		tx.Amounts.DeFi.String(),
		tx.Reward.String(),
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update balances: %w", err)
	}

	insertQuery := `INSERT INTO splits (` + splitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	var lockedUntil interface{}
	if tx.LockedUntil != nil {
		lockedUntil = *tx.LockedUntil
	}

	_, err = dbTx.ExecContext(ctx, insertQuery,
		tx.ID,
		tx.Address,
		tx.Request.TotalAmount.String(),
		tx.Request.Allocation.Savings,
		tx.Request.Allocation.DeFi,
		tx.Request.Allocation.Spending,
		tx.Request.LockVault,
		tx.Amounts.Savings.String(),
		tx.Amounts.DeFi.String(),
		tx.Amounts.Spending.String(),
		tx.Reward.String(),
		lockedUntil,
		string(tx.Status),
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert split: %w", err)
	}

	// Commit the transaction
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// List retrieves a paginated list of splits for an account, newest first
func (r *ledgerRepository) List(ctx context.Context, address string, limit, offset int) ([]*domain.SplitTransaction, error) {
	query := `SELECT ` + splitColumns + `
		FROM splits
		WHERE address = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, address, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	splits := make([]*domain.SplitTransaction, 0)
	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			return nil, err
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return splits, nil
}

// Count returns the total number of splits for an account
func (r *ledgerRepository) Count(ctx context.Context, address string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM splits WHERE address = $1`, address).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count splits: %w", err)
	}
	return count, nil
}

// LatestLocked retrieves the most recent split that locked the savings vault
func (r *ledgerRepository) LatestLocked(ctx context.Context, address string) (*domain.SplitTransaction, error) {
	query := `SELECT ` + splitColumns + `
		FROM splits
		WHERE address = $1 AND locked_until IS NOT NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	split, err := scanSplit(r.db.QueryRowContext(ctx, query, address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no locked split for %s: %w", address, domain.ErrNotFound)
		}
		return nil, err
	}
	return split, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSplit(row scanner) (*domain.SplitTransaction, error) {
	var tx domain.SplitTransaction
	var total, savings, defi, spending, reward string
	var lockedUntil sql.NullTime
	var status string

	err := row.Scan(
		&tx.ID,
		&tx.Address,
		&total,
		&tx.Request.Allocation.Savings,
		&tx.Request.Allocation.DeFi,
		&tx.Request.Allocation.Spending,
		&tx.Request.LockVault,
		&savings,
		&defi,
		&spending,
		&reward,
		&lockedUntil,
		&status,
		&tx.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan split: %w", err)
	}

	// Parse amounts (NUMERIC)
	for _, f := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"total_amount", total, &tx.Request.TotalAmount},
		{"savings_amount", savings, &tx.Amounts.Savings},
		{"defi_amount", defi, &tx.Amounts.DeFi},
		{"spending_amount", spending, &tx.Amounts.Spending},
		{"reward", reward, &tx.Reward},
	} {
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f.name, err)
		}
		*f.dst = v
	}

	if lockedUntil.Valid {
		t := lockedUntil.Time
		tx.LockedUntil = &t
	}
	tx.Status = domain.TransactionStatus(status)

	return &tx, nil
}
