package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/seflow-backend/internal/domain"
)

// balanceRepository implements domain.BalanceRepository
type balanceRepository struct {
	db *DB
}

// NewBalanceRepository creates a new balance repository
func NewBalanceRepository(db *DB) domain.BalanceRepository {
	return &balanceRepository{db: db}
}

// Get retrieves the balances of an account
func (r *balanceRepository) Get(ctx context.Context, address string) (*domain.AccountBalances, error) {
	query := `
		SELECT address, flow, savings, lp, froth, yield_earned, last_compound_at, updated_at
		FROM accounts
		WHERE address = $1
	`

	var b domain.AccountBalances
	var flow, savings, lp, froth, yieldEarned string

	err := r.db.QueryRowContext(ctx, query, address).Scan(
		&b.Address,
		&flow,
		&savings,
		&lp,
		&froth,
		&yieldEarned,
		&b.LastCompoundAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", address, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account balances: %w", err)
	}

	// Parse balances (NUMERIC)
	for _, f := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"flow", flow, &b.Flow},
		{"savings", savings, &b.Savings},
		{"lp", lp, &b.LP},
		{"froth", froth, &b.Froth},
		{"yield_earned", yieldEarned, &b.YieldEarned},
	} {
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f.name, err)
		}
		*f.dst = v
	}

	return &b, nil
}

// Create creates a new account with its starting balances
// A zero LastCompoundAt starts the LP accrual period at UpdatedAt.
func (r *balanceRepository) Create(ctx context.Context, b *domain.AccountBalances) error {
	query := `
		INSERT INTO accounts (address, flow, savings, lp, froth, yield_earned, last_compound_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	lastCompound := b.LastCompoundAt
	if lastCompound.IsZero() {
		lastCompound = b.UpdatedAt
	}

	_, err := r.db.ExecContext(ctx, query,
		b.Address,
		b.Flow.String(),
		b.Savings.String(),
		b.LP.String(),
		b.Froth.String(),
		b.YieldEarned.String(),
		lastCompound,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}
