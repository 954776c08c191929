package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/seflow-backend/internal/domain"
)

// compoundRepository implements domain.CompoundLedger
type compoundRepository struct {
	db *DB
}

// NewCompoundRepository creates a new compound ledger repository
func NewCompoundRepository(db *DB) domain.CompoundLedger {
	return &compoundRepository{db: db}
}

// Compound credits the yield and records the compound in one database transaction
// The accounts update only matches while last_compound_at still equals tx.Since,
// so two concurrent compounds of one account cannot both credit the same yield.
func (r *compoundRepository) Compound(ctx context.Context, tx *domain.CompoundTransaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	updateQuery := `
		UPDATE accounts
		SET lp = lp + $2, yield_earned = yield_earned + $2, last_compound_at = $3, updated_at = $3
		WHERE address = $1 AND last_compound_at = $4
	`
	res, err := dbTx.ExecContext(ctx, updateQuery, tx.Address, tx.Yield.String(), tx.CreatedAt, tx.Since)
	if err != nil {
		return fmt.Errorf("failed to credit yield: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to credit yield: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := dbTx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE address = $1)`, tx.Address).Scan(&exists); err != nil {
			return fmt.Errorf("failed to look up account: %w", err)
		}
		if !exists {
			return fmt.Errorf("account %s: %w", tx.Address, domain.ErrNotFound)
		}
		return fmt.Errorf("account %s: %w", tx.Address, domain.ErrStalePosition)
	}

	insertQuery := `
		INSERT INTO compounds (id, address, yield, lp_balance, automatic, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = dbTx.ExecContext(ctx, insertQuery,
		tx.ID,
		tx.Address,
		tx.Yield.String(),
		tx.LPBalance.String(),
		tx.Automatic,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert compound: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListCompounds retrieves a paginated list of compounds for an account, newest first
func (r *compoundRepository) ListCompounds(ctx context.Context, address string, limit, offset int) ([]*domain.CompoundTransaction, error) {
	query := `
		SELECT id, address, yield, lp_balance, automatic, created_at
		FROM compounds
		WHERE address = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, address, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list compounds: %w", err)
	}
	defer rows.Close()

	compounds := make([]*domain.CompoundTransaction, 0)
	for rows.Next() {
		var tx domain.CompoundTransaction
		var yield, lpBalance string

		if err := rows.Scan(&tx.ID, &tx.Address, &yield, &lpBalance, &tx.Automatic, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan compound: %w", err)
		}
		if tx.Yield, err = decimal.NewFromString(yield); err != nil {
			return nil, fmt.Errorf("failed to parse yield: %w", err)
		}
		if tx.LPBalance, err = decimal.NewFromString(lpBalance); err != nil {
			return nil, fmt.Errorf("failed to parse lp_balance: %w", err)
		}
		compounds = append(compounds, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate compounds: %w", err)
	}

	return compounds, nil
}
