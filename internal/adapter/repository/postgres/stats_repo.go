package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/seflow-backend/internal/domain"
)

// statsRepository implements domain.StatsRepository
type statsRepository struct {
	db *DB
}

// NewStatsRepository creates a new ledger statistics repository
func NewStatsRepository(db *DB) domain.StatsRepository {
	return &statsRepository{db: db}
}

// Stats aggregates every executed split
func (r *statsRepository) Stats(ctx context.Context) (*domain.ContractStats, error) {
	query := `
		SELECT COUNT(DISTINCT address), COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM splits
		WHERE status = $1
	`

	var stats domain.ContractStats
	var volume string
	err := r.db.QueryRowContext(ctx, query, string(domain.TransactionStatusSuccess)).Scan(
		&stats.TotalUsers,
		&stats.TotalSplits,
		&volume,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate splits: %w", err)
	}

	if stats.TotalVolumeProcessed, err = decimal.NewFromString(volume); err != nil {
		return nil, fmt.Errorf("failed to parse total volume: %w", err)
	}

	return &stats, nil
}
