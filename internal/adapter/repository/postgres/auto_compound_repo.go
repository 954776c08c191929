package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/simaogato/seflow-backend/internal/domain"
)

// autoCompoundRepository implements domain.AutoCompoundRepository
type autoCompoundRepository struct {
	db *DB
}

// NewAutoCompoundRepository creates a new auto-compound schedule repository
func NewAutoCompoundRepository(db *DB) domain.AutoCompoundRepository {
	return &autoCompoundRepository{db: db}
}

const autoCompoundColumns = `address, interval_days, enabled, created_at, last_run_at, next_run_at`

// Get retrieves the schedule of an account
func (r *autoCompoundRepository) Get(ctx context.Context, address string) (*domain.AutoCompoundSettings, error) {
	query := `SELECT ` + autoCompoundColumns + ` FROM auto_compound_settings WHERE address = $1`

	settings, err := scanAutoCompound(r.db.QueryRowContext(ctx, query, address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("auto-compound settings for %s: %w", address, domain.ErrNotFound)
		}
		return nil, err
	}
	return settings, nil
}

// Save creates or replaces the schedule of an account
func (r *autoCompoundRepository) Save(ctx context.Context, s *domain.AutoCompoundSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO auto_compound_settings (` + autoCompoundColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (address) DO UPDATE
		SET interval_days = EXCLUDED.interval_days,
		    enabled = EXCLUDED.enabled,
		    last_run_at = EXCLUDED.last_run_at,
		    next_run_at = EXCLUDED.next_run_at
	`

	var lastRunAt interface{}
	if s.LastRunAt != nil {
		lastRunAt = *s.LastRunAt
	}

	_, err := r.db.ExecContext(ctx, query,
		s.Address,
		s.IntervalDays,
		s.Enabled,
		s.CreatedAt,
		lastRunAt,
		s.NextRunAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save auto-compound settings: %w", err)
	}

	return nil
}

// ListDue retrieves enabled schedules with next_run_at <= now, oldest first
func (r *autoCompoundRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.AutoCompoundSettings, error) {
	query := `SELECT ` + autoCompoundColumns + `
		FROM auto_compound_settings
		WHERE enabled AND next_run_at <= $1
		ORDER BY next_run_at, address
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due schedules: %w", err)
	}
	defer rows.Close()

	due := make([]*domain.AutoCompoundSettings, 0)
	for rows.Next() {
		settings, err := scanAutoCompound(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, settings)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedules: %w", err)
	}

	return due, nil
}

// MarkRun records a scheduler run and the next firing time
func (r *autoCompoundRepository) MarkRun(ctx context.Context, address string, ranAt, nextRunAt time.Time) error {
	query := `
		UPDATE auto_compound_settings
		SET last_run_at = $2, next_run_at = $3
		WHERE address = $1
	`

	res, err := r.db.ExecContext(ctx, query, address, ranAt, nextRunAt)
	if err != nil {
		return fmt.Errorf("failed to mark auto-compound run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("auto-compound settings for %s: %w", address, domain.ErrNotFound)
	}

	return nil
}

func scanAutoCompound(row scanner) (*domain.AutoCompoundSettings, error) {
	var s domain.AutoCompoundSettings
	var lastRunAt sql.NullTime

	err := row.Scan(&s.Address, &s.IntervalDays, &s.Enabled, &s.CreatedAt, &lastRunAt, &s.NextRunAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan auto-compound settings: %w", err)
	}

	if lastRunAt.Valid {
		t := lastRunAt.Time
		s.LastRunAt = &t
	}
	return &s, nil
}
