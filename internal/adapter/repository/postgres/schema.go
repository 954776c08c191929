package postgres

import (
	"context"
	"fmt"
)

// schema is applied on every start; each statement is idempotent
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		address    TEXT PRIMARY KEY,
		flow       NUMERIC(28, 8) NOT NULL DEFAULT 0 CHECK (flow >= 0),
		savings    NUMERIC(28, 8) NOT NULL DEFAULT 0 CHECK (savings >= 0),
		lp         NUMERIC(28, 8) NOT NULL DEFAULT 0 CHECK (lp >= 0),
		froth      NUMERIC(28, 8) NOT NULL DEFAULT 0 CHECK (froth >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS splits (
		id              UUID PRIMARY KEY,
		address         TEXT NOT NULL REFERENCES accounts (address),
		total_amount    NUMERIC(28, 8) NOT NULL CHECK (total_amount > 0),
		savings_pct     SMALLINT NOT NULL CHECK (savings_pct BETWEEN 0 AND 100),
		defi_pct        SMALLINT NOT NULL CHECK (defi_pct BETWEEN 0 AND 100),
		spending_pct    SMALLINT NOT NULL CHECK (spending_pct BETWEEN 0 AND 100),
		lock_vault      BOOLEAN NOT NULL DEFAULT FALSE,
		savings_amount  NUMERIC(28, 8) NOT NULL,
		defi_amount     NUMERIC(28, 8) NOT NULL,
		spending_amount NUMERIC(28, 8) NOT NULL,
		reward          NUMERIC(28, 8) NOT NULL,
		locked_until    TIMESTAMPTZ,
		status          TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL,
		CHECK (savings_pct + defi_pct + spending_pct = 100)
	)`,
	`CREATE INDEX IF NOT EXISTS splits_address_created_idx ON splits (address, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS splits_locked_idx ON splits (address, created_at DESC) WHERE locked_until IS NOT NULL`,
	`ALTER TABLE accounts ADD COLUMN IF NOT EXISTS yield_earned NUMERIC(28, 8) NOT NULL DEFAULT 0 CHECK (yield_earned >= 0)`,
	`ALTER TABLE accounts ADD COLUMN IF NOT EXISTS last_compound_at TIMESTAMPTZ NOT NULL DEFAULT now()`,
	`CREATE TABLE IF NOT EXISTS compounds (
		id         UUID PRIMARY KEY,
		address    TEXT NOT NULL REFERENCES accounts (address),
		yield      NUMERIC(28, 8) NOT NULL CHECK (yield > 0),
		lp_balance NUMERIC(28, 8) NOT NULL,
		automatic  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS compounds_address_created_idx ON compounds (address, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS auto_compound_settings (
		address       TEXT PRIMARY KEY REFERENCES accounts (address),
		interval_days INTEGER NOT NULL CHECK (interval_days BETWEEN 1 AND 365),
		enabled       BOOLEAN NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		last_run_at   TIMESTAMPTZ,
		next_run_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS auto_compound_due_idx ON auto_compound_settings (next_run_at) WHERE enabled`,
}

// EnsureSchema creates the tables and indexes if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
