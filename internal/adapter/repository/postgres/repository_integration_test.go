//go:build integration

package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/seflow-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getDBConnectionString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}
	return "host=localhost port=5432 user=postgres password=postgres dbname=seflow sslmode=disable"
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	db, err := NewDB(ctx, getDBConnectionString(), PoolConfig{MaxOpenConns: 4})
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(ctx))
	t.Cleanup(func() { db.Close() })
	return db
}

// freshAddress returns a unique address so runs do not collide
func freshAddress() string {
	return fmt.Sprintf("0x%016x", uuid.New().ID())
}

func seedAccount(t *testing.T, db *DB, flow int64) string {
	t.Helper()
	address := freshAddress()
	err := NewBalanceRepository(db).Create(context.Background(), &domain.AccountBalances{
		Address:   address,
		Flow:      decimal.NewFromInt(flow),
		Savings:   decimal.NewFromInt(250),
		LP:        decimal.NewFromInt(150),
		Froth:     decimal.RequireFromString("5.5"),
		UpdatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return address
}

func newSplit(address string, total int64, lock bool) *domain.SplitTransaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	totalAmount := decimal.NewFromInt(total)
	tx := &domain.SplitTransaction{
		ID:      uuid.New(),
		Address: address,
		Request: domain.SplitRequest{
			TotalAmount: totalAmount,
			Allocation:  domain.Allocation{Savings: 50, DeFi: 30, Spending: 20},
			LockVault:   lock,
		},
		Amounts: domain.SplitAmounts{
			Savings:  totalAmount.Mul(decimal.RequireFromString("0.5")),
			DeFi:     totalAmount.Mul(decimal.RequireFromString("0.3")),
			Spending: totalAmount.Mul(decimal.RequireFromString("0.2")),
		},
		Reward:    totalAmount.Mul(decimal.RequireFromString("0.01")),
		Status:    domain.TransactionStatusSuccess,
		CreatedAt: now,
	}
	if lock {
		until := now.Add(30 * 24 * time.Hour)
		tx.LockedUntil = &until
	}
	return tx
}

func TestBalanceRepository_GetMissing(t *testing.T) {
	db := openTestDB(t)

	_, err := NewBalanceRepository(db).Get(context.Background(), freshAddress())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedgerRepository_Submit(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	address := seedAccount(t, db, 100)
	ledger := NewLedgerRepository(db)

	tx := newSplit(address, 80, true)
	require.NoError(t, ledger.Submit(ctx, tx))

	balances, err := NewBalanceRepository(db).Get(ctx, address)
	require.NoError(t, err)
	assert.True(t, balances.Flow.Equal(decimal.NewFromInt(36)), "flow = 100 - 40 - 24, got %s", balances.Flow)
	assert.True(t, balances.Savings.Equal(decimal.NewFromInt(290)))
	assert.True(t, balances.LP.Equal(decimal.NewFromInt(174)))
	assert.True(t, balances.Froth.Equal(decimal.RequireFromString("6.3")))

	count, err := ledger.Count(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	locked, err := ledger.LatestLocked(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, locked.ID)
	require.NotNil(t, locked.LockedUntil)
	assert.True(t, tx.LockedUntil.Equal(*locked.LockedUntil))

	splits, err := ledger.List(ctx, address, 10, 0)
	require.NoError(t, err)
	require.Len(t, splits, 1)
	assert.Equal(t, tx.Request.Allocation, splits[0].Request.Allocation)
	assert.True(t, splits[0].Request.TotalAmount.Equal(tx.Request.TotalAmount))
}

func TestLedgerRepository_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	address := seedAccount(t, db, 10)
	ledger := NewLedgerRepository(db)

	err := ledger.Submit(ctx, newSplit(address, 50, false))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	count, err := ledger.Count(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "a rejected split must not be recorded")

	_, err = ledger.LatestLocked(ctx, address)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedgerRepository_UnknownAccount(t *testing.T) {
	err := NewLedgerRepository(openTestDB(t)).Submit(context.Background(), newSplit(freshAddress(), 10, false))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompoundRepository_Compound(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	address := seedAccount(t, db, 100)
	balanceRepo := NewBalanceRepository(db)
	compounds := NewCompoundRepository(db)

	before, err := balanceRepo.Get(ctx, address)
	require.NoError(t, err)

	tx := &domain.CompoundTransaction{
		ID:        uuid.New(),
		Address:   address,
		Yield:     decimal.RequireFromString("0.45"),
		LPBalance: before.LP.Add(decimal.RequireFromString("0.45")),
		Since:     before.LastCompoundAt,
		CreatedAt: before.LastCompoundAt.Add(3 * domain.Week),
	}
	require.NoError(t, compounds.Compound(ctx, tx))

	after, err := balanceRepo.Get(ctx, address)
	require.NoError(t, err)
	assert.True(t, after.LP.Equal(decimal.RequireFromString("150.45")), "got %s", after.LP)
	assert.True(t, after.YieldEarned.Equal(decimal.RequireFromString("0.45")))
	assert.True(t, after.LastCompoundAt.Equal(tx.CreatedAt))

	// Replaying the same accrual period must not credit twice
	replay := *tx
	replay.ID = uuid.New()
	err = compounds.Compound(ctx, &replay)
	assert.ErrorIs(t, err, domain.ErrStalePosition)

	listed, err := compounds.ListCompounds(ctx, address, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, tx.ID, listed[0].ID)
	assert.True(t, listed[0].Yield.Equal(tx.Yield))
}

func TestCompoundRepository_UnknownAccount(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	err := NewCompoundRepository(openTestDB(t)).Compound(context.Background(), &domain.CompoundTransaction{
		ID:        uuid.New(),
		Address:   freshAddress(),
		Yield:     decimal.NewFromInt(1),
		LPBalance: decimal.NewFromInt(1),
		Since:     now.Add(-domain.Week),
		CreatedAt: now,
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatsRepository_Stats(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	stats := NewStatsRepository(db)

	before, err := stats.Stats(ctx)
	require.NoError(t, err)

	address := seedAccount(t, db, 100)
	ledger := NewLedgerRepository(db)
	require.NoError(t, ledger.Submit(ctx, newSplit(address, 10, false)))
	require.NoError(t, ledger.Submit(ctx, newSplit(address, 20, false)))

	after, err := stats.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.TotalUsers+1, after.TotalUsers)
	assert.Equal(t, before.TotalSplits+2, after.TotalSplits)
	assert.True(t, after.TotalVolumeProcessed.Sub(before.TotalVolumeProcessed).Equal(decimal.NewFromInt(30)))
}

func TestAutoCompoundRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	address := seedAccount(t, db, 100)
	repo := NewAutoCompoundRepository(db)

	_, err := repo.Get(ctx, address)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	now := time.Now().UTC().Truncate(time.Microsecond)
	settings := &domain.AutoCompoundSettings{
		Address:      address,
		IntervalDays: 7,
		Enabled:      true,
		CreatedAt:    now,
		NextRunAt:    now.Add(-time.Minute),
	}
	require.NoError(t, repo.Save(ctx, settings))

	got, err := repo.Get(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, 7, got.IntervalDays)
	assert.Nil(t, got.LastRunAt)

	due, err := repo.ListDue(ctx, now, 1000)
	require.NoError(t, err)
	assert.True(t, containsSchedule(due, address), "schedule due a minute ago must be listed")

	next := now.Add(7 * 24 * time.Hour)
	require.NoError(t, repo.MarkRun(ctx, address, now, next))
	got, err = repo.Get(ctx, address)
	require.NoError(t, err)
	require.NotNil(t, got.LastRunAt)
	assert.True(t, got.LastRunAt.Equal(now))
	assert.True(t, got.NextRunAt.Equal(next))

	due, err = repo.ListDue(ctx, now, 1000)
	require.NoError(t, err)
	assert.False(t, containsSchedule(due, address))

	// Save upserts; a disabled schedule is never due
	got.Enabled = false
	got.NextRunAt = now.Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, got))
	due, err = repo.ListDue(ctx, now, 1000)
	require.NoError(t, err)
	assert.False(t, containsSchedule(due, address))

	assert.ErrorIs(t, repo.MarkRun(ctx, freshAddress(), now, next), domain.ErrNotFound)
}

func containsSchedule(due []*domain.AutoCompoundSettings, address string) bool {
	for _, s := range due {
		if s.Address == address {
			return true
		}
	}
	return false
}
