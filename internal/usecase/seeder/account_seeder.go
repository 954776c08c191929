package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/seflow-backend/internal/domain"
)

// Starting balances given to every demo wallet
var (
	DemoFlow    = decimal.NewFromInt(100)
	DemoSavings = decimal.NewFromInt(250)
	DemoLP      = decimal.NewFromInt(150)
	DemoFroth   = decimal.RequireFromString("5.5")
)

// AccountSeeder makes sure the configured wallets exist in the database
type AccountSeeder struct {
	repo domain.BalanceRepository
	now  func() time.Time
}

// NewAccountSeeder creates a new AccountSeeder instance
func NewAccountSeeder(repo domain.BalanceRepository) *AccountSeeder {
	return &AccountSeeder{
		repo: repo,
		now:  time.Now,
	}
}

// DemoAccount returns the starting balances for address
func DemoAccount(address string, now time.Time) *domain.AccountBalances {
	return &domain.AccountBalances{
		Address:        address,
		Flow:           DemoFlow,
		Savings:        DemoSavings,
		LP:             DemoLP,
		Froth:          DemoFroth,
		LastCompoundAt: now,
		UpdatedAt:      now,
	}
}

// Seed ensures every address has an account row
// Existing accounts are left untouched; unknown ones get the demo balances.
func (s *AccountSeeder) Seed(ctx context.Context, addresses []string) error {
	for _, raw := range addresses {
		address, err := domain.NormalizeAddress(raw)
		if err != nil {
			return err
		}

		_, err = s.repo.Get(ctx, address)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to look up account %s: %w", address, err)
		}

		account := DemoAccount(address, s.now().UTC())
		if err := account.Validate(); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, account); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", address, err)
		}
	}

	return nil
}
