package yield

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/seflow-backend/internal/domain"
	"github.com/simaogato/seflow-backend/internal/observability"
)

// AutoCompoundStatus reports whether an account has a schedule and what it is
type AutoCompoundStatus struct {
	Configured bool
	Settings   domain.AutoCompoundSettings
}

// YieldService handles LP yield compounding and auto-compound schedules
type YieldService struct {
	BalanceRepo domain.BalanceRepository
	Ledger      domain.CompoundLedger
	Schedules   domain.AutoCompoundRepository
	Policy      domain.YieldPolicy
	Logger      zerolog.Logger
	Metrics     *observability.Metrics
	Now         func() time.Time
}

// NewYieldService creates a new YieldService instance
func NewYieldService(
	balanceRepo domain.BalanceRepository,
	ledger domain.CompoundLedger,
	schedules domain.AutoCompoundRepository,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *YieldService {
	return &YieldService{
		BalanceRepo: balanceRepo,
		Ledger:      ledger,
		Schedules:   schedules,
		Policy:      domain.DefaultYieldPolicy(),
		Logger:      logger,
		Metrics:     metrics,
		Now:         time.Now,
	}
}

// GetLPPosition returns the LP vault balance and its accrued yield
func (s *YieldService) GetLPPosition(ctx context.Context, session domain.Session) (*domain.LPPosition, error) {
	address, err := sessionAddress(session)
	if err != nil {
		return nil, err
	}

	balances, err := s.BalanceRepo.Get(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}

	pos := s.Policy.Position(balances, s.Now())
	return &pos, nil
}

// Compound moves the accrued LP yield of the connected wallet into its LP vault
func (s *YieldService) Compound(ctx context.Context, session domain.Session) (*domain.CompoundTransaction, error) {
	address, err := sessionAddress(session)
	if err != nil {
		return nil, err
	}
	return s.CompoundAccount(ctx, address, false)
}

// CompoundAccount compounds the yield of address
// Logic:
//  1. Read the LP balance and the start of its accrual period
//  2. Compute the yield accrued in full weeks; none is ErrNoYieldAvailable
//  3. Hand the compound to the ledger, which rejects it if another compound
//     moved the accrual period in the meantime
func (s *YieldService) CompoundAccount(ctx context.Context, address string, automatic bool) (*domain.CompoundTransaction, error) {
	balances, err := s.BalanceRepo.Get(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}

	// Postgres keeps microseconds; the accrual clock must round-trip exactly
	now := s.Now().UTC().Truncate(time.Microsecond)
	yield := s.Policy.AvailableYield(balances.LP, balances.LastCompoundAt, now)
	if !yield.IsPositive() {
		return nil, domain.ErrNoYieldAvailable
	}

	tx := &domain.CompoundTransaction{
		ID:        uuid.New(),
		Address:   address,
		Yield:     yield,
		LPBalance: balances.LP.Add(yield),
		Since:     balances.LastCompoundAt,
		Automatic: automatic,
		CreatedAt: now,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	if err := s.Ledger.Compound(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to compound yield: %w", err)
	}

	s.Metrics.Compounded(automatic, yield)
	s.Logger.Info().
		Str("address", address).
		Str("yield", yield.String()).
		Str("lp_balance", tx.LPBalance.String()).
		Bool("automatic", automatic).
		Msg("yield compounded")

	return tx, nil
}

// EnableAutoCompound sets up and schedules auto-compounding every intervalDays
// Logic:
//   - the account must hold at least MinAutoCompoundBalance FLOW
//   - an existing schedule keeps its CreatedAt and LastRunAt
//   - the first run fires one interval from now
func (s *YieldService) EnableAutoCompound(ctx context.Context, session domain.Session, intervalDays int) (*domain.AutoCompoundSettings, error) {
	address, err := sessionAddress(session)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateInterval(intervalDays); err != nil {
		return nil, err
	}

	balances, err := s.BalanceRepo.Get(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}
	if balances.Flow.LessThan(domain.MinAutoCompoundBalance) {
		return nil, fmt.Errorf("%w: need at least %s FLOW", domain.ErrInsufficientBalance, domain.MinAutoCompoundBalance.String())
	}

	now := s.Now().UTC()
	settings := &domain.AutoCompoundSettings{
		Address:   address,
		CreatedAt: now,
	}
	existing, err := s.Schedules.Get(ctx, address)
	switch {
	case err == nil:
		settings = existing
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to get auto-compound settings: %w", err)
	}

	settings.IntervalDays = intervalDays
	settings.Enabled = true
	settings.NextRunAt = now.Add(settings.Interval())

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := s.Schedules.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save auto-compound settings: %w", err)
	}

	s.Logger.Info().
		Str("address", address).
		Int("interval_days", intervalDays).
		Time("next_run_at", settings.NextRunAt).
		Msg("auto-compound enabled")

	return settings, nil
}

// DisableAutoCompound stops the schedule but keeps its settings
func (s *YieldService) DisableAutoCompound(ctx context.Context, session domain.Session) (*domain.AutoCompoundSettings, error) {
	address, err := sessionAddress(session)
	if err != nil {
		return nil, err
	}

	settings, err := s.Schedules.Get(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get auto-compound settings: %w", err)
	}
	if !settings.Enabled {
		return settings, nil
	}

	settings.Enabled = false
	if err := s.Schedules.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save auto-compound settings: %w", err)
	}

	s.Logger.Info().Str("address", address).Msg("auto-compound disabled")
	return settings, nil
}

// GetAutoCompoundStatus returns the schedule of the connected wallet
// An account that never set one up is reported as not configured, not as an error.
func (s *YieldService) GetAutoCompoundStatus(ctx context.Context, session domain.Session) (*AutoCompoundStatus, error) {
	address, err := sessionAddress(session)
	if err != nil {
		return nil, err
	}

	settings, err := s.Schedules.Get(ctx, address)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &AutoCompoundStatus{Settings: domain.AutoCompoundSettings{Address: address}}, nil
		}
		return nil, fmt.Errorf("failed to get auto-compound settings: %w", err)
	}

	return &AutoCompoundStatus{Configured: true, Settings: *settings}, nil
}

func sessionAddress(session domain.Session) (string, error) {
	if !session.IsConnected() {
		return "", domain.ErrWalletNotConnected
	}
	return domain.NormalizeAddress(session.Address)
}
