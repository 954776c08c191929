package split

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/seflow-backend/internal/domain"
	"github.com/simaogato/seflow-backend/internal/observability"
	"github.com/simaogato/seflow-backend/internal/usecase/allocator"
)

// DefaultCooldown is the wait between two successful splits of one address
const DefaultCooldown = 10 * time.Second

// SplitInput represents the input for previewing or submitting a split
type SplitInput struct {
	TotalAmount decimal.Decimal
	Allocation  domain.Allocation
	LockVault   bool
}

// PreviewResult is what the split would do if submitted now
type PreviewResult struct {
	Allocation  domain.Allocation
	Amounts     domain.SplitAmounts // rounded to 2 decimal places
	Reward      decimal.Decimal
	LockDays    int
	Remaining   int
	Submittable bool
	Reason      string // empty when submittable
}

// SplitService handles salary split preview and submission
type SplitService struct {
	Ledger    domain.SplitSubmitter
	Publisher domain.EventPublisher
	Policy    domain.RewardPolicy
	Cooldown  time.Duration
	Logger    zerolog.Logger
	Metrics   *observability.Metrics
	Now       func() time.Time

	mu         sync.Mutex
	lastSubmit map[string]time.Time
	inFlight   map[string]bool
}

// NewSplitService creates a new SplitService instance
// publisher and metrics may be nil.
func NewSplitService(
	ledger domain.SplitSubmitter,
	publisher domain.EventPublisher,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *SplitService {
	return &SplitService{
		Ledger:     ledger,
		Publisher:  publisher,
		Policy:     domain.DefaultRewardPolicy(),
		Cooldown:   DefaultCooldown,
		Logger:     logger,
		Metrics:    metrics,
		Now:        time.Now,
		lastSubmit: make(map[string]time.Time),
		inFlight:   make(map[string]bool),
	}
}

// Preview computes the per-bucket amounts and reward without submitting anything
func (s *SplitService) Preview(input SplitInput) PreviewResult {
	alloc := input.Allocation
	result := PreviewResult{
		Allocation: alloc,
		Amounts: domain.SplitAmounts{
			Savings:  allocator.MonetaryAmount(input.TotalAmount, alloc.Savings),
			DeFi:     allocator.MonetaryAmount(input.TotalAmount, alloc.DeFi),
			Spending: allocator.MonetaryAmount(input.TotalAmount, alloc.Spending),
		},
		Reward:    s.Policy.Reward(input.TotalAmount, input.LockVault).Round(4),
		LockDays:  s.lockDays(input.LockVault),
		Remaining: alloc.Remaining(),
	}

	result.Reason = previewReason(input)
	result.Submittable = result.Reason == ""
	return result
}

func previewReason(input SplitInput) string {
	alloc := input.Allocation
	for _, f := range domain.Fields {
		if v := alloc.Get(f); v < domain.MinPercent || v > domain.MaxPercent {
			return fmt.Sprintf("%s must be between %d%% and %d%%", f, domain.MinPercent, domain.MaxPercent)
		}
	}

	switch remaining := alloc.Remaining(); {
	case alloc.Total() == 0:
		return "Set your allocation percentages to begin"
	case remaining > 0:
		return fmt.Sprintf("Allocate %d%% more to reach 100%%", remaining)
	case remaining < 0:
		return fmt.Sprintf("You're over by %d%%. Reduce your allocations to total 100%%", -remaining)
	}

	if err := domain.ValidateAmount(input.TotalAmount); err != nil {
		return err.Error()
	}
	return ""
}

func (s *SplitService) lockDays(lockVault bool) int {
	if !lockVault {
		return 0
	}
	return s.Policy.LockDays
}

// SubmitSplit validates the split and hands it to the ledger
// Logic:
//  1. Require a connected wallet session
//  2. Reject while the address is cooling down from its last successful split
//  3. Build and validate the SplitRequest (sum == 100, amount > 0)
//  4. Compute amounts, FROTH reward and lock window
//  5. Submit to the ledger (atomic debit/credit + record)
//  6. Publish the split submitted event (failures are logged only)
func (s *SplitService) SubmitSplit(ctx context.Context, session domain.Session, input SplitInput) (*domain.SplitTransaction, error) {
	// 1. Session
	if !session.IsConnected() {
		s.Metrics.SplitRejected("not_connected")
		return nil, domain.ErrWalletNotConnected
	}
	address, err := domain.NormalizeAddress(session.Address)
	if err != nil {
		s.Metrics.SplitRejected("invalid_address")
		return nil, err
	}

	// 2. Cooldown
	now := s.Now()
	if err := s.acquire(address, now); err != nil {
		s.Metrics.SplitRejected("cooldown")
		return nil, err
	}
	submitted := false
	defer func() { s.release(address, submitted) }()

	// 3. Request
	req, err := domain.NewSplitRequest(input.TotalAmount, input.Allocation, input.LockVault)
	if err != nil {
		s.Metrics.SplitRejected("invalid_request")
		return nil, err
	}

	// 4. Amounts and reward
	tx := &domain.SplitTransaction{
		ID:        uuid.New(),
		Address:   address,
		Request:   req,
		Amounts:   allocator.SplitAmounts(req.TotalAmount, req.Allocation),
		Reward:    s.Policy.Reward(req.TotalAmount, req.LockVault),
		Status:    domain.TransactionStatusSuccess,
		CreatedAt: now.UTC(),
	}
	if window := s.Policy.LockWindow(req.LockVault); window > 0 {
		until := tx.CreatedAt.Add(window)
		tx.LockedUntil = &until
	}
	if err := tx.Validate(); err != nil {
		s.Metrics.SplitRejected("invalid_request")
		return nil, err
	}

	// 5. Ledger
	if err := s.Ledger.Submit(ctx, tx); err != nil {
		reason := "submit_failed"
		if errors.Is(err, domain.ErrInsufficientBalance) {
			reason = "insufficient_balance"
		}
		s.Metrics.SplitRejected(reason)
		return nil, fmt.Errorf("failed to submit split: %w", err)
	}
	submitted = true

	// 6. Event
	if s.Publisher != nil {
		if err := s.Publisher.PublishSplitSubmitted(ctx, tx); err != nil {
			s.Logger.Warn().Err(err).Str("tx_id", tx.ID.String()).Msg("failed to publish split event")
		}
	}

	s.Metrics.SplitSubmitted(req.LockVault, req.TotalAmount, tx.Reward)
	s.Logger.Info().
		Str("tx_id", tx.ID.String()).
		Str("address", address).
		Str("total", req.TotalAmount.String()).
		Int("savings", req.Allocation.Savings).
		Int("defi", req.Allocation.DeFi).
		Int("spending", req.Allocation.Spending).
		Bool("locked", req.LockVault).
		Msg("split submitted")

	return tx, nil
}

// acquire reserves the address for one submission
// A second submission for the same address while one is in flight is treated as a cooldown.
func (s *SplitService) acquire(address string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[address] {
		return fmt.Errorf("%w: a split for %s is already being submitted", domain.ErrCooldown, address)
	}
	if last, ok := s.lastSubmit[address]; ok {
		if wait := s.Cooldown - now.Sub(last); wait > 0 {
			return fmt.Errorf("%w: retry in %s", domain.ErrCooldown, wait.Round(time.Second))
		}
	}

	s.inFlight[address] = true
	return nil
}

// release ends the reservation; only a successful submission starts the cooldown
func (s *SplitService) release(address string, submitted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, address)
	if submitted {
		s.lastSubmit[address] = s.Now()
	}
}
