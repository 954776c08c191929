package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/seflow-backend/internal/domain"
	"github.com/simaogato/seflow-backend/internal/observability"
)

// RecentLimit is the number of history records shown on the dashboard
const RecentLimit = 10

const (
	SourceIndexer = "indexer"
	SourceLedger  = "ledger"
)

// Dashboard is the wallet overview
type Dashboard struct {
	Balances   domain.AccountBalances
	TotalValue decimal.Decimal
	Lock       domain.SavingsLock
	LP         domain.LPPosition
	Recent     []domain.TransactionRecord
}

// TransactionPage is one page of history
type TransactionPage struct {
	Records []domain.TransactionRecord
	Source  string
}

// DashboardService handles dashboard-related operations
type DashboardService struct {
	BalanceRepo domain.BalanceRepository
	Ledger      domain.SplitLedger
	History     domain.HistorySource   // optional
	Compounds   domain.CompoundLedger  // optional, merged into ledger history
	Stats       domain.StatsRepository // optional
	Yield       domain.YieldPolicy
	Logger      zerolog.Logger
	Metrics     *observability.Metrics
	Now         func() time.Time
}

// NewDashboardService creates a new DashboardService instance
// history may be nil, in which case the local ledger serves all history.
func NewDashboardService(
	balanceRepo domain.BalanceRepository,
	ledger domain.SplitLedger,
	history domain.HistorySource,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		BalanceRepo: balanceRepo,
		Ledger:      ledger,
		History:     history,
		Yield:       domain.DefaultYieldPolicy(),
		Logger:      logger,
		Metrics:     metrics,
		Now:         time.Now,
	}
}

// GetDashboard builds the wallet overview
// Logic:
//   - Balances: FLOW, savings, LP, FROTH; total value is FLOW + savings + LP
//   - Lock: taken from the latest split that locked the savings vault
//   - LP: the liquidity pool balance with the yield accrued since the last compound
//   - Recent: the first RecentLimit history records
func (s *DashboardService) GetDashboard(ctx context.Context, session domain.Session) (*Dashboard, error) {
	address, err := sessionAddress(session)
	if err != nil {
		return nil, err
	}

	// 1. Balances
	balances, err := s.BalanceRepo.Get(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}

	// 2. Savings lock
	lock := domain.SavingsLock{}
	locked, err := s.Ledger.LatestLocked(ctx, address)
	switch {
	case err == nil:
		lock = domain.NewSavingsLock(locked.LockedUntil, s.Now())
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to get savings lock: %w", err)
	}

	// 3. Recent history
	page, err := s.ListTransactions(ctx, session, RecentLimit, 0)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Balances:   *balances,
		TotalValue: balances.TotalValue(),
		Lock:       lock,
		LP:         s.Yield.Position(balances, s.Now()),
		Recent:     page.Records,
	}, nil
}

// ListTransactions returns a page of history, newest first
// The indexer is asked first when configured; the local ledger serves the
// page when the indexer fails or has nothing for the account.
func (s *DashboardService) ListTransactions(ctx context.Context, session domain.Session, limit, offset int) (*TransactionPage, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidPage)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidPage)
	}

	address, err := sessionAddress(session)
	if err != nil {
		return nil, err
	}

	if s.History != nil {
		records, err := s.History.ListTransactions(ctx, address, offset+limit)
		switch {
		case err != nil:
			s.Logger.Warn().Err(err).Str("address", address).Msg("history source failed, using ledger")
		case len(records) > 0:
			return &TransactionPage{Records: paginate(records, limit, offset), Source: SourceIndexer}, nil
		}
		s.Metrics.HistoryFallback(SourceLedger)
	}

	if s.Compounds == nil {
		splits, err := s.Ledger.List(ctx, address, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list transactions: %w", err)
		}
		return &TransactionPage{Records: splitRecords(splits), Source: SourceLedger}, nil
	}

	// Both ledgers are newest first, so the merged page lies within their first offset+limit entries
	splits, err := s.Ledger.List(ctx, address, offset+limit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	compounds, err := s.Compounds.ListCompounds(ctx, address, offset+limit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list compounds: %w", err)
	}

	records := splitRecords(splits)
	for _, c := range compounds {
		records = append(records, c.Record())
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return &TransactionPage{Records: paginate(records, limit, offset), Source: SourceLedger}, nil
}

// GetContractStats returns totals over every executed split
func (s *DashboardService) GetContractStats(ctx context.Context) (*domain.ContractStats, error) {
	if s.Stats == nil {
		return nil, errors.New("contract stats are not configured")
	}

	stats, err := s.Stats.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract stats: %w", err)
	}
	return stats, nil
}

func splitRecords(splits []*domain.SplitTransaction) []domain.TransactionRecord {
	records := make([]domain.TransactionRecord, 0, len(splits))
	for _, split := range splits {
		records = append(records, split.Record())
	}
	return records
}

func sessionAddress(session domain.Session) (string, error) {
	if !session.IsConnected() {
		return "", domain.ErrWalletNotConnected
	}
	return domain.NormalizeAddress(session.Address)
}

func paginate(records []domain.TransactionRecord, limit, offset int) []domain.TransactionRecord {
	if offset >= len(records) {
		return []domain.TransactionRecord{}
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end]
}
