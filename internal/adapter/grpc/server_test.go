package grpc

import (
	"context"
	"net"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	seflowv1 "github.com/simaogato/seflow-backend/internal/adapter/grpc/seflow/v1"
	"github.com/simaogato/seflow-backend/internal/domain"
	"github.com/simaogato/seflow-backend/internal/observability"
	"github.com/simaogato/seflow-backend/internal/usecase/dashboard"
	"github.com/simaogato/seflow-backend/internal/usecase/split"
	"github.com/simaogato/seflow-backend/internal/usecase/yield"
)

const (
	testToken   = "test-token"
	testAddress = "0x179b6b1cb6755e31"
)

// memStore is an in-memory BalanceRepository, SplitLedger, CompoundLedger and StatsRepository
type memStore struct {
	mu        sync.Mutex
	accounts  map[string]*domain.AccountBalances
	splits    []*domain.SplitTransaction
	compounds []*domain.CompoundTransaction
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[string]*domain.AccountBalances)}
}

func (m *memStore) Get(_ context.Context, address string) (*domain.AccountBalances, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.accounts[address]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *memStore) Create(_ context.Context, b *domain.AccountBalances) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *b
	m.accounts[b.Address] = &copied
	return nil
}

func (m *memStore) Submit(_ context.Context, tx *domain.SplitTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.accounts[tx.Address]
	if !ok {
		return domain.ErrNotFound
	}
	if b.Flow.LessThan(tx.Request.TotalAmount) {
		return domain.ErrInsufficientBalance
	}
	b.Flow = b.Flow.Sub(tx.Withdrawn())
	b.Savings = b.Savings.Add(tx.Amounts.Savings)
	b.LP = b.LP.Add(tx.Amounts.DeFi)
	b.Froth = b.Froth.Add(tx.Reward)
	m.splits = append(m.splits, tx)
	return nil
}

func (m *memStore) newestFirst(address string) []*domain.SplitTransaction {
	out := make([]*domain.SplitTransaction, 0)
	for _, s := range m.splits {
		if s.Address == address {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memStore) List(_ context.Context, address string, limit, offset int) ([]*domain.SplitTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.newestFirst(address)
	if offset >= len(all) {
		return []*domain.SplitTransaction{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memStore) Count(_ context.Context, address string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.newestFirst(address)), nil
}

func (m *memStore) LatestLocked(_ context.Context, address string) (*domain.SplitTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.newestFirst(address) {
		if s.LockedUntil != nil {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) Compound(_ context.Context, tx *domain.CompoundTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.accounts[tx.Address]
	if !ok {
		return domain.ErrNotFound
	}
	if !b.LastCompoundAt.Equal(tx.Since) {
		return domain.ErrStalePosition
	}
	b.LP = b.LP.Add(tx.Yield)
	b.YieldEarned = b.YieldEarned.Add(tx.Yield)
	b.LastCompoundAt = tx.CreatedAt
	m.compounds = append(m.compounds, tx)
	return nil
}

func (m *memStore) ListCompounds(_ context.Context, address string, limit, offset int) ([]*domain.CompoundTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.CompoundTransaction, 0)
	for i := len(m.compounds) - 1; i >= 0; i-- {
		if m.compounds[i].Address == address {
			out = append(out, m.compounds[i])
		}
	}
	if offset >= len(out) {
		return []*domain.CompoundTransaction{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *memStore) Stats(_ context.Context) (*domain.ContractStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make(map[string]struct{})
	stats := &domain.ContractStats{TotalVolumeProcessed: decimal.Zero}
	for _, s := range m.splits {
		users[s.Address] = struct{}{}
		stats.TotalSplits++
		stats.TotalVolumeProcessed = stats.TotalVolumeProcessed.Add(s.Request.TotalAmount)
	}
	stats.TotalUsers = len(users)
	return stats, nil
}

// memSchedules is an in-memory AutoCompoundRepository
type memSchedules struct {
	mu       sync.Mutex
	settings map[string]domain.AutoCompoundSettings
}

func (m *memSchedules) Get(_ context.Context, address string) (*domain.AutoCompoundSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[address]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *memSchedules) Save(_ context.Context, s *domain.AutoCompoundSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.Address] = *s
	return nil
}

func (m *memSchedules) ListDue(context.Context, time.Time, int) ([]*domain.AutoCompoundSettings, error) {
	return nil, nil
}

func (m *memSchedules) MarkRun(context.Context, string, time.Time, time.Time) error {
	return nil
}

func startTestServer(t *testing.T) (seflowv1.SeflowServiceClient, *grpclib.ClientConn, *memStore) {
	t.Helper()

	store := newMemStore()
	require.NoError(t, store.Create(context.Background(), &domain.AccountBalances{
		Address:        testAddress,
		Flow:           decimal.NewFromInt(100),
		Savings:        decimal.NewFromInt(250),
		LP:             decimal.NewFromInt(150),
		Froth:          decimal.RequireFromString("5.5"),
		LastCompoundAt: time.Now().Add(-3*domain.Week - time.Hour), // three full weeks of yield
	}))

	metrics := observability.NewMetrics()
	splitService := split.NewSplitService(store, nil, metrics, zerolog.Nop())
	dashboardService := dashboard.NewDashboardService(store, store, nil, metrics, zerolog.Nop())
	dashboardService.Compounds = store
	dashboardService.Stats = store
	schedules := &memSchedules{settings: make(map[string]domain.AutoCompoundSettings)}
	yieldService := yield.NewYieldService(store, store, schedules, metrics, zerolog.Nop())

	server := NewServer(splitService, dashboardService, yieldService)
	grpcServer, healthServer := NewGRPCServer(server, testToken, zerolog.Nop(), metrics)
	healthServer.SetServingStatus(seflowv1.ServiceName, healthpb.HealthCheckResponse_SERVING)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return seflowv1.NewSeflowServiceClient(conn), conn, store
}

func authed(address string) context.Context {
	pairs := []string{"authorization", testToken}
	if address != "" {
		pairs = append(pairs, AddressHeader, address)
	}
	return metadata.NewOutgoingContext(context.Background(), metadata.Pairs(pairs...))
}

func TestServer_Rebalance(t *testing.T) {
	client, _, _ := startTestServer(t)

	resp, err := client.Rebalance(authed(""), &seflowv1.RebalanceRequest{
		Current: seflowv1.Allocation{Savings: 40, Defi: 30, Spending: 30},
		Field:   "savings",
		Value:   70,
	})

	require.NoError(t, err)
	assert.Equal(t, seflowv1.Allocation{Savings: 70, Defi: 15, Spending: 15}, resp.Allocation)
	assert.Equal(t, 0, resp.Remaining)
	assert.True(t, resp.Complete)
}

func TestServer_Rebalance_UnknownField(t *testing.T) {
	client, _, _ := startTestServer(t)

	_, err := client.Rebalance(authed(""), &seflowv1.RebalanceRequest{Field: "bonds", Value: 10})

	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_RequiresToken(t *testing.T) {
	client, _, _ := startTestServer(t)

	_, err := client.Rebalance(context.Background(), &seflowv1.RebalanceRequest{Field: "savings"})

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestServer_PreviewSplit(t *testing.T) {
	client, _, _ := startTestServer(t)

	resp, err := client.PreviewSplit(authed(""), &seflowv1.PreviewSplitRequest{
		TotalAmount: "80",
		Allocation:  seflowv1.Allocation{Savings: 40, Defi: 30, Spending: 20},
	})

	require.NoError(t, err)
	assert.False(t, resp.Submittable)
	assert.Contains(t, resp.Reason, "Allocate 10% more")
	assert.Equal(t, "32.00", resp.SavingsAmount)

	_, err = client.PreviewSplit(authed(""), &seflowv1.PreviewSplitRequest{TotalAmount: "eighty"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_SubmitSplitAndDashboard(t *testing.T) {
	client, _, _ := startTestServer(t)

	submit, err := client.SubmitSplit(authed(testAddress), &seflowv1.SubmitSplitRequest{
		TotalAmount: "80",
		Allocation:  seflowv1.Allocation{Savings: 50, Defi: 30, Spending: 20},
		LockVault:   true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, submit.TransactionId)
	assert.Equal(t, "40", submit.SavingsAmount)
	assert.Equal(t, "1.2", submit.Reward)
	require.NotNil(t, submit.LockedUntil)

	dash, err := client.GetDashboard(authed(testAddress), &seflowv1.GetDashboardRequest{})
	require.NoError(t, err)
	assert.Equal(t, testAddress, dash.Address)
	assert.Equal(t, "36", dash.Balances.Flow)
	assert.Equal(t, "290", dash.Balances.Savings)
	assert.Equal(t, "174", dash.Balances.Lp)
	assert.Equal(t, "6.7", dash.Balances.Froth)
	assert.Equal(t, "500", dash.Balances.TotalValue)
	assert.True(t, dash.Lock.IsLocked)
	assert.Equal(t, 30, dash.Lock.RemainingDays)
	require.Len(t, dash.Recent, 1)
	assert.Equal(t, "salary_split", dash.Recent[0].Type)

	list, err := client.ListTransactions(authed(testAddress), &seflowv1.ListTransactionsRequest{Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, dashboard.SourceLedger, list.Source)
	assert.Len(t, list.Transactions, 1)

	// Second submission inside the cooldown window
	_, err = client.SubmitSplit(authed(testAddress), &seflowv1.SubmitSplitRequest{
		TotalAmount: "10",
		Allocation:  seflowv1.Allocation{Savings: 50, Defi: 30, Spending: 20},
	})
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestServer_SubmitSplit_ErrorCodes(t *testing.T) {
	tests := []struct {
		name    string
		address string
		req     *seflowv1.SubmitSplitRequest
		code    codes.Code
	}{
		{
			name:    "no wallet",
			address: "",
			req:     &seflowv1.SubmitSplitRequest{TotalAmount: "10", Allocation: seflowv1.Allocation{Savings: 100}},
			code:    codes.Unauthenticated,
		},
		{
			name:    "incomplete allocation",
			address: testAddress,
			req:     &seflowv1.SubmitSplitRequest{TotalAmount: "10", Allocation: seflowv1.Allocation{Savings: 90}},
			code:    codes.InvalidArgument,
		},
		{
			name:    "insufficient balance",
			address: testAddress,
			req:     &seflowv1.SubmitSplitRequest{TotalAmount: "1000", Allocation: seflowv1.Allocation{Savings: 100}},
			code:    codes.FailedPrecondition,
		},
		{
			name:    "unknown account",
			address: "0x01",
			req:     &seflowv1.SubmitSplitRequest{TotalAmount: "10", Allocation: seflowv1.Allocation{Savings: 100}},
			code:    codes.NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _, _ := startTestServer(t)

			_, err := client.SubmitSplit(authed(tt.address), tt.req)

			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestServer_ListTransactions_InvalidPage(t *testing.T) {
	client, _, _ := startTestServer(t)

	_, err := client.ListTransactions(authed(testAddress), &seflowv1.ListTransactionsRequest{Limit: 0})

	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_HealthSkipsAuth(t *testing.T) {
	_, conn, _ := startTestServer(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{
		Service: seflowv1.ServiceName,
	})

	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{domain.ErrUnknownField, codes.InvalidArgument},
		{domain.ErrIncompleteAllocation, codes.InvalidArgument},
		{domain.ErrInvalidAmount, codes.InvalidArgument},
		{domain.ErrWalletNotConnected, codes.Unauthenticated},
		{domain.ErrCooldown, codes.ResourceExhausted},
		{domain.ErrInsufficientBalance, codes.FailedPrecondition},
		{domain.ErrNoYieldAvailable, codes.FailedPrecondition},
		{domain.ErrStalePosition, codes.Aborted},
		{domain.ErrInvalidInterval, codes.InvalidArgument},
		{domain.ErrNotFound, codes.NotFound},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{status.Error(codes.Aborted, "kept"), codes.Aborted},
		{assert.AnError, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(mapError(tt.err)))
		})
	}
	assert.NoError(t, mapError(nil))
}

func TestServer_CompoundYield(t *testing.T) {
	client, _, _ := startTestServer(t)
	ctx := authed(testAddress)

	pos, err := client.GetLPPosition(ctx, &seflowv1.GetLPPositionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "150", pos.Position.Balance)
	assert.Equal(t, "0.45", pos.Position.AvailableYield)
	assert.Equal(t, 3, pos.Position.WeeksSinceLastCompound)
	assert.True(t, pos.Position.CanClaimYield)

	resp, err := client.CompoundYield(ctx, &seflowv1.CompoundYieldRequest{})
	require.NoError(t, err)
	assert.Equal(t, "0.45", resp.Yield)
	assert.Equal(t, "150.45", resp.LpBalance)
	assert.NotEmpty(t, resp.TransactionId)

	// The accrual period restarts, so there is nothing left to compound
	_, err = client.CompoundYield(ctx, &seflowv1.CompoundYieldRequest{})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	dash, err := client.GetDashboard(ctx, &seflowv1.GetDashboardRequest{})
	require.NoError(t, err)
	assert.Equal(t, "150.45", dash.Balances.Lp)
	assert.Equal(t, "0.45", dash.Lp.TotalYieldEarned)
	assert.False(t, dash.Lp.CanClaimYield)
	require.Len(t, dash.Recent, 1)
	assert.Equal(t, string(domain.TransactionTypeCompound), dash.Recent[0].Type)
	assert.Equal(t, "LP Yield Compound (0.45 FLOW)", dash.Recent[0].Details)
}

func TestServer_CompoundYield_RequiresWallet(t *testing.T) {
	client, _, _ := startTestServer(t)

	_, err := client.CompoundYield(authed(""), &seflowv1.CompoundYieldRequest{})

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestServer_AutoCompound(t *testing.T) {
	client, _, _ := startTestServer(t)
	ctx := authed(testAddress)

	st, err := client.GetAutoCompoundStatus(ctx, &seflowv1.GetAutoCompoundStatusRequest{})
	require.NoError(t, err)
	assert.False(t, st.Configured)

	_, err = client.EnableAutoCompound(ctx, &seflowv1.EnableAutoCompoundRequest{IntervalDays: 0})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	st, err = client.EnableAutoCompound(ctx, &seflowv1.EnableAutoCompoundRequest{IntervalDays: 7})
	require.NoError(t, err)
	assert.True(t, st.Configured)
	assert.True(t, st.Enabled)
	assert.Equal(t, 7, st.IntervalDays)
	require.NotNil(t, st.NextRunAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *st.NextRunAt, time.Minute)

	st, err = client.DisableAutoCompound(ctx, &seflowv1.DisableAutoCompoundRequest{})
	require.NoError(t, err)
	assert.False(t, st.Enabled)
	assert.Nil(t, st.NextRunAt)

	st, err = client.GetAutoCompoundStatus(ctx, &seflowv1.GetAutoCompoundStatusRequest{})
	require.NoError(t, err)
	assert.True(t, st.Configured)
	assert.False(t, st.Enabled)
	assert.Equal(t, 7, st.IntervalDays)
}

func TestServer_DisableAutoCompound_NotConfigured(t *testing.T) {
	client, _, _ := startTestServer(t)

	_, err := client.DisableAutoCompound(authed(testAddress), &seflowv1.DisableAutoCompoundRequest{})

	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_GetContractStats(t *testing.T) {
	client, _, _ := startTestServer(t)
	ctx := authed(testAddress)

	_, err := client.SubmitSplit(ctx, &seflowv1.SubmitSplitRequest{
		TotalAmount: "40",
		Allocation:  seflowv1.Allocation{Savings: 50, Defi: 30, Spending: 20},
	})
	require.NoError(t, err)

	stats, err := client.GetContractStats(ctx, &seflowv1.GetContractStatsRequest{})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalSplits)
	assert.Equal(t, "40", stats.TotalVolumeProcessed)
}
