package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	seflowv1 "github.com/simaogato/seflow-backend/internal/adapter/grpc/seflow/v1"
	"github.com/simaogato/seflow-backend/internal/domain"
	"github.com/simaogato/seflow-backend/internal/usecase/allocator"
	"github.com/simaogato/seflow-backend/internal/usecase/dashboard"
	"github.com/simaogato/seflow-backend/internal/usecase/split"
	"github.com/simaogato/seflow-backend/internal/usecase/yield"
)

// Server implements the SeflowService gRPC server
type Server struct {
	seflowv1.UnimplementedSeflowServiceServer

	SplitService     *split.SplitService
	DashboardService *dashboard.DashboardService
	YieldService     *yield.YieldService
}

// NewServer creates a new gRPC server instance
func NewServer(
	splitService *split.SplitService,
	dashboardService *dashboard.DashboardService,
	yieldService *yield.YieldService,
) *Server {
	return &Server{
		SplitService:     splitService,
		DashboardService: dashboardService,
		YieldService:     yieldService,
	}
}

// Rebalance handles the Rebalance RPC
func (s *Server) Rebalance(ctx context.Context, req *seflowv1.RebalanceRequest) (*seflowv1.RebalanceResponse, error) {
	field, err := domain.ParseField(req.Field)
	if err != nil {
		return nil, mapError(err)
	}

	next := allocator.Rebalance(allocationFromProto(req.Current), field, req.Value)

	return &seflowv1.RebalanceResponse{
		Allocation: allocationToProto(next),
		Remaining:  next.Remaining(),
		Complete:   next.IsComplete(),
	}, nil
}

// PreviewSplit handles the PreviewSplit RPC
func (s *Server) PreviewSplit(ctx context.Context, req *seflowv1.PreviewSplitRequest) (*seflowv1.PreviewSplitResponse, error) {
	input, err := splitInputFromProto(req)
	if err != nil {
		return nil, err
	}

	preview := s.SplitService.Preview(input)

	return &seflowv1.PreviewSplitResponse{
		Allocation:     allocationToProto(preview.Allocation),
		SavingsAmount:  preview.Amounts.Savings.StringFixed(2),
		DefiAmount:     preview.Amounts.DeFi.StringFixed(2),
		SpendingAmount: preview.Amounts.Spending.StringFixed(2),
		Reward:         preview.Reward.String(),
		LockDays:       preview.LockDays,
		Remaining:      preview.Remaining,
		Submittable:    preview.Submittable,
		Reason:         preview.Reason,
	}, nil
}

// SubmitSplit handles the SubmitSplit RPC
func (s *Server) SubmitSplit(ctx context.Context, req *seflowv1.SubmitSplitRequest) (*seflowv1.SubmitSplitResponse, error) {
	input, err := splitInputFromProto(req)
	if err != nil {
		return nil, err
	}

	tx, err := s.SplitService.SubmitSplit(ctx, SessionFromContext(ctx), input)
	if err != nil {
		return nil, mapError(err)
	}

	return &seflowv1.SubmitSplitResponse{
		TransactionId:  tx.ID.String(),
		SavingsAmount:  tx.Amounts.Savings.String(),
		DefiAmount:     tx.Amounts.DeFi.String(),
		SpendingAmount: tx.Amounts.Spending.String(),
		Reward:         tx.Reward.String(),
		LockedUntil:    tx.LockedUntil,
		CreatedAt:      tx.CreatedAt,
	}, nil
}

// GetDashboard handles the GetDashboard RPC
func (s *Server) GetDashboard(ctx context.Context, req *seflowv1.GetDashboardRequest) (*seflowv1.GetDashboardResponse, error) {
	result, err := s.DashboardService.GetDashboard(ctx, SessionFromContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}

	resp := &seflowv1.GetDashboardResponse{
		Address: result.Balances.Address,
		Balances: seflowv1.Balances{
			Flow:       result.Balances.Flow.String(),
			Savings:    result.Balances.Savings.String(),
			Lp:         result.Balances.LP.String(),
			Froth:      result.Balances.Froth.String(),
			TotalValue: result.TotalValue.String(),
		},
		Lock: seflowv1.SavingsLock{
			IsLocked:      result.Lock.IsLocked,
			RemainingDays: result.Lock.RemainingDays,
		},
		Lp:     lpPositionToProto(result.LP),
		Recent: recordsToProto(result.Recent),
	}
	if result.Lock.IsLocked {
		unlock := result.Lock.UnlockTime
		resp.Lock.UnlockTime = &unlock
	}

	return resp, nil
}

// ListTransactions handles the ListTransactions RPC
func (s *Server) ListTransactions(ctx context.Context, req *seflowv1.ListTransactionsRequest) (*seflowv1.ListTransactionsResponse, error) {
	page, err := s.DashboardService.ListTransactions(ctx, SessionFromContext(ctx), req.Limit, req.Offset)
	if err != nil {
		return nil, mapError(err)
	}

	return &seflowv1.ListTransactionsResponse{
		Transactions: recordsToProto(page.Records),
		Source:       page.Source,
	}, nil
}

// GetContractStats handles the GetContractStats RPC
func (s *Server) GetContractStats(ctx context.Context, req *seflowv1.GetContractStatsRequest) (*seflowv1.GetContractStatsResponse, error) {
	stats, err := s.DashboardService.GetContractStats(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return &seflowv1.GetContractStatsResponse{
		TotalUsers:           stats.TotalUsers,
		TotalSplits:          stats.TotalSplits,
		TotalVolumeProcessed: stats.TotalVolumeProcessed.String(),
	}, nil
}

// GetLPPosition handles the GetLPPosition RPC
func (s *Server) GetLPPosition(ctx context.Context, req *seflowv1.GetLPPositionRequest) (*seflowv1.GetLPPositionResponse, error) {
	pos, err := s.YieldService.GetLPPosition(ctx, SessionFromContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}

	return &seflowv1.GetLPPositionResponse{Position: lpPositionToProto(*pos)}, nil
}

// CompoundYield handles the CompoundYield RPC
func (s *Server) CompoundYield(ctx context.Context, req *seflowv1.CompoundYieldRequest) (*seflowv1.CompoundYieldResponse, error) {
	tx, err := s.YieldService.Compound(ctx, SessionFromContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}

	return &seflowv1.CompoundYieldResponse{
		TransactionId: tx.ID.String(),
		Yield:         tx.Yield.String(),
		LpBalance:     tx.LPBalance.String(),
		CreatedAt:     tx.CreatedAt,
	}, nil
}

// EnableAutoCompound handles the EnableAutoCompound RPC
func (s *Server) EnableAutoCompound(ctx context.Context, req *seflowv1.EnableAutoCompoundRequest) (*seflowv1.AutoCompoundStatus, error) {
	settings, err := s.YieldService.EnableAutoCompound(ctx, SessionFromContext(ctx), req.IntervalDays)
	if err != nil {
		return nil, mapError(err)
	}
	return autoCompoundToProto(true, *settings), nil
}

// DisableAutoCompound handles the DisableAutoCompound RPC
func (s *Server) DisableAutoCompound(ctx context.Context, req *seflowv1.DisableAutoCompoundRequest) (*seflowv1.AutoCompoundStatus, error) {
	settings, err := s.YieldService.DisableAutoCompound(ctx, SessionFromContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return autoCompoundToProto(true, *settings), nil
}

// GetAutoCompoundStatus handles the GetAutoCompoundStatus RPC
func (s *Server) GetAutoCompoundStatus(ctx context.Context, req *seflowv1.GetAutoCompoundStatusRequest) (*seflowv1.AutoCompoundStatus, error) {
	result, err := s.YieldService.GetAutoCompoundStatus(ctx, SessionFromContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return autoCompoundToProto(result.Configured, result.Settings), nil
}

func splitInputFromProto(req *seflowv1.SplitRequest) (split.SplitInput, error) {
	// Parse amount from string to decimal
	amount, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		return split.SplitInput{}, status.Errorf(codes.InvalidArgument, "invalid total_amount format: %v", err)
	}

	return split.SplitInput{
		TotalAmount: amount,
		Allocation:  allocationFromProto(req.Allocation),
		LockVault:   req.LockVault,
	}, nil
}

func allocationFromProto(a seflowv1.Allocation) domain.Allocation {
	return domain.Allocation{Savings: a.Savings, DeFi: a.Defi, Spending: a.Spending}
}

func allocationToProto(a domain.Allocation) seflowv1.Allocation {
	return seflowv1.Allocation{Savings: a.Savings, Defi: a.DeFi, Spending: a.Spending}
}

func lpPositionToProto(p domain.LPPosition) seflowv1.LPPosition {
	return seflowv1.LPPosition{
		Balance:                p.Balance.String(),
		TotalYieldEarned:       p.TotalYieldEarned.String(),
		AvailableYield:         p.AvailableYield.String(),
		LastCompoundTime:       p.LastCompoundTime.UTC().Truncate(time.Millisecond),
		WeeksSinceLastCompound: p.WeeksSinceLastCompound,
		CanClaimYield:          p.CanClaimYield,
	}
}

func autoCompoundToProto(configured bool, s domain.AutoCompoundSettings) *seflowv1.AutoCompoundStatus {
	out := &seflowv1.AutoCompoundStatus{Configured: configured}
	if !configured {
		return out
	}
	out.Enabled = s.Enabled
	out.IntervalDays = s.IntervalDays
	out.LastRunAt = s.LastRunAt
	if s.Enabled {
		next := s.NextRunAt
		out.NextRunAt = &next
	}
	return out
}

func recordsToProto(records []domain.TransactionRecord) []seflowv1.Transaction {
	out := make([]seflowv1.Transaction, 0, len(records))
	for _, r := range records {
		out = append(out, seflowv1.Transaction{
			Id:        r.ID,
			Type:      string(r.Type),
			Amount:    r.Amount.String(),
			Details:   r.Details,
			Status:    string(r.Status),
			Timestamp: r.Timestamp.UTC().Truncate(time.Millisecond),
			TxId:      r.TxID,
		})
	}
	return out
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrPercentOutOfRange),
		errors.Is(err, domain.ErrIncompleteAllocation),
		errors.Is(err, domain.ErrOverAllocation),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrInvalidPage),
		errors.Is(err, domain.ErrInvalidInterval):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrWalletNotConnected):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, domain.ErrCooldown):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrNoYieldAvailable):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrStalePosition):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	}

	// Default to Internal error for unknown errors
	return status.Error(codes.Internal, err.Error())
}
