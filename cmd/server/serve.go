package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/simaogato/seflow-backend/internal/adapter/events"
	grpcadapter "github.com/simaogato/seflow-backend/internal/adapter/grpc"
	seflowv1 "github.com/simaogato/seflow-backend/internal/adapter/grpc/seflow/v1"
	"github.com/simaogato/seflow-backend/internal/adapter/indexer"
	"github.com/simaogato/seflow-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/seflow-backend/internal/config"
	"github.com/simaogato/seflow-backend/internal/domain"
	"github.com/simaogato/seflow-backend/internal/observability"
	"github.com/simaogato/seflow-backend/internal/usecase/dashboard"
	"github.com/simaogato/seflow-backend/internal/usecase/seeder"
	"github.com/simaogato/seflow-backend/internal/usecase/split"
	"github.com/simaogato/seflow-backend/internal/usecase/task_generator"
	"github.com/simaogato/seflow-backend/internal/usecase/yield"
)

const (
	dbConnectAttempts = 5
	dbRetryDelay      = 2 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gRPC API and the metrics/health endpoints",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	logger := observability.NewLogger("server", cfg.Log.Level)
	metrics := observability.NewMetrics()
	healthChecker := observability.NewHealthChecker()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 1. Operational HTTP endpoints (not ready until the database is up)
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           observability.NewHTTPMux(healthChecker, metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server failed")
		}
	}()

	// 2. Database
	db, err := connectDB(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	balanceRepo := postgres.NewBalanceRepository(db)
	ledger := postgres.NewLedgerRepository(db)
	compounds := postgres.NewCompoundRepository(db)
	schedules := postgres.NewAutoCompoundRepository(db)

	if err := seeder.NewAccountSeeder(balanceRepo).Seed(ctx, cfg.Database.SeedAccounts); err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}
	logger.Info().Int("accounts", len(cfg.Database.SeedAccounts)).Msg("accounts seeded")

	// 3. Event publishing
	var publisher domain.EventPublisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		natsPublisher, closeNATS, err := events.Connect(ctx, cfg.NATS.URL, observability.NewLogger("events", cfg.Log.Level))
		if err != nil {
			return err
		}
		defer closeNATS()
		publisher = natsPublisher
	} else {
		logger.Info().Msg("nats url not set, split events disabled")
	}

	// 4. History source
	var history domain.HistorySource
	if cfg.Indexer.Enabled {
		history = indexer.NewClient(indexer.Config{
			FindLabsBase:  cfg.Indexer.FindLabsBase,
			FindLabsUser:  cfg.Indexer.FindLabsUser,
			FindLabsPass:  cfg.Indexer.FindLabsPass,
			AccessNodeURL: cfg.Indexer.AccessNodeURL,
			Timeout:       cfg.Indexer.Timeout.Duration,
		}, observability.NewLogger("indexer", cfg.Log.Level), metrics)
	}

	// 5. Services (Use Cases)
	splitService := split.NewSplitService(ledger, publisher, metrics, observability.NewLogger("split", cfg.Log.Level))
	splitService.Cooldown = cfg.Split.Cooldown.Duration
	dashboardService := dashboard.NewDashboardService(balanceRepo, ledger, history, metrics, observability.NewLogger("dashboard", cfg.Log.Level))
	dashboardService.Compounds = compounds
	dashboardService.Stats = postgres.NewStatsRepository(db)
	dashboardService.Yield = domain.YieldPolicy{WeeklyRate: cfg.Yield.WeeklyRate}
	yieldService := yield.NewYieldService(balanceRepo, compounds, schedules, metrics, observability.NewLogger("yield", cfg.Log.Level))
	yieldService.Policy = dashboardService.Yield

	// 6. Auto-compound scheduler
	if cfg.Yield.SchedulerEnabled {
		scheduler := task_generator.NewScheduler(schedules, yieldService, metrics, observability.NewLogger("scheduler", cfg.Log.Level))
		scheduler.BatchSize = cfg.Yield.SchedulerBatch
		go scheduler.Run(ctx, cfg.Yield.SchedulerInterval.Duration)
	}

	// 7. gRPC server
	grpcServer, healthServer := grpcadapter.NewGRPCServer(
		grpcadapter.NewServer(splitService, dashboardService, yieldService),
		cfg.Server.APIToken,
		observability.NewLogger("grpc", cfg.Log.Level),
		metrics,
	)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.GRPCAddr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.GRPCAddr).Msg("grpc server listening")
		serveErr <- grpcServer.Serve(lis)
	}()

	healthServer.SetServingStatus(seflowv1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthChecker.SetReady(true)

	// 8. Graceful shutdown
	runErr := awaitShutdown(ctx, serveErr, logger)

	healthChecker.SetReady(false)
	healthServer.Shutdown()
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http server shutdown failed")
	}

	logger.Info().Msg("server stopped")
	return runErr
}

// awaitShutdown blocks until ctx is cancelled or the gRPC server stops on its own
// A server failure is returned so the process exits non-zero.
func awaitShutdown(ctx context.Context, serveErr <-chan error, logger zerolog.Logger) error {
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down gracefully")
		return nil
	case err := <-serveErr:
		if err == nil {
			return nil
		}
		logger.Error().Err(err).Msg("grpc server stopped unexpectedly")
		return fmt.Errorf("grpc server stopped unexpectedly: %w", err)
	}
}

// connectDB retries while Postgres is still starting up
func connectDB(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*postgres.DB, error) {
	pool := postgres.PoolConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime.Duration,
	}

	var lastErr error
	for attempt := 1; attempt <= dbConnectAttempts; attempt++ {
		db, err := postgres.NewDB(ctx, cfg.DSN(), pool)
		if err == nil {
			return db, nil
		}
		lastErr = err
		logger.Warn().Err(err).Int("attempt", attempt).Msg("database not ready")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dbRetryDelay):
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", dbConnectAttempts, lastErr)
}
