package task_generator

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

// DefaultBatchSize bounds the tasks generated per scheduler tick
const DefaultBatchSize = 100

// Run results recorded per task
const (
	ResultCompounded = "compounded"
	ResultNoYield    = "no_yield"
	ResultFailed     = "failed"
)

// GenerateCompoundTasks turns every due auto-compound schedule into a CompoundTask
//
// Logic:
//   - Only enabled schedules with NextRunAt <= now are due
//   - Settings that fail validation (interval out of range) are skipped, not fatal
//   - At most limit tasks are generated, oldest NextRunAt first
//
// Returns an error if the schedule lookup fails.
func GenerateCompoundTasks(ctx context.Context, repo domain.AutoCompoundRepository, now time.Time, limit int) ([]domain.CompoundTask, error) {
	due, err := repo.ListDue(ctx, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due schedules: %w", err)
	}

	tasks := make([]domain.CompoundTask, 0, len(due))
	for _, settings := range due {
		if !settings.Enabled || settings.NextRunAt.After(now) {
			continue
		}
		if err := settings.Validate(); err != nil {
			continue
		}

		tasks = append(tasks, domain.CompoundTask{
			ID:           uuid.New(),
			Address:      settings.Address,
			IntervalDays: settings.IntervalDays,
			ScheduledFor: settings.NextRunAt,
		})
	}

	return tasks, nil
}

// Compounder executes one compound for an account
type Compounder interface {
	CompoundAccount(ctx context.Context, address string, automatic bool) (*domain.CompoundTransaction, error)
}

// Scheduler runs due auto-compound tasks
type Scheduler struct {
	Schedules  domain.AutoCompoundRepository
	Compounder Compounder
	BatchSize  int
	Logger     zerolog.Logger
	Metrics    *observability.Metrics
	Now        func() time.Time
}

// NewScheduler creates a new Scheduler instance
func NewScheduler(
	schedules domain.AutoCompoundRepository,
	compounder Compounder,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		Schedules:  schedules,
		Compounder: compounder,
		BatchSize:  DefaultBatchSize,
		Logger:     logger,
		Metrics:    metrics,
		Now:        time.Now,
	}
}

// RunOnce executes every task due now and returns how many compounded
// Logic:
//   - a compound, or having no yield yet, moves the schedule one interval on
//   - any other failure leaves the schedule due, so the next tick retries it
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	now := s.Now().UTC()
	tasks, err := GenerateCompoundTasks(ctx, s.Schedules, now, s.BatchSize)
	if err != nil {
		return 0, err
	}

	compounded := 0
	for _, task := range tasks {
		if ctx.Err() != nil {
			return compounded, ctx.Err()
		}

		result := ResultCompounded
		_, err := s.Compounder.CompoundAccount(ctx, task.Address, true)
		switch {
		case err == nil:
			compounded++
		case errors.Is(err, domain.ErrNoYieldAvailable):
			result = ResultNoYield
		default:
			s.Metrics.AutoCompoundRun(ResultFailed)
			s.Logger.Warn().Err(err).Str("address", task.Address).Msg("auto-compound failed, will retry")
			continue
		}
		s.Metrics.AutoCompoundRun(result)

		if err := s.Schedules.MarkRun(ctx, task.Address, now, task.NextRun(now)); err != nil {
			s.Logger.Error().Err(err).Str("address", task.Address).Msg("failed to reschedule auto-compound")
		}
	}

	if len(tasks) > 0 {
		s.Logger.Info().Int("due", len(tasks)).Int("compounded", compounded).Msg("auto-compound tick")
	}
	return compounded, nil
}

// Run calls RunOnce every interval until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				s.Logger.Error().Err(err).Msg("auto-compound tick failed")
			}
		}
	}
}
