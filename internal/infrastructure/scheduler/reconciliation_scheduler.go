// Package scheduler runs the periodic orphan reconciliation sweep.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appsettlement "github.com/amai2222/shipment-data-view-sub003/internal/application/settlement"
	"github.com/amai2222/shipment-data-view-sub003/internal/infrastructure/config"
)

// ReconciliationScheduler periodically resets orphaned Processing waybills
// left behind by partially failed commits.
type ReconciliationScheduler struct {
	service   *appsettlement.ReconciliationService
	logger    *zap.Logger
	config    config.ReconciliationConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewReconciliationScheduler creates a new scheduler.
func NewReconciliationScheduler(
	service *appsettlement.ReconciliationService,
	logger *zap.Logger,
	cfg config.ReconciliationConfig,
) *ReconciliationScheduler {
	return &ReconciliationScheduler{
		service: service,
		logger:  logger.Named("reconciliation-scheduler"),
		config:  cfg,
	}
}

// Start starts the sweep loop. Calling Start on a running scheduler is a
// no-op.
func (s *ReconciliationScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("reconciliation scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("reconciliation scheduler started",
		zap.Duration("interval", s.config.Interval))

	return nil
}

// Stop gracefully stops the scheduler, waiting for an in-flight sweep.
func (s *ReconciliationScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("reconciliation scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ReconciliationScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ReconciliationScheduler) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := s.service.Run(sweepCtx); err != nil {
		s.logger.Error("reconciliation sweep failed", zap.Error(err))
	}
}
