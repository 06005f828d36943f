package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/ganzorig/qpaygate/internal/domain/errors"
	"github.com/ganzorig/qpaygate/internal/domain/model"
)

// GatewayFacade exposes the subset of application functionality required by the sweeper.
type GatewayFacade interface {
	OrdersAwaitingPayment(ctx context.Context, limit int) ([]model.Order, error)
	ConfirmPayment(ctx context.Context, invoiceID string) (model.PaymentStatus, error)
}

// ReconcileSweeper periodically re-checks invoiced orders against the
// provider. It covers confirmations the webhook never delivered, e.g. when
// the customer paid after closing the payment page. It runs the same
// reconciliation as webhook and poll handlers, so overlapping triggers are
// harmless.
type ReconcileSweeper struct {
	facade       GatewayFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewReconcileSweeper constructs the sweeper worker pool.
func NewReconcileSweeper(facade GatewayFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *ReconcileSweeper {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &ReconcileSweeper{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background processing.
func (s *ReconcileSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx)
	}

	s.wg.Add(1)
	go s.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (s *ReconcileSweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *ReconcileSweeper) dispatch(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.jobs)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetchAndDispatch(ctx)
		}
	}
}

func (s *ReconcileSweeper) fetchAndDispatch(ctx context.Context) {
	orders, err := s.facade.OrdersAwaitingPayment(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("fetch orders awaiting payment failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case s.jobs <- order:
		}
	}
}

func (s *ReconcileSweeper) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-s.jobs:
			if !ok {
				return
			}
			s.handleOrder(ctx, order)
		}
	}
}

func (s *ReconcileSweeper) handleOrder(ctx context.Context, order model.Order) {
	if order.Invoice == nil {
		return
	}

	status, err := s.facade.ConfirmPayment(ctx, order.Invoice.InvoiceID)
	if err != nil {
		// A stale invoice id disappears when the order got a fresh invoice
		// between the sweep and the check; the next sweep picks it up.
		if errors.Is(err, domainErrors.ErrNotFound) {
			return
		}
		s.logger.Error("reconcile failed",
			slog.String("number", order.Number),
			slog.String("error", err.Error()),
		)
		return
	}

	if status == model.PaymentStatusPaid {
		s.logger.Info("sweeper confirmed payment", slog.String("number", order.Number))
	}
}
