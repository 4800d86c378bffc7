package printing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acaishop/printing/internal/domain/order"
	domainprinting "github.com/acaishop/printing/internal/domain/printing"
	"github.com/acaishop/printing/internal/domain/receipt"
	"github.com/acaishop/printing/internal/domain/shared"
	"github.com/acaishop/printing/internal/infrastructure/quotes"
)

// ReceiptPrinter dispatches a rendered receipt to the physical device
type ReceiptPrinter interface {
	Print(ctx context.Context, m *receipt.Model) error
}

// OrderMarker notifies the storefront that an order's receipt left the
// printer
type OrderMarker interface {
	MarkPrinted(ctx context.Context, orderID string) error
}

// BatchNotifier receives the batch-completion signal. It fires only
// for batches with more than one job; a single receipt already tells
// its own story.
type BatchNotifier interface {
	BatchCompleted(ctx context.Context, batchID uuid.UUID, completed, failed int)
}

type queuedJob struct {
	job *domainprinting.PrintJob
	ord *order.Order
}

// Coordinator owns the print queue. Jobs are processed strictly FIFO
// by a single worker, so at most one receipt is rendering at any time.
// Cancellation is cooperative: it takes effect between jobs, never
// mid-render.
type Coordinator struct {
	printer     ReceiptPrinter
	builder     *receipt.Builder
	store       order.Store
	quoteSource quotes.Source
	marker      OrderMarker
	notifier    BatchNotifier
	settleDelay time.Duration
	logger      *zap.Logger

	mu       sync.Mutex
	jobs     map[uuid.UUID]*domainprinting.PrintJob
	batches  map[uuid.UUID][]*domainprinting.PrintJob
	notified map[uuid.UUID]bool
	pending  int

	queue chan queuedJob

	startOnce sync.Once
	done      chan struct{}
}

// CoordinatorConfig collects the coordinator's collaborators
type CoordinatorConfig struct {
	Printer     ReceiptPrinter
	Builder     *receipt.Builder
	Store       order.Store
	QuoteSource quotes.Source
	Marker      OrderMarker
	Notifier    BatchNotifier
	SettleDelay time.Duration
	QueueSize   int
	Logger      *zap.Logger
}

// NewCoordinator creates a print job coordinator. Call Start to begin
// processing.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Coordinator{
		printer:     cfg.Printer,
		builder:     cfg.Builder,
		store:       cfg.Store,
		quoteSource: cfg.QuoteSource,
		marker:      cfg.Marker,
		notifier:    cfg.Notifier,
		settleDelay: cfg.SettleDelay,
		logger:      logger,
		jobs:        make(map[uuid.UUID]*domainprinting.PrintJob),
		batches:     make(map[uuid.UUID][]*domainprinting.PrintJob),
		notified:    make(map[uuid.UUID]bool),
		queue:       make(chan queuedJob, queueSize),
		done:        make(chan struct{}),
	}
}

// Start launches the worker goroutine. The worker runs until the
// context is cancelled.
func (c *Coordinator) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		go c.run(ctx)
	})
}

// Done is closed once the worker has exited
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// EnqueueBatch queues one print job per order, in the given sequence,
// and returns the batch ID
func (c *Coordinator) EnqueueBatch(ctx context.Context, orders []*order.Order) (uuid.UUID, error) {
	if len(orders) == 0 {
		return uuid.Nil, fmt.Errorf("%w: batch has no orders", shared.ErrInvalidInput)
	}

	batchID := uuid.New()
	queued := make([]queuedJob, 0, len(orders))
	batch := make([]*domainprinting.PrintJob, 0, len(orders))

	for i, ord := range orders {
		if ord == nil {
			return uuid.Nil, fmt.Errorf("%w: order at position %d is nil", shared.ErrInvalidInput, i)
		}
		job, err := domainprinting.NewPrintJob(ord.ID, batchID, i)
		if err != nil {
			return uuid.Nil, err
		}
		queued = append(queued, queuedJob{job: job, ord: ord})
		batch = append(batch, job)
	}

	c.mu.Lock()
	for _, q := range queued {
		c.jobs[q.job.ID] = q.job
	}
	c.batches[batchID] = batch
	c.mu.Unlock()

	for _, q := range queued {
		select {
		case c.queue <- q:
			c.mu.Lock()
			c.pending++
			c.mu.Unlock()
		case <-ctx.Done():
			return uuid.Nil, ctx.Err()
		default:
			c.failJob(q.job, "print queue full")
			c.logger.Error("print queue full, job failed",
				zap.String("job_id", q.job.ID.String()),
				zap.String("order_id", q.job.OrderID),
			)
		}
	}

	// When the queue is saturated every job of the batch can already be
	// terminal, so the completion signal has to be checked here too.
	c.maybeNotifyBatch(ctx, batchID)

	c.logger.Info("batch queued",
		zap.String("batch_id", batchID.String()),
		zap.Int("jobs", len(batch)),
	)
	return batchID, nil
}

// CancelBatch cancels every job of the batch that has not started
// rendering. A job already at the device finishes normally.
func (c *Coordinator) CancelBatch(batchID uuid.UUID) error {
	c.mu.Lock()
	batch, ok := c.batches[batchID]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: batch %s", shared.ErrNotFound, batchID)
	}

	cancelled := 0
	for _, job := range batch {
		if job.Status == domainprinting.JobStatusQueued {
			if err := job.Cancel(); err == nil {
				cancelled++
			}
		}
	}
	c.mu.Unlock()

	c.logger.Info("batch cancelled",
		zap.String("batch_id", batchID.String()),
		zap.Int("cancelled", cancelled),
	)
	c.maybeNotifyBatch(context.Background(), batchID)
	return nil
}

// Job returns a snapshot of the job with the given ID
func (c *Coordinator) Job(jobID uuid.UUID) (JobSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	job, ok := c.jobs[jobID]
	if !ok {
		return JobSnapshot{}, fmt.Errorf("%w: print job %s", shared.ErrNotFound, jobID)
	}
	return snapshotJob(job), nil
}

// Batch returns snapshots of every job in the batch, in queue order
func (c *Coordinator) Batch(batchID uuid.UUID) ([]JobSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch, ok := c.batches[batchID]
	if !ok {
		return nil, fmt.Errorf("%w: batch %s", shared.ErrNotFound, batchID)
	}
	snapshots := make([]JobSnapshot, 0, len(batch))
	for _, job := range batch {
		snapshots = append(snapshots, snapshotJob(job))
	}
	return snapshots, nil
}

func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case q := <-c.queue:
			started := c.beginJob(q.job)
			if started {
				c.processJob(ctx, q)
				c.maybeNotifyBatch(ctx, q.job.BatchID)
			}
			c.finishPending()
			if !started {
				continue
			}

			// Settle delay lets the print surface release before the
			// next receipt starts.
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.settleDelay):
			}
		}
	}
}

// Drain blocks until every queued job has been handled, or the context
// ends. It does not stop the worker; callers cancel the worker context
// afterwards so the job in flight is never cut off mid-print.
func (c *Coordinator) Drain(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		c.mu.Lock()
		idle := c.pending == 0
		c.mu.Unlock()
		if idle {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// finishPending marks one queued job as handled, terminal or skipped
func (c *Coordinator) finishPending() {
	c.mu.Lock()
	c.pending--
	c.mu.Unlock()
}

// beginJob moves a queued job to rendering; jobs cancelled while
// waiting are skipped
func (c *Coordinator) beginJob(job *domainprinting.PrintJob) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if job.Status != domainprinting.JobStatusQueued {
		return false
	}
	if err := job.StartRendering(); err != nil {
		return false
	}
	return true
}

func (c *Coordinator) processJob(ctx context.Context, q queuedJob) {
	logger := c.logger.With(
		zap.String("job_id", q.job.ID.String()),
		zap.String("order_id", q.job.OrderID),
		zap.String("batch_id", q.job.BatchID.String()),
	)

	quote := c.fetchQuote(ctx)
	model := c.builder.Build(q.ord, c.store, quote)

	if err := c.printer.Print(ctx, model); err != nil {
		logger.Error("printing receipt failed", zap.Error(err))
		c.failJob(q.job, err.Error())
		return
	}

	c.mu.Lock()
	err := q.job.AwaitConfirmation()
	c.mu.Unlock()
	if err != nil {
		logger.Error("job state error after render", zap.Error(err))
		c.failJob(q.job, err.Error())
		return
	}

	if c.marker != nil {
		if err := c.marker.MarkPrinted(ctx, q.job.OrderID); err != nil {
			// The receipt is already on paper; losing the callback is
			// an operator problem, not a print failure.
			logger.Warn("order-printed callback failed", zap.Error(err))
		}
	}

	c.mu.Lock()
	err = q.job.Complete()
	c.mu.Unlock()
	if err != nil {
		logger.Error("completing job failed", zap.Error(err))
		c.failJob(q.job, err.Error())
		return
	}
	logger.Info("receipt printed")
}

func (c *Coordinator) fetchQuote(ctx context.Context) order.Quotation {
	if c.quoteSource == nil {
		return order.Quotation{}
	}
	quote, err := c.quoteSource.Quote(ctx)
	if err != nil {
		c.logger.Warn("quotation unavailable, printing without one", zap.Error(err))
		return order.Quotation{}
	}
	return quote
}

func (c *Coordinator) failJob(job *domainprinting.PrintJob, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if job.Status.IsTerminal() {
		return
	}
	_ = job.Fail(message)
}

// maybeNotifyBatch emits the batch-completion signal once every job of
// the batch is terminal. Single-job batches never signal.
func (c *Coordinator) maybeNotifyBatch(ctx context.Context, batchID uuid.UUID) {
	if c.notifier == nil {
		return
	}

	c.mu.Lock()
	batch, ok := c.batches[batchID]
	if !ok || len(batch) <= 1 || c.notified[batchID] {
		c.mu.Unlock()
		return
	}
	completed, failed := 0, 0
	for _, job := range batch {
		if !job.Status.IsTerminal() {
			c.mu.Unlock()
			return
		}
		switch job.Status {
		case domainprinting.JobStatusCompleted:
			completed++
		case domainprinting.JobStatusFailed:
			failed++
		}
	}
	c.notified[batchID] = true
	c.mu.Unlock()

	c.notifier.BatchCompleted(ctx, batchID, completed, failed)
}
