// Package worker drains the intake queue: each record is normalized,
// scored for intake metrics, and written to the portfolio store.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/novara/casebook/internal/adapters/mq/queue"
	"github.com/novara/casebook/internal/domain/model"
	"github.com/novara/casebook/internal/domain/scoring"
	"github.com/novara/casebook/internal/domain/succession"
	"github.com/novara/casebook/pkg/logger"
	"github.com/novara/casebook/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second

	// highRiskThreshold flags intake of clients whose succession risk
	// already warrants attention.
	highRiskThreshold = 7.0
)

// Record is what workers read off the queue.
type Record = queue.Record

// Updater writes a normalized client into the portfolio.
type Updater interface {
	UpsertClient(ctx context.Context, c model.Client) (bool, error)
}

// Source defines how workers receive records.
type Source interface {
	Dequeue(ctx context.Context) <-chan Record
}

// Worker processes intake records until stopped.
type Worker struct {
	source  Source
	updater Updater
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// New creates a worker with configuration options.
func New(source Source, updater Updater, opts ...Option) *Worker {
	w := &Worker{
		source:   source,
		updater:  updater,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the worker loop.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	records := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-records:
			if !ok {
				return
			}
			if err := w.process(ctx, r); err != nil {
				w.logger.Error(ctx, "intake failed", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process normalizes one record, derives its intake scores, and stores it.
// Derived fields are not persisted; they are recomputed on demand from base
// attributes, so this derivation exists only for intake telemetry.
func (w *Worker) process(ctx context.Context, r Record) error {
	start := time.Now()
	defer func() {
		metrics.RecordIntakeLatency(float64(time.Since(start).Milliseconds()))
	}()

	c := r.Normalize()

	value := scoring.StrategicValue(c)
	class := succession.Classify(c)
	if class.SuccessionRisk >= highRiskThreshold {
		metrics.RecordHighRiskIntake()
		w.logger.Warn(ctx, "high succession risk at intake",
			logger.String("clientID", c.ID),
			logger.Float64("risk", class.SuccessionRisk),
			logger.Float64("strategicValue", value),
		)
	}

	created, err := w.updater.UpsertClient(ctx, c)
	if err != nil {
		metrics.RecordIntakeError()
		return fmt.Errorf("store client %s: %w", c.ID, err)
	}

	metrics.RecordIntakeProcessed()
	w.logger.Debug(ctx, "client stored",
		logger.String("clientID", c.ID),
		logger.Any("created", created),
		logger.String("relationship", string(class.RelationshipType)),
	)
	return nil
}

// Pool manages a fixed set of workers.
type Pool struct {
	workers []*Worker

	logger logger.Logger
}

// NewPool creates a worker pool; workerCount below one defaults to a
// CPU-based count.
func NewPool(workerCount int, source Source, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = New(source, updater, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		close(w.shutdown)
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}
