// Package app contains application services that orchestrate use cases.
// This layer coordinates the diagnostic-context core, the async executor
// and the domain logic; HTTP specifics live in the adapters.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mdclab/mdc-service/internal/platform/logging"
	"github.com/mdclab/mdc-service/internal/platform/mdc"
)

// Executor errors.
var (
	// ErrExecutorSaturated is returned by Submit when the queue is full and
	// all workers are busy. Rejecting keeps memory bounded; callers decide
	// whether to retry, degrade or fail the request.
	ErrExecutorSaturated = errors.New("executor saturated")

	// ErrExecutorClosed is returned by Submit after Shutdown has started.
	ErrExecutorClosed = errors.New("executor closed")
)

// Executor runs delegated units of work on a fixed pool of workers with a
// bounded queue. Each worker owns one diagnostic context store for its
// whole lifetime and reuses it across tasks - exactly the situation that
// makes mandatory cleanup matter. Tasks that should carry the submitter's
// diagnostic context must be wrapped with mdc.Wrap/mdc.WrapResult before
// submission; unwrapped tasks run without it.
type Executor struct {
	queue   chan func(context.Context)
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics *executorMetrics

	mu     sync.Mutex
	closed bool
}

// ExecutorConfig contains configuration for the executor.
type ExecutorConfig struct {
	// Workers is the fixed number of pooled workers.
	Workers int

	// QueueSize bounds pending submissions.
	QueueSize int

	// Logger is attached to every worker's context.
	Logger *slog.Logger

	// Registerer receives the executor metrics. Nil leaves them
	// unregistered, which tests rely on to avoid duplicate registration.
	Registerer prometheus.Registerer
}

// NewExecutor creates an executor and starts its workers.
func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Executor{
		queue:   make(chan func(context.Context), cfg.QueueSize),
		logger:  logger.With(slog.String("component", "app.Executor")),
		metrics: newExecutorMetrics(cfg.Registerer),
	}

	for i := range cfg.Workers {
		e.wg.Add(1)

		go e.worker(i)
	}

	return e
}

// worker processes queued tasks until the queue is closed. The diagnostic
// context store created here lives for the worker's lifetime and is
// reused by every task it runs.
func (e *Executor) worker(id int) {
	defer e.wg.Done()

	ctx := mdc.NewContext(context.Background())
	ctx = logging.WithContext(ctx, e.logger.With(slog.Int("worker", id)))

	for task := range e.queue {
		e.metrics.queueDepth.Dec()
		task(ctx)
		e.metrics.completed.Inc()
	}
}

// Future holds the eventual result of a submitted task.
type Future[T any] struct {
	done   chan struct{}
	result T
	err    error
}

// Wait blocks until the task finishes or ctx is done. A cancelled wait
// returns the context error; the task itself is not cancelled and still
// runs to completion on its worker.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T

		return zero, fmt.Errorf("awaiting task: %w", ctx.Err())
	}
}

// Submit schedules a task on the executor and returns a handle to its
// result. The task receives the worker's context, NOT the caller's: the
// caller's store is untouched by whatever the task does. Task errors and
// panics surface through the Future unchanged; there are no retries.
func Submit[T any](e *Executor, task func(context.Context) (T, error)) (*Future[T], error) {
	f := &Future[T]{done: make(chan struct{})}

	run := func(ctx context.Context) {
		defer close(f.done)

		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("task panicked: %v", r)
			}
		}()

		f.result, f.err = task(ctx)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		e.metrics.rejected.Inc()

		return nil, ErrExecutorClosed
	}

	select {
	case e.queue <- run:
		e.metrics.submitted.Inc()
		e.metrics.queueDepth.Inc()

		return f, nil
	default:
		e.metrics.rejected.Inc()

		return nil, ErrExecutorSaturated
	}
}

// Shutdown stops accepting new tasks and waits for queued ones to drain.
// The provided context bounds the wait.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()

		return nil
	}

	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	done := make(chan struct{})

	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("executor shutdown: %w", ctx.Err())
	}
}

// Name implements ports.HealthChecker.
func (e *Executor) Name() string {
	return "executor"
}

// Check implements ports.HealthChecker. The executor is unhealthy once it
// has been shut down.
func (e *Executor) Check(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrExecutorClosed
	}

	return nil
}

// executorMetrics tracks executor activity for the /-/metrics endpoint.
type executorMetrics struct {
	submitted  prometheus.Counter
	rejected   prometheus.Counter
	completed  prometheus.Counter
	queueDepth prometheus.Gauge
}

func newExecutorMetrics(reg prometheus.Registerer) *executorMetrics {
	m := &executorMetrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "executor_tasks_submitted_total",
			Help: "Tasks accepted by the executor.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "executor_tasks_rejected_total",
			Help: "Tasks rejected due to saturation or shutdown.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "executor_tasks_completed_total",
			Help: "Tasks that finished running, successfully or not.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "executor_queue_depth",
			Help: "Tasks currently waiting in the queue.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.submitted, m.rejected, m.completed, m.queueDepth)
	}

	return m
}
