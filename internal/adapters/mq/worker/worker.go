// Package worker runs export jobs taken from a queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/cupstats/internal/adapters/mq/queue"
	"github.com/okian/cupstats/pkg/logger"
	"github.com/okian/cupstats/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Job is the unit of work a worker runs.
type Job = queue.Job

// Outcome is the result of one job.
type Outcome struct {
	Job      Job
	Path     string
	Err      error
	Duration time.Duration
}

// Reporter receives every job outcome. It may be called concurrently.
type Reporter interface {
	Report(ctx context.Context, o Outcome)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, o Outcome)

// Report implements Reporter.
func (f ReporterFunc) Report(ctx context.Context, o Outcome) { f(ctx, o) }

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until the queue is drained or ctx is done.
type Worker interface {
	// Run starts the worker loop.
	Run(ctx context.Context)
}

// InMemoryWorker implements Worker. A failing job is reported and the worker
// moves on to the next one.
type InMemoryWorker struct {
	queue    Queue
	reporter Reporter
	name     string
	done     chan struct{}
	logger   logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, reporter Reporter, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		reporter: reporter,
		name:     "worker",
		done:     make(chan struct{}),
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	for job := range w.queue.Dequeue(ctx) {
		w.reporter.Report(ctx, w.process(ctx, job))
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, job Job) (o Outcome) {
	start := time.Now()
	o.Job = job
	defer func() {
		if r := recover(); r != nil {
			o.Err = fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
		o.Duration = time.Since(start)
		metrics.RecordExportLatency(job.Kind, float64(o.Duration.Milliseconds()))
		metrics.RecordExport(job.Kind, o.Err == nil)
		if o.Err != nil {
			w.logger.Warn(ctx, "export job failed",
				logger.String("worker", w.name),
				logger.String("job", job.ID),
				logger.Error(o.Err),
			)
		}
	}()

	o.Path, o.Err = job.Run(ctx)
	return o
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool. A non-positive count uses one worker per CPU.
func NewPool(workerCount int, q Queue, reporter Reporter, log logger.Logger) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	if log == nil {
		log = logger.Discard()
	}
	if reporter == nil {
		reporter = ReporterFunc(func(context.Context, Outcome) {})
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  log,
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, reporter,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(log),
		)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	metrics.UpdateExportWorkers(len(p.workers))
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var wg sync.WaitGroup
	var timedOut bool
	var mu sync.Mutex
	for i, w := range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case <-w.Done():
			case <-shutdownCtx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				mu.Lock()
				timedOut = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	metrics.UpdateExportWorkers(0)

	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
