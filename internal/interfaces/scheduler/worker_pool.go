package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const defaultJobTimeout = 120 * time.Second

var (
	ErrQueueFull     = errors.New("job queue full")
	ErrPoolClosed    = errors.New("worker pool is shut down")
	ErrAlreadyQueued = errors.New("job for target already pending")
)

var (
	jobTracer      = otel.Tracer("wealthtrackr/scheduler")
	jobMeter       = otel.Meter("wealthtrackr/scheduler")
	jobDuration, _ = jobMeter.Float64Histogram("wealthtrackr.sync.job.duration",
		metric.WithDescription("Bank sync job duration in seconds"),
		metric.WithUnit("s"),
	)
	jobTotal, _ = jobMeter.Int64Counter("wealthtrackr.sync.job.total",
		metric.WithDescription("Bank sync jobs finished, by outcome"),
	)
	jobRejected, _ = jobMeter.Int64Counter("wealthtrackr.sync.job.rejected",
		metric.WithDescription("Bank sync jobs not enqueued, by reason"),
	)
)

// WorkerPool runs sync jobs on a fixed set of goroutines. At most one job per
// target (connection/account pair) is pending or running at any time, so a
// slow sync is never stacked behind a second copy of itself.
type WorkerPool struct {
	workerCount int
	jobDelay    time.Duration
	jobTimeout  time.Duration
	jobs        chan Job
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	mu      sync.Mutex
	closed  bool
	pending map[string]struct{}
}

// NewWorkerPool sizes the pool. Counts below one are raised to one.
func NewWorkerPool(workerCount int, jobDelay time.Duration, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workerCount: max(workerCount, 1),
		jobDelay:    jobDelay,
		jobTimeout:  defaultJobTimeout,
		jobs:        make(chan Job, max(queueSize, 1)),
		ctx:         ctx,
		cancel:      cancel,
		pending:     make(map[string]struct{}),
	}
}

func (wp *WorkerPool) Start() {
	log.Printf("Starting sync worker pool with %d workers", wp.workerCount)
	for i := 1; i <= wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.run(id, job)
			wp.release(job.Target())

			if wp.jobDelay > 0 && !wp.pause() {
				return
			}
		}
	}
}

// pause waits jobDelay between jobs and reports false when the pool is cancelled meanwhile.
func (wp *WorkerPool) pause() bool {
	timer := time.NewTimer(wp.jobDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

func (wp *WorkerPool) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(wp.ctx, wp.jobTimeout)
	defer cancel()

	ctx, span := jobTracer.Start(ctx, "sync.job",
		trace.WithAttributes(
			attribute.Int("worker.id", workerID),
			attribute.String("sync.target", job.Target()),
		),
	)
	defer span.End()

	start := time.Now()
	err := job.Execute(ctx)
	elapsed := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Printf("Worker %d: %s failed after %s: %v", workerID, job.Description(), elapsed.Round(time.Millisecond), err)
	} else {
		log.Printf("Worker %d: %s done in %s", workerID, job.Description(), elapsed.Round(time.Millisecond))
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	jobTotal.Add(ctx, 1, attrs)
	jobDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func (wp *WorkerPool) release(target string) {
	wp.mu.Lock()
	delete(wp.pending, target)
	wp.mu.Unlock()
}

func reject(reason string) {
	jobRejected.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// Submit enqueues job without blocking. It fails with ErrAlreadyQueued when
// the same target is still pending, ErrQueueFull when the buffer is full and
// ErrPoolClosed after shutdown.
func (wp *WorkerPool) Submit(job Job) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.closed {
		return ErrPoolClosed
	}
	target := job.Target()
	if _, busy := wp.pending[target]; busy {
		reject("duplicate")
		return fmt.Errorf("%w: %s", ErrAlreadyQueued, target)
	}

	select {
	case wp.jobs <- job:
		wp.pending[target] = struct{}{}
		return nil
	default:
		reject("queue_full")
		return fmt.Errorf("%w, dropping %s", ErrQueueFull, target)
	}
}

// SubmitBatch submits every job and reports how many were accepted.
func (wp *WorkerPool) SubmitBatch(jobs []Job) int {
	submitted := 0
	for _, job := range jobs {
		if err := wp.Submit(job); err != nil {
			log.Printf("Skipping %s: %v", job.Description(), err)
			continue
		}
		submitted++
	}
	log.Printf("Queued %d/%d bank sync jobs", submitted, len(jobs))
	return submitted
}

// ShutdownWithTimeout stops accepting jobs and lets workers drain the queue.
// Jobs still running after timeout have their context cancelled.
func (wp *WorkerPool) ShutdownWithTimeout(timeout time.Duration) {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.jobs)
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Sync worker pool drained")
	case <-time.After(timeout):
		log.Println("Sync worker pool: timeout reached, cancelling running jobs")
	}
	wp.cancel()
}
