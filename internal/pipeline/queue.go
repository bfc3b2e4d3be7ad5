package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docfields/internal/metrics"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one file waiting to be processed.
type Job struct {
	ID          uuid.UUID
	Path        string
	SubmittedAt time.Time
}

// JobResult pairs a job with its outcome.
type JobResult struct {
	Job      Job
	Document DocumentResult
	Err      error
}

// FileProcessor is the part of Processor the queue needs.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (DocumentResult, error)
}

// Queue runs whole files through a FileProcessor on a fixed set of workers.
// Results arrive on Results in completion order; the channel closes once
// Shutdown has drained every job. Callers must read Results while jobs are
// in flight.
type Queue struct {
	proc    FileProcessor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch      chan Job
	results chan JobResult
	wg      sync.WaitGroup
	once    sync.Once

	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	senders sync.WaitGroup
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
			q.results = make(chan JobResult, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(proc FileProcessor, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
		results: make(chan JobResult, 256),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)

				for job := range q.ch {
					metrics.QueueLength.Dec()
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					doc, err := q.proc.ProcessFile(ctx, job.Path)
					cancel()

					if err != nil {
						q.logger.Error("queue.job.failed", "worker_id", workerID, "job_id", job.ID, "path", job.Path, "err", err)
					} else {
						q.logger.Info("queue.job.ok", "worker_id", workerID, "job_id", job.ID, "path", job.Path)
					}
					q.results <- JobResult{Job: job, Document: doc, Err: err}
				}

				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Results delivers one JobResult per enqueued job.
func (q *Queue) Results() <-chan JobResult { return q.results }

// Enqueue submits path and returns its job. It blocks while the queue is full,
// until ctx ends or Shutdown is called.
func (q *Queue) Enqueue(ctx context.Context, path string) (Job, error) {
	job := Job{ID: uuid.New(), Path: path, SubmittedAt: time.Now().UTC()}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("queue.enqueue.rejected", "path", path)
		return job, ErrQueueClosed
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	// a worker may dequeue the job before the send returns
	metrics.QueueLength.Inc()
	select {
	case q.ch <- job:
	default:
		q.logger.Warn("queue full, applying backpressure", "path", path)
		select {
		case q.ch <- job:
		case <-ctx.Done():
			metrics.QueueLength.Dec()
			return job, ctx.Err()
		case <-q.done:
			metrics.QueueLength.Dec()
			q.logger.Warn("queue.enqueue.rejected", "path", path)
			return job, ErrQueueClosed
		}
	}
	q.logger.Debug("queue.enqueued", "job_id", job.ID, "path", path)
	return job, nil
}

// Shutdown stops accepting jobs, releases blocked enqueuers and waits for the
// workers to drain, or for ctx to end.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		q.senders.Wait()
		close(q.ch)
		q.wg.Wait()
		close(q.results)
	}()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-finished:
		q.logger.Info("queue drained, shutdown complete")
	}
}
