package eventstream

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultQueueSize      = 256
	defaultPublishTimeout = 5 * time.Second
)

// Queue decouples publishing from the caller: events are buffered and handed
// to the inner publisher by one worker, so per-user order is kept. When the
// buffer is full the event is dropped.
type Queue struct {
	inner   Publisher
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	jobs   chan func(context.Context) error
	done   chan struct{}
}

type QueueOption func(*Queue)

func WithQueueSize(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.jobs = make(chan func(context.Context) error, n)
		}
	}
}

// WithPublishTimeout bounds each call to the inner publisher.
func WithPublishTimeout(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(inner Publisher, opts ...QueueOption) *Queue {
	q := &Queue{
		inner:   inner,
		timeout: defaultPublishTimeout,
		jobs:    make(chan func(context.Context) error, defaultQueueSize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	go q.worker()
	return q
}

func (q *Queue) worker() {
	defer close(q.done)
	for job := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if err := job(ctx); err != nil {
			slog.Warn("eventstream: publishing", "error", err)
		}
		cancel()
	}
}

func (q *Queue) enqueue(job func(context.Context) error) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}
	select {
	case q.jobs <- job:
		return true
	default:
		slog.Error("eventstream: queue full, event dropped")
		return false
	}
}

// PublishTurn enqueues the event and returns immediately.
func (q *Queue) PublishTurn(_ context.Context, event *TurnAppendedEvent) error {
	if event == nil {
		return ErrNilEvent
	}
	q.enqueue(func(ctx context.Context) error { return q.inner.PublishTurn(ctx, event) })
	return nil
}

func (q *Queue) PublishCleared(_ context.Context, event *HistoryClearedEvent) error {
	if event == nil {
		return ErrNilEvent
	}
	q.enqueue(func(ctx context.Context) error { return q.inner.PublishCleared(ctx, event) })
	return nil
}

// Close stops accepting events, drains the buffer and closes the inner publisher.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	<-q.done
	return q.inner.Close()
}
