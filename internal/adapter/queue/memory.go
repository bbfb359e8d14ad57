package queue

import (
	"context"
	"sync"

	"sms-dispatch/internal/core/port"
)

// MemoryQueue is a channel-backed port.DispatchQueue for broker-less
// runs and tests. Jobs survive neither restarts nor a full buffer; the
// AMQP implementation is the production path.
type MemoryQueue struct {
	jobs chan port.DispatchJob

	closeOnce sync.Once
	closed    chan struct{}
}

// NewMemoryQueue creates a queue buffering up to size pending jobs.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 64
	}
	return &MemoryQueue{
		jobs:   make(chan port.DispatchJob, size),
		closed: make(chan struct{}),
	}
}

// Publish enqueues a dispatch job, blocking while the buffer is full.
func (q *MemoryQueue) Publish(ctx context.Context, job port.DispatchJob) error {
	select {
	case q.jobs <- job:
		return nil
	case <-q.closed:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume delivers jobs to handler until ctx is cancelled or the queue is
// closed. Handler errors are not requeued here; the job is simply lost,
// which is acceptable for the in-process path.
func (q *MemoryQueue) Consume(ctx context.Context, handler func(ctx context.Context, job port.DispatchJob) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.closed:
			return nil
		case job := <-q.jobs:
			_ = handler(ctx, job)
		}
	}
}

// Close stops consumers.
func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() { close(q.closed) })
	return nil
}
