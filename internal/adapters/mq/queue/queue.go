// Package queue defines the contract for enqueuing and consuming client
// intake records. The implementation is an in-memory bounded queue.
package queue

import (
	"context"
	"sync"

	"github.com/novara/casebook/internal/domain/model"
	"github.com/novara/casebook/pkg/metrics"
)

// Default queue capacity.
const defaultCapacity = 10_000

// Record is the payload flowing through the queue: a raw client record
// awaiting normalization and storage.
type Record = model.Client

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a record. Returns false when the queue is full or
	// closed and the record was not accepted.
	Enqueue(ctx context.Context, r Record) bool

	// Dequeue returns a channel receiving records as they arrive. The
	// channel closes when the queue is closed.
	Dequeue(ctx context.Context) <-chan Record

	// Len returns the current number of queued records.
	Len(ctx context.Context) int

	// Close shuts the queue down; no further enqueues are accepted.
	Close() error
}

// MemoryQueue implements Queue over a buffered channel.
type MemoryQueue struct {
	records  chan Record
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewMemoryQueue creates an in-memory queue with configuration options.
func NewMemoryQueue(opts ...Option) *MemoryQueue {
	q := &MemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.records = make(chan Record, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a record to the queue.
func (q *MemoryQueue) Enqueue(ctx context.Context, r Record) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueReject("closed")
		return false
	}

	select {
	case q.records <- r:
		metrics.UpdateQueueSize(len(q.records))
		return true
	case <-ctx.Done():
		metrics.RecordQueueReject("context_cancelled")
		return false
	default:
		metrics.RecordQueueReject("full")
		return false
	}
}

// Dequeue returns a channel receiving records until the queue closes.
func (q *MemoryQueue) Dequeue(ctx context.Context) <-chan Record {
	out := make(chan Record)
	go func() {
		defer close(out)
		for r := range q.records {
			select {
			case out <- r:
				metrics.UpdateQueueSize(len(q.records))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued records.
func (q *MemoryQueue) Len(_ context.Context) int {
	return len(q.records)
}

// Close shuts the queue down.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.records)
	q.closed = true
	return nil
}
