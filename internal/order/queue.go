package order

import (
	"context"
	"sync"
)

// Queue buffers orders before execution.
type Queue struct {
	ch chan Order

	mu       sync.Mutex
	notional float64
	closed   bool
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 100
	}
	return &Queue{ch: make(chan Order, size)}
}

// Enqueue adds an order; returns false when the queue is closed or full.
// The send happens under the mutex so a concurrent Close cannot close the
// channel between the closed check and the send.
func (q *Queue) Enqueue(o Order) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	select {
	case q.ch <- o:
		q.notional += o.Qty * o.Price
		return true
	default:
		return false
	}
}

func (q *Queue) Len() int {
	return len(q.ch)
}

// PendingNotional returns total notional value of pending orders. Market
// orders carry no price and contribute zero.
func (q *Queue) PendingNotional() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.notional
}

func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Drain consumes orders with a handler until context is canceled.
func (q *Queue) Drain(ctx context.Context, handler func(Order)) {
	for {
		select {
		case <-ctx.Done():
			return
		case o, ok := <-q.ch:
			if !ok {
				return
			}
			q.mu.Lock()
			q.notional -= o.Qty * o.Price
			q.mu.Unlock()
			handler(o)
		}
	}
}
