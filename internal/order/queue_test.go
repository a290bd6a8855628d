package order

import (
	"context"
	"testing"
	"time"

	"venue-gateway/pkg/exchanges/common"
)

func TestQueueEnqueueDrain(t *testing.T) {
	q := NewQueue(10)
	defer q.Close()

	for i := 0; i < 3; i++ {
		o := Order{ID: "o" + string(rune('1'+i)), Symbol: "BTCUSDT", Side: common.SideBuy, Type: common.OrderTypeLimit, Price: 100, Qty: 1}
		if !q.Enqueue(o) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	if got := q.Len(); got != 3 {
		t.Fatalf("expected len 3, got %d", got)
	}
	if got := q.PendingNotional(); got != 300 {
		t.Fatalf("expected notional 300, got %v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var drained []Order
	go func() {
		q.Drain(ctx, func(o Order) {
			drained = append(drained, o)
			if len(drained) == 3 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("drain did not finish")
	}
	if len(drained) != 3 {
		t.Fatalf("expected 3 drained orders, got %d", len(drained))
	}
	if got := q.PendingNotional(); got != 0 {
		t.Fatalf("expected notional 0 after drain, got %v", got)
	}
}

func TestQueueEnqueueWhenFull(t *testing.T) {
	q := NewQueue(1)
	defer q.Close()

	if !q.Enqueue(Order{ID: "a", Qty: 1}) {
		t.Fatal("first enqueue should succeed")
	}
	if q.Enqueue(Order{ID: "b", Qty: 1}) {
		t.Fatal("enqueue into a full queue should fail, not block")
	}
}

func TestQueueEnqueueDuringClose(t *testing.T) {
	// Enqueue racing Close must never panic on a closed channel; the
	// late enqueue simply reports false.
	for i := 0; i < 1000; i++ {
		q := NewQueue(4)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 8; j++ {
				q.Enqueue(Order{ID: "x", Qty: 1})
			}
		}()
		q.Close()
		<-done
	}
}

func TestQueueEnqueueAfterClose(t *testing.T) {
	q := NewQueue(5)
	q.Close()
	if q.Enqueue(Order{ID: "a", Qty: 1}) {
		t.Fatal("enqueue after close should fail")
	}
	// Closing twice must not panic.
	q.Close()
}
