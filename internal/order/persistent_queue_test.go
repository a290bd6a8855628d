package order

import (
	"context"
	"testing"
	"time"

	"venue-gateway/pkg/exchanges/common"
)

func TestPersistentQueueRecovery(t *testing.T) {
	dir := t.TempDir()

	pq, err := NewPersistentQueue(dir, 10)
	if err != nil {
		t.Fatalf("new persistent queue: %v", err)
	}

	a := Order{ID: "a", Symbol: "BTCUSDT", Side: common.SideBuy, Type: common.OrderTypeStopMarket, StopPrice: 55000, Qty: 1}
	b := Order{ID: "b", Symbol: "ETHUSDT", Side: common.SideSell, Type: common.OrderTypeLimit, Price: 3000, Qty: 2}
	if !pq.Enqueue(a) || !pq.Enqueue(b) {
		t.Fatal("enqueue failed")
	}
	pq.MarkComplete("a")
	pq.Close()

	// Simulate restart: a completed, b pending.
	pq2, err := NewPersistentQueue(dir, 10)
	if err != nil {
		t.Fatalf("reopen persistent queue: %v", err)
	}
	defer pq2.Close()
	if err := pq2.Recover(); err != nil {
		t.Fatalf("recover: %v", err)
	}

	m := pq2.GetMetrics()
	if m.Recovered != 1 {
		t.Fatalf("expected 1 recovered order, got %d", m.Recovered)
	}
	if pq2.Len() != 1 {
		t.Fatalf("expected queue len 1, got %d", pq2.Len())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var got Order
	done := make(chan struct{})
	go func() {
		pq2.Drain(ctx, func(o Order) {
			got = o
			cancel()
		})
		close(done)
	}()
	<-done

	if got.ID != "b" {
		t.Fatalf("expected recovered order b, got %q", got.ID)
	}
	if got.Type != common.OrderTypeLimit {
		t.Fatalf("recovered order lost its unified type: %q", got.Type)
	}
}

func TestPersistentQueueRecoveryOverflow(t *testing.T) {
	dir := t.TempDir()

	pq, err := NewPersistentQueue(dir, 10)
	if err != nil {
		t.Fatalf("new persistent queue: %v", err)
	}
	for _, id := range []string{"a", "b", "c"} {
		if !pq.Enqueue(Order{ID: id, Symbol: "BTCUSDT", Side: common.SideBuy, Type: common.OrderTypeLimit, Price: 100, Qty: 1}) {
			t.Fatalf("enqueue %s failed", id)
		}
	}
	pq.Close()

	// Restart into a smaller queue: one order fits, two must stay in the
	// WAL for the next restart instead of being counted as recovered.
	pq2, err := NewPersistentQueue(dir, 1)
	if err != nil {
		t.Fatalf("reopen persistent queue: %v", err)
	}
	if err := pq2.Recover(); err != nil {
		t.Fatalf("recover: %v", err)
	}
	if got := pq2.GetMetrics().Recovered; got != 1 {
		t.Fatalf("recovered = %d, want 1", got)
	}
	if pq2.Len() != 1 {
		t.Fatalf("queue len = %d, want 1", pq2.Len())
	}
	pq2.Close()

	// The overflowed orders survive another restart. The one pq2 held was
	// never completed either, so all three come back.
	pq3, err := NewPersistentQueue(dir, 10)
	if err != nil {
		t.Fatalf("third open: %v", err)
	}
	defer pq3.Close()
	if err := pq3.Recover(); err != nil {
		t.Fatalf("third recover: %v", err)
	}
	if pq3.Len() != 3 {
		t.Fatalf("queue len after third recover = %d, want 3", pq3.Len())
	}
}

func TestPersistentQueueEnqueueAfterClose(t *testing.T) {
	pq, err := NewPersistentQueue(t.TempDir(), 5)
	if err != nil {
		t.Fatalf("new persistent queue: %v", err)
	}
	pq.Close()
	if pq.Enqueue(Order{ID: "x", Qty: 1}) {
		t.Fatal("enqueue after close should fail")
	}
}

func TestPersistentQueueMetrics(t *testing.T) {
	pq, err := NewPersistentQueue(t.TempDir(), 5)
	if err != nil {
		t.Fatalf("new persistent queue: %v", err)
	}
	defer pq.Close()

	pq.Enqueue(Order{ID: "m1", Qty: 1})
	pq.Enqueue(Order{ID: "m2", Qty: 1})
	pq.MarkComplete("m1")

	m := pq.GetMetrics()
	if m.Written != 2 {
		t.Fatalf("expected 2 written, got %d", m.Written)
	}
	if m.Completed != 1 {
		t.Fatalf("expected 1 completed, got %d", m.Completed)
	}
}
