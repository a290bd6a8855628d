package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"venue-gateway/internal/events"
	exchange "venue-gateway/pkg/exchanges/common"
)

type stubGateway struct{}

func (stubGateway) SubmitOrder(context.Context, exchange.OrderRequest) (exchange.OrderResult, error) {
	return exchange.OrderResult{}, nil
}
func (stubGateway) CancelOrder(context.Context, string, string) error { return nil }
func (stubGateway) GetOpenOrders(context.Context, string) ([]exchange.OpenOrder, error) {
	return nil, nil
}

func stubFactory(segment, apiKey, apiSecret string, testnet bool) (exchange.Gateway, error) {
	if segment == "broken" {
		return nil, errors.New("no such venue")
	}
	return stubGateway{}, nil
}

func TestDefaultFactorySegments(t *testing.T) {
	for _, segment := range []string{SegmentBinanceSpot, SegmentBinanceUSDTFut, SegmentBinanceCoinFut} {
		gw, err := DefaultFactory(segment, "k", "s", true)
		if err != nil {
			t.Fatalf("%s: %v", segment, err)
		}
		if gw == nil {
			t.Fatalf("%s: nil gateway", segment)
		}
	}
	if _, err := DefaultFactory("kraken-spot", "k", "s", false); err == nil {
		t.Fatal("unknown segment should error, not fall back")
	}
}

func TestSegmentMarket(t *testing.T) {
	cases := map[string]exchange.MarketType{
		SegmentBinanceSpot:    exchange.MarketSpot,
		SegmentBinanceUSDTFut: exchange.MarketUSDTFut,
		SegmentBinanceCoinFut: exchange.MarketCoinFut,
	}
	for segment, want := range cases {
		got, err := SegmentMarket(segment)
		if err != nil {
			t.Fatalf("%s: %v", segment, err)
		}
		if got != want {
			t.Fatalf("%s: got %s, want %s", segment, got, want)
		}
	}
	if _, err := SegmentMarket("unknown"); err == nil {
		t.Fatal("unknown segment should error")
	}
}

func TestManagerCircuitBreaker(t *testing.T) {
	cfg := Config{HealthInterval: time.Hour, FailureThreshold: 2, CircuitTimeout: time.Hour}
	bus := events.NewBus()
	degraded, unsub := bus.Subscribe(events.EventGatewayDegraded, 1)
	defer unsub()

	m := NewManager(stubFactory, bus, cfg)
	if _, err := m.Register(SegmentBinanceSpot, "k", "s", true); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := m.Get(SegmentBinanceSpot); err != nil {
		t.Fatalf("healthy gateway should be available: %v", err)
	}

	m.RecordFailure(SegmentBinanceSpot)
	m.RecordFailure(SegmentBinanceSpot)

	if _, err := m.Get(SegmentBinanceSpot); !errors.Is(err, ErrGatewayUnhealthy) {
		t.Fatalf("expected ErrGatewayUnhealthy, got %v", err)
	}
	select {
	case seg := <-degraded:
		if seg != SegmentBinanceSpot {
			t.Fatalf("degraded event for %v, want %s", seg, SegmentBinanceSpot)
		}
	default:
		t.Fatal("expected degraded event on the bus")
	}

	// Success closes the circuit again.
	m.RecordSuccess(SegmentBinanceSpot)
	if _, err := m.Get(SegmentBinanceSpot); err != nil {
		t.Fatalf("circuit should close after success: %v", err)
	}
}

func TestManagerUnknownSegment(t *testing.T) {
	m := NewManager(stubFactory, nil, DefaultConfig())
	if _, err := m.Get("binance-spot"); !errors.Is(err, ErrSegmentNotFound) {
		t.Fatalf("expected ErrSegmentNotFound, got %v", err)
	}
	if _, err := m.Register("broken", "k", "s", false); err == nil {
		t.Fatal("factory error should propagate")
	}
}

func TestManagerStats(t *testing.T) {
	m := NewManager(stubFactory, nil, DefaultConfig())
	m.Register(SegmentBinanceSpot, "k", "s", true)
	m.Register(SegmentBinanceUSDTFut, "k", "s", true)

	stats := m.Stats()
	if len(stats) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(stats))
	}
	for _, s := range stats {
		if !s.Healthy {
			t.Fatalf("segment %s should start healthy", s.Segment)
		}
	}
}
