package reconciliation

import (
	"context"
	"testing"
	"time"

	"venue-gateway/pkg/db"
	exchange "venue-gateway/pkg/exchanges/common"
)

type fakeGateway struct {
	open []exchange.OpenOrder
}

func (f *fakeGateway) SubmitOrder(context.Context, exchange.OrderRequest) (exchange.OrderResult, error) {
	return exchange.OrderResult{}, nil
}
func (f *fakeGateway) CancelOrder(context.Context, string, string) error { return nil }
func (f *fakeGateway) GetOpenOrders(context.Context, string) ([]exchange.OpenOrder, error) {
	return f.open, nil
}

func newTestDB(t *testing.T) *db.Database {
	t.Helper()
	d, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(d); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func seedOrder(t *testing.T, d *db.Database, id, orderType, status string) {
	t.Helper()
	err := d.CreateOrder(context.Background(), db.Order{
		ID:        id,
		Symbol:    "BTCUSDT",
		Side:      "BUY",
		OrderType: orderType,
		Market:    string(exchange.MarketSpot),
		Price:     100,
		Qty:       1,
		Status:    status,
	})
	if err != nil {
		t.Fatalf("seed order %s: %v", id, err)
	}
}

func TestReconcileMissingAtVenue(t *testing.T) {
	d := newTestDB(t)
	seedOrder(t, d, "gone-1", "LIMIT", "NEW")

	svc := NewService(&fakeGateway{}, exchange.MarketSpot, d, time.Minute)
	report, err := svc.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !report.HasDiffs || len(report.OrderDiffs) != 1 {
		t.Fatalf("expected 1 diff, got %+v", report.OrderDiffs)
	}
	if report.OrderDiffs[0].Kind != "MISSING_AT_VENUE" {
		t.Fatalf("expected MISSING_AT_VENUE, got %s", report.OrderDiffs[0].Kind)
	}

	row, err := d.GetOrder(context.Background(), "gone-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if row.Status != "UNKNOWN" {
		t.Fatalf("auto-sync should flag the order, got status %q", row.Status)
	}
}

func TestReconcileTypeMismatchSyncsUnifiedType(t *testing.T) {
	d := newTestDB(t)
	// A row written before the normalization layer existed might carry a
	// raw venue token.
	seedOrder(t, d, "legacy-1", "STOP_LOSS", "NEW")

	gw := &fakeGateway{open: []exchange.OpenOrder{{
		ClientID:  "legacy-1",
		Symbol:    "BTCUSDT",
		Type:      exchange.OrderTypeStopMarket,
		VenueType: "STOP_LOSS",
		Status:    exchange.StatusNew,
	}}}

	svc := NewService(gw, exchange.MarketSpot, d, time.Minute)
	report, err := svc.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(report.OrderDiffs) != 1 || report.OrderDiffs[0].Kind != "TYPE_MISMATCH" {
		t.Fatalf("expected a TYPE_MISMATCH diff, got %+v", report.OrderDiffs)
	}

	row, err := d.GetOrder(context.Background(), "legacy-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if row.OrderType != string(exchange.OrderTypeStopMarket) {
		t.Fatalf("order type should be synced to unified STOP_MARKET, got %q", row.OrderType)
	}
	if row.VenueType != "STOP_LOSS" {
		t.Fatalf("raw venue token should be kept for audit, got %q", row.VenueType)
	}
}

func TestReconcileStatusDrift(t *testing.T) {
	d := newTestDB(t)
	seedOrder(t, d, "drift-1", "LIMIT", "NEW")

	gw := &fakeGateway{open: []exchange.OpenOrder{{
		ClientID:        "drift-1",
		ExchangeOrderID: "987",
		Symbol:          "BTCUSDT",
		Type:            exchange.OrderTypeLimit,
		VenueType:       "LIMIT",
		Status:          exchange.StatusPartial,
	}}}

	svc := NewService(gw, exchange.MarketSpot, d, time.Minute)
	report, err := svc.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(report.OrderDiffs) != 1 || report.OrderDiffs[0].Kind != "STATUS_DRIFT" {
		t.Fatalf("expected a STATUS_DRIFT diff, got %+v", report.OrderDiffs)
	}

	row, err := d.GetOrder(context.Background(), "drift-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if row.Status != string(exchange.StatusPartial) {
		t.Fatalf("status should be synced, got %q", row.Status)
	}
	if row.ExchangeOrderID != "987" {
		t.Fatalf("exchange id should be recorded, got %q", row.ExchangeOrderID)
	}
}

func TestReconcilePartialFillIsNotDrift(t *testing.T) {
	d := newTestDB(t)
	seedOrder(t, d, "part-1", "LIMIT", "NEW")

	// A user-stream fill update writes the unified status for the venue's
	// PARTIALLY_FILLED token. The gateway read path reports the same state
	// as StatusPartial, so the sweep must see them as equal.
	status := exchange.ParseOrderStatus("PARTIALLY_FILLED")
	if err := d.UpdateOrderFill(context.Background(), "part-1", string(status), 0.4, 101); err != nil {
		t.Fatalf("update fill: %v", err)
	}

	gw := &fakeGateway{open: []exchange.OpenOrder{{
		ClientID:  "part-1",
		Symbol:    "BTCUSDT",
		Type:      exchange.OrderTypeLimit,
		VenueType: "LIMIT",
		Status:    exchange.StatusPartial,
	}}}

	svc := NewService(gw, exchange.MarketSpot, d, time.Minute)
	report, err := svc.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.HasDiffs {
		t.Fatalf("partial fill flagged as drift: %+v", report.OrderDiffs)
	}

	// A second sweep must also stay clean: nothing may have rewritten the
	// status into another vocabulary in between.
	report, err = svc.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if report.HasDiffs {
		t.Fatalf("second sweep flagged drift: %+v", report.OrderDiffs)
	}
}

func TestReconcileNoDiffs(t *testing.T) {
	d := newTestDB(t)
	seedOrder(t, d, "ok-1", "LIMIT", "NEW")

	gw := &fakeGateway{open: []exchange.OpenOrder{{
		ClientID:  "ok-1",
		Symbol:    "BTCUSDT",
		Type:      exchange.OrderTypeLimit,
		VenueType: "LIMIT",
		Status:    exchange.StatusNew,
	}}}

	svc := NewService(gw, exchange.MarketSpot, d, time.Minute)
	report, err := svc.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.HasDiffs {
		t.Fatalf("expected clean report, got %+v", report.OrderDiffs)
	}
}
