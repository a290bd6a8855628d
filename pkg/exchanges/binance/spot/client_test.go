package spot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"venue-gateway/pkg/exchanges/common"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := New(Config{APIKey: "k", APISecret: "s"})
	c.baseURL = srv.URL
	return c, srv.Close
}

func TestGetOpenOrdersNormalizesTypes(t *testing.T) {
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/openOrders" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-MBX-USED-WEIGHT-1M", "10")
		w.Write([]byte(`[
			{"symbol":"BTCUSDT","orderId":1,"clientOrderId":"a","side":"BUY","type":"TAKE_PROFIT","price":"60000","origQty":"0.5","executedQty":"0","status":"NEW"},
			{"symbol":"BTCUSDT","orderId":2,"clientOrderId":"b","side":"SELL","type":"STOP_LOSS","price":"0","origQty":"1","executedQty":"0","status":"NEW"}
		]`))
	})
	defer done()

	orders, err := c.GetOpenOrders(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetOpenOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, expected 2", len(orders))
	}

	// TAKE_PROFIT on spot behaves as a plain limit once triggered.
	if orders[0].Type != common.OrderTypeLimit {
		t.Fatalf("TAKE_PROFIT normalized to %s, expected %s", orders[0].Type, common.OrderTypeLimit)
	}
	if orders[0].VenueType != "TAKE_PROFIT" {
		t.Fatalf("raw venue token lost: %q", orders[0].VenueType)
	}
	if orders[1].Type != common.OrderTypeStopMarket {
		t.Fatalf("STOP_LOSS normalized to %s, expected %s", orders[1].Type, common.OrderTypeStopMarket)
	}
}

func TestGetOpenOrdersRejectsUnknownToken(t *testing.T) {
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"symbol":"BTCUSDT","orderId":3,"type":"MYSTERY","side":"BUY","price":"0","origQty":"1","executedQty":"0","status":"NEW"}]`))
	})
	defer done()

	_, err := c.GetOpenOrders(context.Background(), "BTCUSDT")
	if err == nil {
		t.Fatal("expected parse error for unknown venue token, got nil")
	}
}

func TestSubmitOrderSendsVenueToken(t *testing.T) {
	var gotType, gotStop string
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotType = r.PostFormValue("type")
		gotStop = r.PostFormValue("stopPrice")
		w.Write([]byte(`{"symbol":"BTCUSDT","orderId":7,"clientOrderId":"c1","status":"NEW"}`))
	})
	defer done()

	res, err := c.SubmitOrder(context.Background(), common.OrderRequest{
		Symbol:    "BTCUSDT",
		Side:      common.SideSell,
		Type:      common.OrderTypeStopMarket,
		Qty:       1,
		StopPrice: 55000,
	})
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	if gotType != string(OrderTypeStopLoss) {
		t.Fatalf("wire type=%q, expected %q", gotType, OrderTypeStopLoss)
	}
	if gotStop != "55000" {
		t.Fatalf("stopPrice=%q, expected 55000", gotStop)
	}
	if res.ExchangeOrderID != "7" || res.Status != common.StatusNew {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSubmitOrderRejectsUnsupportedUnifiedType(t *testing.T) {
	c := New(Config{APIKey: "k", APISecret: "s"})
	_, err := c.SubmitOrder(context.Background(), common.OrderRequest{
		Symbol: "BTCUSDT",
		Side:   common.SideBuy,
		Type:   common.OrderTypeTrailingStopMarket,
		Qty:    1,
	})
	if err == nil {
		t.Fatal("spot has no trailing stop token; expected error")
	}
}
