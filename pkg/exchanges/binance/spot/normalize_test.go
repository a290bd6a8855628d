package spot

import (
	"strings"
	"sync"
	"testing"

	"venue-gateway/pkg/exchanges/common"
)

// The exact spot table. STOP and STOP_LOSS both trigger market orders on
// this segment, and TAKE_PROFIT without a limit price behaves as a plain
// limit once triggered; these mappings are venue semantics, not typos.
func TestNormalizeOrderType(t *testing.T) {
	tests := []struct {
		in   OrderType
		want common.OrderType
	}{
		{OrderTypeMarket, common.OrderTypeMarket},
		{OrderTypeLimit, common.OrderTypeLimit},
		{OrderTypeStop, common.OrderTypeStopMarket},
		{OrderTypeStopLoss, common.OrderTypeStopMarket},
		{OrderTypeStopLossLimit, common.OrderTypeStopLimit},
		{OrderTypeTakeProfit, common.OrderTypeLimit},
		{OrderTypeTakeProfitLimit, common.OrderTypeStopLimit},
		{OrderTypeLimitMaker, common.OrderTypeLimit},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, err := NormalizeOrderType(tt.in)
			if err != nil {
				t.Fatalf("NormalizeOrderType(%s) returned error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("NormalizeOrderType(%s)=%s, expected %s", tt.in, got, tt.want)
			}
		})
	}
}

// Every token in the closed set must have a mapping; a new token added to
// AllOrderTypes without a NormalizeOrderType case fails here.
func TestNormalizeOrderTypeTotality(t *testing.T) {
	for _, vt := range AllOrderTypes {
		got, err := NormalizeOrderType(vt)
		if err != nil {
			t.Fatalf("venue token %s has no unified mapping: %v", vt, err)
		}
		if !got.Valid() {
			t.Fatalf("venue token %s mapped to %q, not a member of the unified taxonomy", vt, got)
		}
	}
}

func TestNormalizeOrderTypeCollapse(t *testing.T) {
	a, err := NormalizeOrderType(OrderTypeStop)
	if err != nil {
		t.Fatalf("NormalizeOrderType(STOP): %v", err)
	}
	b, err := NormalizeOrderType(OrderTypeStopLoss)
	if err != nil {
		t.Fatalf("NormalizeOrderType(STOP_LOSS): %v", err)
	}
	// STOP and STOP_LOSS are distinct venue tokens with identical semantics
	// on this segment; they must collapse.
	if a != b {
		t.Fatalf("STOP=%s and STOP_LOSS=%s should map to the same unified type", a, b)
	}

	tp, err := NormalizeOrderType(OrderTypeTakeProfit)
	if err != nil {
		t.Fatalf("NormalizeOrderType(TAKE_PROFIT): %v", err)
	}
	tpl, err := NormalizeOrderType(OrderTypeTakeProfitLimit)
	if err != nil {
		t.Fatalf("NormalizeOrderType(TAKE_PROFIT_LIMIT): %v", err)
	}
	// The limit-price variant must stay distinguishable downstream.
	if tp == tpl {
		t.Fatalf("TAKE_PROFIT and TAKE_PROFIT_LIMIT both mapped to %s; they must differ", tp)
	}
}

func TestNormalizeOrderTypeUnmapped(t *testing.T) {
	_, err := NormalizeOrderType(OrderType("OCO"))
	if err == nil {
		t.Fatal("expected error for token outside the venue enum")
	}
	if !strings.Contains(err.Error(), "OCO") || !strings.Contains(err.Error(), "spot") {
		t.Fatalf("error should name the segment and the offending token, got: %v", err)
	}
}

// Repeated and concurrent calls must agree; the mapping is pure data.
func TestNormalizeOrderTypeDeterministic(t *testing.T) {
	want := make(map[OrderType]common.OrderType, len(AllOrderTypes))
	for _, vt := range AllOrderTypes {
		got, err := NormalizeOrderType(vt)
		if err != nil {
			t.Fatalf("NormalizeOrderType(%s): %v", vt, err)
		}
		want[vt] = got
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for _, vt := range AllOrderTypes {
					got, err := NormalizeOrderType(vt)
					if err != nil || got != want[vt] {
						select {
						case errCh <- err:
						default:
						}
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	select {
	case err := <-errCh:
		t.Fatalf("concurrent normalization disagreed: %v", err)
	default:
	}
}

func TestParseOrderType(t *testing.T) {
	for _, vt := range AllOrderTypes {
		got, err := ParseOrderType(string(vt))
		if err != nil {
			t.Fatalf("ParseOrderType(%s): %v", vt, err)
		}
		if got != vt {
			t.Fatalf("ParseOrderType(%s)=%s", vt, got)
		}
	}

	if _, err := ParseOrderType("ICEBERG"); err == nil {
		t.Fatal("expected error for unknown wire token")
	}
	if _, err := ParseOrderType("limit"); err == nil {
		t.Fatal("wire tokens are case-sensitive; lowercase must not parse")
	}
}
