package futures_usdt

import (
	"testing"

	"venue-gateway/pkg/exchanges/common"
)

// The futures table diverges from spot on the overlapping names: futures
// STOP is a triggered limit, and futures TAKE_PROFIT maps to STOP_LIMIT
// where spot maps it to LIMIT.
func TestNormalizeOrderType(t *testing.T) {
	tests := []struct {
		in   OrderType
		want common.OrderType
	}{
		{OrderTypeMarket, common.OrderTypeMarket},
		{OrderTypeLimit, common.OrderTypeLimit},
		{OrderTypeStop, common.OrderTypeStopLimit},
		{OrderTypeStopMarket, common.OrderTypeStopMarket},
		{OrderTypeTakeProfit, common.OrderTypeStopLimit},
		{OrderTypeTakeProfitMarket, common.OrderTypeStopMarket},
		{OrderTypeTrailingStopMarket, common.OrderTypeTrailingStopMarket},
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

func TestNormalizeOrderTypeUnmapped(t *testing.T) {
	if _, err := NormalizeOrderType(OrderType("STOP_LOSS")); err == nil {
		t.Fatal("STOP_LOSS is a spot token, not a futures one; expected error")
	}
}

// Round trip for the types this segment can both emit and accept. The
// normalizer itself is many-to-one, so the round trip runs through the
// submit-side mapping first.
func TestSubmitTypeRoundTrip(t *testing.T) {
	for _, ut := range common.AllOrderTypes {
		vt, err := toVenueOrderType(ut)
		if err != nil {
			t.Fatalf("toVenueOrderType(%s): %v", ut, err)
		}
		back, err := NormalizeOrderType(vt)
		if err != nil {
			t.Fatalf("NormalizeOrderType(%s): %v", vt, err)
		}
		if back != ut {
			t.Fatalf("round trip %s -> %s -> %s", ut, vt, back)
		}
	}
}
