package futures_coin

import (
	"testing"

	"venue-gateway/pkg/exchanges/common"
)

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

func TestNormalizeOrderTypeTable(t *testing.T) {
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
		got, err := NormalizeOrderType(tt.in)
		if err != nil {
			t.Fatalf("NormalizeOrderType(%s): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("NormalizeOrderType(%s)=%s, expected %s", tt.in, got, tt.want)
		}
	}
}

func TestParseOrderTypeRejectsSpotTokens(t *testing.T) {
	for _, s := range []string{"STOP_LOSS", "STOP_LOSS_LIMIT", "TAKE_PROFIT_LIMIT", "LIMIT_MAKER"} {
		if _, err := ParseOrderType(s); err == nil {
			t.Fatalf("spot token %s should not parse on the coin futures segment", s)
		}
	}
}
