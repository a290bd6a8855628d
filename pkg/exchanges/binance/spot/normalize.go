package spot

import (
	"fmt"

	"venue-gateway/pkg/exchanges/common"
)

// NormalizeOrderType maps a spot venue token to the unified taxonomy.
//
// The table is deliberately asymmetric. Binance spot's bare STOP and
// STOP_LOSS both trigger a market order, so both collapse to STOP_MARKET.
// TAKE_PROFIT carries no limit price and behaves as a plain limit once
// triggered, while TAKE_PROFIT_LIMIT becomes a triggered limit order; the
// two must stay distinguishable downstream. This table is spot-specific:
// the futures segments map the same-looking tokens differently.
//
// Pure and total over the venue enum: every member of AllOrderTypes has a
// case, and a token without one is a programming defect surfaced as a loud
// error, never a silent default.
func NormalizeOrderType(t OrderType) (common.OrderType, error) {
	switch t {
	case OrderTypeMarket:
		return common.OrderTypeMarket, nil
	case OrderTypeLimit:
		return common.OrderTypeLimit, nil
	case OrderTypeStop:
		return common.OrderTypeStopMarket, nil
	case OrderTypeStopLoss:
		return common.OrderTypeStopMarket, nil
	case OrderTypeStopLossLimit:
		return common.OrderTypeStopLimit, nil
	case OrderTypeTakeProfit:
		return common.OrderTypeLimit, nil
	case OrderTypeTakeProfitLimit:
		return common.OrderTypeStopLimit, nil
	case OrderTypeLimitMaker:
		return common.OrderTypeLimit, nil
	}
	return "", fmt.Errorf("binance spot: no unified mapping for order type %q", t)
}

// toVenueOrderType picks the wire token for an outgoing order. This is the
// gateway's own submit-side concern and intentionally not the inverse of
// NormalizeOrderType, which is many-to-one.
func toVenueOrderType(t common.OrderType) (OrderType, error) {
	switch t {
	case common.OrderTypeMarket:
		return OrderTypeMarket, nil
	case common.OrderTypeLimit:
		return OrderTypeLimit, nil
	case common.OrderTypeStopMarket:
		return OrderTypeStopLoss, nil
	case common.OrderTypeStopLimit:
		return OrderTypeStopLossLimit, nil
	}
	return "", fmt.Errorf("binance spot: order type %q not supported on this segment", t)
}
