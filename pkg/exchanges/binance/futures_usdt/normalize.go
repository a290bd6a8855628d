package futures_usdt

import (
	"fmt"

	"venue-gateway/pkg/exchanges/common"
)

// NormalizeOrderType maps a USDT-M futures venue token to the unified
// taxonomy. On futures, STOP and TAKE_PROFIT both carry a limit price and
// become limit orders once triggered, so both map to STOP_LIMIT; the
// _MARKET variants are the ones that hit the book at market. This is the
// opposite shape from spot, where bare STOP triggers a market order.
func NormalizeOrderType(t OrderType) (common.OrderType, error) {
	switch t {
	case OrderTypeMarket:
		return common.OrderTypeMarket, nil
	case OrderTypeLimit:
		return common.OrderTypeLimit, nil
	case OrderTypeStop:
		return common.OrderTypeStopLimit, nil
	case OrderTypeStopMarket:
		return common.OrderTypeStopMarket, nil
	case OrderTypeTakeProfit:
		return common.OrderTypeStopLimit, nil
	case OrderTypeTakeProfitMarket:
		return common.OrderTypeStopMarket, nil
	case OrderTypeTrailingStopMarket:
		return common.OrderTypeTrailingStopMarket, nil
	}
	return "", fmt.Errorf("binance usdt futures: no unified mapping for order type %q", t)
}

// toVenueOrderType picks the wire token for an outgoing order.
func toVenueOrderType(t common.OrderType) (OrderType, error) {
	switch t {
	case common.OrderTypeMarket:
		return OrderTypeMarket, nil
	case common.OrderTypeLimit:
		return OrderTypeLimit, nil
	case common.OrderTypeStopMarket:
		return OrderTypeStopMarket, nil
	case common.OrderTypeStopLimit:
		return OrderTypeStop, nil
	case common.OrderTypeTrailingStopMarket:
		return OrderTypeTrailingStopMarket, nil
	}
	return "", fmt.Errorf("binance usdt futures: order type %q not supported on this segment", t)
}
