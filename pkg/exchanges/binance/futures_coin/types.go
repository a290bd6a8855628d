package futures_coin

import (
	"fmt"

	"venue-gateway/pkg/exchanges/common"
)

// OrderType is the closed set of order-type tokens the Binance Coin-M
// futures API can emit. The taxonomy currently matches USDT-M but the
// segments version independently, so each keeps its own enum and table.
type OrderType string

const (
	OrderTypeMarket             OrderType = "MARKET"
	OrderTypeLimit              OrderType = "LIMIT"
	OrderTypeStop               OrderType = "STOP"
	OrderTypeStopMarket         OrderType = "STOP_MARKET"
	OrderTypeTakeProfit         OrderType = "TAKE_PROFIT"
	OrderTypeTakeProfitMarket   OrderType = "TAKE_PROFIT_MARKET"
	OrderTypeTrailingStopMarket OrderType = "TRAILING_STOP_MARKET"
)

// AllOrderTypes enumerates every token the Coin-M segment defines.
var AllOrderTypes = []OrderType{
	OrderTypeMarket,
	OrderTypeLimit,
	OrderTypeStop,
	OrderTypeStopMarket,
	OrderTypeTakeProfit,
	OrderTypeTakeProfitMarket,
	OrderTypeTrailingStopMarket,
}

// ParseOrderType turns a raw wire value into the enumerated venue token.
func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(s) {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStop, OrderTypeStopMarket,
		OrderTypeTakeProfit, OrderTypeTakeProfitMarket, OrderTypeTrailingStopMarket:
		return OrderType(s), nil
	}
	return "", fmt.Errorf("binance coin futures: unknown order type token %q", s)
}

// NormalizeOrderType maps a Coin-M venue token to the unified taxonomy.
// Triggered-limit tokens (STOP, TAKE_PROFIT) map to STOP_LIMIT and the
// _MARKET variants to STOP_MARKET, the same shape as USDT-M.
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
	return "", fmt.Errorf("binance coin futures: no unified mapping for order type %q", t)
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
	return "", fmt.Errorf("binance coin futures: order type %q not supported on this segment", t)
}
