package futures_usdt

import "fmt"

// OrderType is the closed set of order-type tokens the Binance USDT-M
// futures API can emit. Several names overlap with the spot segment but the
// semantics differ, which is why each segment keeps its own enum and table.
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

// AllOrderTypes enumerates every token the USDT-M segment defines.
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
	return "", fmt.Errorf("binance usdt futures: unknown order type token %q", s)
}
