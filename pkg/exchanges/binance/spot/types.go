package spot

import "fmt"

// OrderType is the closed set of order-type tokens the Binance spot API can
// emit. These are venue tokens, not the unified taxonomy; nothing outside
// this package should route on them.
type OrderType string

const (
	OrderTypeMarket          OrderType = "MARKET"
	OrderTypeLimit           OrderType = "LIMIT"
	OrderTypeStop            OrderType = "STOP"
	OrderTypeStopLoss        OrderType = "STOP_LOSS"
	OrderTypeStopLossLimit   OrderType = "STOP_LOSS_LIMIT"
	OrderTypeTakeProfit      OrderType = "TAKE_PROFIT"
	OrderTypeTakeProfitLimit OrderType = "TAKE_PROFIT_LIMIT"
	OrderTypeLimitMaker      OrderType = "LIMIT_MAKER"
)

// AllOrderTypes enumerates every token the spot segment defines. Adding a
// token here without a case in NormalizeOrderType fails the exhaustiveness
// test in this package.
var AllOrderTypes = []OrderType{
	OrderTypeMarket,
	OrderTypeLimit,
	OrderTypeStop,
	OrderTypeStopLoss,
	OrderTypeStopLossLimit,
	OrderTypeTakeProfit,
	OrderTypeTakeProfitLimit,
	OrderTypeLimitMaker,
}

// ParseOrderType turns a raw wire value into the enumerated venue token.
// Unknown wire values are a response-decoding error and stop here; the
// normalizer never sees them.
func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(s) {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStop, OrderTypeStopLoss,
		OrderTypeStopLossLimit, OrderTypeTakeProfit, OrderTypeTakeProfitLimit,
		OrderTypeLimitMaker:
		return OrderType(s), nil
	}
	return "", fmt.Errorf("binance spot: unknown order type token %q", s)
}
