package common

import "strings"

// Side denotes order side.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType is the unified order-type taxonomy shared by every component
// downstream of the venue gateways. Venue-specific tokens never leave their
// venue package; each venue maps into this set and never the other way
// around.
type OrderType string

const (
	OrderTypeMarket             OrderType = "MARKET"
	OrderTypeLimit              OrderType = "LIMIT"
	OrderTypeStopMarket         OrderType = "STOP_MARKET"
	OrderTypeStopLimit          OrderType = "STOP_LIMIT"
	OrderTypeTrailingStopMarket OrderType = "TRAILING_STOP_MARKET"
)

// AllOrderTypes is the closed set of unified order types.
var AllOrderTypes = []OrderType{
	OrderTypeMarket,
	OrderTypeLimit,
	OrderTypeStopMarket,
	OrderTypeStopLimit,
	OrderTypeTrailingStopMarket,
}

// Valid reports whether t is a member of the unified taxonomy.
func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStopMarket,
		OrderTypeStopLimit, OrderTypeTrailingStopMarket:
		return true
	}
	return false
}

// Triggered reports whether the order only goes live after a trigger price
// condition is met.
func (t OrderType) Triggered() bool {
	switch t {
	case OrderTypeStopMarket, OrderTypeStopLimit, OrderTypeTrailingStopMarket:
		return true
	}
	return false
}

// TimeInForce captures TIF semantics.
type TimeInForce string

const (
	TIFGTC TimeInForce = "GTC" // Good Till Cancelled
	TIFIOC TimeInForce = "IOC" // Immediate Or Cancel
	TIFFOK TimeInForce = "FOK" // Fill Or Kill
	TIFGTX TimeInForce = "GTX" // Post Only / Maker Only
)

// OrderStatus normalizes exchange status into a small set.
type OrderStatus string

const (
	StatusNew      OrderStatus = "NEW"
	StatusPartial  OrderStatus = "PARTIAL"
	StatusFilled   OrderStatus = "FILLED"
	StatusCanceled OrderStatus = "CANCELED"
	StatusRejected OrderStatus = "REJECTED"
	StatusExpired  OrderStatus = "EXPIRED"
	StatusUnknown  OrderStatus = "UNKNOWN"
)

// ParseOrderStatus maps a venue status token onto the unified status set.
// Every persistence and comparison path must go through this so one order
// never holds the wire vocabulary in one place and the unified one in
// another. Unrecognized tokens map to StatusUnknown.
func ParseOrderStatus(s string) OrderStatus {
	switch strings.ToUpper(s) {
	case "NEW":
		return StatusNew
	case "PARTIAL", "PARTIALLY_FILLED":
		return StatusPartial
	case "FILLED":
		return StatusFilled
	case "CANCELED":
		return StatusCanceled
	case "REJECTED":
		return StatusRejected
	case "EXPIRED", "EXPIRED_IN_MATCH":
		return StatusExpired
	default:
		return StatusUnknown
	}
}

// MarketType distinguishes the venue segments this gateway can route to.
type MarketType string

const (
	MarketSpot    MarketType = "SPOT"
	MarketUSDTFut MarketType = "USDT_FUTURES"
	MarketCoinFut MarketType = "COIN_FUTURES"
)

// OrderRequest captures an order intent to be sent to an exchange. Type is
// the unified order type; each gateway translates it to its own wire token
// when building the request.
type OrderRequest struct {
	Symbol       string
	Side         Side
	Type         OrderType
	Qty          float64
	Price        float64 // required for LIMIT and triggered-limit types
	StopPrice    float64 // required for STOP_MARKET/STOP_LIMIT
	TimeInForce  TimeInForce
	IcebergQty   float64 // spot iceberg orders (visible quantity)
	ClientID     string  // optional client order id
	ReduceOnly   bool
	PositionSide string // LONG/SHORT for hedge mode futures
	Market       MarketType

	// Futures-specific
	WorkingType     string // MARK_PRICE or CONTRACT_PRICE
	PriceProtect    bool
	ActivationPrice float64 // TRAILING_STOP_MARKET
	CallbackRate    float64 // TRAILING_STOP_MARKET (percentage)
}

// OrderResult returns the exchange ack.
type OrderResult struct {
	ExchangeOrderID string
	Status          OrderStatus
	ClientID        string
}

// OpenOrder is a venue-agnostic view of a resting order. Type is already
// normalized; the raw venue token is kept alongside for audit logs.
type OpenOrder struct {
	Symbol          string
	ExchangeOrderID string
	ClientID        string
	Side            Side
	Type            OrderType
	VenueType       string // raw wire token as the venue reported it
	Price           float64
	OrigQty         float64
	ExecQty         float64
	Status          OrderStatus
}

// Fill represents a trade fill update.
type Fill struct {
	ExchangeOrderID string
	TradeID         string
	Symbol          string
	Side            Side
	Qty             float64
	Price           float64
}
