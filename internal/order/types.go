package order

import (
	"fmt"
	"time"

	"venue-gateway/pkg/exchanges/common"
)

// Order represents a trading order intent. Type is always the unified
// order type; raw venue tokens never appear here.
type Order struct {
	ID              string
	Symbol          string
	Side            common.Side
	Type            common.OrderType
	Price           float64
	StopPrice       float64 // trigger price for STOP_MARKET/STOP_LIMIT
	Qty             float64
	FilledQty       float64
	TimeInForce     common.TimeInForce
	IcebergQty      float64
	ReduceOnly      bool
	PositionSide    string // LONG/SHORT for hedge mode
	Market          common.MarketType
	WorkingType     string // MARK_PRICE/CONTRACT_PRICE
	PriceProtect    bool
	ActivationPrice float64 // trailing stop
	CallbackRate    float64 // trailing stop callback %
	Status          string  // NEW, SUBMITTED, ACCEPTED, PARTIAL, FILLED, CANCELED, REJECTED, EXPIRED
	CreatedAt       time.Time
}

// Validate checks the intent is well-formed before it reaches a gateway.
func (o *Order) Validate() error {
	if o.Symbol == "" {
		return fmt.Errorf("order %s: symbol required", o.ID)
	}
	if o.Side != common.SideBuy && o.Side != common.SideSell {
		return fmt.Errorf("order %s: invalid side %q", o.ID, o.Side)
	}
	if !o.Type.Valid() {
		return fmt.Errorf("order %s: %q is not a unified order type", o.ID, o.Type)
	}
	if o.Qty <= 0 {
		return fmt.Errorf("order %s: quantity must be positive", o.ID)
	}
	switch o.Type {
	case common.OrderTypeLimit, common.OrderTypeStopLimit:
		if o.Price <= 0 {
			return fmt.Errorf("order %s: %s requires a limit price", o.ID, o.Type)
		}
	}
	if o.Type.Triggered() && o.Type != common.OrderTypeTrailingStopMarket && o.StopPrice <= 0 {
		return fmt.Errorf("order %s: %s requires a stop price", o.ID, o.Type)
	}
	if o.Type == common.OrderTypeTrailingStopMarket && o.CallbackRate <= 0 {
		return fmt.Errorf("order %s: trailing stop requires a callback rate", o.ID)
	}
	return nil
}

// IsFullyFilled checks if order is fully filled.
func (o *Order) IsFullyFilled() bool {
	return o.FilledQty >= o.Qty
}

// IsPartiallyFilled checks if order is partially filled.
func (o *Order) IsPartiallyFilled() bool {
	return o.FilledQty > 0 && o.FilledQty < o.Qty
}

// RemainingQty returns unfilled quantity.
func (o *Order) RemainingQty() float64 {
	return o.Qty - o.FilledQty
}

// UpdateFill updates filled quantity and status.
func (o *Order) UpdateFill(filledQty float64) {
	o.FilledQty = filledQty

	if o.IsFullyFilled() {
		o.Status = "FILLED"
	} else if o.IsPartiallyFilled() {
		o.Status = "PARTIAL"
	}
}
