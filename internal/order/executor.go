package order

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"venue-gateway/internal/events"
	"venue-gateway/pkg/db"
	exchange "venue-gateway/pkg/exchanges/common"

	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"
)

// Executor persists orders, routes them to the gateway for their market
// segment, and emits updates on the bus.
type Executor struct {
	DB  *db.Database
	Bus *events.Bus

	mu       sync.RWMutex
	gateways map[exchange.MarketType]exchange.Gateway

	clientPrefix string
}

func NewExecutor(database *db.Database, bus *events.Bus) *Executor {
	return &Executor{
		DB:           database,
		Bus:          bus,
		gateways:     make(map[exchange.MarketType]exchange.Gateway),
		clientPrefix: clientIDPrefix(),
	}
}

// Register attaches a gateway for a market segment.
func (e *Executor) Register(market exchange.MarketType, gw exchange.Gateway) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gateways[market] = gw
}

func (e *Executor) gatewayFor(market exchange.MarketType) exchange.Gateway {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gateways[market]
}

// NewOrderID mints a client order id with a stable per-host prefix, so
// fills arriving on the user stream are attributable to this instance.
func (e *Executor) NewOrderID() string {
	return e.clientPrefix + "-" + uuid.NewString()
}

func (e *Executor) Handle(ctx context.Context, o Order) error {
	if e.DB == nil {
		err := fmt.Errorf("executor: DB not configured")
		log.Println(err)
		return err
	}

	if err := o.Validate(); err != nil {
		log.Printf("executor: rejecting malformed order: %v", err)
		if e.Bus != nil {
			e.Bus.Publish(events.EventOrderRejected, o)
		}
		return err
	}

	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	// Persist the intent first; the unified type is what downstream
	// consumers query on.
	row := db.Order{
		ID:          o.ID,
		Symbol:      o.Symbol,
		Side:        string(o.Side),
		OrderType:   string(o.Type),
		Market:      string(o.Market),
		Price:       o.Price,
		StopPrice:   o.StopPrice,
		Qty:         o.Qty,
		TimeInForce: string(o.TimeInForce),
		Status:      "NEW",
		CreatedAt:   o.CreatedAt,
	}
	if err := e.DB.CreateOrder(ctx, row); err != nil {
		return fmt.Errorf("executor: persist order %s: %w", o.ID, err)
	}

	if e.Bus != nil {
		e.Bus.Publish(events.EventOrderSubmitted, o)
	}

	gw := e.gatewayFor(o.Market)
	if gw == nil {
		err := fmt.Errorf("executor: no gateway registered for market %s", o.Market)
		log.Println(err)
		if dbErr := e.DB.UpdateOrderStatus(ctx, o.ID, "REJECTED", ""); dbErr != nil {
			log.Printf("executor: update status error: %v", dbErr)
		}
		if e.Bus != nil {
			e.Bus.Publish(events.EventOrderRejected, o)
		}
		return err
	}

	req := exchange.OrderRequest{
		Symbol:          o.Symbol,
		Side:            o.Side,
		Type:            o.Type,
		Qty:             o.Qty,
		Price:           o.Price,
		StopPrice:       o.StopPrice,
		TimeInForce:     o.TimeInForce,
		IcebergQty:      o.IcebergQty,
		ClientID:        o.ID,
		ReduceOnly:      o.ReduceOnly,
		PositionSide:    o.PositionSide,
		Market:          o.Market,
		WorkingType:     o.WorkingType,
		PriceProtect:    o.PriceProtect,
		ActivationPrice: o.ActivationPrice,
		CallbackRate:    o.CallbackRate,
	}

	res, err := gw.SubmitOrder(ctx, req)
	if err != nil {
		log.Printf("executor: submit to %s failed: %v", o.Market, err)
		if dbErr := e.DB.UpdateOrderStatus(ctx, o.ID, "REJECTED", ""); dbErr != nil {
			log.Printf("executor: update status error: %v", dbErr)
		}
		if e.Bus != nil {
			e.Bus.Publish(events.EventOrderRejected, o)
		}
		return err
	}

	status := string(res.Status)
	if status == "" {
		status = "NEW"
	}
	if err := e.DB.UpdateOrderStatus(ctx, o.ID, status, res.ExchangeOrderID); err != nil {
		log.Printf("executor: update status error: %v", err)
	}
	if e.Bus != nil {
		e.Bus.Publish(events.EventOrderAccepted, o)
	}
	return nil
}

// clientIDPrefix derives a short stable prefix from the machine identity.
func clientIDPrefix() string {
	id, err := machineid.ProtectedID("venue-gateway")
	if err != nil || len(id) < 8 {
		return "vg"
	}
	return "vg-" + id[:8]
}
