package db

import (
	"context"
	"time"
)

// Order represents a trading order stored in the DB. OrderType holds the
// unified taxonomy value; VenueType keeps the raw token the venue reported,
// for audit only.
type Order struct {
	ID              string
	ExchangeOrderID string
	Symbol          string
	Side            string
	OrderType       string
	VenueType       string
	Market          string
	Price           float64
	StopPrice       float64
	Qty             float64
	FilledQty       float64
	AvgFillPrice    float64
	TimeInForce     string
	Status          string
	CreatedAt       time.Time
}

// Trade represents a fill stored in the DB.
type Trade struct {
	ID        string
	OrderID   string
	Symbol    string
	Side      string
	Price     float64
	Qty       float64
	Fee       float64
	CreatedAt time.Time
}

// User represents an application user.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateOrder inserts a new order row.
func (d *Database) CreateOrder(ctx context.Context, o Order) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO orders (
			id, exchange_order_id, symbol, side, order_type, venue_type, market,
			price, stop_price, qty, filled_qty, time_in_force, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))
	`,
		o.ID, o.ExchangeOrderID, o.Symbol, o.Side, o.OrderType, o.VenueType, o.Market,
		o.Price, o.StopPrice, o.Qty, o.FilledQty, o.TimeInForce, o.Status, o.CreatedAt,
	)
	return err
}

// CreateTrade inserts a new trade row.
func (d *Database) CreateTrade(ctx context.Context, t Trade) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO trades (
			id, order_id, symbol, side, price, qty, fee, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))
	`,
		t.ID, t.OrderID, t.Symbol, t.Side, t.Price, t.Qty, t.Fee, t.CreatedAt,
	)
	return err
}

// UpdateOrderStatus sets the order status and, when known, the exchange id.
func (d *Database) UpdateOrderStatus(ctx context.Context, id, status, exchangeOrderID string) error {
	_, err := d.DB.ExecContext(ctx, `
		UPDATE orders SET status = ?, exchange_order_id = COALESCE(NULLIF(?, ''), exchange_order_id)
		WHERE id = ?
	`, status, exchangeOrderID, id)
	return err
}

// RecordOrderVenueType stores the raw venue token and the unified type the
// gateway resolved it to, as reported on the user stream.
func (d *Database) RecordOrderVenueType(ctx context.Context, id, orderType, venueType string) error {
	_, err := d.DB.ExecContext(ctx, `
		UPDATE orders SET order_type = ?, venue_type = ?
		WHERE id = ?
	`, orderType, venueType, id)
	return err
}

// UpdateOrderFill records fill progress reported by the venue.
func (d *Database) UpdateOrderFill(ctx context.Context, id, status string, filledQty, fillPrice float64) error {
	_, err := d.DB.ExecContext(ctx, `
		UPDATE orders SET status = ?, filled_qty = ?, avg_fill_price = ?
		WHERE id = ?
	`, status, filledQty, fillPrice, id)
	return err
}
