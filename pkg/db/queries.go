// Package db provides SQLite-backed persistence for the gateway.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("record not found")

const orderColumns = `
	id, COALESCE(exchange_order_id, ''), symbol, side, order_type,
	COALESCE(venue_type, ''), market, price, stop_price, qty,
	COALESCE(filled_qty, 0), COALESCE(avg_fill_price, 0),
	COALESCE(time_in_force, ''), status, created_at
`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.ExchangeOrderID, &o.Symbol, &o.Side, &o.OrderType,
		&o.VenueType, &o.Market, &o.Price, &o.StopPrice, &o.Qty,
		&o.FilledQty, &o.AvgFillPrice, &o.TimeInForce, &o.Status, &o.CreatedAt)
	return o, err
}

// GetOrder returns a single order by client order id.
func (d *Database) GetOrder(ctx context.Context, id string) (Order, error) {
	row := d.DB.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = ?
	`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}

// GetOrders returns recent orders, newest first.
func (d *Database) GetOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.DB.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// GetOpenOrders returns orders still working at the venue.
func (d *Database) GetOpenOrders(ctx context.Context) ([]Order, error) {
	rows, err := d.DB.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status IN ('NEW', 'PARTIAL')
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query open orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// GetOrdersByType returns recent orders of one unified order type. Risk and
// audit tooling use this to find working stop orders across venues.
func (d *Database) GetOrdersByType(ctx context.Context, orderType string, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.DB.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE order_type = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, orderType, limit)
	if err != nil {
		return nil, fmt.Errorf("query orders by type: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// CreateUser inserts a new user row.
func (d *Database) CreateUser(ctx context.Context, u User) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash)
	return err
}

// GetUserByEmail returns a user by email.
func (d *Database) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := d.DB.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users WHERE email = ?
	`, email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
