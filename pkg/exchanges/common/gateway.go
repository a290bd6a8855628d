package common

import "context"

// Gateway abstracts one venue/segment. Implementations accept and return
// the unified taxonomy only.
type Gateway interface {
	SubmitOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
	CancelOrder(ctx context.Context, symbol, exchangeOrderID string) error
	GetOpenOrders(ctx context.Context, symbol string) ([]OpenOrder, error)
}
