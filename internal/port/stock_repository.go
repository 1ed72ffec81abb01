package port

import "context"

type StockRepository interface {
	// DecrementStock atomically decreases stock, returns false if insufficient
	DecrementStock(ctx context.Context, name string, quantity int) (bool, error)

	// IncrementStock puts stock back (for rollback when the cart cannot take the item)
	IncrementStock(ctx context.Context, name string, quantity int) error

	// GetStock returns the units currently on hand
	GetStock(ctx context.Context, name string) (int, error)
}
