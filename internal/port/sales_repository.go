package port

import (
	"context"

	"github.com/rl1809/grocery-till/internal/core/domain"
)

type SalesRepository interface {
	// SaveSale records a paid transaction
	SaveSale(ctx context.Context, sale domain.Sale) error
}
