package port

import (
	"context"

	"github.com/rl1809/grocery-till/internal/core/domain"
)

type CatalogRepository interface {
	// ListProducts returns every product in catalog order
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// FindProduct looks a product up by case-insensitive name, returns nil if absent
	FindProduct(ctx context.Context, name string) (*domain.Product, error)
}
