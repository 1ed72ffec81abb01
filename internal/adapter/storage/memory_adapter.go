package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/rl1809/grocery-till/internal/core/domain"
)

// MemoryAdapter keeps the catalog, stock and sales in process. It serves
// as catalog, stock and sales repository at once.
type MemoryAdapter struct {
	mu       sync.Mutex
	products []*domain.Product
	sales    []domain.Sale
}

func NewMemoryAdapter(products []domain.Product) *MemoryAdapter {
	m := &MemoryAdapter{products: make([]*domain.Product, 0, len(products))}
	for _, p := range products {
		m.products = append(m.products, domain.NewProduct(p.Name, p.UnitPrice, p.Stock))
	}
	return m
}

func (m *MemoryAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *MemoryAdapter) FindProduct(ctx context.Context, name string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p := m.lookup(name); p != nil {
		found := *p
		return &found, nil
	}
	return nil, nil
}

func (m *MemoryAdapter) DecrementStock(ctx context.Context, name string, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.lookup(name)
	if p == nil {
		return false, nil
	}

	err := p.ReduceStock(quantity)
	if errors.Is(err, domain.ErrInsufficientStock) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *MemoryAdapter) IncrementStock(ctx context.Context, name string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.lookup(name)
	if p == nil {
		return domain.ErrProductNotFound
	}
	return p.RestoreStock(quantity)
}

func (m *MemoryAdapter) GetStock(ctx context.Context, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.lookup(name)
	if p == nil {
		return 0, domain.ErrProductNotFound
	}
	return p.Stock, nil
}

func (m *MemoryAdapter) SaveSale(ctx context.Context, sale domain.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sales = append(m.sales, sale)
	return nil
}

// Sales returns the sales recorded so far, oldest first.
func (m *MemoryAdapter) Sales() []domain.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Sale, len(m.sales))
	copy(out, m.sales)
	return out
}

// lookup returns the first match; callers hold mu.
func (m *MemoryAdapter) lookup(name string) *domain.Product {
	for _, p := range m.products {
		if p.Matches(name) {
			return p
		}
	}
	return nil
}
