package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/grocery-till/internal/core/domain"
)

// Mock repositories
type mockInventory struct {
	mu       sync.Mutex
	products []domain.Product
	stockErr error
}

func newMockInventory() *mockInventory {
	return &mockInventory{
		products: []domain.Product{
			{Name: "Tomato", UnitPrice: decimal.RequireFromString("1.20"), Stock: 100},
			{Name: "Onion", UnitPrice: decimal.RequireFromString("0.80"), Stock: 50},
			{Name: "Potato", UnitPrice: decimal.RequireFromString("0.50"), Stock: 200},
		},
	}
}

func (m *mockInventory) index(name string) int {
	for i := range m.products {
		if strings.EqualFold(m.products[i].Name, strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

func (m *mockInventory) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *mockInventory) FindProduct(ctx context.Context, name string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.index(name); i >= 0 {
		p := m.products[i]
		return &p, nil
	}
	return nil, nil
}

func (m *mockInventory) DecrementStock(ctx context.Context, name string, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stockErr != nil {
		return false, m.stockErr
	}
	i := m.index(name)
	if i < 0 || m.products[i].Stock < quantity {
		return false, nil
	}
	m.products[i].Stock -= quantity
	return true, nil
}

func (m *mockInventory) IncrementStock(ctx context.Context, name string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(name)
	if i < 0 {
		return domain.ErrProductNotFound
	}
	m.products[i].Stock += quantity
	return nil
}

func (m *mockInventory) GetStock(ctx context.Context, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(name)
	if i < 0 {
		return 0, domain.ErrProductNotFound
	}
	return m.products[i].Stock, nil
}

func (m *mockInventory) stockOf(name string) int {
	stock, _ := m.GetStock(context.Background(), name)
	return stock
}

type mockSales struct {
	sales []domain.Sale
	err   error
}

func (m *mockSales) SaveSale(ctx context.Context, sale domain.Sale) error {
	if m.err != nil {
		return m.err
	}
	m.sales = append(m.sales, sale)
	return nil
}

func newTestService() (*CheckoutService, *mockInventory, *mockSales) {
	inv := newMockInventory()
	sales := &mockSales{}
	return NewCheckoutService(inv, inv, sales, zap.NewNop()), inv, sales
}

func TestAddToCart_Success(t *testing.T) {
	svc, inv, _ := newTestService()

	item, err := svc.AddToCart(context.Background(), "potato", 10)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if item.Product.Name != "Potato" {
		t.Errorf("expected Potato, got %s", item.Product.Name)
	}
	if item.Product.Stock != 190 {
		t.Errorf("expected snapshot stock 190, got %d", item.Product.Stock)
	}
	if inv.stockOf("Potato") != 190 {
		t.Errorf("expected stock 190, got %d", inv.stockOf("Potato"))
	}
	if !svc.Cart().Total().Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("expected total 5.00, got %s", svc.Cart().Total())
	}
}

func TestAddToCart_InsufficientStock(t *testing.T) {
	svc, inv, _ := newTestService()

	_, err := svc.AddToCart(context.Background(), "Potato", 300)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got: %v", err)
	}

	var stockErr *domain.StockError
	if !errors.As(err, &stockErr) || stockErr.Product != "Potato" {
		t.Errorf("expected StockError for Potato, got: %v", err)
	}
	if inv.stockOf("Potato") != 200 {
		t.Errorf("expected stock 200, got %d", inv.stockOf("Potato"))
	}
	if !svc.Cart().IsEmpty() {
		t.Errorf("expected empty cart, got %d items", svc.Cart().Len())
	}
}

func TestAddToCart_ProductNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.AddToCart(context.Background(), "carrot", 1)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got: %v", err)
	}
	if !svc.Cart().IsEmpty() {
		t.Error("expected empty cart")
	}
}

func TestAddToCart_InvalidQuantity(t *testing.T) {
	svc, inv, _ := newTestService()

	for _, q := range []int{0, -5} {
		_, err := svc.AddToCart(context.Background(), "Onion", q)
		if !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Errorf("quantity %d: expected ErrInvalidQuantity, got: %v", q, err)
		}
	}

	if inv.stockOf("Onion") != 50 {
		t.Errorf("expected stock 50, got %d", inv.stockOf("Onion"))
	}
	if !svc.Cart().IsEmpty() {
		t.Error("expected empty cart")
	}
}

func TestAddToCart_StockBackendError(t *testing.T) {
	svc, inv, _ := newTestService()
	inv.stockErr = errors.New("connection refused")

	_, err := svc.AddToCart(context.Background(), "Tomato", 1)
	if err == nil || errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected backend error, got: %v", err)
	}
	if !svc.Cart().IsEmpty() {
		t.Error("expected empty cart")
	}
}

func TestAddToCart_SequenceNeverOversells(t *testing.T) {
	svc, inv, _ := newTestService()
	requests := []int{20, 20, 15, 10, 1}

	accepted := 0
	for _, q := range requests {
		if _, err := svc.AddToCart(context.Background(), "Onion", q); err == nil {
			accepted += q
		}
	}

	if accepted != 50 {
		t.Errorf("expected 50 accepted, got %d", accepted)
	}
	if inv.stockOf("Onion") != 0 {
		t.Errorf("expected stock 0, got %d", inv.stockOf("Onion"))
	}
	if svc.Cart().Len() != 3 {
		t.Errorf("expected 3 lines, got %d", svc.Cart().Len())
	}
}

func TestAddToCart_DuplicateLinesNotMerged(t *testing.T) {
	svc, _, _ := newTestService()

	svc.AddToCart(context.Background(), "Tomato", 1)
	svc.AddToCart(context.Background(), "TOMATO", 2)

	items := svc.Cart().Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}
	if items[0].Quantity != 1 || items[1].Quantity != 2 {
		t.Errorf("unexpected quantities %d, %d", items[0].Quantity, items[1].Quantity)
	}
}

func TestListProducts(t *testing.T) {
	svc, _, _ := newTestService()
	svc.AddToCart(context.Background(), "Tomato", 5)

	products, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}

	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	if products[0].Name != "Tomato" || products[0].Stock != 95 {
		t.Errorf("expected Tomato with 95, got %s with %d", products[0].Name, products[0].Stock)
	}
}

func TestPay_Success(t *testing.T) {
	svc, _, sales := newTestService()
	svc.AddToCart(context.Background(), "Potato", 10)

	txn := svc.BeginCheckout()
	payment, err := svc.Pay(context.Background(), txn, decimal.RequireFromString("10.00"))
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	if !payment.Change.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("expected change 5.00, got %s", payment.Change)
	}
	if len(sales.sales) != 1 {
		t.Fatalf("expected 1 sale, got %d", len(sales.sales))
	}
	if sales.sales[0].ID != txn.ID {
		t.Errorf("expected sale id %s, got %s", txn.ID, sales.sales[0].ID)
	}
	if !svc.Cart().IsEmpty() {
		t.Error("expected cart to be emptied after payment")
	}
}

func TestPay_InsufficientFunds(t *testing.T) {
	svc, _, sales := newTestService()
	svc.AddToCart(context.Background(), "Potato", 10)

	txn := svc.BeginCheckout()
	_, err := svc.Pay(context.Background(), txn, decimal.RequireFromString("4.99"))
	if !errors.Is(err, domain.ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment, got: %v", err)
	}

	if len(sales.sales) != 0 {
		t.Errorf("expected no sale, got %d", len(sales.sales))
	}
	if svc.Cart().Len() != 1 {
		t.Errorf("expected cart to keep its item, got %d", svc.Cart().Len())
	}

	// Retry with enough money
	_, err = svc.Pay(context.Background(), svc.BeginCheckout(), decimal.RequireFromString("5"))
	if err != nil {
		t.Errorf("retry failed: %v", err)
	}
}

func TestPay_SaleRecordingFailureStillPays(t *testing.T) {
	svc, _, sales := newTestService()
	sales.err = errors.New("disk full")
	svc.AddToCart(context.Background(), "Onion", 1)

	_, err := svc.Pay(context.Background(), svc.BeginCheckout(), decimal.RequireFromString("1"))
	if err != nil {
		t.Errorf("expected payment to succeed, got: %v", err)
	}
}

func TestAbandon_RestoresStock(t *testing.T) {
	svc, inv, _ := newTestService()
	svc.AddToCart(context.Background(), "Tomato", 10)
	svc.AddToCart(context.Background(), "Tomato", 5)
	svc.AddToCart(context.Background(), "Onion", 3)

	svc.Abandon(context.Background())

	if inv.stockOf("Tomato") != 100 {
		t.Errorf("expected stock 100, got %d", inv.stockOf("Tomato"))
	}
	if inv.stockOf("Onion") != 50 {
		t.Errorf("expected stock 50, got %d", inv.stockOf("Onion"))
	}
	if !svc.Cart().IsEmpty() {
		t.Error("expected empty cart")
	}
}
