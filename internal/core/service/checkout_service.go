package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/grocery-till/internal/core/domain"
	"github.com/rl1809/grocery-till/internal/port"
)

// CheckoutService drives one shopping session: it owns the cart and talks to
// the inventory through the catalog and stock repositories.
type CheckoutService struct {
	catalog port.CatalogRepository
	stock   port.StockRepository
	sales   port.SalesRepository
	logger  *zap.Logger
	cart    *domain.Cart
}

func NewCheckoutService(catalog port.CatalogRepository, stock port.StockRepository, sales port.SalesRepository, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		catalog: catalog,
		stock:   stock,
		sales:   sales,
		logger:  logger,
		cart:    domain.NewCart(),
	}
}

func (s *CheckoutService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	for i := range products {
		stock, err := s.stock.GetStock(ctx, products[i].Name)
		if err != nil {
			return nil, fmt.Errorf("get stock for %s: %w", products[i].Name, err)
		}
		products[i].Stock = stock
	}

	return products, nil
}

func (s *CheckoutService) FindProduct(ctx context.Context, name string) (*domain.Product, error) {
	product, err := s.catalog.FindProduct(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

// AddToCart reserves quantity units of the named product and appends a new
// cart line. On any error neither the stock nor the cart is changed.
func (s *CheckoutService) AddToCart(ctx context.Context, name string, quantity int) (domain.CartItem, error) {
	if quantity <= 0 {
		return domain.CartItem{}, domain.ErrInvalidQuantity
	}

	product, err := s.FindProduct(ctx, name)
	if err != nil {
		return domain.CartItem{}, err
	}

	ok, err := s.stock.DecrementStock(ctx, product.Name, quantity)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("stock decrement failed: %w", err)
	}
	if !ok {
		return domain.CartItem{}, &domain.StockError{Product: product.Name}
	}

	// Stock is only used for display; a failed read must not undo the reservation.
	if remaining, err := s.stock.GetStock(ctx, product.Name); err == nil {
		product.Stock = remaining
	} else {
		s.logger.Warn("read stock after decrement", zap.String("product", product.Name), zap.Error(err))
	}

	item := domain.CartItem{Product: *product, Quantity: quantity}
	s.cart.Add(item)

	s.logger.Debug("added to cart",
		zap.String("product", product.Name),
		zap.Int("quantity", quantity),
		zap.String("line_total", item.LineTotal().StringFixed(2)),
	)

	return item, nil
}

func (s *CheckoutService) Cart() *domain.Cart {
	return s.cart
}

// BeginCheckout freezes the current cart into a transaction.
func (s *CheckoutService) BeginCheckout() *domain.Transaction {
	txn := domain.NewTransaction(s.cart)
	s.logger.Debug("checkout started",
		zap.String("transaction_id", txn.ID),
		zap.Int("items", len(txn.Items)),
		zap.String("total", txn.TotalAmount.StringFixed(2)),
	)
	return txn
}

// Pay settles txn with amount. A short payment leaves everything as it was so
// the customer can check out again. A successful payment is recorded as a sale
// and empties the cart.
func (s *CheckoutService) Pay(ctx context.Context, txn *domain.Transaction, amount decimal.Decimal) (domain.Payment, error) {
	payment, err := txn.ProcessPayment(amount)
	if err != nil {
		s.logger.Debug("payment refused",
			zap.String("transaction_id", txn.ID),
			zap.String("amount", amount.StringFixed(2)),
		)
		return domain.Payment{}, err
	}

	sale := domain.NewSale(txn, payment)
	if err := s.sales.SaveSale(ctx, sale); err != nil {
		// The customer has paid; losing the ledger entry must not fail the checkout.
		s.logger.Error("failed to record sale", zap.String("transaction_id", txn.ID), zap.Error(err))
	} else {
		s.logger.Info("sale recorded", zap.String("transaction_id", txn.ID), zap.String("total", sale.Total.StringFixed(2)))
	}

	s.cart = domain.NewCart()
	return payment, nil
}

// Abandon returns the stock held by an unpaid cart and empties it.
func (s *CheckoutService) Abandon(ctx context.Context) {
	for _, item := range s.cart.Items() {
		if err := s.stock.IncrementStock(ctx, item.Product.Name, item.Quantity); err != nil {
			s.logger.Error("CRITICAL rollback failed",
				zap.String("product", item.Product.Name),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
			continue
		}
		s.logger.Debug("rolled back stock", zap.String("product", item.Product.Name), zap.Int("quantity", item.Quantity))
	}
	s.cart = domain.NewCart()
}
