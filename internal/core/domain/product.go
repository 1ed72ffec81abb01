package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	Name      string
	UnitPrice decimal.Decimal
	Stock     int
}

func NewProduct(name string, unitPrice decimal.Decimal, stock int) *Product {
	return &Product{Name: name, UnitPrice: unitPrice, Stock: stock}
}

// Matches reports whether name refers to this product, ignoring case and
// surrounding whitespace.
func (p *Product) Matches(name string) bool {
	return strings.EqualFold(p.Name, strings.TrimSpace(name))
}

// ReduceStock takes quantity units out of stock. The product is left untouched
// when the request is not positive or exceeds what is on hand.
func (p *Product) ReduceStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if p.Stock < quantity {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (p *Product) RestoreStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.Stock += quantity
	return nil
}

func (p Product) String() string {
	return fmt.Sprintf("%s - %s (Stock: %d)", p.Name, FormatMoney(p.UnitPrice), p.Stock)
}

// FormatMoney renders an amount as dollars with two decimals.
func FormatMoney(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// ProductKey is the case-folded lookup key shared by every stock backend.
func ProductKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
