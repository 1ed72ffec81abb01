package domain

import "errors"

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInsufficientPayment = errors.New("insufficient funds")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
)

// StockError reports which product could not cover a request.
type StockError struct {
	Product string
}

func (e *StockError) Error() string {
	return "insufficient stock for " + e.Product
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}
