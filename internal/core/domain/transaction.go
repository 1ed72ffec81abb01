package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a checkout snapshot of a cart. The total is fixed when the
// transaction is created.
type Transaction struct {
	ID          string
	Items       []CartItem
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

func NewTransaction(cart *Cart) *Transaction {
	items := cart.Items()

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}

	return &Transaction{
		ID:          uuid.NewString(),
		Items:       items,
		TotalAmount: total,
		CreatedAt:   time.Now(),
	}
}

type Payment struct {
	Amount decimal.Decimal
	Change decimal.Decimal
}

// ProcessPayment accepts amount if it covers the total. A short payment
// returns ErrInsufficientPayment and changes nothing.
func (t *Transaction) ProcessPayment(amount decimal.Decimal) (Payment, error) {
	if amount.LessThan(t.TotalAmount) {
		return Payment{}, ErrInsufficientPayment
	}
	return Payment{Amount: amount, Change: amount.Sub(t.TotalAmount)}, nil
}
