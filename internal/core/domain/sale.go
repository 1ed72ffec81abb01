package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is the record of a paid transaction.
type Sale struct {
	ID        string
	Items     []CartItem
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Change    decimal.Decimal
	CreatedAt time.Time
}

func NewSale(txn *Transaction, payment Payment) Sale {
	return Sale{
		ID:        txn.ID,
		Items:     txn.Items,
		Total:     txn.TotalAmount,
		Paid:      payment.Amount,
		Change:    payment.Change,
		CreatedAt: time.Now(),
	}
}
