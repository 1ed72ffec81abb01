package domain

import "github.com/shopspring/decimal"

type CartItem struct {
	Product  Product
	Quantity int
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Product.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart keeps items in the order they were added. Adding the same product
// twice yields two lines; nothing is merged.
type Cart struct {
	items []CartItem
}

func NewCart() *Cart {
	return &Cart{}
}

func (c *Cart) Add(item CartItem) {
	c.items = append(c.items, item)
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.LineTotal())
	}
	return total
}
