package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/grocery-till/internal/core/domain"
	"github.com/rl1809/grocery-till/internal/core/service"
)

type state int

const (
	stateMenu state = iota
	stateViewProducts
	stateAddToCart
	stateViewCart
	stateCheckout
	stateExit
)

// menu maps the option typed by the customer to the state it selects.
var menu = map[int]state{
	1: stateViewProducts,
	2: stateAddToCart,
	3: stateViewCart,
	4: stateCheckout,
	5: stateExit,
}

var errEndOfInput = errors.New("end of input")

// Console runs the interactive shopping session over a line-oriented reader
// and writer.
type Console struct {
	checkout *service.CheckoutService
	in       *bufio.Scanner
	out      io.Writer
	logger   *zap.Logger
}

func NewConsole(checkout *service.CheckoutService, in io.Reader, out io.Writer, logger *zap.Logger) *Console {
	return &Console{
		checkout: checkout,
		in:       bufio.NewScanner(in),
		out:      out,
		logger:   logger,
	}
}

// Run loops over the menu until the customer exits, pays successfully, input
// ends or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	c.println("Welcome to the Vegetable and Grocery Market")
	defer c.println("Thank you for shopping with us!")

	current := stateMenu
	for current != stateExit {
		if err := ctx.Err(); err != nil {
			c.checkout.Abandon(context.WithoutCancel(ctx))
			return err
		}

		next, err := c.step(ctx, current)
		if errors.Is(err, errEndOfInput) {
			next = stateExit
		} else if err != nil {
			return err
		}

		if next == stateExit && !c.checkout.Cart().IsEmpty() {
			c.checkout.Abandon(ctx)
		}
		current = next
	}

	return c.in.Err()
}

func (c *Console) step(ctx context.Context, s state) (state, error) {
	switch s {
	case stateMenu:
		return c.showMenu()
	case stateViewProducts:
		c.viewProducts(ctx)
		return stateMenu, nil
	case stateAddToCart:
		return stateMenu, c.addToCart(ctx)
	case stateViewCart:
		c.viewCart()
		return stateMenu, nil
	case stateCheckout:
		return c.checkoutCart(ctx)
	}
	return stateExit, fmt.Errorf("unknown state %d", s)
}

func (c *Console) showMenu() (state, error) {
	c.println()
	c.println("1. View Products")
	c.println("2. Add to Cart")
	c.println("3. View Cart")
	c.println("4. Checkout")
	c.println("5. Exit")

	line, err := c.prompt("Choose an option: ")
	if err != nil {
		return stateExit, err
	}

	option, err := strconv.Atoi(line)
	next, ok := menu[option]
	if err != nil || !ok {
		c.logger.Debug("invalid menu option", zap.String("input", line))
		c.println("Invalid option. Please try again.")
		return stateMenu, nil
	}
	return next, nil
}

func (c *Console) viewProducts(ctx context.Context) {
	products, err := c.checkout.ListProducts(ctx)
	if err != nil {
		c.internalError("list products", err)
		return
	}

	c.println()
	c.println("Available Products:")
	for _, p := range products {
		c.println(p.String())
	}
}

func (c *Console) addToCart(ctx context.Context) error {
	name, err := c.prompt("Enter product name to add: ")
	if err != nil {
		return err
	}
	rawQuantity, err := c.prompt("Enter quantity: ")
	if err != nil {
		return err
	}

	quantity, err := strconv.Atoi(rawQuantity)
	if err != nil {
		c.println("Invalid quantity.")
		return nil
	}

	item, err := c.checkout.AddToCart(ctx, name, quantity)
	var stockErr *domain.StockError
	switch {
	case err == nil:
		c.printf("Added %s x %d to your cart.\n", item.Product.Name, item.Quantity)
	case errors.As(err, &stockErr):
		c.printf("Not enough stock for %s\n", stockErr.Product)
	case errors.Is(err, domain.ErrProductNotFound):
		c.println("Product not found.")
	case errors.Is(err, domain.ErrInvalidQuantity):
		c.println("Quantity must be greater than zero.")
	default:
		c.internalError("add to cart", err)
	}
	return nil
}

func (c *Console) viewCart() {
	c.printItems(c.checkout.Cart().Items())
	c.printf("Total: %s\n", domain.FormatMoney(c.checkout.Cart().Total()))
}

func (c *Console) checkoutCart(ctx context.Context) (state, error) {
	txn := c.checkout.BeginCheckout()

	c.printItems(txn.Items)
	c.printf("Total: %s\n", domain.FormatMoney(txn.TotalAmount))
	c.printf("Total Amount: %s\n", domain.FormatMoney(txn.TotalAmount))

	raw, err := c.prompt("Enter payment amount: ")
	if err != nil {
		return stateExit, err
	}

	amount, err := decimal.NewFromString(strings.TrimPrefix(raw, "$"))
	if err != nil {
		c.println("Invalid amount.")
		return stateMenu, nil
	}

	payment, err := c.checkout.Pay(ctx, txn, amount)
	switch {
	case err == nil:
		c.printf("Payment successful. Change: %s\n", domain.FormatMoney(payment.Change))
		return stateExit, nil
	case errors.Is(err, domain.ErrInsufficientPayment):
		c.println("Insufficient funds.")
	default:
		c.internalError("checkout", err)
	}
	return stateMenu, nil
}

func (c *Console) printItems(items []domain.CartItem) {
	c.println()
	c.println("Items in your cart:")
	for _, item := range items {
		c.printf("%s x %d = %s\n", item.Product.Name, item.Quantity, domain.FormatMoney(item.LineTotal()))
	}
}

// prompt writes label and returns the next trimmed input line.
func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		c.println()
		return "", errEndOfInput
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) internalError(op string, err error) {
	c.logger.Error(op+" failed", zap.Error(err))
	c.println("Something went wrong, please try again.")
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}
