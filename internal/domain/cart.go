package domain

import (
	"fmt"
	"github.com/shopspring/decimal"
	"time"
)

type Cart struct {
	OwnerID string
	Items   []CartItem
}

// CartItem holds display attributes and price captured when the product was added.
type CartItem struct {
	SKUCode     string
	Name        string
	Description string
	ImageURL    string
	Price       Money
	Quantity    int

	CreatedAt time.Time
}

// AddItem increments the line of an already present SKU or appends a new line with quantity 1.
func (c *Cart) AddItem(p Product, now time.Time) {
	if i := c.indexOf(p.SKUCode); i >= 0 {
		c.Items[i].Quantity++
		return
	}

	c.Items = append(c.Items, CartItem{
		SKUCode:     p.SKUCode,
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       p.Price,
		Quantity:    1,
		CreatedAt:   now,
	})
}

func (c *Cart) RemoveItem(index int) error {
	if index < 0 || index >= len(c.Items) {
		return fmt.Errorf("%w: index %d", ErrLineNotFound, index)
	}

	c.Items = append(c.Items[:index:index], c.Items[index+1:]...)
	return nil
}

// SetQuantity overwrites the quantity of a line, removing it when quantity <= 0.
func (c *Cart) SetQuantity(index, quantity int) error {
	if index < 0 || index >= len(c.Items) {
		return fmt.Errorf("%w: index %d", ErrLineNotFound, index)
	}

	if quantity <= 0 {
		return c.RemoveItem(index)
	}

	c.Items[index].Quantity = quantity
	return nil
}

func (c *Cart) RemoveSKU(skuCode string) error {
	i := c.indexOf(skuCode)
	if i < 0 {
		return fmt.Errorf("%w: sku %s", ErrLineNotFound, skuCode)
	}

	return c.RemoveItem(i)
}

func (c *Cart) SetSKUQuantity(skuCode string, quantity int) error {
	i := c.indexOf(skuCode)
	if i < 0 {
		return fmt.Errorf("%w: sku %s", ErrLineNotFound, skuCode)
	}

	return c.SetQuantity(i, quantity)
}

func (c *Cart) Clear() {
	c.Items = nil
}

// Total sums price x quantity over all lines.
// An empty cart totals zero in DefaultCurrency.
func (c Cart) Total() (Money, error) {
	if len(c.Items) == 0 {
		return Money{Amount: decimal.Zero, Currency: DefaultCurrency}, nil
	}

	total := Money{Amount: decimal.Zero, Currency: c.Items[0].Price.Currency}
	for _, item := range c.Items {
		var err error
		total, err = total.Add(item.Price.Mul(item.Quantity))
		if err != nil {
			return Money{}, fmt.Errorf("sku %s: %w", item.SKUCode, err)
		}
	}

	return total, nil
}

func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	var items []CartItem
	if len(c.Items) > 0 {
		items = make([]CartItem, len(c.Items))
		copy(items, c.Items)
	}

	return Cart{OwnerID: c.OwnerID, Items: items}
}

// OrderRequest snapshots the lines of the cart for submission.
func (c Cart) OrderRequest() OrderRequest {
	lines := make([]OrderLine, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, OrderLine{
			SKUCode:  item.SKUCode,
			Price:    item.Price.Amount,
			Quantity: item.Quantity,
		})
	}

	return OrderRequest{Lines: lines}
}

func (c Cart) indexOf(skuCode string) int {
	for i, item := range c.Items {
		if item.SKUCode == skuCode {
			return i
		}
	}
	return -1
}
