package cart

import (
	"errors"
	"fmt"
)

var (
	ErrLineNotFound    = errors.New("cart: product not in cart")
	ErrInvalidQuantity = errors.New("cart: quantity must be zero or positive")
)

// Product is the part of a catalog entry the cart needs.
type Product struct {
	ID    int64
	Name  string
	Price float64
	Image string
}

// Line is one product in the cart. Quantity is always positive; a line whose
// quantity drops to zero is removed.
type Line struct {
	ProductID int64   `json:"product_id,string"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

// Subtotal is price times quantity.
func (l Line) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Cart keeps lines in the order products were first added.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add puts one unit of p in the cart, merging with an existing line.
func (c *Cart) Add(p Product) Line {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return c.lines[i]
	}
	l := Line{ProductID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image, Quantity: 1}
	c.lines = append(c.lines, l)
	return l
}

// SetQuantity sets the quantity of a line; zero removes it.
func (c *Cart) SetQuantity(productID int64, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	i := c.index(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	if qty == 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return nil
	}
	c.lines[i].Quantity = qty
	return nil
}

// Remove drops a line regardless of its quantity.
func (c *Cart) Remove(productID int64) error {
	return c.SetQuantity(productID, 0)
}

// Lines returns a copy of the lines.
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// Len is the number of distinct products.
func (c *Cart) Len() int {
	return len(c.lines)
}

// ItemCount is the sum of quantities, shown on the cart badge.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total is the sum of line subtotals.
func (c *Cart) Total() float64 {
	var t float64
	for _, l := range c.lines {
		t += l.Subtotal()
	}
	return t
}

// FormatTotal renders Total with two decimals.
func (c *Cart) FormatTotal() string {
	return FormatPrice(c.Total())
}

// FormatPrice renders an amount with two decimals.
func FormatPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func (c *Cart) index(productID int64) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Summary is a serializable view of the cart.
type Summary struct {
	Lines     []Line `json:"lines"`
	ItemCount int    `json:"item_count"`
	Total     string `json:"total"`
}

// Summary captures the cart for rendering.
func (c *Cart) Summary() Summary {
	lines := c.Lines()
	if lines == nil {
		lines = []Line{}
	}
	return Summary{Lines: lines, ItemCount: c.ItemCount(), Total: c.FormatTotal()}
}
