// Package cart holds the in-memory ledger of products selected during one
// shopping session. Quantities always stay within [1, stock captured at
// add-time]; requests outside that range are ignored rather than failed.
package cart

import (
	"github.com/ecomcore/storefront/internal/domain"
	"github.com/google/uuid"
)

// Line is one product entry in the ledger. Name and ImageURL are
// denormalized copies captured at add-time, for display only.
type Line struct {
	ProductID  uuid.UUID
	Name       string
	ImageURL   string
	UnitPrice  domain.Money
	Quantity   int
	StockLimit int
}

// Cart keeps lines unique per product and preserves insertion order.
type Cart struct {
	lines []Line
	index map[uuid.UUID]int
}

func New() *Cart {
	return &Cart{
		index: make(map[uuid.UUID]int),
	}
}

// AddItem inserts a new line for the product or increments an existing one.
// The resulting quantity is clamped to [1, product stock]. A product with no
// stock cannot enter the cart.
func (c *Cart) AddItem(p domain.Product, quantity int) {
	if p.Stock < 1 {
		return
	}

	if i, ok := c.index[p.ID]; ok {
		c.lines[i].Quantity = clamp(c.lines[i].Quantity+quantity, 1, c.lines[i].StockLimit)
		return
	}

	c.index[p.ID] = len(c.lines)
	c.lines = append(c.lines, Line{
		ProductID:  p.ID,
		Name:       p.Name,
		ImageURL:   p.ImageURL,
		UnitPrice:  p.Price,
		Quantity:   clamp(quantity, 1, p.Stock),
		StockLimit: p.Stock,
	})
}

// UpdateQuantity overwrites the line's quantity. Requests outside
// [1, stock limit] or for an absent product are ignored.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int) {
	i, ok := c.index[productID]
	if !ok {
		return
	}

	if quantity < 1 || quantity > c.lines[i].StockLimit {
		return
	}

	c.lines[i].Quantity = quantity
}

// RemoveItem deletes the line. Absent products are a no-op.
func (c *Cart) RemoveItem(productID uuid.UUID) {
	i, ok := c.index[productID]
	if !ok {
		return
	}

	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, productID)

	// Reindex the lines that shifted left.
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].ProductID] = j
	}
}

func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[uuid.UUID]int)
}

// TotalItemCount sums quantities across all lines.
func (c *Cart) TotalItemCount() int {
	var total int
	for _, line := range c.lines {
		total += line.Quantity
	}

	return total
}

// Lines returns the lines in insertion order. The slice is a copy, so
// callers cannot mutate the ledger through it.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)

	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
