// Package cart keeps an in-progress sale's line quantities consistent with
// the most recently observed stock, capping every request against the stock
// ceiling and reporting any truncation to the caller.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sumakasetty9/Inventory/internal/inventory"
)

// Line is one product in the cart. ProductName and UnitPrice are
// denormalized snapshots taken when the line was created: the name outlives
// the product's removal from the snapshot, and the price keeps the invoice
// stable even if the live price changes later. MaxQuantity is the stock
// ceiling observed at the last reconciliation.
type Line struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	MaxQuantity int64           `json:"max_quantity"`
}

// LineTotal returns UnitPrice * Quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// CapacityError reports an add request with zero addable units. The cart is
// left unchanged when it is returned.
type CapacityError struct {
	ProductName string
	InCart      int64
	InStock     int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("no more %q available. In cart: %d, in stock: %d.", e.ProductName, e.InCart, e.InStock)
}

// Truncation is a non-error notice that a requested quantity was reduced to
// fit available stock. Available is the ceiling that was applied, Added the
// amount actually added (for Add) or stored (for SetQuantity).
type Truncation struct {
	ProductName string `json:"product_name"`
	Available   int64  `json:"available"`
	Added       int64  `json:"added"`
}

// Cart is an ordered collection of lines, one per distinct product.
// Insertion order determines display order. The zero value is an empty,
// ready-to-use cart. Cart is not safe for concurrent use; callers serialize
// access.
type Cart struct {
	lines []Line
}

// Add puts qty units of p into the cart, capped so the in-cart quantity
// never exceeds p's current stock. When nothing can be added it returns a
// *CapacityError and leaves the cart unchanged. When only part of the
// request fits, the add still succeeds and the returned *Truncation carries
// the amount actually added. The line's ceiling is refreshed to the current
// stock either way.
func (c *Cart) Add(p inventory.Product, qty int64) (*Truncation, error) {
	inCart := c.Quantity(p.ProductID)
	availableToAdd := p.Quantity - inCart
	if availableToAdd <= 0 {
		return nil, &CapacityError{
			ProductName: p.ProductName,
			InCart:      inCart,
			InStock:     p.Quantity,
		}
	}

	toAdd := qty
	var notice *Truncation
	if availableToAdd < qty {
		toAdd = availableToAdd
		notice = &Truncation{
			ProductName: p.ProductName,
			Available:   availableToAdd,
			Added:       availableToAdd,
		}
	}

	if i := c.index(p.ProductID); i >= 0 {
		c.lines[i].Quantity += toAdd
		c.lines[i].MaxQuantity = p.Quantity
		return notice, nil
	}
	c.lines = append(c.lines, Line{
		ProductID:   p.ProductID,
		ProductName: p.ProductName,
		UnitPrice:   p.Price,
		Quantity:    toAdd,
		MaxQuantity: p.Quantity,
	})
	return notice, nil
}

// SetQuantity replaces the stored quantity for productID, clamped to
// [0, ceiling]. stock is the product's live quantity from the current
// snapshot; a nil stock means the product is gone from the snapshot and the
// line's remembered ceiling is used as the clamp bound instead. A request
// above the ceiling raises a *Truncation before the clamp is stored. A
// resulting quantity of zero removes the line. Unknown productID is a no-op.
func (c *Cart) SetQuantity(productID, qty int64, stock *int64) *Truncation {
	i := c.index(productID)
	if i < 0 {
		return nil
	}

	ceiling := c.lines[i].MaxQuantity
	if stock != nil {
		ceiling = *stock
		c.lines[i].MaxQuantity = *stock
	}

	n := qty
	if n < 0 {
		n = 0
	}
	var notice *Truncation
	if n > ceiling {
		notice = &Truncation{
			ProductName: c.lines[i].ProductName,
			Available:   ceiling,
			Added:       ceiling,
		}
		n = ceiling
	}

	if n <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return notice
	}
	c.lines[i].Quantity = n
	return notice
}

// Remove deletes the line for productID. Removing an absent product is a
// no-op.
func (c *Cart) Remove(productID int64) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Quantity returns the in-cart quantity for productID, 0 if absent.
func (c *Cart) Quantity(productID int64) int64 {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Total returns the sum of line totals over all current lines. It is
// computed on every call, never cached.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines in the cart.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) index(productID int64) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
