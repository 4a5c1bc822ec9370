// Package invoice builds immutable records of completed sales and renders
// them as downloadable documents.
package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sumakasetty9/Inventory/internal/cart"
)

// Line is one invoice line. All fields are snapshotted at commit time and
// immune to later price or stock changes.
type Line struct {
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Invoice is a client-side record of a completed sale. It is never
// persisted; it lives only until the user closes the invoice view.
type Invoice struct {
	ID    string          `json:"id"`
	Date  time.Time       `json:"date"`
	Items []Line          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Snapshot converts cart lines into invoice lines. It is called before any
// sell commit is issued so the invoice reflects the cart as the user saw
// it, regardless of what happens to product state afterward.
func Snapshot(lines []cart.Line) []Line {
	items := make([]Line, 0, len(lines))
	for _, l := range lines {
		items = append(items, Line{
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal(),
		})
	}
	return items
}

// New finalizes an invoice from snapshotted lines, generating a unique
// identifier and stamping the current UTC time.
func New(items []Line) *Invoice {
	total := decimal.Zero
	for _, l := range items {
		total = total.Add(l.LineTotal)
	}
	return &Invoice{
		ID:    "INV-" + uuid.NewString(),
		Date:  time.Now().UTC(),
		Items: items,
		Total: total,
	}
}
