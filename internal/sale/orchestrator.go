// Package sale converts a cart into committed stock decrements and a
// finalized invoice.
package sale

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sumakasetty9/Inventory/internal/cart"
	"github.com/sumakasetty9/Inventory/internal/inventory"
	"github.com/sumakasetty9/Inventory/internal/invoice"
)

// ErrSaleInProgress is returned when Complete is invoked while a previous
// invocation is still committing.
var ErrSaleInProgress = errors.New("a sale is already in progress")

// Seller issues one durable stock decrement against the inventory API.
type Seller interface {
	Sell(ctx context.Context, productID, quantity int64) (inventory.Product, error)
}

// Orchestrator drives sale completion: it commits cart lines sequentially
// through the Seller and produces an invoice only when every line committed.
type Orchestrator struct {
	seller     Seller
	logger     *zap.Logger
	committing bool
}

// New creates an Orchestrator in the idle state.
func New(seller Seller, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		seller: seller,
		logger: logger,
	}
}

// Committing reports whether a sale completion is currently in flight.
func (o *Orchestrator) Committing() bool {
	return o.committing
}

// Complete commits every line of c, in cart order, and returns the
// finalized invoice. An empty cart is a no-op returning (nil, nil). A call
// while another completion is in flight returns ErrSaleInProgress.
//
// Invoice lines are snapshotted before the first commit, so the invoice
// reflects the cart exactly as it was at the moment the sale started.
//
// On the first failed commit the orchestration stops and the commit error
// is returned verbatim. The cart is left exactly as it was, including lines
// whose commits already succeeded in this pass: server-side stock may
// already be decremented for those lines while they still sit in the cart
// as unsold, and re-running Complete will attempt to sell them again. See
// DESIGN.md for why this behavior is kept rather than pruned or retried.
//
// Complete is not safe for concurrent use; the caller serializes access and
// the committing flag only guards against re-entry within that discipline.
func (o *Orchestrator) Complete(ctx context.Context, c *cart.Cart) (*invoice.Invoice, error) {
	if c.Len() == 0 {
		return nil, nil
	}
	if o.committing {
		return nil, ErrSaleInProgress
	}
	o.committing = true
	defer func() { o.committing = false }()

	lines := c.Lines()
	items := invoice.Snapshot(lines)

	for _, l := range lines {
		if _, err := o.seller.Sell(ctx, l.ProductID, l.Quantity); err != nil {
			o.logger.Warn("sell commit failed, halting sale",
				zap.Int64("product_id", l.ProductID),
				zap.Int64("quantity", l.Quantity),
				zap.Error(err))
			return nil, err
		}
	}

	inv := invoice.New(items)
	c.Clear()
	o.logger.Info("sale completed",
		zap.String("invoice_id", inv.ID),
		zap.Int("lines", len(items)),
		zap.String("total", inv.Total.StringFixed(2)))
	return inv, nil
}
