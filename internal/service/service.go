// Package service holds the POS application state: the product snapshot,
// the cart, the sale orchestrator and the invoices of completed sales. All
// mutations of that state go through the operations defined here.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sumakasetty9/Inventory/internal/cart"
	"github.com/sumakasetty9/Inventory/internal/inventory"
	"github.com/sumakasetty9/Inventory/internal/invoice"
	"github.com/sumakasetty9/Inventory/internal/sale"
)

// ErrProductNotFound is returned when an operation references a product id
// that is not in the current snapshot.
var ErrProductNotFound = errors.New("product not found")

// ErrInvoiceNotFound is returned when an invoice id is unknown, typically
// because the invoice view was already closed.
var ErrInvoiceNotFound = errors.New("invoice not found")

// ValidationError is a malformed input rejected before touching the network
// or the cart.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// CartView is a read-only snapshot of the cart for presentation.
type CartView struct {
	Items []cart.Line     `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// POS is the application state container. One mutex serializes every
// operation, which renders the original single-threaded event model: while
// a sale is committing, nothing else can mutate the cart or the snapshot.
type POS struct {
	api    InventoryAPI
	logger *zap.Logger

	mu       sync.Mutex
	products []inventory.Product
	cart     cart.Cart
	orch     *sale.Orchestrator
	invoices map[string]*invoice.Invoice
}

// NewPOS creates a POS with an empty cart and an empty product snapshot.
// Callers usually follow up with RefreshProducts.
func NewPOS(api InventoryAPI, logger *zap.Logger) *POS {
	return &POS{
		api:      api,
		logger:   logger,
		orch:     sale.New(api, logger),
		invoices: make(map[string]*invoice.Invoice),
	}
}

// RefreshProducts re-fetches the product snapshot wholesale and returns a
// copy of it. Soft-deleted products are excluded; the snapshot is what cart
// operations resolve stock ceilings against.
func (s *POS) RefreshProducts(ctx context.Context) ([]inventory.Product, error) {
	products, err := s.api.ListProducts(ctx, false)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	return copyProducts(products), nil
}

// Products returns a copy of the current snapshot without hitting the
// network. It may be stale; RefreshProducts is the only thing that updates it.
func (s *POS) Products() []inventory.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyProducts(s.products)
}

// ProductsIncludingDeleted lists all products straight from the API,
// soft-deleted ones included. It does not touch the snapshot.
func (s *POS) ProductsIncludingDeleted(ctx context.Context) ([]inventory.Product, error) {
	return s.api.ListProducts(ctx, true)
}

// GetProduct fetches a single product straight from the API.
func (s *POS) GetProduct(ctx context.Context, id int64) (inventory.Product, error) {
	return s.api.GetProduct(ctx, id)
}

// LowStock lists products at or below threshold. A nil threshold uses the
// server-side default.
func (s *POS) LowStock(ctx context.Context, threshold *int64) ([]inventory.Product, error) {
	return s.api.ListLowStock(ctx, threshold)
}

// CreateProduct validates the input locally, creates the product upstream
// and refreshes the snapshot.
func (s *POS) CreateProduct(ctx context.Context, name string, quantity int64, price decimal.Decimal) (inventory.Product, error) {
	if strings.TrimSpace(name) == "" {
		return inventory.Product{}, validationErrorf("product name must not be empty")
	}
	if quantity < 0 {
		return inventory.Product{}, validationErrorf("quantity must not be negative")
	}
	if price.IsNegative() {
		return inventory.Product{}, validationErrorf("price must not be negative")
	}

	product, err := s.api.CreateProduct(ctx, strings.TrimSpace(name), quantity, price)
	if err != nil {
		return inventory.Product{}, err
	}
	s.refreshAfterWrite(ctx)
	return product, nil
}

// UpdateProduct validates the changed fields locally, applies the partial
// update upstream and refreshes the snapshot.
func (s *POS) UpdateProduct(ctx context.Context, id int64, update inventory.ProductUpdate) (inventory.Product, error) {
	if update.ProductName != nil && strings.TrimSpace(*update.ProductName) == "" {
		return inventory.Product{}, validationErrorf("product name must not be empty")
	}
	if update.Quantity != nil && *update.Quantity < 0 {
		return inventory.Product{}, validationErrorf("quantity must not be negative")
	}
	if update.Price != nil && update.Price.IsNegative() {
		return inventory.Product{}, validationErrorf("price must not be negative")
	}

	product, err := s.api.UpdateProduct(ctx, id, update)
	if err != nil {
		return inventory.Product{}, err
	}
	s.refreshAfterWrite(ctx)
	return product, nil
}

// SetProductQuantity replaces a product's stock quantity upstream and
// refreshes the snapshot.
func (s *POS) SetProductQuantity(ctx context.Context, id, quantity int64) (inventory.Product, error) {
	if quantity < 0 {
		return inventory.Product{}, validationErrorf("quantity must not be negative")
	}
	product, err := s.api.SetQuantity(ctx, id, quantity)
	if err != nil {
		return inventory.Product{}, err
	}
	s.refreshAfterWrite(ctx)
	return product, nil
}

// DeleteProduct soft-deletes a product upstream and refreshes the snapshot.
// Any cart line for the product stays in the cart; its remembered ceiling
// keeps bounding quantity edits.
func (s *POS) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.api.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.refreshAfterWrite(ctx)
	return nil
}

// AddToCart adds qty units of the product to the cart, capped against the
// stock ceiling from the current snapshot. It returns the truncation notice
// when the request was reduced, a *cart.CapacityError when nothing could be
// added, and ErrProductNotFound when the id is not in the snapshot.
func (s *POS) AddToCart(productID, qty int64) (*cart.Truncation, error) {
	if qty <= 0 {
		return nil, validationErrorf("quantity must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.findProduct(productID)
	if !ok {
		return nil, ErrProductNotFound
	}
	notice, err := s.cart.Add(product, qty)
	if err != nil {
		return nil, err
	}
	if notice != nil {
		s.logger.Info("add to cart truncated",
			zap.String("product", notice.ProductName),
			zap.Int64("available", notice.Available))
	}
	return notice, nil
}

// SetCartQuantity sets the stored quantity for a cart line, clamped to the
// live stock ceiling, or to the line's remembered ceiling when the product
// has vanished from the snapshot. A result of zero removes the line.
func (s *POS) SetCartQuantity(productID, qty int64) *cart.Truncation {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stock *int64
	if product, ok := s.findProduct(productID); ok {
		stock = &product.Quantity
	}
	notice := s.cart.SetQuantity(productID, qty, stock)
	if notice != nil {
		s.logger.Info("cart quantity truncated",
			zap.String("product", notice.ProductName),
			zap.Int64("available", notice.Available))
	}
	return notice
}

// RemoveFromCart deletes the cart line for productID. Removing an absent
// line is a no-op.
func (s *POS) RemoveFromCart(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(productID)
}

// Cart returns the current cart lines and total.
func (s *POS) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CartView{Items: s.cart.Lines(), Total: s.cart.Total()}
}

// CompleteSale drains the cart through the sale orchestrator. On success
// the invoice is retained for viewing and download until CloseInvoice, and
// the product snapshot is refreshed. On a commit failure the error is
// returned verbatim and the cart is left untouched. The lock is held for
// the whole commit sequence, so no other operation can mutate the cart or
// the snapshot while the sale is in flight; a concurrent CompleteSale
// serializes behind it and finds an empty cart (a no-op).
func (s *POS) CompleteSale(ctx context.Context) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.orch.Complete(ctx, &s.cart)
	if err != nil || inv == nil {
		return nil, err
	}
	s.invoices[inv.ID] = inv

	// The sale already happened; a failed snapshot refresh must not turn
	// it into an error.
	if products, refreshErr := s.api.ListProducts(ctx, false); refreshErr != nil {
		s.logger.Warn("product refresh after sale failed", zap.Error(refreshErr))
	} else {
		s.products = products
	}
	return inv, nil
}

// Invoice returns a completed sale's invoice by id.
func (s *POS) Invoice(id string) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, ErrInvoiceNotFound
	}
	return inv, nil
}

// CloseInvoice discards an invoice. Closing does not affect committed
// state; the stock decrements stay sold.
func (s *POS) CloseInvoice(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return ErrInvoiceNotFound
	}
	delete(s.invoices, id)
	return nil
}

// refreshAfterWrite re-fetches the snapshot after a successful product
// mutation. The write already succeeded, so a refresh failure is only
// logged; the next read will retry.
func (s *POS) refreshAfterWrite(ctx context.Context) {
	products, err := s.api.ListProducts(ctx, false)
	if err != nil {
		s.logger.Warn("product refresh failed", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
}

// findProduct resolves a product from the snapshot. Callers hold s.mu.
func (s *POS) findProduct(productID int64) (inventory.Product, bool) {
	for _, p := range s.products {
		if p.ProductID == productID {
			return p, true
		}
	}
	return inventory.Product{}, false
}

func copyProducts(products []inventory.Product) []inventory.Product {
	out := make([]inventory.Product, len(products))
	copy(out, products)
	return out
}
