package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sumakasetty9/Inventory/internal/inventory"
)

// InventoryAPI is the surface of the remote inventory API the POS service
// consumes. Using an interface instead of the concrete HTTP client keeps
// the service independent of the transport and easy to fake in tests.
type InventoryAPI interface {
	ListProducts(ctx context.Context, includeDeleted bool) ([]inventory.Product, error)
	ListLowStock(ctx context.Context, threshold *int64) ([]inventory.Product, error)
	GetProduct(ctx context.Context, id int64) (inventory.Product, error)
	CreateProduct(ctx context.Context, name string, quantity int64, price decimal.Decimal) (inventory.Product, error)
	SetQuantity(ctx context.Context, id, quantity int64) (inventory.Product, error)
	UpdateProduct(ctx context.Context, id int64, update inventory.ProductUpdate) (inventory.Product, error)
	Sell(ctx context.Context, productID, quantity int64) (inventory.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}
