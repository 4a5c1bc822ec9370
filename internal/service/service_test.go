package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sumakasetty9/Inventory/internal/cart"
	"github.com/sumakasetty9/Inventory/internal/inventory"
)

// fakeAPI is an in-memory stand-in for the remote inventory API.
type fakeAPI struct {
	products []inventory.Product
	nextID   int64

	listErr    error
	sellFailOn map[int64]error
	sellCalls  []int64
}

func newFakeAPI(products ...inventory.Product) *fakeAPI {
	nextID := int64(1)
	for _, p := range products {
		if p.ProductID >= nextID {
			nextID = p.ProductID + 1
		}
	}
	return &fakeAPI{products: products, nextID: nextID}
}

func (f *fakeAPI) ListProducts(ctx context.Context, includeDeleted bool) ([]inventory.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]inventory.Product, 0, len(f.products))
	for _, p := range f.products {
		if p.IsDeleted && !includeDeleted {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeAPI) ListLowStock(ctx context.Context, threshold *int64) ([]inventory.Product, error) {
	limit := int64(10)
	if threshold != nil {
		limit = *threshold
	}
	var out []inventory.Product
	for _, p := range f.products {
		if !p.IsDeleted && p.Quantity <= limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeAPI) GetProduct(ctx context.Context, id int64) (inventory.Product, error) {
	for _, p := range f.products {
		if p.ProductID == id {
			return p, nil
		}
	}
	return inventory.Product{}, &inventory.APIError{StatusCode: 404, Detail: "Product not found"}
}

func (f *fakeAPI) CreateProduct(ctx context.Context, name string, quantity int64, price decimal.Decimal) (inventory.Product, error) {
	p := inventory.Product{ProductID: f.nextID, ProductName: name, Quantity: quantity, Price: price}
	f.nextID++
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeAPI) SetQuantity(ctx context.Context, id, quantity int64) (inventory.Product, error) {
	return f.update(id, func(p *inventory.Product) { p.Quantity = quantity })
}

func (f *fakeAPI) UpdateProduct(ctx context.Context, id int64, update inventory.ProductUpdate) (inventory.Product, error) {
	return f.update(id, func(p *inventory.Product) {
		if update.ProductName != nil {
			p.ProductName = *update.ProductName
		}
		if update.Quantity != nil {
			p.Quantity = *update.Quantity
		}
		if update.Price != nil {
			p.Price = *update.Price
		}
	})
}

func (f *fakeAPI) Sell(ctx context.Context, productID, quantity int64) (inventory.Product, error) {
	f.sellCalls = append(f.sellCalls, productID)
	if err := f.sellFailOn[productID]; err != nil {
		return inventory.Product{}, err
	}
	return f.update(productID, func(p *inventory.Product) { p.Quantity -= quantity })
}

func (f *fakeAPI) DeleteProduct(ctx context.Context, id int64) error {
	_, err := f.update(id, func(p *inventory.Product) { p.IsDeleted = true })
	return err
}

func (f *fakeAPI) update(id int64, fn func(*inventory.Product)) (inventory.Product, error) {
	for i := range f.products {
		if f.products[i].ProductID == id {
			fn(&f.products[i])
			return f.products[i], nil
		}
	}
	return inventory.Product{}, &inventory.APIError{StatusCode: 404, Detail: "Product not found"}
}

func newPOS(t *testing.T, api *fakeAPI) *POS {
	t.Helper()
	pos := NewPOS(api, zap.NewNop())
	_, err := pos.RefreshProducts(context.Background())
	require.NoError(t, err)
	return pos
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPOS_AddToCart(t *testing.T) {
	api := newFakeAPI(
		inventory.Product{ProductID: 1, ProductName: "A", Quantity: 5, Price: price("5.00")},
	)
	pos := newPOS(t, api)

	notice, err := pos.AddToCart(1, 2)
	require.NoError(t, err)
	require.Nil(t, notice)

	notice, err = pos.AddToCart(1, 10)
	require.NoError(t, err)
	require.NotNil(t, notice)
	require.Equal(t, int64(3), notice.Available)

	view := pos.Cart()
	require.Len(t, view.Items, 1)
	require.Equal(t, int64(5), view.Items[0].Quantity)
	require.True(t, view.Total.Equal(price("25.00")))

	// Stock is exhausted now.
	_, err = pos.AddToCart(1, 1)
	var capErr *cart.CapacityError
	require.ErrorAs(t, err, &capErr)
	require.Equal(t, int64(5), capErr.InCart)
	require.Equal(t, int64(5), capErr.InStock)
}

func TestPOS_AddToCart_UnknownProduct(t *testing.T) {
	pos := newPOS(t, newFakeAPI())
	_, err := pos.AddToCart(42, 1)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestPOS_AddToCart_InvalidQuantity(t *testing.T) {
	api := newFakeAPI(
		inventory.Product{ProductID: 1, ProductName: "A", Quantity: 5, Price: price("5.00")},
	)
	pos := newPOS(t, api)

	var validationErr *ValidationError
	_, err := pos.AddToCart(1, 0)
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, 0, len(pos.Cart().Items))
}

func TestPOS_SetCartQuantity_StaleCeilingFallback(t *testing.T) {
	api := newFakeAPI(
		inventory.Product{ProductID: 1, ProductName: "A", Quantity: 5, Price: price("5.00")},
	)
	pos := newPOS(t, api)

	_, err := pos.AddToCart(1, 2)
	require.NoError(t, err)

	// The product disappears from the snapshot; the remembered ceiling
	// still bounds the edit.
	require.NoError(t, pos.DeleteProduct(context.Background(), 1))

	notice := pos.SetCartQuantity(1, 9)
	require.NotNil(t, notice)
	require.Equal(t, int64(5), notice.Available)
	require.Equal(t, int64(5), pos.Cart().Items[0].Quantity)
}

func TestPOS_SetCartQuantity_ZeroRemovesLine(t *testing.T) {
	api := newFakeAPI(
		inventory.Product{ProductID: 1, ProductName: "A", Quantity: 5, Price: price("5.00")},
	)
	pos := newPOS(t, api)

	_, err := pos.AddToCart(1, 2)
	require.NoError(t, err)

	require.Nil(t, pos.SetCartQuantity(1, 0))
	require.Empty(t, pos.Cart().Items)
}

func TestPOS_RemoveFromCart_AbsentIsNoop(t *testing.T) {
	pos := newPOS(t, newFakeAPI())
	pos.RemoveFromCart(99)
	require.Empty(t, pos.Cart().Items)
}

func TestPOS_CompleteSale_Success(t *testing.T) {
	api := newFakeAPI(
		inventory.Product{ProductID: 1, ProductName: "A", Quantity: 5, Price: price("5.00")},
		inventory.Product{ProductID: 2, ProductName: "B", Quantity: 3, Price: price("10.00")},
	)
	pos := newPOS(t, api)

	_, err := pos.AddToCart(1, 2)
	require.NoError(t, err)
	_, err = pos.AddToCart(2, 1)
	require.NoError(t, err)

	inv, err := pos.CompleteSale(context.Background())
	require.NoError(t, err)
	require.NotNil(t, inv)
	require.True(t, inv.Total.Equal(price("20.00")))
	require.Empty(t, pos.Cart().Items)

	// The snapshot was refreshed with the decremented stock.
	products := pos.Products()
	require.Equal(t, int64(3), products[0].Quantity)
	require.Equal(t, int64(2), products[1].Quantity)

	// The invoice stays retrievable until closed.
	got, err := pos.Invoice(inv.ID)
	require.NoError(t, err)
	require.Equal(t, inv.ID, got.ID)

	require.NoError(t, pos.CloseInvoice(inv.ID))
	_, err = pos.Invoice(inv.ID)
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestPOS_CompleteSale_FailureKeepsCart(t *testing.T) {
	commitErr := &inventory.APIError{StatusCode: 400, Detail: "Insufficient stock. Available: 0"}
	api := newFakeAPI(
		inventory.Product{ProductID: 1, ProductName: "A", Quantity: 5, Price: price("5.00")},
		inventory.Product{ProductID: 2, ProductName: "B", Quantity: 3, Price: price("10.00")},
	)
	api.sellFailOn = map[int64]error{2: commitErr}
	pos := newPOS(t, api)

	_, err := pos.AddToCart(1, 2)
	require.NoError(t, err)
	_, err = pos.AddToCart(2, 1)
	require.NoError(t, err)

	inv, err := pos.CompleteSale(context.Background())
	require.Nil(t, inv)
	require.ErrorIs(t, err, commitErr)

	// Both lines survive with their pre-sale quantities even though A's
	// commit already went through.
	view := pos.Cart()
	require.Len(t, view.Items, 2)
	require.Equal(t, int64(2), view.Items[0].Quantity)
	require.Equal(t, int64(1), view.Items[1].Quantity)
	require.Equal(t, []int64{1, 2}, api.sellCalls)
}

func TestPOS_CompleteSale_EmptyCart(t *testing.T) {
	api := newFakeAPI()
	pos := newPOS(t, api)

	inv, err := pos.CompleteSale(context.Background())
	require.NoError(t, err)
	require.Nil(t, inv)
	require.Empty(t, api.sellCalls)
}

func TestPOS_CompleteSale_RefreshFailureDoesNotFailSale(t *testing.T) {
	api := newFakeAPI(
		inventory.Product{ProductID: 1, ProductName: "A", Quantity: 5, Price: price("5.00")},
	)
	pos := newPOS(t, api)

	_, err := pos.AddToCart(1, 1)
	require.NoError(t, err)

	api.listErr = errors.New("connection refused")
	inv, err := pos.CompleteSale(context.Background())
	require.NoError(t, err)
	require.NotNil(t, inv)
	require.Empty(t, pos.Cart().Items)
}

func TestPOS_CreateProduct_Validation(t *testing.T) {
	pos := newPOS(t, newFakeAPI())

	tests := []struct {
		name     string
		prodName string
		quantity int64
		price    decimal.Decimal
	}{
		{"empty name", "  ", 1, price("1.00")},
		{"negative quantity", "A", -1, price("1.00")},
		{"negative price", "A", 1, price("-0.01")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var validationErr *ValidationError
			_, err := pos.CreateProduct(context.Background(), tt.prodName, tt.quantity, tt.price)
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestPOS_CreateProduct_RefreshesSnapshot(t *testing.T) {
	pos := newPOS(t, newFakeAPI())

	product, err := pos.CreateProduct(context.Background(), "Grinder", 4, price("89.90"))
	require.NoError(t, err)
	require.Equal(t, "Grinder", product.ProductName)

	products := pos.Products()
	require.Len(t, products, 1)
	require.Equal(t, product.ProductID, products[0].ProductID)
}

func TestPOS_DeleteProduct_RemovesFromSnapshot(t *testing.T) {
	api := newFakeAPI(
		inventory.Product{ProductID: 1, ProductName: "A", Quantity: 5, Price: price("5.00")},
	)
	pos := newPOS(t, api)

	require.NoError(t, pos.DeleteProduct(context.Background(), 1))
	require.Empty(t, pos.Products())

	all, err := pos.ProductsIncludingDeleted(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.True(t, all[0].IsDeleted)
}

func TestPOS_LowStock(t *testing.T) {
	api := newFakeAPI(
		inventory.Product{ProductID: 1, ProductName: "A", Quantity: 2, Price: price("5.00")},
		inventory.Product{ProductID: 2, ProductName: "B", Quantity: 50, Price: price("5.00")},
	)
	pos := newPOS(t, api)

	threshold := int64(5)
	low, err := pos.LowStock(context.Background(), &threshold)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, int64(1), low[0].ProductID)
}
