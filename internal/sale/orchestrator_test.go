package sale

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

// fakeSeller records sell commits and fails the products listed in failOn.
type fakeSeller struct {
	failOn map[int64]error
	calls  []sellCall
}

type sellCall struct {
	productID int64
	quantity  int64
}

func (f *fakeSeller) Sell(ctx context.Context, productID, quantity int64) (inventory.Product, error) {
	f.calls = append(f.calls, sellCall{productID: productID, quantity: quantity})
	if err := f.failOn[productID]; err != nil {
		return inventory.Product{}, err
	}
	return inventory.Product{ProductID: productID}, nil
}

func testCart(t *testing.T) *cart.Cart {
	t.Helper()
	var c cart.Cart
	_, err := c.Add(inventory.Product{
		ProductID: 1, ProductName: "A", Quantity: 10,
		Price: decimal.RequireFromString("5.00"),
	}, 2)
	require.NoError(t, err)
	_, err = c.Add(inventory.Product{
		ProductID: 2, ProductName: "B", Quantity: 10,
		Price: decimal.RequireFromString("10.00"),
	}, 1)
	require.NoError(t, err)
	return &c
}

func TestOrchestrator_Complete_Success(t *testing.T) {
	seller := &fakeSeller{}
	o := New(seller, zap.NewNop())
	c := testCart(t)

	inv, err := o.Complete(context.Background(), c)
	require.NoError(t, err)
	require.NotNil(t, inv)

	// Commits happen in cart order.
	require.Equal(t, []sellCall{{1, 2}, {2, 1}}, seller.calls)

	require.NotEmpty(t, inv.ID)
	require.Contains(t, inv.ID, "INV-")
	require.False(t, inv.Date.IsZero())
	require.Len(t, inv.Items, 2)
	require.Equal(t, "A", inv.Items[0].ProductName)
	require.Equal(t, int64(2), inv.Items[0].Quantity)
	require.True(t, inv.Items[0].UnitPrice.Equal(decimal.RequireFromString("5.00")))
	require.True(t, inv.Items[0].LineTotal.Equal(decimal.RequireFromString("10.00")))
	require.Equal(t, "B", inv.Items[1].ProductName)
	require.Equal(t, int64(1), inv.Items[1].Quantity)
	require.True(t, inv.Items[1].LineTotal.Equal(decimal.RequireFromString("10.00")))
	require.True(t, inv.Total.Equal(decimal.RequireFromString("20.00")))

	// The cart is cleared only after every line committed.
	require.Equal(t, 0, c.Len())
}

func TestOrchestrator_Complete_EmptyCartIsNoop(t *testing.T) {
	seller := &fakeSeller{}
	o := New(seller, zap.NewNop())

	inv, err := o.Complete(context.Background(), &cart.Cart{})
	require.NoError(t, err)
	require.Nil(t, inv)
	require.Empty(t, seller.calls)
}

func TestOrchestrator_Complete_FailureLeavesCartUntouched(t *testing.T) {
	commitErr := errors.New("Insufficient stock. Available: 0")
	seller := &fakeSeller{failOn: map[int64]error{2: commitErr}}
	o := New(seller, zap.NewNop())
	c := testCart(t)

	inv, err := o.Complete(context.Background(), c)

	// The error from B's commit is surfaced verbatim; no invoice exists.
	require.ErrorIs(t, err, commitErr)
	require.Nil(t, inv)

	// A's commit went through before the halt, B stopped the sequence.
	require.Equal(t, []sellCall{{1, 2}, {2, 1}}, seller.calls)

	// The cart still holds both lines at their pre-sale quantities, even
	// though A's stock was already decremented server-side. Re-running the
	// sale would sell A again; the behavior is specified and kept.
	lines := c.Lines()
	require.Len(t, lines, 2)
	require.Equal(t, int64(2), lines[0].Quantity)
	require.Equal(t, int64(1), lines[1].Quantity)

	// A later run with the failure gone finishes the sale.
	seller.failOn = nil
	inv, err = o.Complete(context.Background(), c)
	require.NoError(t, err)
	require.NotNil(t, inv)
	require.Equal(t, 0, c.Len())
}

func TestOrchestrator_Complete_FailureOnFirstLineStopsImmediately(t *testing.T) {
	commitErr := errors.New("network down")
	seller := &fakeSeller{failOn: map[int64]error{1: commitErr}}
	o := New(seller, zap.NewNop())
	c := testCart(t)

	_, err := o.Complete(context.Background(), c)
	require.ErrorIs(t, err, commitErr)
	require.Equal(t, []sellCall{{1, 2}}, seller.calls)
	require.Equal(t, 2, c.Len())
}

// reentrantSeller invokes the orchestrator from inside a commit, standing
// in for a second complete-sale request arriving mid-flight.
type reentrantSeller struct {
	o        *Orchestrator
	c        *cart.Cart
	innerErr error
}

func (s *reentrantSeller) Sell(ctx context.Context, productID, quantity int64) (inventory.Product, error) {
	if s.innerErr == nil {
		_, s.innerErr = s.o.Complete(ctx, s.c)
	}
	return inventory.Product{}, nil
}

func TestOrchestrator_Complete_RejectsReentry(t *testing.T) {
	c := testCart(t)
	seller := &reentrantSeller{c: c}
	o := New(seller, zap.NewNop())
	seller.o = o

	inv, err := o.Complete(context.Background(), c)
	require.NoError(t, err)
	require.NotNil(t, inv)
	require.ErrorIs(t, seller.innerErr, ErrSaleInProgress)
}
