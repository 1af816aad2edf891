package service

import (
	"context"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/store"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func size(v float64) *float64 { return &v }

func TestCartService_AddUpdateRemove(t *testing.T) {
	svc := NewCartService(newTestStore(t), zap.NewNop())
	ctx := context.Background()
	owner := store.GuestOwner("abc")

	view, err := svc.Add(ctx, owner, 1, size(42))
	require.NoError(t, err)
	view, err = svc.Add(ctx, owner, 1, size(42))
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.TotalQuantity)
	assert.True(t, view.TotalAmount.Equal(decimal.NewFromInt(3198)))

	view, err = svc.UpdateQuantity(ctx, owner, 1, 42, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, view.TotalQuantity)

	_, err = svc.UpdateQuantity(ctx, owner, 1, 42, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	view, err = svc.Decrement(ctx, owner, 1, 42)
	require.NoError(t, err)
	assert.Equal(t, 4, view.TotalQuantity)

	view, err = svc.Remove(ctx, owner, 1, 42)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.NotNil(t, view.Items)

	_, err = svc.Remove(ctx, owner, 1, 42)
	assert.ErrorIs(t, err, domain.ErrLineNotFound)
}

func TestCartService_RequiresOwner(t *testing.T) {
	svc := NewCartService(newTestStore(t), zap.NewNop())

	_, err := svc.Add(context.Background(), "", 1, nil)
	assert.ErrorIs(t, err, store.ErrOwnerRequired)
}

func TestCartService_CartsAreIsolatedPerOwner(t *testing.T) {
	svc := NewCartService(newTestStore(t), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Add(ctx, store.GuestOwner("a"), 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, svc.Get(ctx, store.GuestOwner("a")).TotalQuantity)
	assert.Equal(t, 0, svc.Get(ctx, store.GuestOwner("b")).TotalQuantity)
}

func TestCartService_MergeGuestIntoUser(t *testing.T) {
	svc := NewCartService(newTestStore(t), zap.NewNop())
	ctx := context.Background()
	guest, user := store.GuestOwner("g"), store.UserOwner("ana@example.com")

	_, err := svc.Add(ctx, guest, 1, size(42))
	require.NoError(t, err)
	_, err = svc.Add(ctx, user, 2, nil)
	require.NoError(t, err)

	view, err := svc.Merge(ctx, guest, user)
	require.NoError(t, err)
	assert.Equal(t, 2, view.TotalQuantity)
	assert.Equal(t, 0, svc.Get(ctx, guest).TotalQuantity)
}

// Feature: storefront-state, Property 1: Cart totals always equal the sum of their lines
func TestProperty_CartViewTotals(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("totalAmount and totalQuantity match the lines after any sequence of operations", prop.ForAll(
		func(ops []int) bool {
			svc := NewCartService(newTestStore(t), zap.NewNop())
			ctx := context.Background()
			owner := store.GuestOwner("p")

			for _, op := range ops {
				productID := op%2 + 1
				switch op % 4 {
				case 0, 1:
					_, _ = svc.Add(ctx, owner, productID, nil)
				case 2:
					_, _ = svc.Decrement(ctx, owner, productID, defaultSize(productID))
				case 3:
					_, _ = svc.UpdateQuantity(ctx, owner, productID, defaultSize(productID), op%5+1)
				}
			}

			view := svc.Get(ctx, owner)
			qty := 0
			amount := decimal.Zero
			for _, l := range view.Items {
				qty += l.Quantity
				amount = amount.Add(l.LineTotal)
				if !l.LineTotal.Equal(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))) {
					return false
				}
			}
			return qty == view.TotalQuantity && amount.Equal(view.TotalAmount)
		},
		gen.SliceOf(gen.IntRange(0, 40)),
	))

	properties.TestingRun(t)
}

func defaultSize(productID int) float64 {
	if productID == 1 {
		return 42
	}
	return 41
}

func TestWishlistService_Toggle(t *testing.T) {
	svc := NewWishlistService(newTestStore(t))
	ctx := context.Background()
	owner := store.UserOwner("ana@example.com")

	liked, err := svc.Toggle(ctx, owner, 2)
	require.NoError(t, err)
	assert.True(t, liked)
	items := svc.Get(ctx, owner)
	require.Len(t, items, 1)
	assert.Equal(t, "Adidas", items[0].Brand)

	liked, err = svc.Toggle(ctx, owner, 2)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, svc.Get(ctx, owner))

	_, err = svc.Toggle(ctx, owner, 99)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
