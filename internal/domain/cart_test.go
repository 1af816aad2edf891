package domain

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cartNow = time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)

func shoe(id int, price int64, sizes ...float64) Product {
	p := Product{ID: id, Name: "Shoe", Brand: "Nike", Category: CategoryMen, Price: decimal.NewFromInt(price)}
	for _, s := range sizes {
		p.Sizes = append(p.Sizes, SizeStock{Size: s, Stock: 10})
	}
	return p
}

func size(s float64) *float64 { return &s }

func TestCartAddSameLineTwice(t *testing.T) {
	var c Cart
	p := shoe(1, 100, 42)

	_, err := c.Add(p, size(42), cartNow)
	require.NoError(t, err)
	_, err = c.Add(p, size(42), cartNow)
	require.NoError(t, err)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, 2, c.TotalQuantity())
	assert.True(t, c.TotalAmount().Equal(decimal.NewFromInt(200)))
}

func TestCartAddDefaultsToFirstSize(t *testing.T) {
	var c Cart
	line, err := c.Add(shoe(1, 100, 39, 40), nil, cartNow)
	require.NoError(t, err)
	assert.Equal(t, 39.0, line.Size)

	_, err = c.Add(shoe(2, 100), nil, cartNow)
	assert.ErrorIs(t, err, ErrSizeUnavailable)

	_, err = c.Add(shoe(3, 100, 40), size(44), cartNow)
	assert.ErrorIs(t, err, ErrSizeUnavailable)
}

func TestCartAddUsesDiscountedPrice(t *testing.T) {
	var c Cart
	p := shoe(1, 999, 42)
	p.Discount = 10

	line, err := c.Add(p, nil, cartNow)
	require.NoError(t, err)
	assert.True(t, line.UnitPrice.Equal(decimal.NewFromInt(899)))
}

func TestCartDecrementRemoveUpdate(t *testing.T) {
	var c Cart
	p := shoe(1, 100, 42, 43)
	c.Add(p, size(42), cartNow)
	c.Add(p, size(42), cartNow)
	c.Add(p, size(43), cartNow)

	require.NoError(t, c.Decrement(1, 42))
	line, ok := c.Line(1, 42)
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)

	require.NoError(t, c.Decrement(1, 42))
	_, ok = c.Line(1, 42)
	assert.False(t, ok, "line at quantity 1 is deleted on decrement")

	require.NoError(t, c.SetQuantity(1, 43, 5))
	assert.True(t, c.TotalAmount().Equal(decimal.NewFromInt(500)))
	assert.ErrorIs(t, c.SetQuantity(1, 43, 0), ErrInvalidQuantity)

	require.NoError(t, c.Remove(1, 43))
	assert.True(t, c.IsEmpty())
	assert.ErrorIs(t, c.Remove(1, 43), ErrLineNotFound)
	assert.ErrorIs(t, c.Decrement(9, 42), ErrLineNotFound)
}

func TestCartMergeSumsMatchingLines(t *testing.T) {
	var guest, user Cart
	a, b := shoe(1, 100, 42), shoe(2, 50, 40)

	_, _ = guest.Add(a, size(42), cartNow)
	_, _ = guest.Add(b, size(40), cartNow)
	_, _ = user.Add(a, size(42), cartNow)
	_, _ = user.Add(a, size(42), cartNow)

	user.Merge(guest)

	require.Len(t, user.Lines, 2)
	line, ok := user.Line(1, 42)
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity)
	assert.True(t, line.LineTotal.Equal(decimal.NewFromInt(300)))
	assert.True(t, user.TotalAmount().Equal(decimal.NewFromInt(350)))
}

func TestCartSnapshotIsByValue(t *testing.T) {
	var c Cart
	c.Add(shoe(1, 100, 42), nil, cartNow)

	items := c.Snapshot()
	c.Lines[0].Name = "renamed"
	c.Clear()

	require.Len(t, items, 1)
	assert.Equal(t, "Shoe", items[0].Name)
	assert.Equal(t, 0, c.TotalQuantity())
	assert.True(t, c.TotalAmount().IsZero())
}

// Feature: storefront, Property: cart totals always equal the sum of the lines
func TestProperty_CartTotalsReconcile(t *testing.T) {
	properties := gopter.NewProperties(nil)
	catalog := []Product{shoe(1, 100, 40, 42), shoe(2, 1599, 42), shoe(3, 75, 38)}

	properties.Property("aggregates match line items after any operation sequence", prop.ForAll(
		func(ops []int) bool {
			var c Cart
			for _, op := range ops {
				p := catalog[op%len(catalog)]
				sz := p.Sizes[(op/3)%len(p.Sizes)].Size
				switch (op / 7) % 4 {
				case 0:
					c.Add(p, &sz, cartNow)
				case 1:
					c.Decrement(p.ID, sz)
				case 2:
					c.SetQuantity(p.ID, sz, op%5+1)
				case 3:
					c.Remove(p.ID, sz)
				}

				qty, amount := 0, decimal.Zero
				for _, l := range c.Lines {
					if l.Quantity < 1 {
						return false
					}
					if !l.LineTotal.Equal(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))) {
						return false
					}
					qty += l.Quantity
					amount = amount.Add(l.LineTotal)
				}
				if qty != c.TotalQuantity() || !amount.Equal(c.TotalAmount()) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}
