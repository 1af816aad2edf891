package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one row of the cart, keyed by product id and size
type CartLine struct {
	ProductID int             `json:"productId"`
	Size      float64         `json:"size"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

func (l *CartLine) setQuantity(quantity int) {
	l.Quantity = quantity
	l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Cart holds line items. Totals are derived from the lines on every read.
type Cart struct {
	Lines []CartLine `json:"items"`
}

func (c Cart) TotalQuantity() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

func (c Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal)
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) find(productID int, size float64) int {
	for i, l := range c.Lines {
		if l.ProductID == productID && l.Size == size {
			return i
		}
	}
	return -1
}

// Line returns the line for (productID, size)
func (c Cart) Line(productID int, size float64) (CartLine, bool) {
	i := c.find(productID, size)
	if i < 0 {
		return CartLine{}, false
	}
	return c.Lines[i], true
}

// Add puts one unit of p at size into the cart. A nil size means the product's first size.
// Adding an existing (product, size) increments that line instead of appending a new one.
func (c *Cart) Add(p Product, size *float64, now time.Time) (CartLine, error) {
	var chosen float64
	if size == nil {
		s, ok := p.DefaultSize()
		if !ok {
			return CartLine{}, ErrSizeUnavailable
		}
		chosen = s
	} else {
		chosen = *size
	}
	if !p.HasSize(chosen) {
		return CartLine{}, ErrSizeUnavailable
	}

	if i := c.find(p.ID, chosen); i >= 0 {
		c.Lines[i].setQuantity(c.Lines[i].Quantity + 1)
		return c.Lines[i], nil
	}

	line := CartLine{
		ProductID: p.ID,
		Size:      chosen,
		Name:      p.Name,
		Image:     p.PrimaryImage(),
		UnitPrice: p.DiscountedPrice(now),
	}
	line.setQuantity(1)
	c.Lines = append(c.Lines, line)
	return line, nil
}

// Decrement removes one unit, deleting the line when it reaches zero
func (c *Cart) Decrement(productID int, size float64) error {
	i := c.find(productID, size)
	if i < 0 {
		return ErrLineNotFound
	}
	if c.Lines[i].Quantity <= 1 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return nil
	}
	c.Lines[i].setQuantity(c.Lines[i].Quantity - 1)
	return nil
}

// Remove deletes the line regardless of its quantity
func (c *Cart) Remove(productID int, size float64) error {
	i := c.find(productID, size)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return nil
}

func (c *Cart) SetQuantity(productID int, size float64, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	i := c.find(productID, size)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Lines[i].setQuantity(quantity)
	return nil
}

// Merge folds the lines of other into c, summing quantities of matching lines
func (c *Cart) Merge(other Cart) {
	for _, l := range other.Lines {
		if i := c.find(l.ProductID, l.Size); i >= 0 {
			c.Lines[i].setQuantity(c.Lines[i].Quantity + l.Quantity)
			continue
		}
		c.Lines = append(c.Lines, l)
	}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

// Snapshot copies the lines into order items
func (c Cart) Snapshot() []OrderItem {
	items := make([]OrderItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, OrderItem{
			ProductID: l.ProductID,
			Size:      l.Size,
			Name:      l.Name,
			Image:     l.Image,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal,
		})
	}
	return items
}

func (c Cart) Clone() Cart {
	return Cart{Lines: append([]CartLine(nil), c.Lines...)}
}
