package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Category groups products on the storefront
type Category string

const (
	CategoryMen   Category = "Men"
	CategoryWomen Category = "Women"
	CategoryKids  Category = "Kids"
)

// Valid reports whether c is one of the storefront categories
func (c Category) Valid() bool {
	switch c {
	case CategoryMen, CategoryWomen, CategoryKids:
		return true
	}
	return false
}

// SizeStock is the remaining stock of a product at one size
type SizeStock struct {
	Size  float64 `json:"size"`
	Stock int     `json:"stock"`
}

// Product represents a product in the catalog
type Product struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Category        Category        `json:"category"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Discount        int             `json:"discount"`
	DiscountEndTime *time.Time      `json:"discountEndTime,omitempty"`
	Images          []string        `json:"images"`
	Sizes           []SizeStock     `json:"sizes"`
}

// Validate checks the invariants an admin edit must respect
func (p Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Brand == "" {
		return fmt.Errorf("%w: brand is required", ErrInvalidProduct)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, p.Category)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidProduct)
	}
	if p.Discount < 0 || p.Discount > 100 {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidProduct)
	}
	seen := make(map[float64]bool, len(p.Sizes))
	for _, s := range p.Sizes {
		if seen[s.Size] {
			return fmt.Errorf("%w: duplicate size %v", ErrInvalidProduct, s.Size)
		}
		if s.Stock < 0 {
			return fmt.Errorf("%w: negative stock for size %v", ErrInvalidProduct, s.Size)
		}
		seen[s.Size] = true
	}
	return nil
}

// DiscountActive reports whether the discount still applies at now
func (p Product) DiscountActive(now time.Time) bool {
	if p.Discount <= 0 {
		return false
	}
	return p.DiscountEndTime == nil || now.Before(*p.DiscountEndTime)
}

// DiscountedPrice is the price shown on the storefront, floored to a whole unit.
func (p Product) DiscountedPrice(now time.Time) decimal.Decimal {
	if !p.DiscountActive(now) {
		return p.Price.Floor()
	}
	factor := decimal.NewFromInt(int64(100 - p.Discount)).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor).Floor()
}

func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// DefaultSize returns the first defined size
func (p Product) DefaultSize() (float64, bool) {
	if len(p.Sizes) == 0 {
		return 0, false
	}
	return p.Sizes[0].Size, true
}

func (p Product) HasSize(size float64) bool {
	_, ok := p.StockFor(size)
	return ok
}

// StockFor returns the stock at size and whether the size exists
func (p Product) StockFor(size float64) (int, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Stock, true
		}
	}
	return 0, false
}

// InStockForAny reports whether at least one of sizes has stock left
func (p Product) InStockForAny(sizes []float64) bool {
	for _, want := range sizes {
		if stock, ok := p.StockFor(want); ok && stock > 0 {
			return true
		}
	}
	return false
}

// AdjustStock adds delta to the stock at size. Stock never drops below zero.
func (p *Product) AdjustStock(size float64, delta int) error {
	for i := range p.Sizes {
		if p.Sizes[i].Size != size {
			continue
		}
		next := p.Sizes[i].Stock + delta
		if next < 0 {
			next = 0
		}
		p.Sizes[i].Stock = next
		return nil
	}
	return ErrSizeUnavailable
}

// LowStockSizes lists sizes that are still available but below threshold
func (p Product) LowStockSizes(threshold int) []float64 {
	var sizes []float64
	for _, s := range p.Sizes {
		if s.Stock > 0 && s.Stock < threshold {
			sizes = append(sizes, s.Size)
		}
	}
	return sizes
}

func (p Product) Clone() Product {
	out := p
	if p.DiscountEndTime != nil {
		t := *p.DiscountEndTime
		out.DiscountEndTime = &t
	}
	out.Images = append([]string(nil), p.Images...)
	out.Sizes = append([]SizeStock(nil), p.Sizes...)
	return out
}

// FindProduct returns the index of the product with id, or -1
func FindProduct(products []Product, id int) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

// NextProductID returns an id above last and above every id still referenced
// by products or order items, so a deleted product's id is never handed out again
func NextProductID(last int, products []Product, orders []Order) int {
	highest := last
	for _, p := range products {
		if p.ID > highest {
			highest = p.ID
		}
	}
	for _, o := range orders {
		for _, it := range o.Items {
			if it.ProductID > highest {
				highest = it.ProductID
			}
		}
	}
	return highest + 1
}
