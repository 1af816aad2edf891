package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FilterAll matches every category or brand
const FilterAll = "All"

// DefaultPageSize is the storefront grid size
const DefaultPageSize = 9

// SortKey selects the catalog ordering
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
)

// Filter is the catalog filter state. All dimensions combine with AND.
type Filter struct {
	Category string           `json:"category"`
	Brand    string           `json:"brand"`
	Search   string           `json:"search"`
	MinPrice *decimal.Decimal `json:"minPrice,omitempty"`
	MaxPrice *decimal.Decimal `json:"maxPrice,omitempty"`
	Sizes    []float64        `json:"sizes,omitempty"`
}

// Matches reports whether p satisfies every dimension of f
func (f Filter) Matches(p Product, now time.Time) bool {
	if f.Category != "" && f.Category != FilterAll && string(p.Category) != f.Category {
		return false
	}
	if f.Brand != "" && f.Brand != FilterAll && p.Brand != f.Brand {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		if !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Brand), search) {
			return false
		}
	}
	price := p.DiscountedPrice(now)
	if f.MinPrice != nil && price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if len(f.Sizes) > 0 && !p.InStockForAny(f.Sizes) {
		return false
	}
	return true
}

// ApplyFilter returns the products matching f, in their original order
func ApplyFilter(products []Product, f Filter, now time.Time) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p, now) {
			out = append(out, p)
		}
	}
	return out
}

// SortProducts returns a sorted copy of products. Unknown keys keep the input order.
func SortProducts(products []Product, key SortKey, now time.Time) []Product {
	out := append([]Product(nil), products...)
	switch key {
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].DiscountedPrice(now).LessThan(out[j].DiscountedPrice(now))
		})
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].DiscountedPrice(now).GreaterThan(out[j].DiscountedPrice(now))
		})
	}
	return out
}

// Page is one page of a paginated listing
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Paginate slices items into fixed-size pages. page is clamped into range.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      append([]T{}, items[start:end]...),
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// CatalogQuery is the filter, sort and page a shopper is looking at
type CatalogQuery struct {
	Filter Filter
	Sort   SortKey
	Page   int
}

// WithFilter replaces the filter and goes back to the first page
func (q CatalogQuery) WithFilter(f Filter) CatalogQuery {
	q.Filter = f
	q.Page = 1
	return q
}

// WithSort replaces the sort key and goes back to the first page
func (q CatalogQuery) WithSort(key SortKey) CatalogQuery {
	q.Sort = key
	q.Page = 1
	return q
}

func (q CatalogQuery) WithPage(page int) CatalogQuery {
	q.Page = page
	return q
}

// Run filters, sorts and paginates products
func (q CatalogQuery) Run(products []Product, pageSize int, now time.Time) Page[Product] {
	filtered := ApplyFilter(products, q.Filter, now)
	sorted := SortProducts(filtered, q.Sort, now)
	return Paginate(sorted, q.Page, pageSize)
}
