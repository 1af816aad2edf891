package service

import (
	"context"
	"fmt"
	"sort"

	"storefront/internal/domain"
	"storefront/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductView is a product as the storefront shows it, with the price in effect now
type ProductView struct {
	domain.Product
	FinalPrice     decimal.Decimal `json:"finalPrice"`
	DiscountActive bool            `json:"discountActive"`
	InStock        bool            `json:"inStock"`
}

// ProductDetail adds reviews and stock warnings to a product view
type ProductDetail struct {
	ProductView
	Reviews       []domain.Review `json:"reviews"`
	AverageRating float64         `json:"averageRating"`
	ReviewCount   int             `json:"reviewCount"`
	LowStockSizes []float64       `json:"lowStockSizes"`
}

// CatalogService defines the interface for catalog browsing and product administration
type CatalogService interface {
	List(ctx context.Context, query domain.CatalogQuery) domain.Page[ProductView]
	Get(ctx context.Context, id int) (*ProductDetail, error)
	Brands(ctx context.Context) []string
	LowStock(ctx context.Context) []ProductDetail
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int) error
}

type catalogService struct {
	store             *store.Store
	pageSize          int
	lowStockThreshold int
	logger            *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(st *store.Store, pageSize, lowStockThreshold int, logger *zap.Logger) CatalogService {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &catalogService{
		store:             st,
		pageSize:          pageSize,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

func (s *catalogService) view(p domain.Product) ProductView {
	now := s.store.Now()
	inStock := false
	for _, size := range p.Sizes {
		if size.Stock > 0 {
			inStock = true
			break
		}
	}
	return ProductView{
		Product:        p,
		FinalPrice:     p.DiscountedPrice(now),
		DiscountActive: p.DiscountActive(now),
		InStock:        inStock,
	}
}

func (s *catalogService) detail(st store.State, p domain.Product) ProductDetail {
	avg, count := domain.AverageRating(st.Reviews, p.ID)
	reviews := domain.ReviewsFor(st.Reviews, p.ID)
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return ProductDetail{
		ProductView:   s.view(p.Clone()),
		Reviews:       reviews,
		AverageRating: avg,
		ReviewCount:   count,
		LowStockSizes: p.LowStockSizes(s.lowStockThreshold),
	}
}

// List filters, sorts and paginates the catalog
func (s *catalogService) List(ctx context.Context, query domain.CatalogQuery) domain.Page[ProductView] {
	var page domain.Page[domain.Product]
	s.store.View(func(st store.State) {
		page = query.Run(st.Products, s.pageSize, s.store.Now())
	})

	out := domain.Page[ProductView]{
		Items:      make([]ProductView, 0, len(page.Items)),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
	for _, p := range page.Items {
		out.Items = append(out.Items, s.view(p.Clone()))
	}
	return out
}

// Get returns one product with its reviews
func (s *catalogService) Get(ctx context.Context, id int) (*ProductDetail, error) {
	var (
		detail ProductDetail
		found  bool
	)
	s.store.View(func(st store.State) {
		var p domain.Product
		if p, found = st.Product(id); found {
			detail = s.detail(st, p)
		}
	})
	if !found {
		return nil, domain.ErrProductNotFound
	}
	return &detail, nil
}

// Brands lists the distinct brands in the catalog, sorted
func (s *catalogService) Brands(ctx context.Context) []string {
	seen := make(map[string]bool)
	brands := []string{}
	s.store.View(func(st store.State) {
		for _, p := range st.Products {
			if !seen[p.Brand] {
				seen[p.Brand] = true
				brands = append(brands, p.Brand)
			}
		}
	})
	sort.Strings(brands)
	return brands
}

// LowStock lists products with at least one size running low
func (s *catalogService) LowStock(ctx context.Context) []ProductDetail {
	out := []ProductDetail{}
	s.store.View(func(st store.State) {
		for _, p := range st.Products {
			if len(p.LowStockSizes(s.lowStockThreshold)) > 0 {
				out = append(out, s.detail(st, p))
			}
		}
	})
	return out
}

func (s *catalogService) Create(ctx context.Context, product domain.Product) (*domain.Product, error) {
	cmd := &store.CreateProduct{Product: product}
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created", zap.Int("product_id", cmd.Product.ID), zap.String("name", cmd.Product.Name))
	return &cmd.Product, nil
}

func (s *catalogService) Update(ctx context.Context, product domain.Product) (*domain.Product, error) {
	cmd := &store.UpdateProduct{Product: product}
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info("Product updated", zap.Int("product_id", product.ID))
	return &cmd.Product, nil
}

// Delete removes a product. Carts drop their lines for it; orders keep their copies.
func (s *catalogService) Delete(ctx context.Context, id int) error {
	if err := s.store.Dispatch(ctx, &store.DeleteProduct{ProductID: id}); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info("Product deleted", zap.Int("product_id", id))
	return nil
}
