package store

import (
	"time"

	"storefront/internal/domain"
)

type UpdateHeroSlides struct {
	Slides []domain.HeroSlide
}

func (c *UpdateHeroSlides) Name() string { return "content/hero-slides" }

func (c *UpdateHeroSlides) Apply(s *State, _ time.Time) error {
	s.Content.HeroSlides = append([]domain.HeroSlide{}, c.Slides...)
	return nil
}

type UpdatePromoBanner struct {
	Promo domain.PromoBanner
}

func (c *UpdatePromoBanner) Name() string { return "content/promo" }

func (c *UpdatePromoBanner) Apply(s *State, _ time.Time) error {
	s.Content.Promo = c.Promo
	return nil
}

type UpdateBrands struct {
	Brands []domain.Brand
}

func (c *UpdateBrands) Name() string { return "content/brands" }

func (c *UpdateBrands) Apply(s *State, _ time.Time) error {
	s.Content.Brands = append([]domain.Brand{}, c.Brands...)
	return nil
}

// UpdateSpotlight points the home page spotlight at a product. ProductID 0 clears the link.
type UpdateSpotlight struct {
	Spotlight domain.Spotlight
}

func (c *UpdateSpotlight) Name() string { return "content/spotlight" }

func (c *UpdateSpotlight) Apply(s *State, _ time.Time) error {
	if c.Spotlight.ProductID != 0 && domain.FindProduct(s.Products, c.Spotlight.ProductID) < 0 {
		return domain.ErrProductNotFound
	}
	s.Content.Spotlight = c.Spotlight
	return nil
}

// ImportBackup replaces the catalog and content wholesale. Reviews and orders
// are replaced only when the backup carries them (non-nil).
type ImportBackup struct {
	Products []domain.Product
	Content  domain.Content
	Reviews  []domain.Review
	Orders   []domain.Order
}

func (c *ImportBackup) Name() string { return "backup/import" }

func (c *ImportBackup) Apply(s *State, _ time.Time) error {
	seen := make(map[int]bool, len(c.Products))
	products := make([]domain.Product, 0, len(c.Products))
	for _, p := range c.Products {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.ID] {
			return domain.ErrInvalidProduct
		}
		seen[p.ID] = true
		products = append(products, p.Clone())
	}

	for _, r := range c.Reviews {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	s.Products = products
	s.Content = c.Content.Clone()
	if c.Reviews != nil {
		s.Reviews = append([]domain.Review{}, c.Reviews...)
	}
	if c.Orders != nil {
		orders := make([]domain.Order, 0, len(c.Orders))
		for _, o := range c.Orders {
			orders = append(orders, o.Clone())
		}
		s.Orders = orders
	}
	return nil
}
