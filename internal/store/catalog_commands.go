package store

import (
	"time"

	"storefront/internal/domain"
)

// CreateProduct adds a product with the next free id
type CreateProduct struct {
	Product domain.Product
}

func (c *CreateProduct) Name() string { return "products/create" }

func (c *CreateProduct) Apply(s *State, _ time.Time) error {
	p := c.Product.Clone()
	p.ID = domain.NextProductID(s.LastProductID, s.Products, s.Orders)
	if err := p.Validate(); err != nil {
		return err
	}
	s.Products = append(s.Products, p)
	s.LastProductID = p.ID
	c.Product = p.Clone()
	return nil
}

// UpdateProduct replaces the product with the same id. Existing orders keep
// their own copies and are not affected; cart lines for sizes the product no
// longer has are dropped.
type UpdateProduct struct {
	Product domain.Product
}

func (c *UpdateProduct) Name() string { return "products/update" }

func (c *UpdateProduct) Apply(s *State, _ time.Time) error {
	i := domain.FindProduct(s.Products, c.Product.ID)
	if i < 0 {
		return domain.ErrProductNotFound
	}
	if err := c.Product.Validate(); err != nil {
		return err
	}
	s.Products[i] = c.Product.Clone()

	updated := s.Products[i]
	pruneCartLines(s, func(l domain.CartLine) bool {
		return l.ProductID != updated.ID || updated.HasSize(l.Size)
	})
	return nil
}

// DeleteProduct removes a product and drops it from every cart
type DeleteProduct struct {
	ProductID int
}

func (c *DeleteProduct) Name() string { return "products/delete" }

func (c *DeleteProduct) Apply(s *State, _ time.Time) error {
	i := domain.FindProduct(s.Products, c.ProductID)
	if i < 0 {
		return domain.ErrProductNotFound
	}
	s.Products = append(s.Products[:i], s.Products[i+1:]...)

	pruneCartLines(s, func(l domain.CartLine) bool { return l.ProductID != c.ProductID })
	return nil
}

// pruneCartLines drops the cart lines keep rejects; carts left empty are removed
func pruneCartLines(s *State, keep func(domain.CartLine) bool) {
	for owner, cart := range s.Carts {
		kept := make([]domain.CartLine, 0, len(cart.Lines))
		for _, l := range cart.Lines {
			if keep(l) {
				kept = append(kept, l)
			}
		}
		if len(kept) == len(cart.Lines) {
			continue
		}
		if len(kept) == 0 {
			delete(s.Carts, owner)
			continue
		}
		cart.Lines = kept
		s.Carts[owner] = cart
	}
}

type AddReview struct {
	Review domain.Review
}

func (c *AddReview) Name() string { return "reviews/add" }

func (c *AddReview) Apply(s *State, now time.Time) error {
	if err := c.Review.Validate(); err != nil {
		return err
	}
	if domain.FindProduct(s.Products, c.Review.ProductID) < 0 {
		return domain.ErrProductNotFound
	}
	if c.Review.Date.IsZero() {
		c.Review.Date = now
	}
	s.Reviews = append(s.Reviews, c.Review)
	return nil
}

type DeleteReview struct {
	ReviewID string
}

func (c *DeleteReview) Name() string { return "reviews/delete" }

func (c *DeleteReview) Apply(s *State, _ time.Time) error {
	i := domain.FindReview(s.Reviews, c.ReviewID)
	if i < 0 {
		return domain.ErrReviewNotFound
	}
	s.Reviews = append(s.Reviews[:i], s.Reviews[i+1:]...)
	return nil
}

type SetReviewFeatured struct {
	ReviewID string
	Featured bool
}

func (c *SetReviewFeatured) Name() string { return "reviews/set-featured" }

func (c *SetReviewFeatured) Apply(s *State, _ time.Time) error {
	i := domain.FindReview(s.Reviews, c.ReviewID)
	if i < 0 {
		return domain.ErrReviewNotFound
	}
	s.Reviews[i].IsFeatured = c.Featured
	return nil
}
